package service

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotFound = errors.New("DEVICE_NOT_FOUND")
	ErrDatabase       = errors.New("DATABASE_ERROR")
)

// Error carries an API error code from internal/constants next to its cause.
type Error struct {
	Code  string
	Cause error
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func (e Error) Error() string {
	if e.Cause == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Cause)
}

func (e Error) Unwrap() error {
	return e.Cause
}
