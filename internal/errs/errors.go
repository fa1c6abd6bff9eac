// Package errs holds the failure taxonomy shared by the dispatch engine, the
// push transports and the SMS subsystem. Callers match with errors.Is.
package errs

import (
	"errors"
	"fmt"

	"github.com/Behyna/notification-services/pkg/mq"
)

var (
	// ErrConfiguration is fatal to the current send and never retried.
	ErrConfiguration = errors.New("CONFIGURATION_ERROR")
	ErrValidation    = errors.New("VALIDATION_ERROR")
	ErrTransport     = errors.New("TRANSPORT_ERROR")
	// ErrProtocolRejection marks a webhook payload that failed the account identity check.
	ErrProtocolRejection = errors.New("PROTOCOL_REJECTION")
	ErrParseFailure      = errors.New("PARSE_FAILURE")
	ErrNotSupported      = errors.New("NOT_SUPPORTED")
	ErrDataOverflow      = fmt.Errorf("DATA_OVERFLOW: %w", ErrTransport)
)

var permanent = []error{
	ErrConfiguration, ErrValidation, ErrTransport, ErrProtocolRejection, ErrParseFailure, ErrNotSupported,
}

// Permanent reports whether err is one of the classified failures above. Their
// outcome does not change on redelivery.
func Permanent(err error) bool {
	for _, sentinel := range permanent {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Retryable marks unclassified failures (database, broker) for requeue and
// returns classified ones unchanged so the delivery is dropped.
func Retryable(err error) error {
	if err == nil || Permanent(err) {
		return err
	}
	return mq.Temporary(err)
}

func Configuration(format string, args ...any) error {
	return wrap(ErrConfiguration, format, args...)
}

func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

func Transport(format string, args ...any) error {
	return wrap(ErrTransport, format, args...)
}

func ProtocolRejection(format string, args ...any) error {
	return wrap(ErrProtocolRejection, format, args...)
}

func NotSupported(operation string) error {
	return fmt.Errorf("%w: %s", ErrNotSupported, operation)
}

func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
