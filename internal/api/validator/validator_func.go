package validator

import (
	"github.com/Behyna/notification-services/internal/model"
	"github.com/go-playground/validator/v10"
)

const (
	PlatformTag = "platform"
)

var valid = map[string]func(fl validator.FieldLevel) bool{
	PlatformTag: ValidatePlatform,
}

func ValidatePlatform(fl validator.FieldLevel) bool {
	return model.Platform(fl.Field().String()).Valid()
}
