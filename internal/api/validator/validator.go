package validator

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/Behyna/notification-services/internal/api/contract"
	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const (
	sep = " and "

	requiredFormat = "The '%s' field is required"
)

type Error struct {
	Error       bool
	FailedField string
	Tag         string
	Value       interface{}
}

type IXValidator interface {
	// Validator parses the body into data and validates it. A non-empty Code in the
	// returned response means validation failed and the status is already set.
	Validator(data any, message string, c *fiber.Ctx) (responseErr contract.Response)
	Validate(data interface{}) []Error
}

type XValidator struct {
	validator *validator.Validate
	metrics   *metrics.Metrics
}

func NewXValidator(validate *validator.Validate, metrics *metrics.Metrics) IXValidator {
	for key, function := range valid {
		_ = validate.RegisterValidation(key, function)
	}

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return &XValidator{
		validator: validate,
		metrics:   metrics,
	}
}

func (x XValidator) Validator(data any, message string, c *fiber.Ctx) (responseErr contract.Response) {
	_ = c.BodyParser(data)

	if errs := x.Validate(data); len(errs) > 0 && errs[0].Error {
		errMsgs := make([]string, 0, len(errs))
		for _, err := range errs {
			format := message
			if err.Tag == "required" {
				format = requiredFormat
			}
			errMsgs = append(errMsgs, fmt.Sprintf(format, err.FailedField))

			x.metrics.RecordValidationError(err.FailedField, err.Tag)
		}
		c.Status(http.StatusBadRequest)

		return contract.Response{
			Code:    "1",
			Message: strings.Join(errMsgs, sep),
			Errors:  fieldErrors(errs, errMsgs),
		}
	}

	return responseErr
}

func (x XValidator) Validate(data interface{}) []Error {
	var validationErrors []Error

	errs := x.validator.Struct(data)
	if errs != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(errs, &fieldErrs) {
			return []Error{{Error: true, FailedField: "body", Tag: "invalid"}}
		}
		for _, err := range fieldErrs {
			validationErrors = append(validationErrors, Error{
				FailedField: err.Field(),
				Tag:         err.Tag(),
				Value:       err.Value(),
				Error:       true,
			})
		}
	}
	return validationErrors
}

func fieldErrors(errs []Error, messages []string) map[string]string {
	out := make(map[string]string, len(errs))
	for i, err := range errs {
		out[err.FailedField] = messages[i]
	}
	return out
}
