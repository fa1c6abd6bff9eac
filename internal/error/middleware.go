package middleware

import (
	"errors"

	"github.com/Behyna/notification-services/internal/constants"
	"github.com/Behyna/notification-services/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, serviceErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"code":    fiberErr.Code,
				"message": fiberErr.Message,
			})
		}

		logger.Error("Unhandled request error",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":    constants.ErrCodeInternalError,
			"message": constants.GetErrorMessage(constants.ErrCodeInternalError),
		})
	}
}

func handleServiceError(c *fiber.Ctx, err service.Error) error {
	errorCode := err.Code

	status := constants.GetHTTPStatus(errorCode)
	if status == fiber.StatusInternalServerError && err.Code != constants.ErrCodeInternalError {
		errorCode = constants.ErrCodeInternalError
	}

	return c.Status(status).JSON(fiber.Map{
		"code":    errorCode,
		"message": constants.GetErrorMessage(errorCode),
	})
}
