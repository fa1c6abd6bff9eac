package v1

import (
	"github.com/Behyna/notification-services/internal/api/v1/middleware"
	"github.com/Behyna/notification-services/internal/api/validator"
	"github.com/Behyna/notification-services/internal/config"
	"github.com/Behyna/notification-services/internal/constants"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/service"
	"github.com/Behyna/notification-services/internal/sms"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const callStatusRinging = "ringing"

type Handler struct {
	logger        *zap.Logger
	devices       service.DeviceService
	subscriptions service.SubscriptionService
	sms           sms.Service
	XValidator    validator.IXValidator
	callResponse  string
}

func NewHandler(logger *zap.Logger, devices service.DeviceService, subscriptions service.SubscriptionService,
	smsService sms.Service, XValidator validator.IXValidator, cfg *config.Config) *Handler {
	return &Handler{
		logger:        logger,
		devices:       devices,
		subscriptions: subscriptions,
		sms:           smsService,
		XValidator:    XValidator,
		callResponse:  cfg.SMS.CallResponse,
	}
}

func (h *Handler) RegisterDevice(c *fiber.Ctx) error {
	user, ok := middleware.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var request RegisterDeviceRequest
	responseError := h.XValidator.Validator(&request, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Warn("Invalid device registration", zap.Int64("userID", user.ID), zap.String("errors", responseError.Message))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	resp, created, err := h.devices.Register(c.UserContext(), service.RegisterDeviceCommand{
		UserID:            user.ID,
		Platform:          model.Platform(request.Platform),
		NotificationToken: request.NotificationToken,
		DeviceID:          request.DeviceID,
		AppID:             request.AppID,
	})
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(resp)
}

func (h *Handler) DeleteDevice(c *fiber.Ctx) error {
	user, ok := middleware.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return service.NewServiceError(constants.ErrCodeDeviceNotFound, service.ErrDeviceNotFound)
	}

	if err := h.devices.Delete(c.UserContext(), service.DeleteDeviceCommand{UserID: user.ID, DeviceID: int64(id)}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) GetSubscriptions(c *fiber.Ctx) error {
	user, ok := middleware.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	result, err := h.subscriptions.Get(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(subscriptionsResponse(result))
}

func (h *Handler) PutSubscriptions(c *fiber.Ctx) error {
	user, ok := middleware.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	cmd, err := parseSubscriptionsRequest(c.Body())
	if err != nil {
		h.logger.Warn("Failed to parse body", zap.Error(err), zap.Int64("userID", user.ID))
		return service.NewServiceError(constants.ErrCodeInvalidRequestBody, err)
	}

	result, err := h.subscriptions.Put(c.UserContext(), user, cmd)
	if err != nil {
		return err
	}

	return c.JSON(subscriptionsResponse(result))
}

func (h *Handler) MethodNotAllowed(c *fiber.Ctx) error {
	return fiber.ErrMethodNotAllowed
}

func (h *Handler) ValidatePhone(c *fiber.Ctx) error {
	var request ValidatePhoneRequest
	responseError := h.XValidator.Validator(&request, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	valid, err := h.sms.ValidateMobile(c.UserContext(), request.Number)
	if err != nil {
		h.logger.Error("Failed to validate phone number", zap.Error(err), zap.String("number", request.Number))
		return err
	}

	number := request.Number
	if valid {
		if formatted, err := h.sms.FormatPhone(request.Number); err == nil {
			number = formatted
		}
	}

	return c.JSON(ValidatePhoneResponse{Number: number, Valid: valid})
}

// TwilioWebhook stores the provider payload for asynchronous parsing. Ringing voice
// calls are answered with the configured TwiML.
func (h *Handler) TwilioWebhook(c *fiber.Ctx) error {
	data := make(map[string]string)
	if c.Is("json") {
		if err := c.BodyParser(&data); err != nil {
			return service.NewServiceError(constants.ErrCodeInvalidRequestBody, err)
		}
	} else {
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			data[string(key)] = string(value)
		})
	}

	raw, err := h.sms.ReceiveRaw(c.UserContext(), data)
	if err != nil {
		return err
	}

	h.logger.Info("Inbound SMS payload received",
		zap.Int64("rawID", raw.ID),
		zap.String("from", data[sms.FieldFrom]))

	if data[sms.FieldDirection] == "inbound" && data[sms.FieldCallStatus] == callStatusRinging {
		c.Set(fiber.HeaderContentType, "text/xml")
		return c.SendString(h.callResponse)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{})
}
