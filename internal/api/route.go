package api

import (
	"github.com/Behyna/notification-services/internal/api/v1"
	"github.com/gofiber/fiber/v2"
)

const prefixV1 = "/api/v1"

func SetupRoutes(app *fiber.App, handler *Handler, v1Handler *v1.Handler, auth fiber.Handler) {
	app.Get("/ping", handler.Pong)
	app.Get("/metrics", handler.Metrics)
	app.Post("/twilio", v1Handler.TwilioWebhook)

	group := app.Group(prefixV1, auth)
	group.Post("/devices", v1Handler.RegisterDevice)
	group.Delete("/devices/:id", v1Handler.DeleteDevice)
	group.Get("/subscriptions", v1Handler.GetSubscriptions)
	group.Put("/subscriptions", v1Handler.PutSubscriptions)
	group.Patch("/subscriptions", v1Handler.MethodNotAllowed)
	group.Post("/phones/validate", v1Handler.ValidatePhone)
}
