package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	logger  *zap.Logger
	metrics fiber.Handler
}

func NewHandler(logger *zap.Logger, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		logger:  logger,
		metrics: adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) Metrics(c *fiber.Ctx) error {
	return h.metrics(c)
}
