package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const slowRequest = time.Second

// HTTPMetricsMiddleware records request count, latency and size per route
// pattern. Scrapes of /metrics are not recorded.
func HTTPMetricsMiddleware(metrics *Metrics, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if metrics == nil || c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		// the error handler runs here so the recorded status is the one sent
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		duration := time.Since(start)
		status := c.Response().StatusCode()

		route := c.Route().Path
		if route == "" || route == "/" {
			route = "unmatched"
		}
		statusCode := strconv.Itoa(status)

		metrics.RecordHTTPRequest(c.Method(), route, statusCode, duration, len(c.Response().Body()))

		if duration > slowRequest {
			logger.Warn("Slow HTTP request",
				zap.String("method", c.Method()),
				zap.String("route", route),
				zap.String("statusCode", statusCode),
				zap.Duration("duration", duration),
			)
		}

		return nil
	}
}
