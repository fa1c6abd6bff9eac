package metrics_test

import (
	"net/http/httptest"
	"testing"

	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetrics(t *testing.T) {
	t.Run("records into the given registry", func(t *testing.T) {
		m := metrics.NewMetrics(prometheus.NewRegistry())

		m.RecordNotificationSent("sms", "default")
		m.RecordNotificationSent("sms", "default")
		m.RecordPushDelivery("ios", false)

		assert.Equal(t, float64(2), testutil.ToFloat64(m.NotificationsSent.WithLabelValues("sms", "default")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.PushDeliveries.WithLabelValues("ios", "error")))
	})

	t.Run("nil metrics are a no-op", func(t *testing.T) {
		var m *metrics.Metrics

		assert.NotPanics(t, func() {
			m.RecordNotificationSent("sms", "default")
			m.RecordTask("sms.send", true)
			m.ProxyWorkerStarted()
		})
	})
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	app := fiber.New()
	app.Use(metrics.HTTPMetricsMiddleware(m, zap.NewNop()))
	app.Get("/devices/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return fiber.ErrNotFound
		}
		return c.SendString("ok")
	})
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendString("") })

	for _, path := range []string{"/devices/1", "/devices/2", "/devices/missing", "/metrics"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/devices/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/devices/:id", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestsTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPRequestsInFlight))
}
