// Package push routes a message to a registered device through the APNS, FCM
// or legacy GCM transport selected by the device platform.
package push

import (
	"context"

	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/Behyna/notification-services/internal/model"
	"go.uber.org/zap"
)

type Config struct {
	APNSMaxSize int
	APNSSandbox bool
	FCMURL      string
	GCMURL      string
	Apps        map[string]App
}

// App holds the provider credentials of one mobile application, keyed by Device.AppID.
type App struct {
	APNSCertificate string
	APNSPassword    string
	APNSTopic       string
	FCMAPIKey       string
	GCMAPIKey       string
}

// Sender delivers to a single device. It returns false without error when the
// transport silently skipped the device.
type Sender interface {
	Send(ctx context.Context, device model.Device, message string, data map[string]any) (bool, error)
}

type Dispatcher interface {
	SendMessage(ctx context.Context, device model.Device, message string, data map[string]any) (bool, error)
}

type dispatcher struct {
	senders map[model.Platform]Sender
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(apns, fcm, gcm Sender, logger *zap.Logger, metrics *metrics.Metrics) Dispatcher {
	return &dispatcher{
		senders: map[model.Platform]Sender{
			model.PlatformIOS: apns,
			model.PlatformFCM: fcm,
			model.PlatformGCM: gcm,
		},
		logger:  logger,
		metrics: metrics,
	}
}

func (d *dispatcher) SendMessage(ctx context.Context, device model.Device, message string, data map[string]any) (bool, error) {
	if !device.IsActive {
		return false, nil
	}

	sender, ok := d.senders[device.Platform]
	if !ok || sender == nil {
		d.logger.Warn("Unknown device platform",
			zap.Int64("deviceID", device.ID),
			zap.String("platform", string(device.Platform)))
		return false, nil
	}

	sent, err := sender.Send(ctx, device, message, data)
	d.metrics.RecordPushDelivery(string(device.Platform), sent && err == nil)
	if err != nil {
		d.logger.Warn("Push delivery failed",
			zap.Error(err),
			zap.Int64("deviceID", device.ID),
			zap.String("platform", string(device.Platform)),
			zap.String("appID", device.AppID))
		return false, err
	}

	return sent, nil
}
