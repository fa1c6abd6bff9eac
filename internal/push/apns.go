package push

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
)

const (
	DefaultAPNSMaxSize = 2048
	apnsExpiration     = 30 * 24 * time.Hour
)

// apsKeys are moved from the extra data into the "aps" dictionary.
var apsKeys = map[string]string{
	"badge":             "badge",
	"sound":             "sound",
	"category":          "category",
	"content_available": "content-available",
}

type APNSClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNSClientFactory builds a client for one app. It is only called after the
// payload passed the size check.
type APNSClientFactory func(app App, sandbox bool) (APNSClient, error)

type APNSSender struct {
	cfg     Config
	factory APNSClientFactory

	mu      sync.Mutex
	clients map[string]APNSClient
}

func NewAPNSSender(cfg Config, factory APNSClientFactory) *APNSSender {
	if factory == nil {
		factory = NewAPNSClient
	}
	if cfg.APNSMaxSize <= 0 {
		cfg.APNSMaxSize = DefaultAPNSMaxSize
	}
	return &APNSSender{cfg: cfg, factory: factory, clients: map[string]APNSClient{}}
}

func NewAPNSClient(app App, sandbox bool) (APNSClient, error) {
	var (
		cert tls.Certificate
		err  error
	)
	if strings.EqualFold(filepath.Ext(app.APNSCertificate), ".pem") {
		cert, err = certificate.FromPemFile(app.APNSCertificate, app.APNSPassword)
	} else {
		cert, err = certificate.FromP12File(app.APNSCertificate, app.APNSPassword)
	}
	if err != nil {
		return nil, errs.Configuration("invalid APNS certificate %s: %v", app.APNSCertificate, err)
	}

	client := apns2.NewClient(cert)
	if sandbox {
		return client.Development(), nil
	}
	return client.Production(), nil
}

func (s *APNSSender) Send(ctx context.Context, device model.Device, message string, data map[string]any) (bool, error) {
	app, ok := s.cfg.Apps[device.AppID]
	if !ok {
		return false, errs.Configuration("missing push settings for app %q", device.AppID)
	}
	if app.APNSCertificate == "" {
		return false, errs.Configuration("missing APNS certificate for app %q", device.AppID)
	}

	payload, err := APNSPayload(message, data)
	if err != nil {
		return false, err
	}
	if len(payload) > s.cfg.APNSMaxSize {
		return false, errs.ErrDataOverflow
	}

	client, err := s.client(device.AppID, app)
	if err != nil {
		return false, err
	}

	res, err := client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: device.NotificationToken,
		Topic:       app.APNSTopic,
		Expiration:  time.Now().Add(apnsExpiration),
		Payload:     payload,
	})
	if err != nil {
		return false, errs.Transport("apns: %v", err)
	}
	if !res.Sent() {
		return false, errs.Transport("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}

	return true, nil
}

func (s *APNSSender) client(appID string, app App) (APNSClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, ok := s.clients[appID]; ok {
		return client, nil
	}

	client, err := s.factory(app, s.cfg.APNSSandbox)
	if err != nil {
		return nil, err
	}
	s.clients[appID] = client
	return client, nil
}

// APNSPayload encodes {"aps": {...}, ...extra} with sorted keys and no insignificant whitespace.
func APNSPayload(message string, data map[string]any) ([]byte, error) {
	aps := map[string]any{"alert": message}
	root := map[string]any{}

	for key, value := range data {
		if apsKey, ok := apsKeys[key]; ok {
			if apsKey == "content-available" {
				if enabled, _ := value.(bool); enabled {
					aps[apsKey] = 1
				}
				continue
			}
			if value != nil {
				aps[apsKey] = value
			}
			continue
		}
		root[key] = value
	}
	root["aps"] = aps

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(root); err != nil {
		return nil, errs.Transport("failed to encode APNS payload: %v", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
