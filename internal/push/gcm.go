package push

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/pkg/httpclient"
)

// GCMSender speaks the legacy plain-text GCM protocol.
type GCMSender struct {
	cfg    Config
	client httpclient.HTTPClient
}

func NewGCMSender(cfg Config, client httpclient.HTTPClient) *GCMSender {
	return &GCMSender{cfg: cfg, client: client}
}

func (s *GCMSender) Send(ctx context.Context, device model.Device, message string, data map[string]any) (bool, error) {
	app, ok := s.cfg.Apps[device.AppID]
	if !ok {
		return false, nil
	}
	if app.GCMAPIKey == "" {
		return false, errs.Configuration("missing GCM api key for app %q", device.AppID)
	}

	values := url.Values{}
	values.Set("registration_id", device.NotificationToken)
	values.Set("data.message", message)
	for key, value := range data {
		values.Set("data."+key, fmt.Sprint(value))
	}

	resp, err := s.client.PostForm(ctx, s.cfg.GCMURL, values, map[string]string{"Authorization": "key=" + app.GCMAPIKey})
	if err != nil {
		return false, errs.Transport("gcm: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, errs.Transport("gcm: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, errs.Transport("gcm responded with status %d", resp.StatusCode)
	}

	result := strings.TrimSpace(string(body))
	if strings.HasPrefix(result, "Error=") {
		return false, errs.Transport("gcm rejected notification: %s", strings.TrimPrefix(result, "Error="))
	}

	return true, nil
}
