package push

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/pkg/httpclient"
)

type FCMSender struct {
	cfg    Config
	client httpclient.HTTPClient
}

func NewFCMSender(cfg Config, client httpclient.HTTPClient) *FCMSender {
	return &FCMSender{cfg: cfg, client: client}
}

type fcmRequest struct {
	To           string          `json:"to"`
	Notification fcmNotification `json:"notification"`
	Data         map[string]any  `json:"data,omitempty"`
}

type fcmNotification struct {
	Body string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (s *FCMSender) Send(ctx context.Context, device model.Device, message string, data map[string]any) (bool, error) {
	app, ok := s.cfg.Apps[device.AppID]
	if !ok {
		return false, nil
	}
	if app.FCMAPIKey == "" {
		return false, errs.Configuration("missing FCM api key for app %q", device.AppID)
	}

	body := fcmRequest{
		To:           device.NotificationToken,
		Notification: fcmNotification{Body: message},
		Data:         data,
	}

	resp, err := s.client.PostJSON(ctx, s.cfg.FCMURL, body, map[string]string{"Authorization": "key=" + app.FCMAPIKey})
	if err != nil {
		return false, errs.Transport("fcm: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, errs.Transport("fcm responded with status %d", resp.StatusCode)
	}

	var res fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return false, errs.Transport("fcm: invalid response: %v", err)
	}
	if res.Failure > 0 {
		reason := "unknown"
		if len(res.Results) > 0 && res.Results[0].Error != "" {
			reason = res.Results[0].Error
		}
		return false, errs.Transport("fcm rejected notification: %s", reason)
	}

	return true, nil
}
