package notification

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/internal/push"
	"github.com/Behyna/notification-services/internal/repository"
	"go.uber.org/zap"
)

type PushMessage struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
}

// Alert is the text shown on the device.
func (m PushMessage) Alert() string {
	if m.Description != "" {
		return m.Description
	}
	return m.Title
}

type PushChannel struct {
	devices    repository.DeviceRepository
	dispatcher push.Dispatcher
	logger     *zap.Logger
}

func NewPushChannel(devices repository.DeviceRepository, dispatcher push.Dispatcher, logger *zap.Logger) *PushChannel {
	return &PushChannel{devices: devices, dispatcher: dispatcher, logger: logger}
}

func (c *PushChannel) Kind() ChannelKind {
	return Push
}

func (c *PushChannel) PrepareReceivers(_ Notification, receivers []Receiver) []Receiver {
	return uniqueBy(receivers, byID)
}

func (c *PushChannel) PrepareMessage(n Notification) (any, error) {
	def := n.Definition
	data := templateData(n.Item, n.Context)

	title, err := render(def.Name+".title", def.Title, data)
	if err != nil {
		return nil, err
	}

	description := def.Description
	if description == "" {
		description = def.Message
	}
	description, err = render(def.Name+".description", description, data)
	if err != nil {
		return nil, err
	}

	message := PushMessage{Title: title, Description: description, Data: make(map[string]any, len(def.Data))}
	for key, text := range def.Data {
		value, err := render(def.Name+"."+key, text, data)
		if err != nil {
			return nil, err
		}
		message.Data[key] = value
	}

	return message, nil
}

func (c *PushChannel) SendInner(ctx context.Context, n Notification, receivers []Receiver, message any) (Result, error) {
	msg, _ := message.(PushMessage)

	data := make(map[string]any, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	if msg.Title != "" && msg.Description != "" {
		data["title"] = msg.Title
	}

	var result Result
	for _, r := range receivers {
		devices, err := c.devices.FindActiveByUser(ctx, r.ID)
		if err != nil {
			c.logger.Error("Failed to load devices", zap.Error(err), zap.Int64("receiverID", r.ID))
			result.Failed++
			continue
		}

		for _, device := range devices {
			ok, err := c.dispatcher.SendMessage(ctx, device, msg.Alert(), data)
			if errors.Is(err, errs.ErrConfiguration) {
				return result, err
			}
			if err != nil || !ok {
				result.Failed++
				continue
			}
			result.Sent++
		}
	}

	return result, nil
}

func (c *PushChannel) HistoryDetails(_ Notification, message any) string {
	raw, err := json.Marshal(message)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (c *PushChannel) FormatReceiver(r Receiver) string {
	return r.Email
}
