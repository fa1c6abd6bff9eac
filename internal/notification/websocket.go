package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Serializer turns the item into the websocket data payload.
type Serializer func(item any, context map[string]any) (any, error)

const DefaultSerializer = "item"

type WebSocketConfig struct {
	Prefix   string
	Facility string
}

type WebSocketChannel struct {
	cfg         WebSocketConfig
	client      redis.UniversalClient
	serializers map[string]Serializer
	logger      *zap.Logger
}

func NewWebSocketChannel(cfg WebSocketConfig, client redis.UniversalClient, logger *zap.Logger) *WebSocketChannel {
	return &WebSocketChannel{
		cfg:    cfg,
		client: client,
		serializers: map[string]Serializer{
			DefaultSerializer: func(item any, _ map[string]any) (any, error) { return item, nil },
			"context": func(item any, extra map[string]any) (any, error) {
				return templateData(item, extra), nil
			},
		},
		logger: logger,
	}
}

func (c *WebSocketChannel) RegisterSerializer(name string, fn Serializer) {
	c.serializers[name] = fn
}

func (c *WebSocketChannel) Kind() ChannelKind {
	return WebSocket
}

func (c *WebSocketChannel) PrepareReceivers(_ Notification, receivers []Receiver) []Receiver {
	return uniqueBy(receivers, byID)
}

type webSocketMessage struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (c *WebSocketChannel) PrepareMessage(n Notification) (any, error) {
	serializer, ok := c.serializers[c.serializerName(n)]
	if !ok {
		return nil, fmt.Errorf("%s: unknown serializer %q", n.Definition.Name, n.Definition.Serializer)
	}

	data, err := serializer(n.Item, n.Context)
	if err != nil {
		return nil, err
	}

	return webSocketMessage{Message: n.Definition.Message, Data: data}, nil
}

func (c *WebSocketChannel) SendInner(ctx context.Context, n Notification, receivers []Receiver, message any) (Result, error) {
	payload, err := json.Marshal(message)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, r := range receivers {
		if err := c.client.Publish(ctx, c.Channel(r), payload).Err(); err != nil {
			c.logger.Warn("Failed to publish websocket message",
				zap.Error(err),
				zap.Int64("receiverID", r.ID),
				zap.String("notification", n.Definition.Name))
			result.Failed++
			continue
		}
		result.Sent++
	}

	return result, nil
}

// Channel is the per-user pub/sub channel of r.
func (c *WebSocketChannel) Channel(r Receiver) string {
	return fmt.Sprintf("%s:user:%s:%s", c.cfg.Prefix, r.Email, c.cfg.Facility)
}

func (c *WebSocketChannel) HistoryDetails(n Notification, _ any) string {
	return fmt.Sprintf("message: %s, serializer: %s", n.Definition.Message, c.serializerName(n))
}

func (c *WebSocketChannel) FormatReceiver(r Receiver) string {
	return r.Email
}

func (c *WebSocketChannel) serializerName(n Notification) string {
	if n.Definition.Serializer == "" {
		return DefaultSerializer
	}
	return n.Definition.Serializer
}
