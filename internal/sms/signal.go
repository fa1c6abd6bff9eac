package sms

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Signal wakes the proxy dispatcher for one service number.
type Signal struct {
	Number string `json:"number"`
}

type Signaler interface {
	Signal(ctx context.Context, number string) error
}

type redisSignaler struct {
	client  redis.UniversalClient
	channel string
}

func NewSignaler(client redis.UniversalClient, channel string) Signaler {
	return &redisSignaler{client: client, channel: channel}
}

func (r *redisSignaler) Signal(ctx context.Context, number string) error {
	payload, err := json.Marshal(Signal{Number: number})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}
