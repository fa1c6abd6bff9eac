package mq

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Handle func(ctx context.Context, body []byte) error

type Consumer interface {
	Consume(ctx context.Context, prefetch int, queue string, handler Handle) error
}

type RabbitConsumer struct {
	ch *amqp.Channel
}

func NewRabbitConsumer(ch *amqp.Channel) Consumer {
	return &RabbitConsumer{ch: ch}
}

// Consume runs handler for every delivery until ctx is done or the channel closes.
// On cancellation the broker is told to stop delivering and anything already
// prefetched is returned to the queue.
func (c *RabbitConsumer) Consume(ctx context.Context, prefetch int, queue string, handler Handle) error {
	if prefetch <= 0 {
		prefetch = 1
	}

	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	tag := queue + "-" + uuid.NewString()
	deliveries, err := c.ch.Consume(queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = c.ch.Cancel(tag, false)
			for d := range deliveries {
				_ = d.Nack(false, true)
			}
			return ctx.Err()

		case d, ok := <-deliveries:
			if !ok {
				return nil
			}

			if err := safeHandle(ctx, handler, d.Body); err != nil {
				_ = d.Nack(false, ShouldRequeue(err))
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// safeHandle turns a handler panic into a permanent failure so one poison
// message cannot stop the consumer.
func safeHandle(ctx context.Context, handler Handle, body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, body)
}
