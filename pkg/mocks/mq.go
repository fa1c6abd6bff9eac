package mocks

import (
	"context"

	"github.com/Behyna/notification-services/pkg/mq"
	"github.com/stretchr/testify/mock"
)

type Publisher struct {
	mock.Mock
}

func (p *Publisher) Publish(ctx context.Context, exchange string, routingKey string, body []byte) error {
	args := p.Called(ctx, exchange, routingKey, body)
	return args.Error(0)
}

func (p *Publisher) PublishDelayed(ctx context.Context, delayQueue mq.Queue, body []byte) error {
	args := p.Called(ctx, delayQueue, body)
	return args.Error(0)
}

// Consumer feeds Deliveries to the handler and records the handler results.
type Consumer struct {
	Deliveries [][]byte
	Results    []error
}

func (c *Consumer) Consume(ctx context.Context, prefetch int, queue string, handler mq.Handle) error {
	for _, body := range c.Deliveries {
		c.Results = append(c.Results, handler(ctx, body))
	}
	return nil
}
