package mq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	Publish(ctx context.Context, exchange string, routingKey string, body []byte) error
	// PublishDelayed publishes to a delay queue, declaring it on first use. The
	// queue's TTL sets the delay; expired messages dead-letter into their final
	// destination.
	PublishDelayed(ctx context.Context, delayQueue Queue, body []byte) error
}

type RabbitPublisher struct {
	ch *amqp.Channel

	mu       sync.Mutex
	declared map[string]bool
}

func NewRabbitPublisher(ch *amqp.Channel) Publisher {
	return &RabbitPublisher{ch: ch, declared: make(map[string]bool)}
}

func (r *RabbitPublisher) Publish(ctx context.Context, exchange string, routingKey string, body []byte) error {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}

	return r.ch.PublishWithContext(ctx, exchange, routingKey, false, false, msg)
}

func (r *RabbitPublisher) PublishDelayed(ctx context.Context, delayQueue Queue, body []byte) error {
	if err := r.declare(delayQueue); err != nil {
		return err
	}

	return r.Publish(ctx, "", delayQueue.Name, body)
}

func (r *RabbitPublisher) declare(queue Queue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.declared[queue.Name] {
		return nil
	}
	if _, err := r.ch.QueueDeclare(queue.Name, true, false, false, false, queue.Args()); err != nil {
		return fmt.Errorf("failed to declare delay queue %s: %w", queue.Name, err)
	}
	r.declared[queue.Name] = true
	return nil
}

func (r *RabbitPublisher) Close() error {
	if r.ch != nil {
		return r.ch.Close()
	}

	return nil
}
