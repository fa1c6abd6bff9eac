package mq

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Config struct {
	URL string `mapstructure:"url"`
}

// Queue describes a durable queue. DeadLetterTo with a TTL turns it into a
// delay queue: every message expires after TTL and is routed to DeadLetterTo
// through the default exchange. One TTL per queue keeps expiry in FIFO order.
type Queue struct {
	Name         string
	DeadLetterTo string
	TTL          time.Duration
}

// Args returns the x-arguments the queue is declared with.
func (q Queue) Args() amqp.Table {
	if q.DeadLetterTo == "" && q.TTL <= 0 {
		return nil
	}

	args := amqp.Table{}
	if q.DeadLetterTo != "" {
		args["x-dead-letter-exchange"] = ""
		args["x-dead-letter-routing-key"] = q.DeadLetterTo
	}
	if q.TTL > 0 {
		args["x-message-ttl"] = q.TTL.Milliseconds()
	}
	return args
}

type RabbitMQ struct {
	conn   *amqp.Connection
	logger *zap.Logger
}

func NewConnection(cfg Config, logger *zap.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	logger.Info("Successfully connected to RabbitMQ")

	return &RabbitMQ{conn: conn, logger: logger}, nil
}

func (r *RabbitMQ) OpenChannel() (*amqp.Channel, error) {
	if r.conn == nil || r.conn.IsClosed() {
		return nil, fmt.Errorf("connection is closed")
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return ch, nil
}

func (r *RabbitMQ) DeclareTopology(queues []Queue) error {
	ch, err := r.OpenChannel()
	if err != nil {
		return fmt.Errorf("failed to open channel for topology: %w", err)
	}
	defer ch.Close()

	names := make([]string, 0, len(queues))
	for _, queue := range queues {
		if _, err := ch.QueueDeclare(queue.Name, true, false, false, false, queue.Args()); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", queue.Name, err)
		}
		names = append(names, queue.Name)
	}

	r.logger.Info("Queues declared successfully",
		zap.Int("count", len(queues)),
		zap.Strings("queues", names),
	)

	return nil
}

func (r *RabbitMQ) CreatePublisher() (Publisher, error) {
	ch, err := r.OpenChannel()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel for publisher: %w", err)
	}

	return NewRabbitPublisher(ch), nil
}

func (r *RabbitMQ) CreateConsumer() (Consumer, error) {
	ch, err := r.OpenChannel()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel for consumer: %w", err)
	}

	return NewRabbitConsumer(ch), nil
}

func (r *RabbitMQ) Close() error {
	if r.conn != nil && !r.conn.IsClosed() {
		return r.conn.Close()
	}

	return nil
}
