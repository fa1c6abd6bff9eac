// Package tasks is the asynchronous task runner used for SMS sends, inbound parsing
// and chained notifications. Delivery is at-least-once with no ordering guarantee.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Behyna/notification-services/pkg/mq"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SendSMS             = "sms.send"
	ParseReceived       = "sms.parse_received"
	SendNotification    = "notification.send"
	ChainedNotification = "notification.chained"
)

type Task struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Handler processes the payload of one task.
type Handler func(ctx context.Context, payload json.RawMessage) error

type Runner interface {
	Enqueue(ctx context.Context, name string, payload any, delay time.Duration) error
}

type Config struct {
	Queue string
	// DelayQueue prefixes the delay queues, one per distinct delay.
	DelayQueue string
	// Delays are declared up front; other delays get their queue on first use.
	Delays []time.Duration
}

// DelayQueue returns the queue holding tasks delayed by delay, for example
// notifications.tasks.delay.90000 for 90s.
func DelayQueue(cfg Config, delay time.Duration) mq.Queue {
	return mq.Queue{
		Name:         fmt.Sprintf("%s.%d", cfg.DelayQueue, delay.Milliseconds()),
		DeadLetterTo: cfg.Queue,
		TTL:          delay,
	}
}

// Topology returns the task queue and the delay queues of the configured delays.
func Topology(cfg Config) []mq.Queue {
	queues := []mq.Queue{{Name: cfg.Queue}}
	seen := make(map[int64]bool, len(cfg.Delays))
	for _, delay := range cfg.Delays {
		ms := delay.Milliseconds()
		if ms <= 0 || seen[ms] {
			continue
		}
		seen[ms] = true
		queues = append(queues, DelayQueue(cfg, delay))
	}
	return queues
}

type runner struct {
	publisher mq.Publisher
	cfg       Config
	logger    *zap.Logger
}

func NewRunner(publisher mq.Publisher, cfg Config, logger *zap.Logger) Runner {
	return &runner{publisher: publisher, cfg: cfg, logger: logger}
}

func (r *runner) Enqueue(ctx context.Context, name string, payload any, delay time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", name, err)
	}

	task := Task{ID: uuid.NewString(), Name: name, Payload: raw, EnqueuedAt: time.Now().UTC()}
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	// Sub-millisecond delays cannot be expressed as a queue TTL.
	if delay.Milliseconds() > 0 {
		err = r.publisher.PublishDelayed(ctx, DelayQueue(r.cfg, delay), body)
	} else {
		err = r.publisher.Publish(ctx, "", r.cfg.Queue, body)
	}
	if err != nil {
		r.logger.Error("Failed to enqueue task",
			zap.Error(err),
			zap.String("task", name),
			zap.String("taskID", task.ID),
			zap.Duration("delay", delay))
		return err
	}

	r.logger.Debug("Task enqueued",
		zap.String("task", name),
		zap.String("taskID", task.ID),
		zap.Duration("delay", delay))

	return nil
}
