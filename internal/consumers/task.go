package consumers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/Behyna/notification-services/internal/tasks"
	"github.com/Behyna/notification-services/pkg/mq"
	"go.uber.org/zap"
)

type TaskConsumer interface {
	Consume(ctx context.Context) error
}

type TaskConfig struct {
	Queue    string
	Prefetch int
}

type taskConsumer struct {
	cfg      TaskConfig
	handlers map[string]tasks.Handler
	consumer mq.Consumer
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewTaskConsumer(cfg TaskConfig, handlers map[string]tasks.Handler, consumer mq.Consumer,
	logger *zap.Logger, metrics *metrics.Metrics) TaskConsumer {
	return &taskConsumer{
		cfg:      cfg,
		handlers: handlers,
		consumer: consumer,
		logger:   logger,
		metrics:  metrics,
	}
}

func (t *taskConsumer) Consume(ctx context.Context) error {
	return t.consumer.Consume(ctx, t.cfg.Prefetch, t.cfg.Queue, t.handleMessage)
}

// handleMessage returns the handler error as is; handlers mark retryable
// failures with mq.Temporary.
func (t *taskConsumer) handleMessage(ctx context.Context, body []byte) error {
	var task tasks.Task
	if err := json.Unmarshal(body, &task); err != nil {
		t.logger.Warn("Invalid task envelope", zap.Error(err), zap.ByteString("body", body))
		return err
	}

	handler, ok := t.handlers[task.Name]
	if !ok {
		t.logger.Warn("No handler for task", zap.String("task", task.Name), zap.String("taskID", task.ID))
		t.metrics.RecordTask(task.Name, false)
		return fmt.Errorf("unknown task %q", task.Name)
	}

	if err := handler(ctx, task.Payload); err != nil {
		t.logger.Error("Failed to process task",
			zap.Error(err),
			zap.String("task", task.Name),
			zap.String("taskID", task.ID),
			zap.Bool("requeue", mq.ShouldRequeue(err)))
		t.metrics.RecordTask(task.Name, false)
		return err
	}

	t.metrics.RecordTask(task.Name, true)
	return nil
}
