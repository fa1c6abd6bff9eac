// Package notification dispatches a notification definition to its receivers:
// category checks, subscription filtering, channel rendering and delivery,
// history and chained follow-ups.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/repository"
	"github.com/Behyna/notification-services/internal/tasks"
	"go.uber.org/zap"
)

// SendTask is the payload of the notification.send task.
type SendTask struct {
	Notification string         `json:"notification"`
	Item         any            `json:"item"`
	Receivers    []Receiver     `json:"receivers"`
	Context      map[string]any `json:"context"`
}

// ChainedTask is the payload of the notification.chained task.
type ChainedTask struct {
	Entry        ChainEntry     `json:"entry"`
	Item         any            `json:"item"`
	Receivers    []Receiver     `json:"receivers"`
	Context      map[string]any `json:"context"`
	ParentResult Result         `json:"parent_result"`
}

type Engine struct {
	cfg        Config
	registry   *Registry
	policy     *CategoryPolicy
	filter     *SubscriptionFilter
	channels   map[ChannelKind]Channel
	history    repository.HistoryRepository
	runner     tasks.Runner
	strategies *Strategies
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

type EngineDeps struct {
	Registry   *Registry
	Unsubs     repository.UnsubscribedUserRepository
	History    repository.HistoryRepository
	Runner     tasks.Runner
	Strategies *Strategies
	Channels   []Channel
}

func NewEngine(cfg Config, deps EngineDeps, logger *zap.Logger, metrics *metrics.Metrics) *Engine {
	channels := make(map[ChannelKind]Channel, len(deps.Channels))
	for _, ch := range deps.Channels {
		channels[ch.Kind()] = ch
	}

	strategies := deps.Strategies
	if strategies == nil {
		strategies = NewStrategies()
	}

	return &Engine{
		cfg:        cfg,
		registry:   deps.Registry,
		policy:     NewCategoryPolicy(cfg),
		filter:     NewSubscriptionFilter(deps.Unsubs),
		channels:   channels,
		history:    deps.History,
		runner:     deps.Runner,
		strategies: strategies,
		logger:     logger,
		metrics:    metrics,
	}
}

// Send runs check, filter, prepare, send, record and chain for n. Chained
// notifications without a delay are sent before Send returns.
func (e *Engine) Send(ctx context.Context, n Notification) (Result, error) {
	def := n.Definition

	channel, ok := e.channels[def.Kind]
	if !ok {
		return Result{}, errs.Configuration("%s: no channel registered for %s", def.Name, def.Kind)
	}

	if err := e.policy.Check(def, n.Receivers); err != nil {
		e.metrics.RecordNotificationFailed(def.Kind.Key(), "category")
		return Result{}, err
	}

	receivers, err := e.filter.Filter(ctx, def, n.Receivers)
	if err != nil {
		e.logger.Error("Failed to load subscriptions", zap.Error(err), zap.String("notification", def.Name))
		return Result{}, err
	}
	e.metrics.RecordReceiversFiltered(def.Kind.Key(), len(n.Receivers)-len(receivers))

	prepared := channel.PrepareReceivers(n, receivers)

	message, err := channel.PrepareMessage(n)
	if err != nil {
		e.metrics.RecordNotificationFailed(def.Kind.Key(), "prepare")
		return Result{}, err
	}

	result, err := channel.SendInner(ctx, n, prepared, message)
	if err != nil {
		e.logger.Error("Failed to send notification",
			zap.Error(err),
			zap.String("notification", def.Name),
			zap.String("group", def.Kind.String()))
		e.metrics.RecordNotificationFailed(def.Kind.Key(), "transport")
		return result, err
	}
	e.metrics.RecordNotificationSent(def.Kind.Key(), def.Category)

	if err := e.saveHistory(ctx, channel, n, prepared, message); err != nil {
		return result, err
	}

	for _, entry := range def.Chain {
		if err := e.chain(ctx, entry, n, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (e *Engine) saveHistory(ctx context.Context, channel Channel, n Notification, receivers []Receiver, message any) error {
	def := n.Definition
	details := channel.HistoryDetails(n, message)

	rows := make([]model.NotificationHistory, 0, len(receivers))
	for _, r := range receivers {
		receiver := channel.FormatReceiver(r)
		e.logger.Info("Notification sent",
			zap.String("category", def.Category),
			zap.String("group", def.Kind.String()),
			zap.String("klass", def.Name),
			zap.String("receiver", receiver),
			zap.String("details", details))

		rows = append(rows, model.NotificationHistory{
			Group:    def.Kind.String(),
			Klass:    def.Name,
			Receiver: receiver,
			Details:  details,
			Category: def.Category,
		})
	}

	if !e.cfg.History || len(rows) == 0 {
		return nil
	}

	if err := e.history.CreateBatch(ctx, rows); err != nil {
		e.logger.Error("Failed to save notification history", zap.Error(err), zap.String("notification", def.Name))
		return err
	}
	e.metrics.RecordHistoryRows(len(rows))

	return nil
}

func (e *Engine) chain(ctx context.Context, entry ChainEntry, n Notification, parent Result) error {
	task := ChainedTask{
		Entry:        entry,
		Item:         n.Item,
		Receivers:    n.Receivers,
		Context:      n.Context,
		ParentResult: parent,
	}

	if entry.Delay > 0 {
		e.metrics.RecordChained("scheduled")
		return e.runner.Enqueue(ctx, tasks.ChainedNotification, task, entry.Delay)
	}

	e.metrics.RecordChained("inline")
	return e.ProcessChained(ctx, task)
}

// ProcessChained applies the entry's transform and condition, then sends the child.
func (e *Engine) ProcessChained(ctx context.Context, task ChainedTask) error {
	item, receivers, extra := task.Item, task.Receivers, task.Context

	if task.Entry.Transform != "" {
		transform, err := e.strategies.Transform(task.Entry.Transform)
		if err != nil {
			return errs.Configuration("%v", err)
		}
		item, receivers, extra, err = transform(item, receivers, extra)
		if err != nil {
			return err
		}
	}

	if task.Entry.Condition != "" {
		condition, err := e.strategies.Condition(task.Entry.Condition)
		if err != nil {
			return errs.Configuration("%v", err)
		}
		if !condition(item, receivers, extra, task.ParentResult) {
			e.logger.Debug("Chained notification skipped",
				zap.String("notification", task.Entry.Notification),
				zap.String("condition", task.Entry.Condition))
			return nil
		}
	}

	def, err := e.registry.Lookup(task.Entry.Notification)
	if err != nil {
		return errs.Configuration("%v", err)
	}

	_, err = e.Send(ctx, Notification{Definition: def, Item: item, Receivers: receivers, Context: extra})
	return err
}

// SendByName resolves the definition and sends it.
func (e *Engine) SendByName(ctx context.Context, name string, item any, receivers []Receiver, extra map[string]any) (Result, error) {
	def, err := e.registry.Lookup(name)
	if err != nil {
		return Result{}, errs.Configuration("%v", err)
	}
	return e.Send(ctx, Notification{Definition: def, Item: item, Receivers: receivers, Context: extra})
}

func (e *Engine) HandleSendTask(ctx context.Context, payload json.RawMessage) error {
	var task SendTask
	if err := json.Unmarshal(payload, &task); err != nil {
		e.logger.Error("Failed to decode notification task", zap.Error(err))
		return nil
	}

	_, err := e.SendByName(ctx, task.Notification, task.Item, task.Receivers, task.Context)
	return errs.Retryable(err)
}

func (e *Engine) HandleChainedTask(ctx context.Context, payload json.RawMessage) error {
	var task ChainedTask
	if err := json.Unmarshal(payload, &task); err != nil {
		e.logger.Error("Failed to decode chained notification task", zap.Error(err))
		return nil
	}

	return errs.Retryable(e.ProcessChained(ctx, task))
}

// Enqueue schedules a notification.send task.
func (e *Engine) Enqueue(ctx context.Context, task SendTask, delay time.Duration) error {
	if _, err := e.registry.Lookup(task.Notification); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	return e.runner.Enqueue(ctx, tasks.SendNotification, task, delay)
}
