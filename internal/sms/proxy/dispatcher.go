// Package proxy drains the per service number SMS queue at each number's rate.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/repository"
	"github.com/Behyna/notification-services/internal/sms"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Config struct {
	Channel     string
	MaxWorkers  int
	DefaultRate int
}

type Repositories struct {
	Phones  repository.PhoneRepository
	Pending repository.PendingMessageRepository
	Sent    repository.PhoneSentRepository
}

// Dispatcher keeps at most one worker per service number. Workers exit when
// their queue is empty and are recreated by the next signal.
type Dispatcher struct {
	cfg     Config
	client  redis.UniversalClient
	repos   Repositories
	engine  sms.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics

	sem      chan struct{}
	mu       sync.Mutex
	workers  map[string]*worker
	limiters map[string]*rate.Limiter
	wg       sync.WaitGroup
}

type worker struct {
	phone   model.Phone
	wake    chan struct{}
	limiter *rate.Limiter
}

func NewDispatcher(cfg Config, client redis.UniversalClient, repos Repositories, engine sms.Engine,
	logger *zap.Logger, metrics *metrics.Metrics) *Dispatcher {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.DefaultRate <= 0 {
		cfg.DefaultRate = 6
	}

	return &Dispatcher{
		cfg:     cfg,
		client:  client,
		repos:   repos,
		engine:  engine,
		logger:  logger,
		metrics: metrics,
		sem:      make(chan struct{}, cfg.MaxWorkers),
		workers:  make(map[string]*worker),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Run blocks until ctx is done and every worker has returned.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.wg.Wait()

	pubsub := d.client.Subscribe(ctx, d.cfg.Channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	numbers, err := d.repos.Pending.DistinctFromPhones(ctx)
	if err != nil {
		d.logger.Error("Failed to load numbers with pending messages", zap.Error(err))
	}
	for _, number := range numbers {
		d.Activate(ctx, number)
	}

	d.logger.Info("Proxy dispatcher started",
		zap.String("channel", d.cfg.Channel),
		zap.Int("maxWorkers", d.cfg.MaxWorkers))

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Proxy dispatcher stopping")
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var signal sms.Signal
			if err := json.Unmarshal([]byte(msg.Payload), &signal); err != nil || signal.Number == "" {
				d.logger.Debug("Ignoring malformed dispatch signal", zap.String("payload", msg.Payload))
				continue
			}
			d.Activate(ctx, signal.Number)
		}
	}
}

// Activate wakes the worker for number, starting one if none is running.
func (d *Dispatcher) Activate(ctx context.Context, number string) {
	d.mu.Lock()
	if w, ok := d.workers[number]; ok {
		select {
		case w.wake <- struct{}{}:
		default:
		}
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	phone, err := d.repos.Phones.FindByNumber(ctx, number)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			d.logger.Error("Failed to load service number", zap.Error(err), zap.String("serviceNumber", number))
		}
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if w, ok := d.workers[number]; ok {
		select {
		case w.wake <- struct{}{}:
		default:
		}
		return
	}

	w := &worker{phone: *phone, wake: make(chan struct{}, 1), limiter: d.limiterLocked(*phone)}
	d.workers[number] = w
	d.metrics.ProxyWorkerStarted()

	d.wg.Add(1)
	go d.run(ctx, w)
}

func (d *Dispatcher) run(ctx context.Context, w *worker) {
	defer d.wg.Done()
	defer d.metrics.ProxyWorkerStopped()

	number := w.phone.Number
	d.logger.Debug("Proxy worker started", zap.String("serviceNumber", number))

	for {
		if err := d.drain(ctx, w.phone, w.limiter); err != nil && ctx.Err() == nil {
			d.logger.Error("Proxy worker failed", zap.Error(err), zap.String("serviceNumber", number))
		}

		d.mu.Lock()
		select {
		case <-w.wake:
			d.mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			continue
		default:
		}
		delete(d.workers, number)
		d.mu.Unlock()

		d.logger.Debug("Proxy worker stopped", zap.String("serviceNumber", number))
		return
	}
}

// Drain sends the queued messages of phone until none remain.
func (d *Dispatcher) Drain(ctx context.Context, phone model.Phone) error {
	return d.drain(ctx, phone, d.limiter(phone))
}

func (d *Dispatcher) drain(ctx context.Context, phone model.Phone, limiter *rate.Limiter) error {
	for {
		pending, err := d.repos.Pending.Next(ctx, phone.Number)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		if err := d.process(ctx, pending); err != nil {
			return err
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, pending *model.PhonePendingMessage) error {
	sent := &pending.Message

	if sent.Status.Sendable() {
		select {
		case d.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		err := d.engine.Send(ctx, sent)
		<-d.sem

		if err != nil {
			d.logger.Error("Failed to send queued SMS", zap.Error(err), zap.Int64("messageID", sent.ID))
			sent.MarkFailed(err.Error())
		}
		sent.UpdatedAt = time.Now()

		if err := d.repos.Sent.Update(ctx, sent); err != nil {
			return err
		}
		d.metrics.RecordSMSSent(string(sent.Status))
	}

	if err := d.repos.Pending.Delete(ctx, pending.ID); err != nil && !errors.Is(err, repository.ErrNoRowsAffected) {
		return err
	}

	d.logger.Debug("Queued SMS processed",
		zap.Int64("messageID", sent.ID),
		zap.String("serviceNumber", pending.FromPhone),
		zap.String("status", string(sent.Status)))

	return nil
}

func (d *Dispatcher) limiter(phone model.Phone) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.limiterLocked(phone)
}

// limiterLocked returns the limiter of phone, shared by every worker the number
// gets over the dispatcher's lifetime so a restarted worker still waits out
// the previous send.
func (d *Dispatcher) limiterLocked(phone model.Phone) *rate.Limiter {
	perMinute := phone.Rate
	if perMinute <= 0 {
		perMinute = d.cfg.DefaultRate
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))

	if l, ok := d.limiters[phone.Number]; ok {
		if l.Limit() != limit {
			l.SetLimit(limit)
		}
		return l
	}

	l := rate.NewLimiter(limit, 1)
	d.limiters[phone.Number] = l
	return l
}

// Active reports whether a worker is serving number.
func (d *Dispatcher) Active(number string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.workers[number]
	return ok
}
