package main

import (
	"context"
	"time"

	"github.com/Behyna/notification-services/internal/app"
	"github.com/Behyna/notification-services/internal/config"
	"github.com/Behyna/notification-services/internal/publishers"
	"github.com/Behyna/notification-services/internal/sms"
	"github.com/Behyna/notification-services/pkg/mq"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		app.Infrastructure,
		app.Repositories,
		app.Queue,
		app.SMS,
		fx.Provide(
			NewPendingRawPublisher,
			publishers.NewProxyPublisher,
			NewScheduler,
		),
		fx.Invoke(runScheduler),
	).Run()
}

func NewPendingRawPublisher(cfg *config.Config, smsService sms.Service, logger *zap.Logger) publishers.PendingRawPublisher {
	return publishers.NewPendingRawPublisher(smsService, cfg.Sweeper.StalePendingAfter, logger)
}

// job is a periodic publisher bound to its schedule.
type job struct {
	name    string
	spec    string
	publish func(ctx context.Context) error
}

func NewScheduler(cfg *config.Config, pending publishers.PendingRawPublisher, proxyCheck publishers.ProxyPublisher) []job {
	jobs := []job{
		{name: "parse_pending_raw", spec: cfg.Sweeper.PendingSpec, publish: pending.Publish},
	}
	if cfg.SMS.EnableProxy {
		jobs = append(jobs, job{name: "proxy_check", spec: cfg.Sweeper.ProxyCheckSpec, publish: proxyCheck.Publish})
	}
	return jobs
}

func runScheduler(jobs []job, rabbit *mq.RabbitMQ, logger *zap.Logger, lc fx.Lifecycle) error {
	appCtx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	for _, j := range jobs {
		if _, err := c.AddFunc(j.spec, func() {
			ctx, done := context.WithTimeout(appCtx, time.Minute)
			defer done()

			if err := j.publish(ctx); err != nil {
				logger.Error("scheduled job failed", zap.String("job", j.name), zap.Error(err))
			}
		}); err != nil {
			cancel()
			logger.Error("invalid schedule", zap.String("job", j.name), zap.String("spec", j.spec), zap.Error(err))
			return err
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			c.Start()
			logger.Info("sweeper started", zap.Int("jobs", len(jobs)))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping sweeper")
			cancel()

			select {
			case <-c.Stop().Done():
			case <-ctx.Done():
			}
			return rabbit.Close()
		},
	})

	return nil
}
