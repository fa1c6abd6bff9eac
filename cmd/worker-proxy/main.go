package main

import (
	"context"

	"github.com/Behyna/notification-services/internal/app"
	"github.com/Behyna/notification-services/internal/config"
	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/Behyna/notification-services/internal/repository"
	"github.com/Behyna/notification-services/internal/sms"
	"github.com/Behyna/notification-services/internal/sms/proxy"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		app.Infrastructure,
		app.Repositories,
		app.SMS,
		fx.Provide(NewProxyDispatcher),
		fx.Invoke(runProxyDispatcher),
	).Run()
}

func NewProxyDispatcher(cfg *config.Config, client redis.UniversalClient, phones repository.PhoneRepository,
	pending repository.PendingMessageRepository, sent repository.PhoneSentRepository, engine sms.Engine,
	logger *zap.Logger, m *metrics.Metrics,
) *proxy.Dispatcher {
	return proxy.NewDispatcher(proxy.Config{
		Channel:     cfg.SMS.DispatcherChannel,
		MaxWorkers:  cfg.SMS.MaxWorkers,
		DefaultRate: cfg.SMS.DefaultRate,
	}, client, proxy.Repositories{
		Phones:  phones,
		Pending: pending,
		Sent:    sent,
	}, engine, logger, m)
}

func runProxyDispatcher(dispatcher *proxy.Dispatcher, logger *zap.Logger, lc fx.Lifecycle) {
	appCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				if err := dispatcher.Run(appCtx); err != nil {
					logger.Error("proxy dispatcher exited", zap.Error(err))
				}
			}()

			logger.Info("proxy dispatcher started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping proxy dispatcher")
			cancel()

			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn("proxy workers did not finish before shutdown deadline")
			}
			return nil
		},
	})
}
