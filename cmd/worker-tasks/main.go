package main

import (
	"context"

	"github.com/Behyna/notification-services/internal/app"
	"github.com/Behyna/notification-services/internal/config"
	"github.com/Behyna/notification-services/internal/consumers"
	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/Behyna/notification-services/internal/notification"
	"github.com/Behyna/notification-services/internal/sms"
	"github.com/Behyna/notification-services/internal/tasks"
	"github.com/Behyna/notification-services/pkg/mq"
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
			app.NewMQConsumer,
			app.NewNotificationConfig,
			app.NewPushDispatcher,
			app.NewNotificationEngine,
			NewTaskConsumer,
		),
		fx.Invoke(runTaskConsumer),
	).Run()
}

func NewTaskConsumer(cfg *config.Config, smsService sms.Service, engine *notification.Engine,
	consumer mq.Consumer, logger *zap.Logger, m *metrics.Metrics,
) consumers.TaskConsumer {
	handlers := map[string]tasks.Handler{
		tasks.SendSMS:             smsService.HandleSendTask,
		tasks.ParseReceived:       smsService.HandleParseTask,
		tasks.SendNotification:    engine.HandleSendTask,
		tasks.ChainedNotification: engine.HandleChainedTask,
	}

	return consumers.NewTaskConsumer(consumers.TaskConfig{
		Queue:    cfg.Tasks.Queue,
		Prefetch: cfg.Tasks.Prefetch,
	}, handlers, consumer, logger, m)
}

func runTaskConsumer(taskCfg tasks.Config, taskConsumer consumers.TaskConsumer, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle,
) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology(tasks.Topology(taskCfg)); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}
			logger.Info("queues declared", zap.String("queue", taskCfg.Queue),
				zap.String("delay_queue", taskCfg.DelayQueue))

			go func() {
				if err := taskConsumer.Consume(appCtx); err != nil {
					logger.Error("consumer exited", zap.Error(err))
				}
			}()

			logger.Info("task consumer started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping task consumer")
			cancel()
			return rabbit.Close()
		},
	})
}
