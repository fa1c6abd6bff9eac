package main

import (
	"context"
	"time"

	"github.com/Behyna/notification-services/internal/api"
	v1 "github.com/Behyna/notification-services/internal/api/v1"
	"github.com/Behyna/notification-services/internal/api/v1/middleware"
	"github.com/Behyna/notification-services/internal/api/validator"
	"github.com/Behyna/notification-services/internal/app"
	"github.com/Behyna/notification-services/internal/config"
	errorhandler "github.com/Behyna/notification-services/internal/error"
	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/service"
	"github.com/Behyna/notification-services/pkg/mq"
	"github.com/Behyna/notification-services/pkg/mysql"
	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		app.Infrastructure,
		app.Repositories,
		app.Queue,
		app.SMS,
		fx.Provide(
			NewFiberApp,
			playground.New,
			validator.NewXValidator,
			app.NewNotificationConfig,
			service.NewDeviceService,
			service.NewSubscriptionService,
			api.NewHandler,
			v1.NewHandler,
		),
		fx.Invoke(migrate, startServer),
	).Run()
}

func NewFiberApp(logger *zap.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorhandler.ErrorHandler(logger)})
	app.Use(metrics.HTTPMetricsMiddleware(m, logger))
	return app
}

func migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := mysql.Migrate(db, model.All()...); err != nil {
		logger.Error("schema migration failed", zap.Error(err))
		return err
	}
	return nil
}

func startServer(app *fiber.App, handler *api.Handler, v1Handler *v1.Handler, cfg *config.Config,
	db *gorm.DB, m *metrics.Metrics, rabbit *mq.RabbitMQ, logger *zap.Logger, lc fx.Lifecycle,
) {
	api.SetupRoutes(app, handler, v1Handler, middleware.JWTAuth(cfg.Auth.Secret))

	appCtx, cancel := context.WithCancel(context.Background())
	collector := metrics.NewDatabaseCollector(m, logger, db)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go collector.Run(appCtx, 15*time.Second)
			go func() {
				if err := app.Listen(cfg.API.Port); err != nil {
					logger.Error("http server exited", zap.Error(err))
				}
			}()

			logger.Info("http server started", zap.String("port", cfg.API.Port))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			if err := app.ShutdownWithContext(ctx); err != nil {
				return err
			}
			return rabbit.Close()
		},
	})
}
