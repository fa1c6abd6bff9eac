// Package app holds the fx constructors shared by the service binaries.
package app

import (
	"context"
	"os"
	"time"

	"github.com/Behyna/notification-services/internal/config"
	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/Behyna/notification-services/internal/notification"
	"github.com/Behyna/notification-services/internal/push"
	"github.com/Behyna/notification-services/internal/repository"
	"github.com/Behyna/notification-services/internal/sms"
	"github.com/Behyna/notification-services/internal/tasks"
	"github.com/Behyna/notification-services/pkg/httpclient"
	"github.com/Behyna/notification-services/pkg/mailer"
	"github.com/Behyna/notification-services/pkg/mq"
	"github.com/Behyna/notification-services/pkg/mysql"
	"github.com/Behyna/notification-services/pkg/redisclient"
	"github.com/Behyna/notification-services/pkg/smsprovider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infrastructure provides config, logging, metrics and the storage connections
// every binary needs.
var Infrastructure = fx.Options(
	fx.Provide(
		config.Load,
		zap.NewProduction,
		NewRegistry,
		NewGatherer,
		NewMetrics,
		NewConnectionDB,
		NewRedisClient,
	),
)

// Repositories provides every repository over the shared *gorm.DB.
var Repositories = fx.Options(
	fx.Provide(
		repository.NewDeviceRepository,
		repository.NewHistoryRepository,
		repository.NewPendingMessageRepository,
		repository.NewPhoneRepository,
		repository.NewPhoneReceivedRawRepository,
		repository.NewPhoneReceivedRepository,
		repository.NewPhoneReceiverRepository,
		repository.NewPhoneSentRepository,
		repository.NewUnsubscribedUserRepository,
		repository.NewTransactionManager,
	),
)

// Queue provides the RabbitMQ connection, a publisher and the task runner on top of it.
var Queue = fx.Options(
	fx.Provide(
		NewMQConnection,
		NewMQPublisher,
		NewTaskConfig,
		NewTaskRunner,
	),
)

// SMS provides the SMS service with the engine selected by configuration.
var SMS = fx.Options(
	fx.Provide(
		NewMailer,
		NewSMSConfig,
		NewSMSProvider,
		NewSMSEngine,
		NewSMSService,
		NewSignaler,
	),
)

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return reg
}

func NewGatherer(reg *prometheus.Registry) prometheus.Gatherer {
	return reg
}

func NewMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.NewMetrics(reg)
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewRedisClient(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (redis.UniversalClient, error) {
	client, err := redisclient.NewClient(context.Background(), cfg.Redis, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}

func NewMQConsumer(rabbitMQ *mq.RabbitMQ) (mq.Consumer, error) {
	return rabbitMQ.CreateConsumer()
}

// NewTaskConfig pre-declares a delay queue for every chain delay in the definitions.
func NewTaskConfig(cfg *config.Config) tasks.Config {
	var delays []time.Duration
	for _, def := range cfg.Notifications.Definitions {
		for _, entry := range def.Chain {
			if entry.Delay > 0 {
				delays = append(delays, entry.Delay)
			}
		}
	}
	return tasks.Config{Queue: cfg.Tasks.Queue, DelayQueue: cfg.Tasks.DelayQueue, Delays: delays}
}

func NewTaskRunner(publisher mq.Publisher, cfg tasks.Config, logger *zap.Logger) tasks.Runner {
	return tasks.NewRunner(publisher, cfg, logger)
}

func NewMailer(cfg *config.Config, logger *zap.Logger) mailer.Mailer {
	return mailer.NewSMTPMailer(cfg.Email.SMTP, cfg.Email.From, logger)
}

func NewSMSConfig(cfg *config.Config) sms.Config {
	return sms.NewConfig(cfg.SMS)
}

// NewSMSProvider builds the HTTP or SNS client behind the configured engine.
func NewSMSProvider(cfg *config.Config, smsCfg sms.Config, logger *zap.Logger, metrics *metrics.Metrics) (sms.ProviderService, error) {
	if smsCfg.Engine == sms.EngineAmazonSNS {
		client, err := smsprovider.NewSNSClient(context.Background(), smsprovider.SNSConfig{
			Region:          cfg.SMS.SNS.Region,
			AccessKeyID:     cfg.SMS.SNS.AccessKeyID,
			SecretAccessKey: cfg.SMS.SNS.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return sms.NewProviderService(smsprovider.NewSNSProvider(client), cfg.SMS.Twilio, logger, metrics), nil
	}

	client := httpclient.NewHTTPClient(cfg.SMS.Twilio.Timeout)
	return sms.NewProviderService(smsprovider.NewTwilioProvider(cfg.SMS.Twilio, client), cfg.SMS.Twilio, logger, metrics), nil
}

func NewSignaler(cfg *config.Config, client redis.UniversalClient) sms.Signaler {
	return sms.NewSignaler(client, cfg.SMS.DispatcherChannel)
}

type SMSEngineParams struct {
	fx.In

	Config    sms.Config
	Provider  sms.ProviderService
	Signaler  sms.Signaler
	Mailer    mailer.Mailer
	Receivers repository.PhoneReceiverRepository
	Received  repository.PhoneReceivedRepository
	Sent      repository.PhoneSentRepository
	TxManager repository.TxManager
	Cfg       *config.Config
	Logger    *zap.Logger
}

func NewSMSEngine(p SMSEngineParams) (sms.Engine, error) {
	if p.Config.Engine == sms.EngineAmazonSNS {
		return sms.NewEngine(p.Config, nil, sms.NewSNSEngine(p.Config, p.Provider))
	}

	twilio := sms.NewTwilioEngine(p.Config, sms.TwilioDeps{
		Provider:  p.Provider,
		Signaler:  p.Signaler,
		Alerter:   sms.NewMailAlerter(p.Mailer, p.Cfg.Email.Admins, p.Logger),
		Receivers: p.Receivers,
		Received:  p.Received,
		Sent:      p.Sent,
		TxManager: p.TxManager,
	}, p.Logger)

	return sms.NewEngine(p.Config, twilio, nil)
}

type SMSServiceParams struct {
	fx.In

	Config    sms.Config
	Engine    sms.Engine
	Phones    repository.PhoneRepository
	Receivers repository.PhoneReceiverRepository
	Sent      repository.PhoneSentRepository
	Pending   repository.PendingMessageRepository
	Raw       repository.PhoneReceivedRawRepository
	TxManager repository.TxManager
	Runner    tasks.Runner
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

func NewSMSService(p SMSServiceParams) sms.Service {
	return sms.NewService(p.Config, p.Engine, sms.Repositories{
		Phones:    p.Phones,
		Receivers: p.Receivers,
		Sent:      p.Sent,
		Pending:   p.Pending,
		Raw:       p.Raw,
		TxManager: p.TxManager,
	}, p.Runner, p.Logger, p.Metrics)
}

func NewNotificationConfig(cfg *config.Config) (notification.Config, error) {
	return notification.NewConfig(cfg.Notifications, notification.DefaultPredicates())
}

func NewPushDispatcher(cfg *config.Config, logger *zap.Logger, metrics *metrics.Metrics) push.Dispatcher {
	apps := make(map[string]push.App, len(cfg.Push.Apps))
	for id, app := range cfg.Push.Apps {
		apps[id] = push.App{
			APNSCertificate: app.APNSCertificate,
			APNSPassword:    app.APNSPassword,
			APNSTopic:       app.APNSTopic,
			FCMAPIKey:       app.FCMAPIKey,
			GCMAPIKey:       app.GCMAPIKey,
		}
	}

	pushCfg := push.Config{
		APNSMaxSize: cfg.Push.APNSMaxSize,
		APNSSandbox: cfg.Push.APNSSandbox,
		FCMURL:      cfg.Push.FCMURL,
		GCMURL:      cfg.Push.GCMURL,
		Apps:        apps,
	}
	client := httpclient.NewHTTPClient(cfg.Push.Timeout)

	return push.NewDispatcher(
		push.NewAPNSSender(pushCfg, nil),
		push.NewFCMSender(pushCfg, client),
		push.NewGCMSender(pushCfg, client),
		logger, metrics,
	)
}

type NotificationEngineParams struct {
	fx.In

	Cfg     *config.Config
	Config  notification.Config
	Unsubs  repository.UnsubscribedUserRepository
	History repository.HistoryRepository
	Devices repository.DeviceRepository
	Runner  tasks.Runner
	Redis   redis.UniversalClient
	SMS     sms.Service
	Push    push.Dispatcher
	Mailer  mailer.Mailer
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// NewNotificationEngine loads the definition registry and wires every delivery channel.
func NewNotificationEngine(p NotificationEngineParams) (*notification.Engine, error) {
	registry, err := notification.LoadRegistry(p.Cfg.Notifications.Definitions)
	if err != nil {
		return nil, err
	}

	renderer := notification.NewEmailRenderer(os.DirFS(p.Cfg.Email.TemplateDir), notification.RendererConfig{
		Premailer: p.Cfg.Email.Premailer,
		Protocol:  p.Cfg.Email.Protocol,
		Domain:    p.Cfg.Email.Domain,
		StaticURL: p.Cfg.Email.StaticURL,
	})

	channels := []notification.Channel{
		notification.NewWebSocketChannel(notification.WebSocketConfig{
			Prefix:   p.Cfg.Notifications.WebSocket.Prefix,
			Facility: p.Cfg.Notifications.WebSocket.Facility,
		}, p.Redis, p.Logger),
		notification.NewSMSChannel(p.SMS, p.Logger),
		notification.NewPushChannel(p.Devices, p.Push, p.Logger),
		notification.NewEmailChannel(renderer, p.Mailer, p.Cfg.Email.From, p.Logger),
	}

	return notification.NewEngine(p.Config, notification.EngineDeps{
		Registry:   registry,
		Unsubs:     p.Unsubs,
		History:    p.History,
		Runner:     p.Runner,
		Strategies: notification.NewStrategies(),
		Channels:   channels,
	}, p.Logger, p.Metrics), nil
}
