package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Behyna/notification-services/pkg/mailer"
	"github.com/Behyna/notification-services/pkg/mq"
	"github.com/Behyna/notification-services/pkg/mysql"
	"github.com/Behyna/notification-services/pkg/redisclient"
	"github.com/Behyna/notification-services/pkg/smsprovider"
	"github.com/spf13/viper"
)

type Config struct {
	API           API                `mapstructure:"api"`
	Auth          Auth               `mapstructure:"auth"`
	Database      mysql.Config       `mapstructure:"database"`
	RabbitMQ      mq.Config          `mapstructure:"rabbitmq"`
	Redis         redisclient.Config `mapstructure:"redis"`
	Tasks         Tasks              `mapstructure:"tasks"`
	Notifications Notifications      `mapstructure:"notifications"`
	Push          Push               `mapstructure:"push"`
	SMS           SMS                `mapstructure:"sms"`
	Email         Email              `mapstructure:"email"`
	Sweeper       Sweeper            `mapstructure:"sweeper"`
}

type API struct {
	Port string `mapstructure:"port"`
}

type Auth struct {
	Secret string `mapstructure:"secret"`
}

type Tasks struct {
	Queue      string `mapstructure:"queue"`
	DelayQueue string `mapstructure:"delay_queue"`
	Prefetch   int    `mapstructure:"prefetch"`
}

type Notifications struct {
	// Categories maps channel key to category name to human readable label.
	Categories     map[string]map[string]string `mapstructure:"categories"`
	UserCategories []UserCategories             `mapstructure:"user_categories"`
	History        bool                         `mapstructure:"history"`
	WebSocket      WebSocket                    `mapstructure:"websocket"`
	Definitions    []Definition                 `mapstructure:"definitions"`
}

// UserCategories is evaluated in order; the first user type whose predicate matches wins.
type UserCategories struct {
	UserType   string              `mapstructure:"user_type"`
	Categories map[string][]string `mapstructure:"categories"`
}

type WebSocket struct {
	Prefix   string `mapstructure:"prefix"`
	Facility string `mapstructure:"facility"`
}

type Definition struct {
	Name              string            `mapstructure:"name"`
	Kind              string            `mapstructure:"kind"`
	Category          string            `mapstructure:"category"`
	CheckSubscription *bool             `mapstructure:"check_subscription"`
	Message           string            `mapstructure:"message"`
	Title             string            `mapstructure:"title"`
	Description       string            `mapstructure:"description"`
	Data              map[string]string `mapstructure:"data"`
	Serializer        string            `mapstructure:"serializer"`
	SendAsync         bool              `mapstructure:"send_async"`
	EmailName         string            `mapstructure:"email_name"`
	Subject           string            `mapstructure:"subject"`
	Sender            string            `mapstructure:"sender"`
	Attachments       []string          `mapstructure:"attachments"`
	EmailCategories   []string          `mapstructure:"email_categories"`
	UnsubscribeGroup  int               `mapstructure:"unsubscribe_group"`
	Chain             []ChainEntry      `mapstructure:"chain"`
}

type ChainEntry struct {
	Notification string        `mapstructure:"notification"`
	Delay        time.Duration `mapstructure:"delay"`
	Transform    string        `mapstructure:"transform"`
	Condition    string        `mapstructure:"condition"`
}

type Push struct {
	APNSMaxSize int                `mapstructure:"apns_max_size"`
	APNSSandbox bool               `mapstructure:"apns_sandbox"`
	Timeout     time.Duration      `mapstructure:"timeout"`
	FCMURL      string             `mapstructure:"fcm_url"`
	GCMURL      string             `mapstructure:"gcm_url"`
	Apps        map[string]PushApp `mapstructure:"apps"`
}

type PushApp struct {
	APNSCertificate string `mapstructure:"apns_certificate"`
	APNSPassword    string `mapstructure:"apns_password"`
	APNSTopic       string `mapstructure:"apns_topic"`
	FCMAPIKey       string `mapstructure:"fcm_api_key"`
	GCMAPIKey       string `mapstructure:"gcm_api_key"`
}

type SMS struct {
	Engine            string             `mapstructure:"engine"`
	DefaultNumber     string             `mapstructure:"default_number"`
	SendAsync         bool               `mapstructure:"send_async"`
	EnableProxy       bool               `mapstructure:"enable_proxy"`
	DefaultRegion     string             `mapstructure:"default_region"`
	Validation        string             `mapstructure:"validation"`
	StopWords         []string           `mapstructure:"stop_words"`
	StartWords        []string           `mapstructure:"start_words"`
	ReportErrors      []string           `mapstructure:"report_errors"`
	DispatcherChannel string             `mapstructure:"dispatcher_channel"`
	DefaultPriority   int                `mapstructure:"default_priority"`
	DefaultRate       int                `mapstructure:"default_rate"`
	MaxWorkers        int                `mapstructure:"max_workers"`
	CallResponse      string             `mapstructure:"call_response"`
	MediaURL          string             `mapstructure:"media_url"`
	Twilio            smsprovider.Config `mapstructure:"twilio"`
	SNS               SNS                `mapstructure:"sns"`
}

type SNS struct {
	Enable          bool   `mapstructure:"enable"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type Email struct {
	SMTP        mailer.Config `mapstructure:"smtp"`
	From        string        `mapstructure:"from"`
	TemplateDir string        `mapstructure:"template_dir"`
	Premailer   bool          `mapstructure:"premailer"`
	Protocol    string        `mapstructure:"protocol"`
	Domain      string        `mapstructure:"domain"`
	StaticURL   string        `mapstructure:"static_url"`
	Admins      []string      `mapstructure:"admins"`
}

type Sweeper struct {
	PendingSpec       string        `mapstructure:"pending_spec"`
	ProxyCheckSpec    string        `mapstructure:"proxy_check_spec"`
	StalePendingAfter time.Duration `mapstructure:"stale_pending_after"`
}

func Load() (cfg *Config, err error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	err = v.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", ":8080")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("tasks.queue", "notifications.tasks")
	v.SetDefault("tasks.delay_queue", "notifications.tasks.delay")
	v.SetDefault("tasks.prefetch", 10)

	v.SetDefault("notifications.history", true)
	v.SetDefault("notifications.websocket.prefix", "ws")
	v.SetDefault("notifications.websocket.facility", "all")

	v.SetDefault("push.apns_max_size", 2048)
	v.SetDefault("push.timeout", 10*time.Second)
	v.SetDefault("push.fcm_url", "https://fcm.googleapis.com/fcm/send")
	v.SetDefault("push.gcm_url", "https://android.googleapis.com/gcm/send")

	v.SetDefault("sms.engine", "twilio")
	v.SetDefault("sms.default_region", "US")
	v.SetDefault("sms.validation", "local")
	v.SetDefault("sms.stop_words", []string{"stop", "unsubscribe", "cancel", "quit", "end"})
	v.SetDefault("sms.start_words", []string{"start"})
	v.SetDefault("sms.report_errors", []string{"30001", "30006", "30007", "30009"})
	v.SetDefault("sms.dispatcher_channel", "__un_twilio_dispatcher")
	v.SetDefault("sms.default_priority", 9999)
	v.SetDefault("sms.default_rate", 6)
	v.SetDefault("sms.max_workers", 32)
	v.SetDefault("sms.call_response",
		`<?xml version="1.0" encoding="UTF-8"?><Response><Say>Hello, thanks for calling. To leave a message wait for the tone.</Say><Record timeout="30" /></Response>`)
	v.SetDefault("sms.twilio.url", "https://api.twilio.com/2010-04-01")
	v.SetDefault("sms.twilio.lookup_url", "https://lookups.twilio.com/v1")
	v.SetDefault("sms.twilio.timeout", 10*time.Second)
	v.SetDefault("sms.twilio.max_retry", 3)

	v.SetDefault("email.template_dir", "./templates/emails")
	v.SetDefault("email.premailer", true)
	v.SetDefault("email.protocol", "https")

	v.SetDefault("sweeper.pending_spec", "@every 1m")
	v.SetDefault("sweeper.proxy_check_spec", "@every 5m")
	v.SetDefault("sweeper.stale_pending_after", time.Minute)
}
