package sms

import (
	"strings"

	"github.com/Behyna/notification-services/internal/config"
)

// Validation modes for ValidateMobile.
const (
	ValidationDisabled = "disabled"
	ValidationLocal    = "local"
	ValidationLookup   = "lookup"
)

type Config struct {
	Engine string
	// APIEnabled false marks messages sent without calling the provider.
	APIEnabled      bool
	Account         string
	DefaultNumber   string
	DefaultRegion   string
	Validation      string
	StopWords       []string
	StartWords      []string
	ReportErrors    []string
	EnableProxy     bool
	SendAsync       bool
	DefaultPriority int
	MediaURL        string
}

func NewConfig(c config.SMS) Config {
	cfg := Config{
		Engine:          strings.ToLower(c.Engine),
		Account:         c.Twilio.Account,
		DefaultNumber:   c.DefaultNumber,
		DefaultRegion:   c.DefaultRegion,
		Validation:      c.Validation,
		StopWords:       lower(c.StopWords),
		StartWords:      lower(c.StartWords),
		ReportErrors:    c.ReportErrors,
		EnableProxy:     c.EnableProxy,
		SendAsync:       c.SendAsync,
		DefaultPriority: c.DefaultPriority,
		MediaURL:        c.MediaURL,
	}

	switch cfg.Engine {
	case EngineAmazonSNS:
		cfg.APIEnabled = c.SNS.Enable
	default:
		cfg.APIEnabled = c.Twilio.Enable
	}

	return cfg
}

func lower(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToLower(strings.TrimSpace(w)))
	}
	return out
}
