package sms

import (
	"context"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/internal/model"
)

const (
	EngineTwilio    = "twilio"
	EngineAmazonSNS = "amazonsns"
)

// Engine is an SMS provider back-end.
type Engine interface {
	// Send transmits sent and records the outcome on it; the caller persists it.
	Send(ctx context.Context, sent *model.PhoneSent) error
	// AddToQueue signals the proxy dispatcher that pending is waiting.
	AddToQueue(ctx context.Context, pending *model.PhonePendingMessage) error
	ParseReceived(ctx context.Context, raw *model.PhoneReceivedRaw) error
	ValidateMobile(ctx context.Context, number string) (bool, error)
	// ServiceNumber is the fallback sender when no Phone can be allocated.
	ServiceNumber() string
}

// UnsupportedEngine fails every operation with errs.ErrNotSupported. Concrete
// engines embed it and override what they implement.
type UnsupportedEngine struct{}

func (UnsupportedEngine) Send(ctx context.Context, sent *model.PhoneSent) error {
	return errs.NotSupported("send")
}

func (UnsupportedEngine) AddToQueue(ctx context.Context, pending *model.PhonePendingMessage) error {
	return errs.NotSupported("add_to_queue")
}

func (UnsupportedEngine) ParseReceived(ctx context.Context, raw *model.PhoneReceivedRaw) error {
	return errs.NotSupported("parse_received")
}

func (UnsupportedEngine) ValidateMobile(ctx context.Context, number string) (bool, error) {
	return false, errs.NotSupported("validate_mobile")
}

func (UnsupportedEngine) ServiceNumber() string {
	return ""
}
