package sms

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/repository"
	"github.com/Behyna/notification-services/pkg/smsprovider"
	"go.uber.org/zap"
)

// Webhook payload fields.
const (
	FieldAccountSid    = "AccountSid"
	FieldDirection     = "Direction"
	FieldCallStatus    = "CallStatus"
	FieldSmsStatus     = "SmsStatus"
	FieldSmsSid        = "SmsSid"
	FieldSmsMessageSid = "SmsMessageSid"
	FieldFrom          = "From"
	FieldTo            = "To"
	FieldBody          = "Body"
	FieldMediaURL      = "MediaUrl0"
	FieldErrorCode     = "ErrorCode"
	FieldErrorMessage  = "ErrorMessage"
)

type TwilioEngine struct {
	UnsupportedEngine

	cfg       Config
	provider  ProviderService
	signaler  Signaler
	alerter   Alerter
	receivers repository.PhoneReceiverRepository
	received  repository.PhoneReceivedRepository
	sent      repository.PhoneSentRepository
	txManager repository.TxManager
	logger    *zap.Logger
}

type TwilioDeps struct {
	Provider  ProviderService
	Signaler  Signaler
	Alerter   Alerter
	Receivers repository.PhoneReceiverRepository
	Received  repository.PhoneReceivedRepository
	Sent      repository.PhoneSentRepository
	TxManager repository.TxManager
}

func NewTwilioEngine(cfg Config, deps TwilioDeps, logger *zap.Logger) *TwilioEngine {
	return &TwilioEngine{
		cfg:       cfg,
		provider:  deps.Provider,
		signaler:  deps.Signaler,
		alerter:   deps.Alerter,
		receivers: deps.Receivers,
		received:  deps.Received,
		sent:      deps.Sent,
		txManager: deps.TxManager,
		logger:    logger,
	}
}

func (e *TwilioEngine) Send(ctx context.Context, sent *model.PhoneSent) error {
	return sendThroughProvider(ctx, e.cfg, e.provider, sent)
}

func (e *TwilioEngine) ServiceNumber() string {
	return e.cfg.DefaultNumber
}

func (e *TwilioEngine) AddToQueue(ctx context.Context, pending *model.PhonePendingMessage) error {
	return e.signaler.Signal(ctx, pending.FromPhone)
}

// ValidateMobile accepts numbers the carrier lookup classifies as mobile or voip.
func (e *TwilioEngine) ValidateMobile(ctx context.Context, number string) (bool, error) {
	res, err := e.provider.Lookup(ctx, number)
	if err != nil {
		switch smsprovider.CodeOf(err) {
		case smsprovider.ErrorCodeNotFound, smsprovider.ErrorCodeInvalidNumber:
			return false, nil
		}
		return false, errs.Transport("carrier lookup failed: %v", err)
	}

	switch res.Carrier.Type {
	case "mobile", "voip":
		return true, nil
	default:
		return false, nil
	}
}

func (e *TwilioEngine) ParseReceived(ctx context.Context, raw *model.PhoneReceivedRaw) error {
	if raw.Field(FieldAccountSid) != e.cfg.Account {
		e.alerter.Report(ctx, "Rejected inbound SMS payload", map[string]any{
			"rawID":      raw.ID,
			"accountSid": raw.Field(FieldAccountSid),
			"data":       map[string]any(raw.Data),
		})
		return errs.ProtocolRejection("account %q does not match", raw.Field(FieldAccountSid))
	}

	if raw.Field(FieldDirection) == "inbound" {
		// voice calls are answered by the webhook; nothing to record yet
		e.logger.Debug("Inbound call payload", zap.Int64("rawID", raw.ID), zap.String("callStatus", raw.Field(FieldCallStatus)))
		return nil
	}

	if raw.Field(FieldSmsStatus) == "received" {
		return e.parseMessage(ctx, raw)
	}

	return e.parseStatusCallback(ctx, raw)
}

func (e *TwilioEngine) parseMessage(ctx context.Context, raw *model.PhoneReceivedRaw) error {
	smsID := raw.Field(FieldSmsMessageSid)
	if smsID == "" {
		smsID = raw.Field(FieldSmsSid)
	}

	exists, err := e.received.ExistsBySMSID(ctx, smsID)
	if err != nil {
		return err
	}
	if exists {
		e.logger.Info("Duplicate inbound message ignored", zap.Int64("rawID", raw.ID), zap.String("smsID", smsID))
		return nil
	}

	from := normalize(raw.Field(FieldFrom), e.cfg.DefaultRegion)
	to := normalize(raw.Field(FieldTo), e.cfg.DefaultRegion)
	text := raw.Field(FieldBody)
	word := strings.ToLower(strings.TrimSpace(text))

	return e.txManager.WithTx(ctx, func(ctx context.Context) error {
		receiver, err := e.getOrCreateReceiver(ctx, from, to)
		if err != nil {
			return err
		}

		rawID := raw.ID
		message := &model.PhoneReceived{
			ReceiverID: receiver.ID,
			RawID:      &rawID,
			Text:       text,
			SMSID:      smsID,
			Type:       model.PhoneReceivedTypeText,
		}
		if media := raw.Field(FieldMediaURL); media != "" {
			message.Media = &media
		}

		blockChanged := false
		switch {
		case slices.Contains(e.cfg.StopWords, word):
			if !receiver.IsBlocked {
				receiver.IsBlocked = true
				message.IsOptOut = true
				blockChanged = true
			}
		case slices.Contains(e.cfg.StartWords, word):
			if receiver.IsBlocked {
				receiver.IsBlocked = false
				blockChanged = true
			}
		}

		if err := e.received.Create(ctx, message); err != nil {
			return err
		}

		if blockChanged {
			receiver.UpdatedAt = time.Now()
			if err := e.receivers.Update(ctx, receiver); err != nil {
				return err
			}
			e.logger.Info("Receiver subscription changed",
				zap.String("number", receiver.Number),
				zap.Bool("isBlocked", receiver.IsBlocked))
		}

		return nil
	})
}

func (e *TwilioEngine) parseStatusCallback(ctx context.Context, raw *model.PhoneReceivedRaw) error {
	smsID := raw.Field(FieldSmsSid)

	sent, err := e.sent.FindBySMSID(ctx, smsID)
	if errors.Is(err, repository.ErrNotFound) {
		e.logger.Info("Status callback for unknown message", zap.Int64("rawID", raw.ID), zap.String("smsID", smsID))
		return nil
	}
	if err != nil {
		return err
	}

	if status, ok := model.PhoneSentStatusFromProvider(raw.Field(FieldSmsStatus)); ok {
		sent.Status = status
	}
	if code := raw.Field(FieldErrorCode); code != "" {
		sent.ErrorCode = &code
	}
	if message := raw.Field(FieldErrorMessage); message != "" {
		sent.ErrorMessage = &message
	}
	sent.UpdatedAt = time.Now()

	if err := e.sent.Update(ctx, sent); err != nil {
		return err
	}

	if code := raw.Field(FieldErrorCode); code != "" && slices.Contains(e.cfg.ReportErrors, code) {
		e.alerter.Report(ctx, "SMS delivery error "+code, map[string]any{
			"rawID":        raw.ID,
			"sentID":       sent.ID,
			"smsID":        smsID,
			"errorCode":    code,
			"errorMessage": raw.Field(FieldErrorMessage),
		})
	}

	return nil
}

func (e *TwilioEngine) getOrCreateReceiver(ctx context.Context, number, serviceNumber string) (*model.PhoneReceiver, error) {
	receiver, err := e.receivers.FindByNumber(ctx, number)
	if err == nil {
		return receiver, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	receiver = &model.PhoneReceiver{Number: number, ServiceNumber: serviceNumber}
	if err := e.receivers.Create(ctx, receiver); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return e.receivers.FindByNumber(ctx, number)
		}
		return nil, err
	}

	return receiver, nil
}

func normalize(number, region string) string {
	formatted, err := FormatPhone(number, region)
	if err != nil {
		return number
	}
	return formatted
}
