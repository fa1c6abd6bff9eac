package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/internal/metrics"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/repository"
	"github.com/Behyna/notification-services/internal/tasks"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const sweepBatchSize = 500

type Service interface {
	// SendSMS sends now or through the task queue depending on cmd.Async.
	SendSMS(ctx context.Context, cmd SendCommand) error
	SendMessage(ctx context.Context, cmd SendCommand) (*model.PhoneSent, error)
	HandleSendTask(ctx context.Context, payload json.RawMessage) error

	ReceiveRaw(ctx context.Context, data map[string]string) (*model.PhoneReceivedRaw, error)
	ParseReceived(ctx context.Context, rawID int64) error
	HandleParseTask(ctx context.Context, payload json.RawMessage) error
	// ParsePending requeues pending raw payloads older than olderThan and returns how many were queued.
	ParsePending(ctx context.Context, olderThan time.Duration) (int, error)

	ValidateMobile(ctx context.Context, number string) (bool, error)
	FormatPhone(number string) (string, error)
}

type Repositories struct {
	Phones    repository.PhoneRepository
	Receivers repository.PhoneReceiverRepository
	Sent      repository.PhoneSentRepository
	Pending   repository.PendingMessageRepository
	Raw       repository.PhoneReceivedRawRepository
	TxManager repository.TxManager
}

type service struct {
	cfg     Config
	engine  Engine
	repos   Repositories
	runner  tasks.Runner
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewService(cfg Config, engine Engine, repos Repositories, runner tasks.Runner, logger *zap.Logger,
	metrics *metrics.Metrics) Service {
	return &service{cfg: cfg, engine: engine, repos: repos, runner: runner, logger: logger, metrics: metrics}
}

func (s *service) SendSMS(ctx context.Context, cmd SendCommand) error {
	async := s.cfg.SendAsync
	if cmd.Async != nil {
		async = *cmd.Async
	}
	if cmd.Priority == 0 {
		cmd.Priority = s.cfg.DefaultPriority
	}

	if async {
		return s.runner.Enqueue(ctx, tasks.SendSMS, cmd, 0)
	}

	_, err := s.SendMessage(ctx, cmd)
	return err
}

func (s *service) SendMessage(ctx context.Context, cmd SendCommand) (*model.PhoneSent, error) {
	number, err := s.FormatPhone(cmd.To)
	if err != nil {
		return nil, err
	}

	receiver, err := s.findOrCreateReceiver(ctx, number)
	if err != nil {
		s.logger.Error("Failed to resolve phone receiver", zap.Error(err), zap.String("to", number))
		return nil, err
	}

	sent := &model.PhoneSent{
		ReceiverID: receiver.ID,
		Receiver:   *receiver,
		Text:       CleanText(cmd.Text),
		Status:     model.PhoneSentStatusQueued,
		MediaRaw:   cmd.Media,
		Media:      cmd.Media,
	}

	if receiver.IsBlocked {
		sent.MarkFailed("receiver is blocked")
		if err := s.repos.Sent.Create(ctx, sent); err != nil {
			return nil, err
		}
		s.logger.Info("Receiver is blocked, message not sent",
			zap.Int64("messageID", sent.ID),
			zap.String("to", number))
		s.metrics.RecordSMSSent(string(sent.Status))
		return sent, nil
	}

	if s.cfg.EnableProxy {
		return sent, s.enqueue(ctx, sent, cmd.Priority)
	}

	if err := s.repos.Sent.Create(ctx, sent); err != nil {
		return nil, err
	}

	if err := s.engine.Send(ctx, sent); err != nil {
		s.logger.Error("Failed to send SMS", zap.Error(err), zap.Int64("messageID", sent.ID))
		sent.MarkFailed(err.Error())
	}
	sent.UpdatedAt = time.Now()

	if err := s.repos.Sent.Update(ctx, sent); err != nil {
		s.logger.Error("Failed to update message after send attempt",
			zap.Error(err),
			zap.Int64("messageID", sent.ID),
			zap.String("status", string(sent.Status)))
		return sent, err
	}

	s.metrics.RecordSMSSent(string(sent.Status))
	return sent, nil
}

func (s *service) enqueue(ctx context.Context, sent *model.PhoneSent, priority int) error {
	if priority == 0 {
		priority = model.DefaultPendingPriority
	}

	pending := &model.PhonePendingMessage{
		FromPhone: sent.Receiver.ServiceNumber,
		Priority:  priority,
	}

	err := s.repos.TxManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repos.Sent.Create(ctx, sent); err != nil {
			return err
		}
		pending.MessageID = sent.ID
		return s.repos.Pending.Create(ctx, pending)
	})
	if err != nil {
		s.logger.Error("Failed to queue message for proxy",
			zap.Error(err),
			zap.String("serviceNumber", pending.FromPhone))
		return err
	}

	pending.Message = *sent
	if err := s.engine.AddToQueue(ctx, pending); err != nil {
		// the proxy check sweep signals the number again
		s.logger.Warn("Failed to signal proxy dispatcher",
			zap.Error(err),
			zap.Int64("messageID", sent.ID),
			zap.String("serviceNumber", pending.FromPhone))
	}

	return nil
}

func (s *service) findOrCreateReceiver(ctx context.Context, number string) (*model.PhoneReceiver, error) {
	receiver, err := s.repos.Receivers.FindByNumber(ctx, number)
	if err == nil {
		return receiver, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	serviceNumber := s.engine.ServiceNumber()
	phone, err := s.repos.Phones.Allocate(ctx)
	switch {
	case err == nil:
		serviceNumber = phone.Number
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Warn("No service number available, using engine default", zap.String("to", number))
	default:
		return nil, err
	}

	receiver = &model.PhoneReceiver{Number: number, ServiceNumber: serviceNumber}
	if err := s.repos.Receivers.Create(ctx, receiver); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.repos.Receivers.FindByNumber(ctx, number)
		}
		return nil, err
	}

	return receiver, nil
}

func (s *service) HandleSendTask(ctx context.Context, payload json.RawMessage) error {
	var cmd SendCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		s.logger.Error("Failed to decode send task", zap.Error(err))
		return nil
	}

	_, err := s.SendMessage(ctx, cmd)
	return errs.Retryable(err)
}

func (s *service) ReceiveRaw(ctx context.Context, data map[string]string) (*model.PhoneReceivedRaw, error) {
	payload := make(datatypes.JSONMap, len(data))
	for k, v := range data {
		payload[k] = v
	}
	if body, ok := data[FieldBody]; ok {
		payload[FieldBody] = CleanText(body)
	}

	raw := &model.PhoneReceivedRaw{Status: model.PhoneReceivedRawStatusPending, Data: payload}
	if err := s.repos.Raw.Create(ctx, raw); err != nil {
		s.logger.Error("Failed to store inbound payload", zap.Error(err))
		return nil, err
	}

	if err := s.runner.Enqueue(ctx, tasks.ParseReceived, ParseCommand{RawID: raw.ID}, 0); err != nil {
		// left pending; the sweep picks it up
		s.logger.Warn("Failed to enqueue parse task", zap.Error(err), zap.Int64("rawID", raw.ID))
	}

	return raw, nil
}

func (s *service) ParseReceived(ctx context.Context, rawID int64) error {
	raw, err := s.repos.Raw.GetByID(ctx, rawID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Inbound payload not found", zap.Int64("rawID", rawID))
			return nil
		}
		return err
	}

	if raw.Status != model.PhoneReceivedRawStatusPending {
		s.logger.Debug("Inbound payload already processed",
			zap.Int64("rawID", rawID),
			zap.String("status", string(raw.Status)))
		return nil
	}

	err = s.classify(ctx, raw)
	switch {
	case err == nil:
		raw.Status = model.PhoneReceivedRawStatusPass
	case errors.Is(err, errs.ErrProtocolRejection):
		s.logger.Warn("Inbound payload rejected", zap.Int64("rawID", rawID), zap.Error(err))
		raw.Status = model.PhoneReceivedRawStatusRejected
	default:
		s.logger.Error("Failed to parse inbound payload", zap.Int64("rawID", rawID), zap.Error(err))
		raw.Status = model.PhoneReceivedRawStatusFail
		raw.Exception = err.Error()
	}
	raw.UpdatedAt = time.Now()

	s.metrics.RecordSMSReceived(string(raw.Status))
	return s.repos.Raw.Update(ctx, raw)
}

func (s *service) classify(ctx context.Context, raw *model.PhoneReceivedRaw) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v\n%s", errs.ErrParseFailure, r, debug.Stack())
		}
	}()

	if err := s.engine.ParseReceived(ctx, raw); err != nil {
		if errors.Is(err, errs.ErrProtocolRejection) {
			return err
		}
		return fmt.Errorf("%w: %v\n%s", errs.ErrParseFailure, err, debug.Stack())
	}

	return nil
}

func (s *service) HandleParseTask(ctx context.Context, payload json.RawMessage) error {
	var cmd ParseCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		s.logger.Error("Failed to decode parse task", zap.Error(err))
		return nil
	}

	return errs.Retryable(s.ParseReceived(ctx, cmd.RawID))
}

func (s *service) ParsePending(ctx context.Context, olderThan time.Duration) (int, error) {
	raws, err := s.repos.Raw.FindPendingBefore(ctx, time.Now().Add(-olderThan), sweepBatchSize)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, raw := range raws {
		if err := s.runner.Enqueue(ctx, tasks.ParseReceived, ParseCommand{RawID: raw.ID}, 0); err != nil {
			return queued, err
		}
		queued++
	}

	return queued, nil
}

func (s *service) ValidateMobile(ctx context.Context, number string) (bool, error) {
	switch s.cfg.Validation {
	case ValidationDisabled:
		return true, nil
	case ValidationLookup:
		if !IsValidNumber(number, s.cfg.DefaultRegion) {
			return false, nil
		}
		formatted, err := s.FormatPhone(number)
		if err != nil {
			return false, nil
		}
		return s.engine.ValidateMobile(ctx, formatted)
	default:
		return IsValidNumber(number, s.cfg.DefaultRegion), nil
	}
}

func (s *service) FormatPhone(number string) (string, error) {
	return FormatPhone(number, s.cfg.DefaultRegion)
}

// NewEngine picks the back-end named by cfg.Engine.
func NewEngine(cfg Config, twilio *TwilioEngine, sns *SNSEngine) (Engine, error) {
	switch cfg.Engine {
	case EngineTwilio, "":
		return twilio, nil
	case EngineAmazonSNS:
		if sns == nil {
			return nil, errs.Configuration("sns engine is not configured")
		}
		return sns, nil
	default:
		return nil, errs.Configuration("unknown sms engine %q", cfg.Engine)
	}
}
