package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/sms"
	"github.com/stretchr/testify/mock"
)

type Engine struct {
	mock.Mock
}

func (e *Engine) Send(ctx context.Context, sent *model.PhoneSent) error {
	args := e.Called(ctx, sent)
	return args.Error(0)
}

func (e *Engine) AddToQueue(ctx context.Context, pending *model.PhonePendingMessage) error {
	args := e.Called(ctx, pending)
	return args.Error(0)
}

func (e *Engine) ParseReceived(ctx context.Context, raw *model.PhoneReceivedRaw) error {
	args := e.Called(ctx, raw)
	return args.Error(0)
}

func (e *Engine) ValidateMobile(ctx context.Context, number string) (bool, error) {
	args := e.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (e *Engine) ServiceNumber() string {
	args := e.Called()
	return args.String(0)
}

type Signaler struct {
	mock.Mock
}

func (s *Signaler) Signal(ctx context.Context, number string) error {
	args := s.Called(ctx, number)
	return args.Error(0)
}

type Alerter struct {
	mock.Mock
}

func (a *Alerter) Report(ctx context.Context, subject string, details map[string]any) {
	a.Called(ctx, subject, details)
}

type SMSService struct {
	mock.Mock
}

func (s *SMSService) SendSMS(ctx context.Context, cmd sms.SendCommand) error {
	args := s.Called(ctx, cmd)
	return args.Error(0)
}

func (s *SMSService) SendMessage(ctx context.Context, cmd sms.SendCommand) (*model.PhoneSent, error) {
	args := s.Called(ctx, cmd)
	sent, _ := args.Get(0).(*model.PhoneSent)
	return sent, args.Error(1)
}

func (s *SMSService) HandleSendTask(ctx context.Context, payload json.RawMessage) error {
	args := s.Called(ctx, payload)
	return args.Error(0)
}

func (s *SMSService) ReceiveRaw(ctx context.Context, data map[string]string) (*model.PhoneReceivedRaw, error) {
	args := s.Called(ctx, data)
	raw, _ := args.Get(0).(*model.PhoneReceivedRaw)
	return raw, args.Error(1)
}

func (s *SMSService) ParseReceived(ctx context.Context, rawID int64) error {
	args := s.Called(ctx, rawID)
	return args.Error(0)
}

func (s *SMSService) HandleParseTask(ctx context.Context, payload json.RawMessage) error {
	args := s.Called(ctx, payload)
	return args.Error(0)
}

func (s *SMSService) ParsePending(ctx context.Context, olderThan time.Duration) (int, error) {
	args := s.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

func (s *SMSService) ValidateMobile(ctx context.Context, number string) (bool, error) {
	args := s.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (s *SMSService) FormatPhone(number string) (string, error) {
	args := s.Called(number)
	return args.String(0), args.Error(1)
}
