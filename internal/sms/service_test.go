package sms_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Behyna/notification-services/internal/errs"
	"github.com/Behyna/notification-services/internal/mocks"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/repository"
	"github.com/Behyna/notification-services/internal/sms"
	"github.com/Behyna/notification-services/internal/tasks"
	"github.com/Behyna/notification-services/pkg/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serviceFixture struct {
	engine    *mocks.Engine
	phones    *mocks.PhoneRepository
	receivers *mocks.PhoneReceiverRepository
	sent      *mocks.PhoneSentRepository
	pending   *mocks.PendingMessageRepository
	raw       *mocks.PhoneReceivedRawRepository
	txManager *mocks.TxManager
	runner    *mocks.Runner
	service   sms.Service
}

func newServiceFixture(cfg sms.Config) *serviceFixture {
	f := &serviceFixture{
		engine:    &mocks.Engine{},
		phones:    &mocks.PhoneRepository{},
		receivers: &mocks.PhoneReceiverRepository{},
		sent:      &mocks.PhoneSentRepository{},
		pending:   &mocks.PendingMessageRepository{},
		raw:       &mocks.PhoneReceivedRawRepository{},
		txManager: &mocks.TxManager{},
		runner:    &mocks.Runner{},
	}
	f.service = sms.NewService(cfg, f.engine, sms.Repositories{
		Phones:    f.phones,
		Receivers: f.receivers,
		Sent:      f.sent,
		Pending:   f.pending,
		Raw:       f.raw,
		TxManager: f.txManager,
	}, f.runner, zap.NewNop(), nil)
	return f
}

func serviceConfig() sms.Config {
	return sms.Config{Engine: sms.EngineTwilio, DefaultRegion: "US", DefaultPriority: 9999, Validation: sms.ValidationLocal}
}

func TestService_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked receiver fails without a transport call", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())
		receiver := &model.PhoneReceiver{ID: 3, Number: "+18023390050", ServiceNumber: "+18023390056", IsBlocked: true}

		f.receivers.On("FindByNumber", mock.Anything, "+18023390050").Return(receiver, nil)
		f.sent.On("Create", mock.Anything, mock.MatchedBy(func(s *model.PhoneSent) bool {
			return s.Status == model.PhoneSentStatusFailed && s.ReceiverID == 3
		})).Return(nil)

		sent, err := f.service.SendMessage(ctx, sms.SendCommand{To: "(802) 339-0050", Text: "hello"})

		require.NoError(t, err)
		assert.Equal(t, model.PhoneSentStatusFailed, sent.Status)
		f.engine.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		f.engine.AssertNotCalled(t, "AddToQueue", mock.Anything, mock.Anything)
		f.sent.AssertExpectations(t)
	})

	t.Run("new receiver gets the least used phone", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())

		f.receivers.On("FindByNumber", mock.Anything, "+18023390050").Return(nil, repository.ErrNotFound)
		f.engine.On("ServiceNumber").Return("")
		f.phones.On("Allocate", mock.Anything).Return(&model.Phone{Number: "+18023390056", UsedCount: 1}, nil)
		f.receivers.On("Create", mock.Anything, mock.MatchedBy(func(r *model.PhoneReceiver) bool {
			return r.ServiceNumber == "+18023390056"
		})).Return(nil)
		f.sent.On("Create", mock.Anything, mock.MatchedBy(func(s *model.PhoneSent) bool {
			return s.Status == model.PhoneSentStatusQueued && s.Text == "hello "
		})).Return(nil)
		f.engine.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*model.PhoneSent).Status = model.PhoneSentStatusSent
		})
		f.sent.On("Update", mock.Anything, mock.MatchedBy(func(s *model.PhoneSent) bool {
			return s.Status == model.PhoneSentStatusSent
		})).Return(nil)

		sent, err := f.service.SendMessage(ctx, sms.SendCommand{To: "+18023390050", Text: "hello \U0001F600"})

		require.NoError(t, err)
		assert.Equal(t, "+18023390056", sent.Receiver.ServiceNumber)
		f.phones.AssertExpectations(t)
		f.receivers.AssertExpectations(t)
		f.sent.AssertExpectations(t)
	})

	t.Run("proxy mode stores a pending row and signals", func(t *testing.T) {
		cfg := serviceConfig()
		cfg.EnableProxy = true
		f := newServiceFixture(cfg)
		receiver := &model.PhoneReceiver{ID: 3, Number: "+18023390050", ServiceNumber: "+18023390056"}

		f.receivers.On("FindByNumber", mock.Anything, "+18023390050").Return(receiver, nil)
		f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil)
		f.sent.On("Create", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*model.PhoneSent).ID = 7
		})
		f.pending.On("Create", mock.Anything, mock.MatchedBy(func(p *model.PhonePendingMessage) bool {
			return p.MessageID == 7 && p.FromPhone == "+18023390056" && p.Priority == 5
		})).Return(nil)
		f.engine.On("AddToQueue", mock.Anything, mock.MatchedBy(func(p *model.PhonePendingMessage) bool {
			return p.Message.ID == 7
		})).Return(nil)

		sent, err := f.service.SendMessage(ctx, sms.SendCommand{To: "+18023390050", Text: "hi", Priority: 5})

		require.NoError(t, err)
		assert.Equal(t, model.PhoneSentStatusQueued, sent.Status)
		f.pending.AssertExpectations(t)
		f.engine.AssertExpectations(t)
		f.engine.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("malformed number is a validation error", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())

		_, err := f.service.SendMessage(ctx, sms.SendCommand{To: "not-a-number", Text: "hi"})

		assert.True(t, errors.Is(err, errs.ErrValidation))
	})
}

func TestService_SendSMS(t *testing.T) {
	t.Run("async enqueues a send task with the default priority", func(t *testing.T) {
		cfg := serviceConfig()
		cfg.SendAsync = true
		f := newServiceFixture(cfg)

		f.runner.On("Enqueue", mock.Anything, tasks.SendSMS, mock.MatchedBy(func(cmd sms.SendCommand) bool {
			return cmd.To == "+18023390050" && cmd.Priority == 9999
		}), time.Duration(0)).Return(nil)

		err := f.service.SendSMS(context.Background(), sms.SendCommand{To: "+18023390050", Text: "hi"})

		require.NoError(t, err)
		f.runner.AssertExpectations(t)
	})
}

func TestService_HandleSendTask(t *testing.T) {
	t.Run("database errors are retried", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())
		f.receivers.On("FindByNumber", mock.Anything, "+18023390050").Return(nil, errors.New("connection refused"))

		payload, _ := json.Marshal(sms.SendCommand{To: "+18023390050", Text: "hi"})
		err := f.service.HandleSendTask(context.Background(), payload)

		var tempErr mq.RequeueError
		assert.True(t, errors.As(err, &tempErr))
	})

	t.Run("invalid numbers are dropped", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())

		payload, _ := json.Marshal(sms.SendCommand{To: "abc", Text: "hi"})
		err := f.service.HandleSendTask(context.Background(), payload)

		var tempErr mq.RequeueError
		assert.False(t, errors.As(err, &tempErr))
	})
}

func TestService_ReceiveRaw(t *testing.T) {
	f := newServiceFixture(serviceConfig())

	f.raw.On("Create", mock.Anything, mock.MatchedBy(func(r *model.PhoneReceivedRaw) bool {
		return r.Status == model.PhoneReceivedRawStatusPending && r.Field("Body") == "hi " && r.Field("From") == "+18023390050"
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*model.PhoneReceivedRaw).ID = 21
	})
	f.runner.On("Enqueue", mock.Anything, tasks.ParseReceived, sms.ParseCommand{RawID: 21}, time.Duration(0)).Return(nil)

	raw, err := f.service.ReceiveRaw(context.Background(), map[string]string{
		"From": "+18023390050",
		"Body": "hi ☀",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(21), raw.ID)
	f.raw.AssertExpectations(t)
	f.runner.AssertExpectations(t)
}

func TestService_ParseReceived(t *testing.T) {
	ctx := context.Background()

	pendingRaw := func() *model.PhoneReceivedRaw {
		return &model.PhoneReceivedRaw{ID: 9, Status: model.PhoneReceivedRawStatusPending}
	}

	t.Run("classified payload passes", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())
		f.raw.On("GetByID", mock.Anything, int64(9)).Return(pendingRaw(), nil)
		f.engine.On("ParseReceived", mock.Anything, mock.Anything).Return(nil)
		f.raw.On("Update", mock.Anything, mock.MatchedBy(func(r *model.PhoneReceivedRaw) bool {
			return r.Status == model.PhoneReceivedRawStatusPass
		})).Return(nil)

		require.NoError(t, f.service.ParseReceived(ctx, 9))
		f.raw.AssertExpectations(t)
	})

	t.Run("account mismatch is rejected", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())
		f.raw.On("GetByID", mock.Anything, int64(9)).Return(pendingRaw(), nil)
		f.engine.On("ParseReceived", mock.Anything, mock.Anything).Return(errs.ProtocolRejection("bad account"))
		f.raw.On("Update", mock.Anything, mock.MatchedBy(func(r *model.PhoneReceivedRaw) bool {
			return r.Status == model.PhoneReceivedRawStatusRejected && r.Exception == ""
		})).Return(nil)

		require.NoError(t, f.service.ParseReceived(ctx, 9))
		f.raw.AssertExpectations(t)
	})

	t.Run("errors fail with a trace", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())
		f.raw.On("GetByID", mock.Anything, int64(9)).Return(pendingRaw(), nil)
		f.engine.On("ParseReceived", mock.Anything, mock.Anything).Return(errors.New("boom"))
		f.raw.On("Update", mock.Anything, mock.MatchedBy(func(r *model.PhoneReceivedRaw) bool {
			return r.Status == model.PhoneReceivedRawStatusFail &&
				strings.Contains(r.Exception, "boom") &&
				strings.Contains(r.Exception, "goroutine")
		})).Return(nil)

		require.NoError(t, f.service.ParseReceived(ctx, 9))
		f.raw.AssertExpectations(t)
	})

	t.Run("panics fail with a trace", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())
		f.raw.On("GetByID", mock.Anything, int64(9)).Return(pendingRaw(), nil)
		f.engine.On("ParseReceived", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			panic("kaboom")
		})
		f.raw.On("Update", mock.Anything, mock.MatchedBy(func(r *model.PhoneReceivedRaw) bool {
			return r.Status == model.PhoneReceivedRawStatusFail && strings.Contains(r.Exception, "kaboom")
		})).Return(nil)

		require.NoError(t, f.service.ParseReceived(ctx, 9))
		f.raw.AssertExpectations(t)
	})

	t.Run("processed rows are skipped", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())
		f.raw.On("GetByID", mock.Anything, int64(9)).
			Return(&model.PhoneReceivedRaw{ID: 9, Status: model.PhoneReceivedRawStatusFail}, nil)

		require.NoError(t, f.service.ParseReceived(ctx, 9))
		f.engine.AssertNotCalled(t, "ParseReceived", mock.Anything, mock.Anything)
		f.raw.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestService_ParsePending(t *testing.T) {
	f := newServiceFixture(serviceConfig())

	f.raw.On("FindPendingBefore", mock.Anything, mock.AnythingOfType("time.Time"), mock.Anything).
		Return([]model.PhoneReceivedRaw{{ID: 1}, {ID: 2}}, nil)
	f.runner.On("Enqueue", mock.Anything, tasks.ParseReceived, mock.Anything, time.Duration(0)).Return(nil)

	queued, err := f.service.ParsePending(context.Background(), time.Minute)

	require.NoError(t, err)
	assert.Equal(t, 2, queued)
	f.runner.AssertNumberOfCalls(t, "Enqueue", 2)
}

func TestService_ValidateMobile(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled accepts anything", func(t *testing.T) {
		cfg := serviceConfig()
		cfg.Validation = sms.ValidationDisabled
		f := newServiceFixture(cfg)

		valid, err := f.service.ValidateMobile(ctx, "123")
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("local checks the format", func(t *testing.T) {
		f := newServiceFixture(serviceConfig())

		valid, err := f.service.ValidateMobile(ctx, "+12015550123")
		require.NoError(t, err)
		assert.True(t, valid)

		valid, err = f.service.ValidateMobile(ctx, "123")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("lookup asks the engine", func(t *testing.T) {
		cfg := serviceConfig()
		cfg.Validation = sms.ValidationLookup
		f := newServiceFixture(cfg)
		f.engine.On("ValidateMobile", mock.Anything, "+12015550123").Return(false, nil)

		valid, err := f.service.ValidateMobile(ctx, "(201) 555-0123")
		require.NoError(t, err)
		assert.False(t, valid)
		f.engine.AssertExpectations(t)
	})
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hi there", sms.CleanText("hi \U0001F680there✂"))
	assert.Equal(t, "plain", sms.CleanText("plain"))
}
