package proxy_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Behyna/notification-services/internal/mocks"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/repository"
	"github.com/Behyna/notification-services/internal/sms"
	"github.com/Behyna/notification-services/internal/sms/proxy"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const serviceNumber = "+18023390056"

type fixture struct {
	phones  *mocks.PhoneRepository
	pending *mocks.PendingMessageRepository
	sent    *mocks.PhoneSentRepository
	engine  *mocks.Engine
}

func newFixture() *fixture {
	return &fixture{
		phones:  &mocks.PhoneRepository{},
		pending: &mocks.PendingMessageRepository{},
		sent:    &mocks.PhoneSentRepository{},
		engine:  &mocks.Engine{},
	}
}

func (f *fixture) dispatcher(client redis.UniversalClient) *proxy.Dispatcher {
	return proxy.NewDispatcher(proxy.Config{Channel: "__un_twilio_dispatcher", MaxWorkers: 2, DefaultRate: 6},
		client, proxy.Repositories{Phones: f.phones, Pending: f.pending, Sent: f.sent},
		f.engine, zap.NewNop(), nil)
}

func queued(id int64, status model.PhoneSentStatus) *model.PhonePendingMessage {
	return &model.PhonePendingMessage{
		ID:        id,
		FromPhone: serviceNumber,
		MessageID: id * 10,
		Message:   model.PhoneSent{ID: id * 10, Status: status},
	}
}

func TestDispatcher_Drain(t *testing.T) {
	ctx := context.Background()
	phone := model.Phone{Number: serviceNumber, Rate: 6000}

	t.Run("sends queued messages until the queue is empty", func(t *testing.T) {
		f := newFixture()

		f.pending.On("Next", mock.Anything, serviceNumber).Return(queued(1, model.PhoneSentStatusQueued), nil).Once()
		f.pending.On("Next", mock.Anything, serviceNumber).Return(queued(2, model.PhoneSentStatusPending), nil).Once()
		f.pending.On("Next", mock.Anything, serviceNumber).Return(nil, repository.ErrNotFound)
		f.engine.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*model.PhoneSent).Status = model.PhoneSentStatusSent
		})
		f.sent.On("Update", mock.Anything, mock.MatchedBy(func(s *model.PhoneSent) bool {
			return s.Status == model.PhoneSentStatusSent
		})).Return(nil)
		f.pending.On("Delete", mock.Anything, int64(1)).Return(nil)
		f.pending.On("Delete", mock.Anything, int64(2)).Return(nil)

		err := f.dispatcher(nil).Drain(ctx, phone)

		require.NoError(t, err)
		f.engine.AssertNumberOfCalls(t, "Send", 2)
		f.pending.AssertExpectations(t)
	})

	t.Run("already handled messages are dropped without sending", func(t *testing.T) {
		f := newFixture()

		f.pending.On("Next", mock.Anything, serviceNumber).Return(queued(1, model.PhoneSentStatusFailed), nil).Once()
		f.pending.On("Next", mock.Anything, serviceNumber).Return(nil, repository.ErrNotFound)
		f.pending.On("Delete", mock.Anything, int64(1)).Return(nil)

		err := f.dispatcher(nil).Drain(ctx, phone)

		require.NoError(t, err)
		f.engine.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		f.sent.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("engine errors mark the message failed", func(t *testing.T) {
		f := newFixture()

		f.pending.On("Next", mock.Anything, serviceNumber).Return(queued(1, model.PhoneSentStatusQueued), nil).Once()
		f.pending.On("Next", mock.Anything, serviceNumber).Return(nil, repository.ErrNotFound)
		f.engine.On("Send", mock.Anything, mock.Anything).Return(errors.New("provider down"))
		f.sent.On("Update", mock.Anything, mock.MatchedBy(func(s *model.PhoneSent) bool {
			return s.Status == model.PhoneSentStatusFailed && *s.ErrorMessage == "provider down"
		})).Return(nil)
		f.pending.On("Delete", mock.Anything, int64(1)).Return(nil)

		require.NoError(t, f.dispatcher(nil).Drain(ctx, phone))
		f.sent.AssertExpectations(t)
	})

	t.Run("database errors stop the drain", func(t *testing.T) {
		f := newFixture()
		dbErr := errors.New("connection reset")

		f.pending.On("Next", mock.Anything, serviceNumber).Return(nil, dbErr)

		err := f.dispatcher(nil).Drain(ctx, phone)

		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("rate spaces consecutive sends", func(t *testing.T) {
		f := newFixture()
		slow := model.Phone{Number: serviceNumber, Rate: 600}

		f.pending.On("Next", mock.Anything, serviceNumber).Return(queued(1, model.PhoneSentStatusQueued), nil).Once()
		f.pending.On("Next", mock.Anything, serviceNumber).Return(queued(2, model.PhoneSentStatusQueued), nil).Once()
		f.pending.On("Next", mock.Anything, serviceNumber).Return(nil, repository.ErrNotFound)
		f.engine.On("Send", mock.Anything, mock.Anything).Return(nil)
		f.sent.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.pending.On("Delete", mock.Anything, mock.Anything).Return(nil)

		start := time.Now()
		require.NoError(t, f.dispatcher(nil).Drain(ctx, slow))

		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	})
}

func TestDispatcher_Activate_KeepsRateAcrossWorkers(t *testing.T) {
	f := newFixture()
	f.phones.On("FindByNumber", mock.Anything, serviceNumber).
		Return(&model.Phone{Number: serviceNumber, Rate: 60}, nil)
	f.pending.On("Next", mock.Anything, serviceNumber).Return(queued(1, model.PhoneSentStatusQueued), nil).Once()
	f.pending.On("Next", mock.Anything, serviceNumber).Return(nil, repository.ErrNotFound).Once()
	f.pending.On("Next", mock.Anything, serviceNumber).Return(queued(2, model.PhoneSentStatusQueued), nil).Once()
	f.pending.On("Next", mock.Anything, serviceNumber).Return(nil, repository.ErrNotFound)
	f.sent.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.pending.On("Delete", mock.Anything, mock.Anything).Return(nil)

	var mu sync.Mutex
	var sentAt []time.Time
	f.engine.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		mu.Lock()
		sentAt = append(sentAt, time.Now())
		mu.Unlock()
	})
	sends := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(sentAt)
	}

	ctx := context.Background()
	dispatcher := f.dispatcher(nil)

	dispatcher.Activate(ctx, serviceNumber)
	require.Eventually(t, func() bool {
		return sends() == 1 && !dispatcher.Active(serviceNumber)
	}, 2*time.Second, 10*time.Millisecond)

	dispatcher.Activate(ctx, serviceNumber)
	require.Eventually(t, func() bool { return sends() == 2 }, 3*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, sentAt[1].Sub(sentAt[0]), 900*time.Millisecond)
}

func TestDispatcher_Run(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	f := newFixture()
	f.pending.On("DistinctFromPhones", mock.Anything).Return([]string{}, nil)
	f.phones.On("FindByNumber", mock.Anything, serviceNumber).
		Return(&model.Phone{Number: serviceNumber, Rate: 6000}, nil)
	f.phones.On("FindByNumber", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	f.pending.On("Next", mock.Anything, serviceNumber).Return(queued(1, model.PhoneSentStatusQueued), nil).Once()
	f.pending.On("Next", mock.Anything, serviceNumber).Return(nil, repository.ErrNotFound)
	var sends atomic.Int32
	f.engine.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		sends.Add(1)
	})
	f.sent.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.pending.On("Delete", mock.Anything, int64(1)).Return(nil)

	dispatcher := f.dispatcher(client)
	signaler := sms.NewSignaler(client, "__un_twilio_dispatcher")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()

	assert.Eventually(t, func() bool {
		_ = signaler.Signal(context.Background(), serviceNumber)
		return sends.Load() > 0
	}, 2*time.Second, 20*time.Millisecond)

	_ = signaler.Signal(context.Background(), "+10000000000")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}

	f.pending.AssertCalled(t, "Delete", mock.Anything, int64(1))
}

func TestSignaler_Signal(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "__un_twilio_dispatcher")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, sms.NewSignaler(client, "__un_twilio_dispatcher").Signal(ctx, serviceNumber))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"number":"+18023390056"}`, msg.Payload)
}
