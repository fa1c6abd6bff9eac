package publishers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Behyna/notification-services/internal/mocks"
	"github.com/Behyna/notification-services/internal/publishers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestPendingRawPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("requeues stale payloads", func(t *testing.T) {
		service := &mocks.SMSService{}
		service.On("ParsePending", ctx, time.Minute).Return(3, nil)

		err := publishers.NewPendingRawPublisher(service, time.Minute, zap.NewNop()).Publish(ctx)

		assert.NoError(t, err)
		service.AssertExpectations(t)
	})

	t.Run("propagates errors", func(t *testing.T) {
		service := &mocks.SMSService{}
		service.On("ParsePending", ctx, time.Minute).Return(0, errors.New("db down"))

		err := publishers.NewPendingRawPublisher(service, time.Minute, zap.NewNop()).Publish(ctx)

		assert.Error(t, err)
	})
}

func TestProxyPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("signals every number with pending messages", func(t *testing.T) {
		pending := &mocks.PendingMessageRepository{}
		signaler := &mocks.Signaler{}
		pending.On("DistinctFromPhones", ctx).Return([]string{"+12015550100", "+12015550101"}, nil)
		signaler.On("Signal", ctx, "+12015550100").Return(errors.New("redis down"))
		signaler.On("Signal", ctx, "+12015550101").Return(nil)

		err := publishers.NewProxyPublisher(pending, signaler, zap.NewNop()).Publish(ctx)

		assert.NoError(t, err)
		signaler.AssertNumberOfCalls(t, "Signal", 2)
	})

	t.Run("nothing pending", func(t *testing.T) {
		pending := &mocks.PendingMessageRepository{}
		signaler := &mocks.Signaler{}
		pending.On("DistinctFromPhones", ctx).Return(nil, nil)

		err := publishers.NewProxyPublisher(pending, signaler, zap.NewNop()).Publish(ctx)

		assert.NoError(t, err)
		signaler.AssertNotCalled(t, "Signal", mock.Anything, mock.Anything)
	})

	t.Run("repository failure", func(t *testing.T) {
		pending := &mocks.PendingMessageRepository{}
		pending.On("DistinctFromPhones", ctx).Return(nil, errors.New("db down"))

		err := publishers.NewProxyPublisher(pending, &mocks.Signaler{}, zap.NewNop()).Publish(ctx)

		assert.Error(t, err)
	})
}
