package sms_test

import (
	"context"
	"testing"
	"time"

	"github.com/Behyna/notification-services/internal/sms"
	"github.com/Behyna/notification-services/pkg/smsprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	errs  []error
	calls int
}

func (f *fakeProvider) Send(ctx context.Context, msg smsprovider.Message) (smsprovider.Response, error) {
	f.calls++
	if len(f.errs) >= f.calls && f.errs[f.calls-1] != nil {
		return smsprovider.Response{}, f.errs[f.calls-1]
	}
	return smsprovider.Response{SID: "SM1", Status: "queued"}, nil
}

func (f *fakeProvider) Lookup(ctx context.Context, number string) (smsprovider.LookupResult, error) {
	return smsprovider.LookupResult{PhoneNumber: number}, nil
}

func TestProvider_SendWithRetry(t *testing.T) {
	cfg := smsprovider.Config{MaxRetry: 3, Timeout: time.Second}
	msg := smsprovider.Message{From: "+18023390056", To: "+18023390050", Body: "hi"}

	t.Run("retries transient failures", func(t *testing.T) {
		provider := &fakeProvider{errs: []error{smsprovider.NewError(smsprovider.ErrorCodeServerError)}}
		svc := sms.NewProviderService(provider, cfg, zap.NewNop(), nil)

		res, err := svc.SendWithRetry(context.Background(), msg)

		require.NoError(t, err)
		assert.Equal(t, "SM1", res.SID)
		assert.Equal(t, 2, provider.calls)
	})

	t.Run("does not retry invalid numbers", func(t *testing.T) {
		provider := &fakeProvider{errs: []error{smsprovider.NewError(smsprovider.ErrorCodeInvalidNumber)}}
		svc := sms.NewProviderService(provider, cfg, zap.NewNop(), nil)

		_, err := svc.SendWithRetry(context.Background(), msg)

		assert.EqualError(t, err, smsprovider.ErrorCodeInvalidNumber)
		assert.Equal(t, 1, provider.calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		timeout := smsprovider.NewError(smsprovider.ErrorCodeTimeout)
		provider := &fakeProvider{errs: []error{timeout, timeout, timeout}}
		svc := sms.NewProviderService(provider, cfg, zap.NewNop(), nil)

		_, err := svc.SendWithRetry(context.Background(), msg)

		assert.EqualError(t, err, smsprovider.ErrorCodeTimeout)
		assert.Equal(t, 3, provider.calls)
	})
}
