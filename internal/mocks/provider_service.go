package mocks

import (
	"context"

	"github.com/Behyna/notification-services/pkg/smsprovider"
	"github.com/stretchr/testify/mock"
)

type ProviderService struct {
	mock.Mock
}

func (p *ProviderService) SendWithRetry(ctx context.Context, msg smsprovider.Message) (smsprovider.Response, error) {
	args := p.Called(ctx, msg)
	return args.Get(0).(smsprovider.Response), args.Error(1)
}

func (p *ProviderService) Lookup(ctx context.Context, number string) (smsprovider.LookupResult, error) {
	args := p.Called(ctx, number)
	return args.Get(0).(smsprovider.LookupResult), args.Error(1)
}
