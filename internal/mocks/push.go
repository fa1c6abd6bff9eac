package mocks

import (
	"context"

	"github.com/Behyna/notification-services/internal/model"
	"github.com/stretchr/testify/mock"
)

type PushDispatcher struct {
	mock.Mock
}

func (p *PushDispatcher) SendMessage(ctx context.Context, device model.Device, message string, data map[string]any) (bool, error) {
	args := p.Called(ctx, device, message, data)
	return args.Bool(0), args.Error(1)
}
