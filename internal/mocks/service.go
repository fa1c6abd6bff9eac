package mocks

import (
	"context"

	"github.com/Behyna/notification-services/internal/notification"
	"github.com/Behyna/notification-services/internal/service"
	"github.com/stretchr/testify/mock"
)

type DeviceService struct {
	mock.Mock
}

func (d *DeviceService) Register(ctx context.Context, cmd service.RegisterDeviceCommand) (service.DeviceResponse, bool, error) {
	args := d.Called(ctx, cmd)
	return args.Get(0).(service.DeviceResponse), args.Bool(1), args.Error(2)
}

func (d *DeviceService) Delete(ctx context.Context, cmd service.DeleteDeviceCommand) error {
	args := d.Called(ctx, cmd)
	return args.Error(0)
}

type SubscriptionService struct {
	mock.Mock
}

func (s *SubscriptionService) Get(ctx context.Context, user notification.Receiver) (service.Subscriptions, error) {
	args := s.Called(ctx, user)
	return args.Get(0).(service.Subscriptions), args.Error(1)
}

func (s *SubscriptionService) Put(ctx context.Context, user notification.Receiver, cmd service.UpdateSubscriptionsCommand) (service.Subscriptions, error) {
	args := s.Called(ctx, user, cmd)
	return args.Get(0).(service.Subscriptions), args.Error(1)
}
