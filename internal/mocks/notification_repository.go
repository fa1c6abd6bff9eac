package mocks

import (
	"context"

	"github.com/Behyna/notification-services/internal/model"
	"github.com/stretchr/testify/mock"
)

type DeviceRepository struct {
	mock.Mock
}

func (d *DeviceRepository) Create(ctx context.Context, device *model.Device) error {
	args := d.Called(ctx, device)
	return args.Error(0)
}

func (d *DeviceRepository) Update(ctx context.Context, device *model.Device) error {
	args := d.Called(ctx, device)
	return args.Error(0)
}

func (d *DeviceRepository) Delete(ctx context.Context, device *model.Device) error {
	args := d.Called(ctx, device)
	return args.Error(0)
}

func (d *DeviceRepository) FindMatching(ctx context.Context, userID int64, platform model.Platform, deviceID string) (*model.Device, error) {
	args := d.Called(ctx, userID, platform, deviceID)
	device, _ := args.Get(0).(*model.Device)
	return device, args.Error(1)
}

func (d *DeviceRepository) FindByIDAndUser(ctx context.Context, id, userID int64) (*model.Device, error) {
	args := d.Called(ctx, id, userID)
	device, _ := args.Get(0).(*model.Device)
	return device, args.Error(1)
}

func (d *DeviceRepository) FindActiveByUser(ctx context.Context, userID int64) ([]model.Device, error) {
	args := d.Called(ctx, userID)
	devices, _ := args.Get(0).([]model.Device)
	return devices, args.Error(1)
}

type HistoryRepository struct {
	mock.Mock
}

func (h *HistoryRepository) CreateBatch(ctx context.Context, rows []model.NotificationHistory) error {
	args := h.Called(ctx, rows)
	return args.Error(0)
}

type UnsubscribedUserRepository struct {
	mock.Mock
}

func (u *UnsubscribedUserRepository) FindByUserIDs(ctx context.Context, userIDs []int64) ([]model.UnsubscribedUser, error) {
	args := u.Called(ctx, userIDs)
	users, _ := args.Get(0).([]model.UnsubscribedUser)
	return users, args.Error(1)
}

func (u *UnsubscribedUserRepository) GetOrCreate(ctx context.Context, userID int64) (*model.UnsubscribedUser, error) {
	args := u.Called(ctx, userID)
	user, _ := args.Get(0).(*model.UnsubscribedUser)
	return user, args.Error(1)
}

func (u *UnsubscribedUserRepository) Save(ctx context.Context, user *model.UnsubscribedUser) error {
	args := u.Called(ctx, user)
	return args.Error(0)
}
