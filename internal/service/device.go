package service

import (
	"context"
	"errors"
	"time"

	"github.com/Behyna/notification-services/internal/constants"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/repository"
	"go.uber.org/zap"
)

type DeviceService interface {
	// Register creates the device or updates the one matching user, platform and
	// device id. created reports which of the two happened.
	Register(ctx context.Context, cmd RegisterDeviceCommand) (resp DeviceResponse, created bool, err error)
	Delete(ctx context.Context, cmd DeleteDeviceCommand) error
}

type device struct {
	deviceRepo repository.DeviceRepository
	logger     *zap.Logger
}

func NewDeviceService(deviceRepo repository.DeviceRepository, logger *zap.Logger) DeviceService {
	return &device{deviceRepo: deviceRepo, logger: logger}
}

func (d *device) Register(ctx context.Context, cmd RegisterDeviceCommand) (DeviceResponse, bool, error) {
	existing, err := d.deviceRepo.FindMatching(ctx, cmd.UserID, cmd.Platform, cmd.DeviceID)
	if err == nil {
		return d.refresh(ctx, existing, cmd)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		d.logger.Error("Failed to find matching device",
			zap.Error(err),
			zap.Int64("userID", cmd.UserID),
			zap.String("deviceID", cmd.DeviceID))
		return DeviceResponse{}, false, NewServiceError(constants.ErrCodeDatabase, ErrDatabase)
	}

	now := time.Now()
	dev := model.Device{
		UserID:            cmd.UserID,
		Platform:          cmd.Platform,
		DeviceID:          cmd.DeviceID,
		NotificationToken: cmd.NotificationToken,
		AppID:             cmd.AppID,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := d.deviceRepo.Create(ctx, &dev); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			d.logger.Info("Device registered concurrently, updating",
				zap.Int64("userID", cmd.UserID),
				zap.String("deviceID", cmd.DeviceID))

			existing, err := d.deviceRepo.FindMatching(ctx, cmd.UserID, cmd.Platform, cmd.DeviceID)
			if err != nil {
				return DeviceResponse{}, false, NewServiceError(constants.ErrCodeDatabase, ErrDatabase)
			}
			return d.refresh(ctx, existing, cmd)
		}

		d.logger.Error("Failed to create device",
			zap.Error(err),
			zap.Int64("userID", cmd.UserID),
			zap.String("deviceID", cmd.DeviceID))
		return DeviceResponse{}, false, NewServiceError(constants.ErrCodeDatabase, ErrDatabase)
	}

	d.logger.Info("Device registered",
		zap.Int64("userID", cmd.UserID),
		zap.Int64("id", dev.ID),
		zap.String("platform", string(cmd.Platform)))

	return newDeviceResponse(&dev), true, nil
}

func (d *device) refresh(ctx context.Context, dev *model.Device, cmd RegisterDeviceCommand) (DeviceResponse, bool, error) {
	dev.NotificationToken = cmd.NotificationToken
	dev.AppID = cmd.AppID
	dev.IsActive = true
	dev.UpdatedAt = time.Now()

	if err := d.deviceRepo.Update(ctx, dev); err != nil {
		d.logger.Error("Failed to update device",
			zap.Error(err),
			zap.Int64("id", dev.ID))
		return DeviceResponse{}, false, NewServiceError(constants.ErrCodeDatabase, ErrDatabase)
	}

	return newDeviceResponse(dev), false, nil
}

func (d *device) Delete(ctx context.Context, cmd DeleteDeviceCommand) error {
	dev, err := d.deviceRepo.FindByIDAndUser(ctx, cmd.DeviceID, cmd.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewServiceError(constants.ErrCodeDeviceNotFound, ErrDeviceNotFound)
	}
	if err != nil {
		d.logger.Error("Failed to find device", zap.Error(err), zap.Int64("id", cmd.DeviceID))
		return NewServiceError(constants.ErrCodeDatabase, ErrDatabase)
	}

	if err := d.deviceRepo.Delete(ctx, dev); err != nil {
		d.logger.Error("Failed to delete device", zap.Error(err), zap.Int64("id", cmd.DeviceID))
		return NewServiceError(constants.ErrCodeDatabase, ErrDatabase)
	}

	return nil
}
