package repository

import (
	"context"

	"github.com/Behyna/notification-services/internal/model"
	"gorm.io/gorm"
)

type DeviceRepository interface {
	Create(ctx context.Context, device *model.Device) error
	Update(ctx context.Context, device *model.Device) error
	Delete(ctx context.Context, device *model.Device) error
	FindMatching(ctx context.Context, userID int64, platform model.Platform, deviceID string) (*model.Device, error)
	FindByIDAndUser(ctx context.Context, id, userID int64) (*model.Device, error)
	FindActiveByUser(ctx context.Context, userID int64) ([]model.Device, error)
}

type Device struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &Device{db: db}
}

func (d *Device) Create(ctx context.Context, device *model.Device) error {
	return translate(GetTx(ctx, d.db).Create(device).Error)
}

func (d *Device) Update(ctx context.Context, device *model.Device) error {
	return GetTx(ctx, d.db).Save(device).Error
}

func (d *Device) Delete(ctx context.Context, device *model.Device) error {
	return GetTx(ctx, d.db).Delete(device).Error
}

func (d *Device) FindMatching(ctx context.Context, userID int64, platform model.Platform, deviceID string) (*model.Device, error) {
	var device model.Device

	err := GetTx(ctx, d.db).
		Where("user_id = ? AND platform = ? AND device_id = ?", userID, platform, deviceID).
		First(&device).Error
	if err != nil {
		return nil, translate(err)
	}

	return &device, nil
}

func (d *Device) FindByIDAndUser(ctx context.Context, id, userID int64) (*model.Device, error) {
	var device model.Device

	err := GetTx(ctx, d.db).Where("id = ? AND user_id = ?", id, userID).First(&device).Error
	if err != nil {
		return nil, translate(err)
	}

	return &device, nil
}

func (d *Device) FindActiveByUser(ctx context.Context, userID int64) ([]model.Device, error) {
	var devices []model.Device

	err := GetTx(ctx, d.db).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("id").
		Find(&devices).Error
	if err != nil {
		return nil, err
	}

	return devices, nil
}
