package repository

import (
	"context"
	"time"

	"github.com/Behyna/notification-services/internal/model"
	"gorm.io/gorm"
)

type PhoneReceivedRawRepository interface {
	Create(ctx context.Context, raw *model.PhoneReceivedRaw) error
	Update(ctx context.Context, raw *model.PhoneReceivedRaw) error
	GetByID(ctx context.Context, id int64) (*model.PhoneReceivedRaw, error)
	FindPendingBefore(ctx context.Context, before time.Time, limit int) ([]model.PhoneReceivedRaw, error)
}

type PhoneReceivedRaw struct {
	db *gorm.DB
}

func NewPhoneReceivedRawRepository(db *gorm.DB) PhoneReceivedRawRepository {
	return &PhoneReceivedRaw{db: db}
}

func (p *PhoneReceivedRaw) Create(ctx context.Context, raw *model.PhoneReceivedRaw) error {
	return GetTx(ctx, p.db).Create(raw).Error
}

func (p *PhoneReceivedRaw) Update(ctx context.Context, raw *model.PhoneReceivedRaw) error {
	return GetTx(ctx, p.db).Model(raw).
		Select("status", "exception", "updated_at").
		Updates(raw).Error
}

func (p *PhoneReceivedRaw) GetByID(ctx context.Context, id int64) (*model.PhoneReceivedRaw, error) {
	var raw model.PhoneReceivedRaw

	if err := GetTx(ctx, p.db).Where("id = ?", id).First(&raw).Error; err != nil {
		return nil, translate(err)
	}

	return &raw, nil
}

func (p *PhoneReceivedRaw) FindPendingBefore(ctx context.Context, before time.Time, limit int) ([]model.PhoneReceivedRaw, error) {
	var rows []model.PhoneReceivedRaw

	err := GetTx(ctx, p.db).
		Where("status = ? AND created_at < ?", model.PhoneReceivedRawStatusPending, before).
		Order("id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

type PhoneReceivedRepository interface {
	Create(ctx context.Context, received *model.PhoneReceived) error
	ExistsBySMSID(ctx context.Context, smsID string) (bool, error)
}

type PhoneReceived struct {
	db *gorm.DB
}

func NewPhoneReceivedRepository(db *gorm.DB) PhoneReceivedRepository {
	return &PhoneReceived{db: db}
}

func (p *PhoneReceived) Create(ctx context.Context, received *model.PhoneReceived) error {
	return GetTx(ctx, p.db).Omit("Receiver").Create(received).Error
}

func (p *PhoneReceived) ExistsBySMSID(ctx context.Context, smsID string) (bool, error) {
	var count int64

	err := GetTx(ctx, p.db).Model(&model.PhoneReceived{}).Where("sms_id = ?", smsID).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
