package repository

import (
	"context"

	"github.com/Behyna/notification-services/internal/model"
	"gorm.io/gorm"
)

type PhoneReceiverRepository interface {
	FindByNumber(ctx context.Context, number string) (*model.PhoneReceiver, error)
	Create(ctx context.Context, receiver *model.PhoneReceiver) error
	Update(ctx context.Context, receiver *model.PhoneReceiver) error
}

type PhoneReceiver struct {
	db *gorm.DB
}

func NewPhoneReceiverRepository(db *gorm.DB) PhoneReceiverRepository {
	return &PhoneReceiver{db: db}
}

func (p *PhoneReceiver) FindByNumber(ctx context.Context, number string) (*model.PhoneReceiver, error) {
	var receiver model.PhoneReceiver

	if err := GetTx(ctx, p.db).Where("number = ?", number).First(&receiver).Error; err != nil {
		return nil, translate(err)
	}

	return &receiver, nil
}

func (p *PhoneReceiver) Create(ctx context.Context, receiver *model.PhoneReceiver) error {
	return translate(GetTx(ctx, p.db).Create(receiver).Error)
}

func (p *PhoneReceiver) Update(ctx context.Context, receiver *model.PhoneReceiver) error {
	return GetTx(ctx, p.db).Model(receiver).
		Select("service_number", "is_blocked", "updated_at").
		Updates(receiver).Error
}
