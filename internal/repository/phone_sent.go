package repository

import (
	"context"

	"github.com/Behyna/notification-services/internal/model"
	"gorm.io/gorm"
)

type PhoneSentRepository interface {
	Create(ctx context.Context, sent *model.PhoneSent) error
	Update(ctx context.Context, sent *model.PhoneSent) error
	GetByID(ctx context.Context, id int64) (*model.PhoneSent, error)
	FindBySMSID(ctx context.Context, smsID string) (*model.PhoneSent, error)
}

type PhoneSent struct {
	db *gorm.DB
}

func NewPhoneSentRepository(db *gorm.DB) PhoneSentRepository {
	return &PhoneSent{db: db}
}

func (p *PhoneSent) Create(ctx context.Context, sent *model.PhoneSent) error {
	return translate(GetTx(ctx, p.db).Omit("Receiver").Create(sent).Error)
}

func (p *PhoneSent) Update(ctx context.Context, sent *model.PhoneSent) error {
	return GetTx(ctx, p.db).Model(sent).
		Select("status", "sms_id", "error_code", "error_message", "media", "updated_at").
		Updates(sent).Error
}

func (p *PhoneSent) GetByID(ctx context.Context, id int64) (*model.PhoneSent, error) {
	var sent model.PhoneSent

	if err := GetTx(ctx, p.db).Preload("Receiver").Where("id = ?", id).First(&sent).Error; err != nil {
		return nil, translate(err)
	}

	return &sent, nil
}

func (p *PhoneSent) FindBySMSID(ctx context.Context, smsID string) (*model.PhoneSent, error) {
	var sent model.PhoneSent

	if err := GetTx(ctx, p.db).Where("sms_id = ?", smsID).First(&sent).Error; err != nil {
		return nil, translate(err)
	}

	return &sent, nil
}
