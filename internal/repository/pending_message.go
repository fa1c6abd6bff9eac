package repository

import (
	"context"

	"github.com/Behyna/notification-services/internal/model"
	"gorm.io/gorm"
)

type PendingMessageRepository interface {
	Create(ctx context.Context, pending *model.PhonePendingMessage) error
	// Next returns the highest priority entry queued for fromPhone.
	Next(ctx context.Context, fromPhone string) (*model.PhonePendingMessage, error)
	Delete(ctx context.Context, id int64) error
	DistinctFromPhones(ctx context.Context) ([]string, error)
}

type PendingMessage struct {
	db *gorm.DB
}

func NewPendingMessageRepository(db *gorm.DB) PendingMessageRepository {
	return &PendingMessage{db: db}
}

func (p *PendingMessage) Create(ctx context.Context, pending *model.PhonePendingMessage) error {
	return GetTx(ctx, p.db).Omit("Message").Create(pending).Error
}

func (p *PendingMessage) Next(ctx context.Context, fromPhone string) (*model.PhonePendingMessage, error) {
	var pending model.PhonePendingMessage

	err := GetTx(ctx, p.db).
		Preload("Message.Receiver").
		Where("from_phone = ?", fromPhone).
		Order("priority ASC, id ASC").
		First(&pending).Error
	if err != nil {
		return nil, translate(err)
	}

	return &pending, nil
}

func (p *PendingMessage) Delete(ctx context.Context, id int64) error {
	result := GetTx(ctx, p.db).Delete(&model.PhonePendingMessage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (p *PendingMessage) DistinctFromPhones(ctx context.Context) ([]string, error) {
	var numbers []string

	err := GetTx(ctx, p.db).Model(&model.PhonePendingMessage{}).
		Distinct("from_phone").
		Pluck("from_phone", &numbers).Error
	if err != nil {
		return nil, err
	}

	return numbers, nil
}
