package repository

import (
	"context"

	"github.com/Behyna/notification-services/internal/model"
	"gorm.io/gorm"
)

type HistoryRepository interface {
	CreateBatch(ctx context.Context, rows []model.NotificationHistory) error
}

type History struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &History{db: db}
}

func (h *History) CreateBatch(ctx context.Context, rows []model.NotificationHistory) error {
	if len(rows) == 0 {
		return nil
	}
	return GetTx(ctx, h.db).CreateInBatches(rows, 100).Error
}
