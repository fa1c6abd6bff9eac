package repository

import (
	"context"
	"errors"

	"github.com/Behyna/notification-services/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UnsubscribedUserRepository interface {
	FindByUserIDs(ctx context.Context, userIDs []int64) ([]model.UnsubscribedUser, error)
	GetOrCreate(ctx context.Context, userID int64) (*model.UnsubscribedUser, error)
	Save(ctx context.Context, user *model.UnsubscribedUser) error
}

type UnsubscribedUser struct {
	db *gorm.DB
}

func NewUnsubscribedUserRepository(db *gorm.DB) UnsubscribedUserRepository {
	return &UnsubscribedUser{db: db}
}

func (u *UnsubscribedUser) FindByUserIDs(ctx context.Context, userIDs []int64) ([]model.UnsubscribedUser, error) {
	var rows []model.UnsubscribedUser
	if len(userIDs) == 0 {
		return rows, nil
	}

	if err := GetTx(ctx, u.db).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (u *UnsubscribedUser) GetOrCreate(ctx context.Context, userID int64) (*model.UnsubscribedUser, error) {
	db := GetTx(ctx, u.db)

	var row model.UnsubscribedUser
	err := db.Where("user_id = ?", userID).First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row = model.UnsubscribedUser{UserID: userID}
	row.SetUnsubscriptions(model.Unsubscriptions{})
	if err := translate(db.Create(&row).Error); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return u.readCommitted(db, userID)
		}
		return nil, err
	}

	return &row, nil
}

// readCommitted re-reads a row a concurrent insert just created. A locking read
// sees the latest committed row even when the plain read ran on an older
// REPEATABLE READ snapshot.
func (u *UnsubscribedUser) readCommitted(db *gorm.DB, userID int64) (*model.UnsubscribedUser, error) {
	var row model.UnsubscribedUser
	err := db.Clauses(clause.Locking{Strength: "SHARE"}).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (u *UnsubscribedUser) Save(ctx context.Context, user *model.UnsubscribedUser) error {
	return GetTx(ctx, u.db).Save(user).Error
}
