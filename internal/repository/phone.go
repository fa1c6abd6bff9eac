package repository

import (
	"context"

	"github.com/Behyna/notification-services/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PhoneRepository interface {
	// Allocate returns the least used service number and increments its counter.
	Allocate(ctx context.Context) (*model.Phone, error)
	FindByNumber(ctx context.Context, number string) (*model.Phone, error)
	FindAll(ctx context.Context) ([]model.Phone, error)
}

type Phone struct {
	db *gorm.DB
}

func NewPhoneRepository(db *gorm.DB) PhoneRepository {
	return &Phone{db: db}
}

func (p *Phone) Allocate(ctx context.Context) (*model.Phone, error) {
	var phone model.Phone

	err := GetTx(ctx, p.db).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("used_count ASC, id ASC").
			First(&phone).Error
		if err != nil {
			return err
		}

		phone.UsedCount++
		return tx.Model(&model.Phone{}).
			Where("id = ?", phone.ID).
			UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	return &phone, nil
}

func (p *Phone) FindByNumber(ctx context.Context, number string) (*model.Phone, error) {
	var phone model.Phone

	if err := GetTx(ctx, p.db).Where("number = ?", number).First(&phone).Error; err != nil {
		return nil, translate(err)
	}

	return &phone, nil
}

func (p *Phone) FindAll(ctx context.Context) ([]model.Phone, error) {
	var phones []model.Phone

	if err := GetTx(ctx, p.db).Order("id").Find(&phones).Error; err != nil {
		return nil, err
	}

	return phones, nil
}
