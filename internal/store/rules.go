package store

import (
	"context"

	"gorm.io/gorm"

	"finance-tracker-go/internal/models"
)

type Rules struct {
	db *gorm.DB
}

func NewRules(db *gorm.DB) *Rules {
	return &Rules{db: db}
}

func (r *Rules) Create(ctx context.Context, rule *models.FixedExpense) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *Rules) ByUser(ctx context.Context, userID uint) ([]models.FixedExpense, error) {
	var rules []models.FixedExpense
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day_of_month asc, title asc").
		Find(&rules).Error
	return rules, err
}

func (r *Rules) ByID(ctx context.Context, userID, id uint) (*models.FixedExpense, error) {
	var rule models.FixedExpense
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&rule).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rule, nil
}

func (r *Rules) Save(ctx context.Context, rule *models.FixedExpense) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *Rules) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.FixedExpense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
