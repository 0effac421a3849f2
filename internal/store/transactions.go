package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finance-tracker-go/internal/models"
)

type Transactions struct {
	db *gorm.DB
}

func NewTransactions(db *gorm.DB) *Transactions {
	return &Transactions{db: db}
}

func (t *Transactions) Create(ctx context.Context, tx *models.Transaction) error {
	return t.db.WithContext(ctx).Create(tx).Error
}

// CreateBatch inserts all entries in one statement. Rows colliding with the
// (user_id, description, period) backstop index are silently dropped, so a
// concurrent materialization of the same month can never double-generate;
// the returned count covers only the rows that actually landed.
func (t *Transactions) CreateBatch(ctx context.Context, txs []models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	res := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&txs)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// MatchingDescriptions returns, in a single query, the entries of the owner
// whose description is in keys and whose date falls inside [from, to].
// This is the materializer's bulk existence check.
func (t *Transactions) MatchingDescriptions(ctx context.Context, userID uint, keys []string, from, to time.Time) ([]models.Transaction, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var txs []models.Transaction
	err := t.db.WithContext(ctx).
		Where("user_id = ? AND description IN ? AND date >= ? AND date <= ?", userID, keys, from, to).
		Find(&txs).Error
	return txs, err
}

func (t *Transactions) InRange(ctx context.Context, userID uint, from, to time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := t.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date asc, id asc").
		Find(&txs).Error
	return txs, err
}

// Credit returns every credit-card entry of the owner, oldest first. The
// projector derives installment plans from these.
func (t *Transactions) Credit(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := t.db.WithContext(ctx).
		Where("user_id = ? AND payment_method = ?", userID, models.MethodCredit).
		Order("date asc").
		Find(&txs).Error
	return txs, err
}

// ListFilter narrows List; zero values mean "no filter".
type ListFilter struct {
	Type      string
	Category  string
	Status    string
	MinAmount int64
	MaxAmount int64
	StartDate time.Time
	EndDate   time.Time
}

func (t *Transactions) List(ctx context.Context, userID uint, f ListFilter) ([]models.Transaction, error) {
	query := t.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc, id desc")

	if v := strings.TrimSpace(f.Type); v != "" {
		query = query.Where("LOWER(type) = LOWER(?)", v)
	}
	if v := strings.TrimSpace(f.Category); v != "" {
		query = query.Where("LOWER(category) = LOWER(?)", v)
	}
	if v := strings.TrimSpace(f.Status); v != "" {
		query = query.Where("LOWER(status) = LOWER(?)", v)
	}
	if f.MinAmount > 0 {
		query = query.Where("amount >= ?", f.MinAmount)
	}
	if f.MaxAmount > 0 {
		query = query.Where("amount <= ?", f.MaxAmount)
	}
	if !f.StartDate.IsZero() {
		query = query.Where("date >= ?", f.StartDate)
	}
	if !f.EndDate.IsZero() {
		query = query.Where("date <= ?", f.EndDate)
	}

	var txs []models.Transaction
	err := query.Find(&txs).Error
	return txs, err
}

func (t *Transactions) ByID(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := t.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&tx).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (t *Transactions) Save(ctx context.Context, tx *models.Transaction) error {
	return t.db.WithContext(ctx).Save(tx).Error
}

func (t *Transactions) Delete(ctx context.Context, userID, id uint) error {
	res := t.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
