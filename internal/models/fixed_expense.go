package models

import "time"

// FixedExpense is a recurring-obligation rule ("pay rent on the 5th").
// Amounts are minor currency units. The title doubles as the key the
// materializer uses to recognize already-generated entries for a month.
type FixedExpense struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"index;not null" json:"user_id"`
	Title      string `gorm:"size:255;not null" json:"title"`
	Amount     int64  `gorm:"not null" json:"amount"`
	DayOfMonth int    `gorm:"not null" json:"day_of_month"`
	Category   string `json:"category"`

	// Payment metadata, one set per method: online link, transfer
	// alias/CBU plus currency, or the label of the card to charge.
	PaymentMethod string `gorm:"size:16" json:"payment_method"`
	PaymentLink   string `json:"payment_link,omitempty"`
	TransferAlias string `json:"transfer_alias,omitempty"`
	TransferCBU   string `json:"transfer_cbu,omitempty"`
	Currency      string `gorm:"size:8" json:"currency,omitempty"`
	CardName      string `json:"card_name,omitempty"`

	// LastAmount is the amount of the previous cycle; a difference from
	// Amount on a subscription flags a price hike in the UI.
	IsSubscription bool  `gorm:"default:false" json:"is_subscription"`
	LastAmount     int64 `json:"last_amount"`

	// Sharing terms copied verbatim onto generated entries.
	IsShared     bool   `gorm:"default:false" json:"is_shared"`
	SharedWithID string `json:"shared_with_id,omitempty"`
	MyShare      int64  `json:"my_share,omitempty"`
	OtherShare   int64  `json:"other_share,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate reports whether the rule is complete enough to materialize.
func (f *FixedExpense) Validate() error {
	if f.Title == "" {
		return ErrEmptyDescription
	}
	if f.Amount <= 0 {
		return ErrInvalidAmount
	}
	if f.DayOfMonth < 1 || f.DayOfMonth > 31 {
		return ErrInvalidDay
	}
	return nil
}
