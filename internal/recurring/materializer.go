// Package recurring turns fixed-expense rules into pending ledger entries
// for a target month. Materialization is idempotent: running it twice for
// the same owner and month never creates a duplicate and never touches
// entries the user already completed.
package recurring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"finance-tracker-go/internal/models"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// RuleSource is the slice of the rule store the materializer needs.
type RuleSource interface {
	ByUser(ctx context.Context, userID uint) ([]models.FixedExpense, error)
}

// Ledger is the slice of the transaction store the materializer needs:
// one bulk existence query and one bulk conflict-swallowing insert.
type Ledger interface {
	MatchingDescriptions(ctx context.Context, userID uint, keys []string, from, to time.Time) ([]models.Transaction, error)
	CreateBatch(ctx context.Context, txs []models.Transaction) (int, error)
}

type Materializer struct {
	rules   RuleSource
	ledger  Ledger
	matcher Matcher
}

func NewMaterializer(rules RuleSource, ledger Ledger) *Materializer {
	return &Materializer{rules: rules, ledger: ledger, matcher: TitleMatcher{}}
}

// WithMatcher overrides the default title-based matcher.
func (m *Materializer) WithMatcher(matcher Matcher) *Materializer {
	m.matcher = matcher
	return m
}

// MonthWindow returns the first and last calendar day of the month.
// time.Date normalizes day 0 of the following month to the last day of
// this one, which rolls December into January and gets February right in
// leap years.
func MonthWindow(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// Period is the YYYY-MM tag stored on materialized entries; together with
// the owner and description it forms the uniqueness backstop.
func Period(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// Materialize creates the missing pending entries for the owner's rules in
// the target month and returns how many were created. Malformed rules are
// logged and skipped rather than failing the batch; a rule title appearing
// twice in one call produces a single entry.
func (m *Materializer) Materialize(ctx context.Context, userID uint, month time.Month, year int) (int, error) {
	if month < time.January || month > time.December {
		return 0, ErrInvalidMonth
	}

	rules, err := m.rules.ByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(rules) == 0 {
		return 0, nil
	}

	start, end := MonthWindow(year, month)
	daysInMonth := end.Day()

	// Validate and dedup within the batch before touching the ledger.
	seen := make(map[string]models.FixedExpense, len(rules))
	keys := make([]string, 0, len(rules))
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			log.Printf("[WARN] skipping fixed expense id=%d user=%d: %v", rule.ID, rule.UserID, err)
			continue
		}
		key := m.matcher.RuleKey(rule)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = rule
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	existing, err := m.ledger.MatchingDescriptions(ctx, userID, keys, start, end)
	if err != nil {
		return 0, err
	}
	materialized := make(map[string]bool, len(existing))
	for _, tx := range existing {
		materialized[m.matcher.EntryKey(tx)] = true
	}

	period := Period(year, month)
	var batch []models.Transaction
	for _, key := range keys {
		if materialized[key] {
			continue
		}
		rule := seen[key]
		day := rule.DayOfMonth
		if day > daysInMonth {
			day = daysInMonth
		}
		// A shared rule generates the owner's share; the full bill lives in
		// total_amount, keeping my_share + other_share == total_amount.
		amount := rule.Amount
		var total int64
		if rule.IsShared && rule.MyShare > 0 {
			amount = rule.MyShare
			total = rule.MyShare + rule.OtherShare
		}
		batch = append(batch, models.Transaction{
			UserID:        userID,
			Description:   rule.Title,
			Amount:        amount,
			Type:          models.TypeExpense,
			Category:      rule.Category,
			Date:          time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
			Status:        models.StatusPending,
			IsFixed:       true,
			Period:        &period,
			PaymentMethod: rule.PaymentMethod,
			Installments:  1,
			IsShared:      rule.IsShared,
			SharedWithID:  rule.SharedWithID,
			TotalAmount:   total,
			MyShare:       rule.MyShare,
			OtherShare:    rule.OtherShare,
		})
	}

	// Single insert, all-or-nothing. Rows lost to the uniqueness backstop
	// (another request got there first) are simply not counted.
	created, err := m.ledger.CreateBatch(ctx, batch)
	if err != nil {
		return 0, err
	}
	return created, nil
}
