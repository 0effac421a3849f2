// Package credit projects open installment plans from credit-card ledger
// entries. Everything here is a pure function over the entries and a
// reference date, so the dashboard math is testable with synthetic data
// and an injected "now".
package credit

import (
	"time"

	"finance-tracker-go/internal/models"
)

// Projection is the dashboard view of revolving credit, in minor units.
type Projection struct {
	TotalDebt     int64 `json:"total_debt"`
	NextMonthBill int64 `json:"next_month_bill"`
}

// monthsBetween is the calendar-month difference, ignoring day-of-month.
// A purchase on Jan 31 and an asOf of Feb 1 is one month.
func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// Project computes the remaining debt across all plans and the amount the
// next statement will carry. The purchase month itself counts as zero
// installments paid: the first installment lands on the statement of the
// following month. Installments below 1 are read as a single charge.
//
// The monthly amount is the integer quotient amount/installments; both
// totals derive from the same quotient so they can never disagree, and the
// leftover fraction of a cent is simply never billed.
func Project(entries []models.Transaction, asOf time.Time) Projection {
	var p Projection
	for _, e := range entries {
		installments := e.Installments
		if installments < 1 {
			installments = 1
		}
		monthly := e.Amount / int64(installments)

		elapsed := monthsBetween(e.Date, asOf)
		paid := elapsed
		if paid < 0 {
			paid = 0
		}
		if paid > installments {
			paid = installments
		}

		remaining := installments - paid
		p.TotalDebt += int64(remaining) * monthly

		next := elapsed + 1
		if next >= 1 && next <= installments {
			p.NextMonthBill += monthly
		}
	}
	return p
}
