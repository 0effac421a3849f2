package recurring

import (
	"context"
	"fmt"
	"testing"
	"time"

	"finance-tracker-go/internal/models"
)

type fakeRules struct {
	rules []models.FixedExpense
}

func (f *fakeRules) ByUser(_ context.Context, userID uint) ([]models.FixedExpense, error) {
	var out []models.FixedExpense
	for _, r := range f.rules {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeLedger mimics the transactions store, including the uniqueness
// backstop: rows colliding on (user, description, period) are dropped.
type fakeLedger struct {
	entries []models.Transaction
	batches int
}

func (f *fakeLedger) MatchingDescriptions(_ context.Context, userID uint, keys []string, from, to time.Time) ([]models.Transaction, error) {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var out []models.Transaction
	for _, e := range f.entries {
		if e.UserID == userID && want[e.Description] && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) CreateBatch(_ context.Context, txs []models.Transaction) (int, error) {
	f.batches++
	created := 0
	for _, tx := range txs {
		if tx.Period != nil && f.hasPeriodRow(tx.UserID, tx.Description, *tx.Period) {
			continue
		}
		f.entries = append(f.entries, tx)
		created++
	}
	return created, nil
}

func (f *fakeLedger) hasPeriodRow(userID uint, description, period string) bool {
	for _, e := range f.entries {
		if e.UserID == userID && e.Description == description && e.Period != nil && *e.Period == period {
			return true
		}
	}
	return false
}

func rule(userID uint, title string, amount int64, day int) models.FixedExpense {
	return models.FixedExpense{UserID: userID, Title: title, Amount: amount, DayOfMonth: day, Category: "servicios"}
}

func TestMaterializeCreatesPendingEntries(t *testing.T) {
	rules := &fakeRules{rules: []models.FixedExpense{rule(1, "Netflix", 1500, 10)}}
	ledger := &fakeLedger{}
	m := NewMaterializer(rules, ledger)

	created, err := m.Materialize(context.Background(), 1, time.March, 2025)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 created, got %d", created)
	}

	e := ledger.entries[0]
	if e.Description != "Netflix" || e.Amount != 1500 {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Status != models.StatusPending || !e.IsFixed {
		t.Fatalf("expected pending fixed entry, got status=%s fixed=%v", e.Status, e.IsFixed)
	}
	want := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	if !e.Date.Equal(want) {
		t.Fatalf("expected date %v, got %v", want, e.Date)
	}
	if e.Period == nil || *e.Period != "2025-03" {
		t.Fatalf("expected period 2025-03, got %v", e.Period)
	}
}

func TestMaterializeIdempotent(t *testing.T) {
	rules := &fakeRules{rules: []models.FixedExpense{
		rule(1, "Netflix", 1500, 10),
		rule(1, "Alquiler", 250000, 5),
	}}
	ledger := &fakeLedger{}
	m := NewMaterializer(rules, ledger)

	created, err := m.Materialize(context.Background(), 1, time.March, 2025)
	if err != nil || created != 2 {
		t.Fatalf("first run: created=%d err=%v", created, err)
	}

	// The user pays one of them before the second run.
	ledger.entries[0].Status = models.StatusCompleted

	created, err = m.Materialize(context.Background(), 1, time.March, 2025)
	if err != nil || created != 0 {
		t.Fatalf("second run: created=%d err=%v", created, err)
	}
	if len(ledger.entries) != 2 {
		t.Fatalf("expected 2 entries after rerun, got %d", len(ledger.entries))
	}
	if ledger.entries[0].Status != models.StatusCompleted {
		t.Fatalf("completed entry was reset to %s", ledger.entries[0].Status)
	}
}

func TestMaterializeDayClamping(t *testing.T) {
	cases := []struct {
		year    int
		wantDay int
	}{
		{2025, 28}, // non-leap February
		{2024, 29}, // leap February
	}
	for _, tc := range cases {
		rules := &fakeRules{rules: []models.FixedExpense{rule(1, "Seguro", 9000, 31)}}
		ledger := &fakeLedger{}
		m := NewMaterializer(rules, ledger)

		if _, err := m.Materialize(context.Background(), 1, time.February, tc.year); err != nil {
			t.Fatalf("year %d: %v", tc.year, err)
		}
		if got := ledger.entries[0].Date.Day(); got != tc.wantDay {
			t.Fatalf("year %d: expected day %d, got %d", tc.year, tc.wantDay, got)
		}
	}
}

func TestMaterializeSkipsMalformedRules(t *testing.T) {
	rules := &fakeRules{rules: []models.FixedExpense{
		{UserID: 1, Title: "", Amount: 1000, DayOfMonth: 5},      // no title
		{UserID: 1, Title: "Luz", Amount: 0, DayOfMonth: 5},      // no amount
		{UserID: 1, Title: "Gas", Amount: 2000, DayOfMonth: 40},  // bad day
		{UserID: 1, Title: "Agua", Amount: 3000, DayOfMonth: 12}, // fine
	}}
	ledger := &fakeLedger{}
	m := NewMaterializer(rules, ledger)

	created, err := m.Materialize(context.Background(), 1, time.June, 2025)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if created != 1 || ledger.entries[0].Description != "Agua" {
		t.Fatalf("expected only Agua, created=%d entries=%+v", created, ledger.entries)
	}
}

func TestMaterializeDedupsWithinBatch(t *testing.T) {
	rules := &fakeRules{rules: []models.FixedExpense{
		rule(1, "Internet", 12000, 3),
		rule(1, "Internet", 12000, 3),
	}}
	ledger := &fakeLedger{}
	m := NewMaterializer(rules, ledger)

	created, err := m.Materialize(context.Background(), 1, time.May, 2025)
	if err != nil || created != 1 {
		t.Fatalf("expected 1 created for duplicate titles, got created=%d err=%v", created, err)
	}
}

func TestMaterializeSharedRuleUsesOwnShare(t *testing.T) {
	r := rule(1, "Alquiler", 200000, 1)
	r.IsShared = true
	r.SharedWithID = "flatmate"
	r.MyShare = 120000
	r.OtherShare = 80000
	rules := &fakeRules{rules: []models.FixedExpense{r}}
	ledger := &fakeLedger{}
	m := NewMaterializer(rules, ledger)

	if _, err := m.Materialize(context.Background(), 1, time.April, 2025); err != nil {
		t.Fatalf("materialize: %v", err)
	}
	e := ledger.entries[0]
	if e.Amount != 120000 {
		t.Fatalf("expected own share as amount, got %d", e.Amount)
	}
	if e.TotalAmount != 200000 || e.MyShare+e.OtherShare != e.TotalAmount {
		t.Fatalf("share conservation broken: %+v", e)
	}
}

func TestMaterializeSingleBatchWrite(t *testing.T) {
	var rs []models.FixedExpense
	for i := 0; i < 500; i++ {
		rs = append(rs, rule(1, fmt.Sprintf("servicio-%03d", i), int64(100+i), 1+i%28))
	}
	rules := &fakeRules{rules: rs}
	ledger := &fakeLedger{}
	m := NewMaterializer(rules, ledger)

	created, err := m.Materialize(context.Background(), 1, time.March, 2025)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if created != 500 {
		t.Fatalf("expected 500 created, got %d", created)
	}
	if ledger.batches != 1 {
		t.Fatalf("expected a single batch write, got %d", ledger.batches)
	}
}

// naiveMaterialize is the slow per-rule find-then-create loop, kept only as
// an oracle for the batched implementation.
func naiveMaterialize(rules []models.FixedExpense, ledger *fakeLedger, userID uint, month time.Month, year int, matcher Matcher) int {
	start, end := MonthWindow(year, month)
	period := Period(year, month)
	created := 0
	for _, r := range rules {
		if r.UserID != userID || r.Validate() != nil {
			continue
		}
		exists := false
		for _, e := range ledger.entries {
			if e.UserID == userID && matcher.EntryKey(e) == matcher.RuleKey(r) && !e.Date.Before(start) && !e.Date.After(end) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		day := r.DayOfMonth
		if day > end.Day() {
			day = end.Day()
		}
		ledger.entries = append(ledger.entries, models.Transaction{
			UserID:      userID,
			Description: r.Title,
			Amount:      r.Amount,
			Type:        models.TypeExpense,
			Date:        time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
			Status:      models.StatusPending,
			IsFixed:     true,
			Period:      &period,
		})
		created++
	}
	return created
}

func TestMaterializeMatchesNaiveOracle(t *testing.T) {
	var rs []models.FixedExpense
	for i := 0; i < 120; i++ {
		r := rule(1, fmt.Sprintf("gasto-%02d", i%60), int64(50+i), 1+i%31)
		if i%17 == 0 {
			r.Amount = 0 // malformed, both implementations must skip it
		}
		rs = append(rs, r)
	}
	// A few pre-existing entries so the existence check matters.
	seed := func() *fakeLedger {
		l := &fakeLedger{}
		for i := 0; i < 10; i++ {
			l.entries = append(l.entries, models.Transaction{
				UserID:      1,
				Description: fmt.Sprintf("gasto-%02d", i*5),
				Amount:      100,
				Type:        models.TypeExpense,
				Date:        time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
				Status:      models.StatusCompleted,
			})
		}
		return l
	}

	fast := seed()
	m := NewMaterializer(&fakeRules{rules: rs}, fast)
	fastCreated, err := m.Materialize(context.Background(), 1, time.March, 2025)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	slow := seed()
	slowCreated := naiveMaterialize(rs, slow, 1, time.March, 2025, TitleMatcher{})

	if fastCreated != slowCreated {
		t.Fatalf("batched created %d, naive oracle created %d", fastCreated, slowCreated)
	}
	if len(fast.entries) != len(slow.entries) {
		t.Fatalf("batched ledger has %d entries, naive has %d", len(fast.entries), len(slow.entries))
	}
}

func TestMaterializeInvalidMonth(t *testing.T) {
	m := NewMaterializer(&fakeRules{}, &fakeLedger{})
	if _, err := m.Materialize(context.Background(), 1, time.Month(13), 2025); err != ErrInvalidMonth {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestMonthWindow(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		days  int
	}{
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tc := range cases {
		start, end := MonthWindow(tc.year, tc.month)
		if start.Day() != 1 || start.Month() != tc.month {
			t.Fatalf("%v %d: bad start %v", tc.month, tc.year, start)
		}
		if end.Day() != tc.days || end.Month() != tc.month {
			t.Fatalf("%v %d: bad end %v", tc.month, tc.year, end)
		}
	}

	// December must roll into January of the next year.
	_, end := MonthWindow(2025, time.December)
	if next := end.AddDate(0, 0, 1); next.Month() != time.January || next.Year() != 2026 {
		t.Fatalf("december does not roll over: %v", next)
	}
}

func TestPeriod(t *testing.T) {
	if p := Period(2025, time.March); p != "2025-03" {
		t.Fatalf("unexpected period %s", p)
	}
	if p := Period(2025, time.December); p != "2025-12" {
		t.Fatalf("unexpected period %s", p)
	}
}
