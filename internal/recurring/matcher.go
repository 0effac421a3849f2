package recurring

import "finance-tracker-go/internal/models"

// Matcher maps rules and ledger entries onto a common deduplication key.
// A rule whose key already appears among the month's entries is considered
// materialized and is skipped.
type Matcher interface {
	RuleKey(r models.FixedExpense) string
	EntryKey(t models.Transaction) string
}

// TitleMatcher matches a rule's title against an entry's description.
// This is how generated entries have always been recognized; the known
// consequence is that renaming a rule, or a manual entry that happens to
// carry the exact same title in the same month, changes what gets
// generated. Swapping this for a rule-ID link only requires a new Matcher.
type TitleMatcher struct{}

func (TitleMatcher) RuleKey(r models.FixedExpense) string { return r.Title }

func (TitleMatcher) EntryKey(t models.Transaction) string { return t.Description }
