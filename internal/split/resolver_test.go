package split

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/store"
)

type fakeDirectory struct {
	users map[string]*models.User
}

func (f *fakeDirectory) ByUUID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func testInput(total, pct int64, otherParty string) Input {
	return Input{
		Description:  "Cena",
		Category:     "salidas",
		Date:         time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC),
		Total:        total,
		MyPercentage: pct,
		OwnerID:      1,
		OwnerUUID:    "owner-uuid",
		OtherParty:   otherParty,
	}
}

func TestSharesConservation(t *testing.T) {
	// No penny drift for any percentage, including odd-cent totals.
	totals := []int64{1, 3, 99, 100, 101, 12345, 999999999}
	for _, total := range totals {
		for pct := int64(0); pct <= 100; pct++ {
			my, other := Shares(total, pct)
			if my+other != total {
				t.Fatalf("total=%d pct=%d: %d + %d != %d", total, pct, my, other, total)
			}
			if my < 0 || other < 0 {
				t.Fatalf("total=%d pct=%d: negative share %d/%d", total, pct, my, other)
			}
		}
	}
}

func TestSharesRounding(t *testing.T) {
	// 50% of an odd total rounds the owner's share half up.
	my, other := Shares(101, 50)
	if my != 51 || other != 50 {
		t.Fatalf("expected 51/50, got %d/%d", my, other)
	}
}

func TestResolveInformalPartyCreatesSingleEntry(t *testing.T) {
	r := NewResolver(&fakeDirectory{})

	entries, err := r.Resolve(context.Background(), testInput(10000, 60, "mi hermano"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry for informal party, got %d", len(entries))
	}

	e := entries[0]
	if e.Amount != 6000 || e.MyShare != 6000 || e.OtherShare != 4000 {
		t.Fatalf("unexpected shares %+v", e)
	}
	if e.TotalAmount != 10000 || !e.IsShared {
		t.Fatalf("expected shared entry with full bill in total_amount, got %+v", e)
	}
	if e.SharedWithID != "mi hermano" {
		t.Fatalf("counterpart metadata lost: %+v", e)
	}
}

func TestResolveRegisteredPartyCreatesBothEntries(t *testing.T) {
	otherUUID := uuid.NewString()
	dir := &fakeDirectory{users: map[string]*models.User{
		otherUUID: {ID: 2, UUID: otherUUID},
	}}
	r := NewResolver(dir)

	entries, err := r.Resolve(context.Background(), testInput(10001, 50, otherUUID))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for registered party, got %d", len(entries))
	}

	owner, other := entries[0], entries[1]
	if owner.UserID != 1 || other.UserID != 2 {
		t.Fatalf("entries assigned to wrong owners: %+v / %+v", owner, other)
	}
	if owner.Amount+other.Amount != 10001 {
		t.Fatalf("shares do not sum to total: %d + %d", owner.Amount, other.Amount)
	}
	if owner.MyShare != other.OtherShare || owner.OtherShare != other.MyShare {
		t.Fatalf("share perspectives not mirrored: %+v / %+v", owner, other)
	}
	if owner.SharedTxID == "" || owner.SharedTxID != other.SharedTxID {
		t.Fatalf("entries not linked by shared tx id: %q vs %q", owner.SharedTxID, other.SharedTxID)
	}
	if owner.PaidBy != "owner-uuid" || other.PaidBy != "owner-uuid" {
		t.Fatalf("paid_by must point at the creator on both entries")
	}
	if other.Status != models.StatusPending {
		t.Fatalf("counterpart should start pending, got %s", other.Status)
	}
}

func TestResolveWellFormedButUnknownUUIDIsInformal(t *testing.T) {
	r := NewResolver(&fakeDirectory{})

	entries, err := r.Resolve(context.Background(), testInput(5000, 50, uuid.NewString()))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("unknown uuid must not get a ledger row, got %d entries", len(entries))
	}
}

func TestResolveExplicitShareOverridesPercentage(t *testing.T) {
	r := NewResolver(&fakeDirectory{})

	in := testInput(10000, 50, "amiga")
	in.MyShare = 7300
	entries, err := r.Resolve(context.Background(), in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	e := entries[0]
	if e.MyShare != 7300 || e.OtherShare != 2700 {
		t.Fatalf("explicit share ignored: %+v", e)
	}
}

func TestResolveRejectsBadInput(t *testing.T) {
	r := NewResolver(&fakeDirectory{})

	if _, err := r.Resolve(context.Background(), testInput(0, 50, "x")); err != ErrInvalidTotal {
		t.Fatalf("expected ErrInvalidTotal, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), testInput(100, 101, "x")); err != ErrInvalidPercentage {
		t.Fatalf("expected ErrInvalidPercentage, got %v", err)
	}
	in := testInput(100, 50, "x")
	in.MyShare = 200
	if _, err := r.Resolve(context.Background(), in); err != ErrInvalidTotal {
		t.Fatalf("expected ErrInvalidTotal for share above total, got %v", err)
	}
}
