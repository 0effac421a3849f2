// Package split expands a shared expense into the ledger entries for each
// party. The owner always gets an entry; the other party gets one only if
// they are a registered user, otherwise their share exists purely as
// metadata on the owner's row.
package split

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"finance-tracker-go/internal/models"
)

var (
	ErrInvalidPercentage = errors.New("percentage must be between 0 and 100")
	ErrInvalidTotal      = errors.New("total must be positive")
)

// UserDirectory answers whether an identifier belongs to a registered user.
type UserDirectory interface {
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
}

type Resolver struct {
	users UserDirectory
}

func NewResolver(users UserDirectory) *Resolver {
	return &Resolver{users: users}
}

// Input describes one shared expense to expand.
type Input struct {
	Description  string
	Category     string
	Date         time.Time
	Total        int64 // full bill, minor units
	MyPercentage int64 // owner's cut, 0..100
	MyShare      int64 // absolute owner share; overrides MyPercentage when positive
	OwnerID      uint
	OwnerUUID    string
	OtherParty   string // registered user's UUID, or a free-text name
	Status       string
}

// Shares splits total by percentage with no penny drift: the owner's share
// is rounded half up and the other party's share is the exact remainder,
// so the two always sum back to the total.
func Shares(total, myPercentage int64) (myShare, otherShare int64) {
	myShare = (total*myPercentage + 50) / 100
	otherShare = total - myShare
	return myShare, otherShare
}

// Resolve returns one or two ledger entries for the shared expense. The
// second entry is created only when OtherParty is a well-formed public
// user ID that resolves to an actual account; an informal name never gets
// a ledger row of its own. When both entries exist they carry the same
// shared transaction ID.
func (r *Resolver) Resolve(ctx context.Context, in Input) ([]models.Transaction, error) {
	if in.Total <= 0 {
		return nil, ErrInvalidTotal
	}
	var myShare, otherShare int64
	if in.MyShare > 0 {
		if in.MyShare > in.Total {
			return nil, ErrInvalidTotal
		}
		myShare = in.MyShare
		otherShare = in.Total - myShare
	} else {
		if in.MyPercentage < 0 || in.MyPercentage > 100 {
			return nil, ErrInvalidPercentage
		}
		myShare, otherShare = Shares(in.Total, in.MyPercentage)
	}

	status := in.Status
	if status == "" {
		status = models.StatusCompleted
	}

	sharedTxID := uuid.NewString()
	owner := models.Transaction{
		UserID:        in.OwnerID,
		Description:   in.Description,
		Amount:        myShare,
		Type:          models.TypeExpense,
		Category:      in.Category,
		Date:          in.Date,
		Status:        status,
		PaymentMethod: models.MethodCash,
		Installments:  1,
		IsShared:      true,
		SharedWithID:  in.OtherParty,
		TotalAmount:   in.Total,
		MyShare:       myShare,
		OtherShare:    otherShare,
		PaidBy:        in.OwnerUUID,
		SharedTxID:    sharedTxID,
	}

	other := r.registered(ctx, in.OtherParty)
	if other == nil {
		return []models.Transaction{owner}, nil
	}

	counterpart := owner
	counterpart.UserID = other.ID
	counterpart.Amount = otherShare
	counterpart.SharedWithID = in.OwnerUUID
	counterpart.MyShare = otherShare
	counterpart.OtherShare = myShare
	// The creator fronted the whole bill; the counterpart's entry starts
	// pending until they settle up.
	counterpart.Status = models.StatusPending

	return []models.Transaction{owner, counterpart}, nil
}

// registered resolves the other party to a user, or nil for informal names.
// The identifier must be a well-formed public ID and must exist; a valid
// UUID with no account behind it is still treated as informal.
func (r *Resolver) registered(ctx context.Context, party string) *models.User {
	if party == "" {
		return nil
	}
	if _, err := uuid.Parse(party); err != nil {
		return nil
	}
	user, err := r.users.ByUUID(ctx, party)
	if err != nil {
		return nil
	}
	return user
}
