package entities

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SavingsAdjustmentKind represents the direction of a manual savings change
type SavingsAdjustmentKind string

const (
	SavingsAdjustmentIncrease SavingsAdjustmentKind = "increase"
	SavingsAdjustmentWithdraw SavingsAdjustmentKind = "withdraw"
)

// String returns the string representation of the kind
func (k SavingsAdjustmentKind) String() string {
	return string(k)
}

// IsValid reports whether the kind is one of the known values
func (k SavingsAdjustmentKind) IsValid() bool {
	return k == SavingsAdjustmentIncrease || k == SavingsAdjustmentWithdraw
}

// SavingsAdjustment is an immutable ledger entry for a manual savings
// change, distinct from the automatic daily accrual.
type SavingsAdjustment struct {
	ID            int64                 `db:"id"`
	MemberID      int64                 `db:"member_id"`
	Kind          SavingsAdjustmentKind `db:"kind"`
	Amount        decimal.Decimal       `db:"amount"`
	SavingsBefore decimal.Decimal       `db:"savings_before"`
	SavingsAfter  decimal.Decimal       `db:"savings_after"`
	PostedBy      string                `db:"posted_by"`
	// CreatedAt is the effective date of the adjustment, which may be
	// weekend-shifted to the following Monday.
	CreatedAt time.Time `db:"created_at"`
}

// Delta returns the signed effect this adjustment had on the savings
func (a *SavingsAdjustment) Delta() decimal.Decimal {
	if a.Kind == SavingsAdjustmentWithdraw {
		return a.Amount.Neg()
	}
	return a.Amount
}

// ReverseDelta returns the increment that undoes this adjustment
func (a *SavingsAdjustment) ReverseDelta() decimal.Decimal {
	return a.Delta().Neg()
}

// Validate checks the before/after arithmetic invariant
func (a *SavingsAdjustment) Validate() error {
	if !a.Kind.IsValid() {
		return errors.New("unknown savings adjustment kind")
	}
	if !a.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if !a.SavingsAfter.Equal(a.SavingsBefore.Add(a.Delta())) {
		return errors.New("savings calculation is inconsistent")
	}
	return nil
}
