package entities

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceAdjustmentKind represents the direction of a loan-balance change
type BalanceAdjustmentKind string

const (
	BalanceAdjustmentIncrease BalanceAdjustmentKind = "increase"
	BalanceAdjustmentDeduct   BalanceAdjustmentKind = "deduct"
)

// String returns the string representation of the kind
func (k BalanceAdjustmentKind) String() string {
	return string(k)
}

// IsValid reports whether the kind is one of the known values
func (k BalanceAdjustmentKind) IsValid() bool {
	return k == BalanceAdjustmentIncrease || k == BalanceAdjustmentDeduct
}

// BalanceAdjustment is an immutable ledger entry for a loan-balance change.
// Rows are never updated; the reversal protocol deletes them and undoes
// their numeric effect.
type BalanceAdjustment struct {
	ID            int64                 `db:"id"`
	MemberID      int64                 `db:"member_id"`
	Kind          BalanceAdjustmentKind `db:"kind"`
	Amount        decimal.Decimal       `db:"amount"`
	BalanceBefore decimal.Decimal       `db:"balance_before"`
	BalanceAfter  decimal.Decimal       `db:"balance_after"`
	PostedBy      string                `db:"posted_by"`
	// CreatedAt is the effective date of the adjustment, which may be
	// weekend-shifted to the following Monday.
	CreatedAt time.Time `db:"created_at"`
}

// Delta returns the signed effect this adjustment had on the balance
func (a *BalanceAdjustment) Delta() decimal.Decimal {
	if a.Kind == BalanceAdjustmentDeduct {
		return a.Amount.Neg()
	}
	return a.Amount
}

// ReverseDelta returns the increment that undoes this adjustment
func (a *BalanceAdjustment) ReverseDelta() decimal.Decimal {
	return a.Delta().Neg()
}

// Validate checks the before/after arithmetic invariant
func (a *BalanceAdjustment) Validate() error {
	if !a.Kind.IsValid() {
		return errors.New("unknown balance adjustment kind")
	}
	if !a.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if !a.BalanceAfter.Equal(a.BalanceBefore.Add(a.Delta())) {
		return errors.New("balance calculation is inconsistent")
	}
	return nil
}
