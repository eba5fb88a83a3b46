package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member represents a borrower/saver tracked by a collection officer
type Member struct {
	ID      int64           `db:"id"`
	Name    string          `db:"name"`
	Balance decimal.Decimal `db:"balance"` // outstanding loan principal remaining
	Savings decimal.Decimal `db:"savings"` // accumulated savings, never negative
	// DaysCount is the number of consecutive collection days recorded.
	DaysCount int `db:"days_count"`
	// SavingsLastAccruedAt is the last date for which the daily savings
	// accrual was posted. Monotonically non-decreasing, never beyond today.
	SavingsLastAccruedAt time.Time `db:"savings_last_accrued_at"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// CanWithdraw checks whether the member's savings cover a withdrawal amount
func (m *Member) CanWithdraw(amount decimal.Decimal) bool {
	return m.Savings.GreaterThanOrEqual(amount)
}

// BalanceAfterDeduct calculates the balance after deducting a payment
func (m *Member) BalanceAfterDeduct(amount decimal.Decimal) decimal.Decimal {
	return m.Balance.Sub(amount)
}

// BalanceAfterIncrease calculates the balance after a manual increase
func (m *Member) BalanceAfterIncrease(amount decimal.Decimal) decimal.Decimal {
	return m.Balance.Add(amount)
}
