package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsAccrual is one row per (member, calendar date) of automatic daily
// savings accrual. Rows are never updated or deleted; the accrual history
// is a permanent audit trail.
type SavingsAccrual struct {
	ID       int64 `db:"id"`
	MemberID int64 `db:"member_id"`
	// AccruedForDate is the business-timezone date this increment covers.
	// (member_id, accrued_for_date) is unique.
	AccruedForDate time.Time       `db:"accrued_for_date"`
	Amount         decimal.Decimal `db:"amount"`
	CreatedAt      time.Time       `db:"created_at"`
}
