package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccrualRun represents one invocation of the daily savings accrual job
type AccrualRun struct {
	ID             int64           `db:"id"`
	RunDate        time.Time       `db:"run_date"`
	RowsInserted   int             `db:"rows_inserted"`
	MembersUpdated int             `db:"members_updated"`
	Increment      decimal.Decimal `db:"increment"`
	CreatedAt      time.Time       `db:"created_at"`
}

// WasNoOp reports whether the run found nothing to accrue
func (r *AccrualRun) WasNoOp() bool {
	return r.RowsInserted == 0
}
