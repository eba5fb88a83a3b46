package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"kolekta/domain/entities"
	"kolekta/domain/events"
)

// MemberRepository defines the interface for member data access
type MemberRepository interface {
	// Create creates a new member with opening balance and savings.
	// enrolledOn is the enrollment date in the business timezone; accrual
	// starts the day after it.
	Create(ctx context.Context, name string, balance, savings decimal.Decimal, enrolledOn time.Time) (*entities.Member, error)

	// GetByID retrieves a member by primary key
	GetByID(ctx context.Context, id int64) (*entities.Member, error)

	// GetByIDForUpdate retrieves a member with a row lock, serializing
	// concurrent adjustments against the same member
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Member, error)

	// UpdateBalance writes a new balance for the member
	UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error

	// UpdateSavings writes a new savings total for the member
	UpdateSavings(ctx context.Context, id int64, newSavings decimal.Decimal) error

	// SetDaysCount writes the consecutive collection days counter
	SetDaysCount(ctx context.Context, id int64, daysCount int) error

	// ApplyBalanceDelta atomically increments the member's balance
	ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal) error

	// ApplySavingsDelta atomically increments the member's savings
	ApplySavingsDelta(ctx context.Context, id int64, delta decimal.Decimal) error

	// DecrementDaysCount decrements the days counter, floored at zero
	DecrementDaysCount(ctx context.Context, id int64) error

	// GetAll returns all members
	GetAll(ctx context.Context) ([]*entities.Member, error)
}

// BalanceAdjustmentRepository defines the interface for the loan-balance ledger
type BalanceAdjustmentRepository interface {
	// Create inserts a new adjustment row with its effective date
	Create(ctx context.Context, adjustment *entities.BalanceAdjustment) error

	// GetByID retrieves an adjustment by primary key
	GetByID(ctx context.Context, id int64) (*entities.BalanceAdjustment, error)

	// GetLatestForMember returns the member's most recent adjustment
	GetLatestForMember(ctx context.Context, memberID int64) (*entities.BalanceAdjustment, error)

	// ExistsForMemberSince reports whether an adjustment of the given kind
	// exists for the member with an effective date at or after `since`
	ExistsForMemberSince(ctx context.Context, memberID int64, kind entities.BalanceAdjustmentKind, since time.Time) (bool, error)

	// Delete removes an adjustment row (reversal protocol only)
	Delete(ctx context.Context, id int64) error

	// ShiftWeekendDates moves every row whose effective date falls on a
	// weekend in the given timezone forward to the following Monday.
	// Returns the number of rows shifted; a second run shifts zero.
	ShiftWeekendDates(ctx context.Context, timezone string) (int64, error)
}

// SavingsAdjustmentRepository defines the interface for the savings ledger
type SavingsAdjustmentRepository interface {
	// Create inserts a new adjustment row with its effective date
	Create(ctx context.Context, adjustment *entities.SavingsAdjustment) error

	// GetByID retrieves an adjustment by primary key
	GetByID(ctx context.Context, id int64) (*entities.SavingsAdjustment, error)

	// GetLatestForMember returns the member's most recent adjustment
	GetLatestForMember(ctx context.Context, memberID int64) (*entities.SavingsAdjustment, error)

	// ExistsForMemberSince reports whether an adjustment of the given kind
	// exists for the member with an effective date at or after `since`
	ExistsForMemberSince(ctx context.Context, memberID int64, kind entities.SavingsAdjustmentKind, since time.Time) (bool, error)

	// Delete removes an adjustment row (reversal protocol only)
	Delete(ctx context.Context, id int64) error

	// ShiftWeekendDates moves every row whose effective date falls on a
	// weekend in the given timezone forward to the following Monday
	ShiftWeekendDates(ctx context.Context, timezone string) (int64, error)
}

// SavingsAccrualRepository defines the interface for the daily accrual trail
type SavingsAccrualRepository interface {
	// AccrueThrough posts one accrual row per member per elapsed business
	// date up to and including asOf, skipping rows that already exist, and
	// updates each affected member's savings and savings_last_accrued_at.
	// Returns (rows inserted, members updated).
	AccrueThrough(ctx context.Context, asOf time.Time, increment decimal.Decimal) (int, int, error)

	// CountForMember returns the number of accrual rows for a member
	CountForMember(ctx context.Context, memberID int64) (int, error)

	// ListForMember returns a member's accrual rows, oldest first
	ListForMember(ctx context.Context, memberID int64) ([]*entities.SavingsAccrual, error)
}

// AccrualRunRepository defines the interface for accrual run audit records
type AccrualRunRepository interface {
	// Create creates a new accrual run record
	Create(ctx context.Context, run *entities.AccrualRun) error

	// GetByDate returns all runs recorded for a specific date
	GetByDate(ctx context.Context, date time.Time) ([]*entities.AccrualRun, error)

	// GetLatest returns the most recent run
	GetLatest(ctx context.Context) (*entities.AccrualRun, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding
// transaction resolves. Flush delivers the buffered events after commit;
// Discard drops them on rollback.
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush delivers all buffered events
	Flush(ctx context.Context) error

	// Discard drops all buffered events
	Discard()
}
