package interfaces

import "context"

// UnitOfWork bundles the repositories behind a single database transaction.
// Events published through EventBus are held until Commit and dropped on
// Rollback.
type UnitOfWork interface {
	// Begin starts the transaction and binds the repositories to it
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback aborts the transaction and discards pending events.
	// Safe to call after Commit.
	Rollback() error

	// MemberRepository returns the member repository for this unit of work
	MemberRepository() MemberRepository

	// BalanceAdjustmentRepository returns the balance ledger repository
	BalanceAdjustmentRepository() BalanceAdjustmentRepository

	// SavingsAdjustmentRepository returns the savings ledger repository
	SavingsAdjustmentRepository() SavingsAdjustmentRepository

	// SavingsAccrualRepository returns the accrual trail repository
	SavingsAccrualRepository() SavingsAccrualRepository

	// AccrualRunRepository returns the accrual run audit repository
	AccrualRunRepository() AccrualRunRepository

	// EventBus returns the transaction-scoped event publisher
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
