package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kolekta/database"
	"kolekta/domain/events"
	"kolekta/domain/interfaces"
)

// unitOfWork implements the interfaces.UnitOfWork interface
type unitOfWork struct {
	db                    *database.DB
	tx                    pgx.Tx
	ctx                   context.Context
	transactionalBus      interfaces.TransactionalEventPublisher
	memberRepo            interfaces.MemberRepository
	balanceAdjustmentRepo interfaces.BalanceAdjustmentRepository
	savingsAdjustmentRepo interfaces.SavingsAdjustmentRepository
	savingsAccrualRepo    interfaces.SavingsAccrualRepository
	accrualRunRepo        interfaces.AccrualRunRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() interfaces.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.memberRepo = newMemberRepositoryWithTx(tx)
	u.balanceAdjustmentRepo = newBalanceAdjustmentRepositoryWithTx(tx)
	u.savingsAdjustmentRepo = newSavingsAdjustmentRepositoryWithTx(tx)
	u.savingsAccrualRepo = newSavingsAccrualRepositoryWithTx(tx)
	u.accrualRunRepo = newAccrualRunRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// MemberRepository returns the member repository for this unit of work
func (u *unitOfWork) MemberRepository() interfaces.MemberRepository {
	if u.memberRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.memberRepo
}

// BalanceAdjustmentRepository returns the balance ledger repository
func (u *unitOfWork) BalanceAdjustmentRepository() interfaces.BalanceAdjustmentRepository {
	if u.balanceAdjustmentRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.balanceAdjustmentRepo
}

// SavingsAdjustmentRepository returns the savings ledger repository
func (u *unitOfWork) SavingsAdjustmentRepository() interfaces.SavingsAdjustmentRepository {
	if u.savingsAdjustmentRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.savingsAdjustmentRepo
}

// SavingsAccrualRepository returns the accrual trail repository
func (u *unitOfWork) SavingsAccrualRepository() interfaces.SavingsAccrualRepository {
	if u.savingsAccrualRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.savingsAccrualRepo
}

// AccrualRunRepository returns the accrual run audit repository
func (u *unitOfWork) AccrualRunRepository() interfaces.AccrualRunRepository {
	if u.accrualRunRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accrualRunRepo
}

// EventBus returns the transaction-scoped event publisher
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalBus
}
