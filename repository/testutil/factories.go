package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"kolekta/domain/entities"
)

// CreateTestBalanceAdjustment creates a balance adjustment with consistent
// before/after snapshots for the given kind
func CreateTestBalanceAdjustment(memberID int64, kind entities.BalanceAdjustmentKind, amount decimal.Decimal, balanceBefore decimal.Decimal, effectiveAt time.Time) *entities.BalanceAdjustment {
	after := balanceBefore.Add(amount)
	if kind == entities.BalanceAdjustmentDeduct {
		after = balanceBefore.Sub(amount)
	}
	return &entities.BalanceAdjustment{
		MemberID:      memberID,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  after,
		PostedBy:      "test-officer",
		CreatedAt:     effectiveAt,
	}
}

// CreateTestSavingsAdjustment creates a savings adjustment with consistent
// before/after snapshots for the given kind
func CreateTestSavingsAdjustment(memberID int64, kind entities.SavingsAdjustmentKind, amount decimal.Decimal, savingsBefore decimal.Decimal, effectiveAt time.Time) *entities.SavingsAdjustment {
	after := savingsBefore.Add(amount)
	if kind == entities.SavingsAdjustmentWithdraw {
		after = savingsBefore.Sub(amount)
	}
	return &entities.SavingsAdjustment{
		MemberID:      memberID,
		Kind:          kind,
		Amount:        amount,
		SavingsBefore: savingsBefore,
		SavingsAfter:  after,
		PostedBy:      "test-officer",
		CreatedAt:     effectiveAt,
	}
}

// CreateTestAccrualRun creates an accrual run audit record
func CreateTestAccrualRun(runDate time.Time, rowsInserted, membersUpdated int) *entities.AccrualRun {
	return &entities.AccrualRun{
		RunDate:        runDate,
		RowsInserted:   rowsInserted,
		MembersUpdated: membersUpdated,
		Increment:      decimal.RequireFromString("20.00"),
	}
}
