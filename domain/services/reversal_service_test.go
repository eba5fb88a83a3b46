package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kolekta/domain/entities"
	"kolekta/domain/events"
)

func testBalanceDeduct(id, memberID int64, amount string) *entities.BalanceAdjustment {
	amt := decimal.RequireFromString(amount)
	return &entities.BalanceAdjustment{
		ID:            id,
		MemberID:      memberID,
		Kind:          entities.BalanceAdjustmentDeduct,
		Amount:        amt,
		BalanceBefore: decimal.RequireFromString("5000.00"),
		BalanceAfter:  decimal.RequireFromString("5000.00").Sub(amt),
		CreatedAt:     time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestReversalService_ReverseBalanceAdjustment_Deduct(t *testing.T) {
	ctx := context.Background()
	m := newAdjustmentMocks()

	adjustment := testBalanceDeduct(42, 7, "500.00")
	member := testMember(7, "4500.00", "100.00", 1)

	m.balanceRepo.On("GetByID", ctx, int64(42)).Return(adjustment, nil)
	m.memberRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(member, nil)
	m.balanceRepo.On("GetLatestForMember", ctx, int64(7)).Return(adjustment, nil)
	// Reversing a deduct adds the amount back
	m.memberRepo.On("ApplyBalanceDelta", ctx, int64(7), decimal.RequireFromString("500.00")).Return(nil)
	m.memberRepo.On("DecrementDaysCount", ctx, int64(7)).Return(nil)
	m.balanceRepo.On("Delete", ctx, int64(42)).Return(nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.AdjustmentReversedEvent")).Return(nil)

	service := NewReversalService(m.memberRepo, m.balanceRepo, m.savingsRepo, m.publisher)

	err := service.ReverseBalanceAdjustment(ctx, 42)

	require.NoError(t, err)

	require.Len(t, m.publisher.Published, 1)
	reversed := m.publisher.Published[0].(events.AdjustmentReversedEvent)
	assert.Equal(t, "balance", reversed.Ledger)
	assert.Equal(t, int64(42), reversed.AdjustmentID)

	m.memberRepo.AssertExpectations(t)
	m.balanceRepo.AssertExpectations(t)
}

func TestReversalService_ReverseBalanceAdjustment_Increase(t *testing.T) {
	ctx := context.Background()
	m := newAdjustmentMocks()

	adjustment := &entities.BalanceAdjustment{
		ID:            43,
		MemberID:      7,
		Kind:          entities.BalanceAdjustmentIncrease,
		Amount:        decimal.RequireFromString("200.00"),
		BalanceBefore: decimal.RequireFromString("5000.00"),
		BalanceAfter:  decimal.RequireFromString("5200.00"),
	}
	member := testMember(7, "5200.00", "100.00", 0)

	m.balanceRepo.On("GetByID", ctx, int64(43)).Return(adjustment, nil)
	m.memberRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(member, nil)
	m.balanceRepo.On("GetLatestForMember", ctx, int64(7)).Return(adjustment, nil)
	// Reversing an increase takes the amount back off
	m.memberRepo.On("ApplyBalanceDelta", ctx, int64(7), decimal.RequireFromString("-200.00")).Return(nil)
	m.balanceRepo.On("Delete", ctx, int64(43)).Return(nil)
	m.publisher.On("Publish", mock.Anything).Return(nil)

	service := NewReversalService(m.memberRepo, m.balanceRepo, m.savingsRepo, m.publisher)

	err := service.ReverseBalanceAdjustment(ctx, 43)

	require.NoError(t, err)
	// The days counter only moves for deducts
	m.memberRepo.AssertNotCalled(t, "DecrementDaysCount", mock.Anything, mock.Anything)
}

func TestReversalService_ReverseBalanceAdjustment_NotFound(t *testing.T) {
	ctx := context.Background()
	m := newAdjustmentMocks()

	m.balanceRepo.On("GetByID", ctx, int64(999)).Return(nil, nil)

	service := NewReversalService(m.memberRepo, m.balanceRepo, m.savingsRepo, m.publisher)

	err := service.ReverseBalanceAdjustment(ctx, 999)

	assert.ErrorIs(t, err, entities.ErrAdjustmentNotFound)
}

func TestReversalService_ReverseBalanceAdjustment_NotLatest(t *testing.T) {
	ctx := context.Background()
	m := newAdjustmentMocks()

	adjustment := testBalanceDeduct(42, 7, "500.00")
	newer := testBalanceDeduct(50, 7, "300.00")
	member := testMember(7, "4200.00", "100.00", 2)

	m.balanceRepo.On("GetByID", ctx, int64(42)).Return(adjustment, nil)
	m.memberRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(member, nil)
	m.balanceRepo.On("GetLatestForMember", ctx, int64(7)).Return(newer, nil)

	service := NewReversalService(m.memberRepo, m.balanceRepo, m.savingsRepo, m.publisher)

	err := service.ReverseBalanceAdjustment(ctx, 42)

	assert.ErrorIs(t, err, entities.ErrNotLatestAdjustment)
	m.memberRepo.AssertNotCalled(t, "ApplyBalanceDelta", mock.Anything, mock.Anything, mock.Anything)
	m.balanceRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestReversalService_ReverseSavingsAdjustment_Withdraw(t *testing.T) {
	ctx := context.Background()
	m := newAdjustmentMocks()

	adjustment := &entities.SavingsAdjustment{
		ID:            61,
		MemberID:      7,
		Kind:          entities.SavingsAdjustmentWithdraw,
		Amount:        decimal.RequireFromString("50.00"),
		SavingsBefore: decimal.RequireFromString("100.00"),
		SavingsAfter:  decimal.RequireFromString("50.00"),
	}
	member := testMember(7, "5000.00", "50.00", 0)

	m.savingsRepo.On("GetByID", ctx, int64(61)).Return(adjustment, nil)
	m.memberRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(member, nil)
	m.savingsRepo.On("GetLatestForMember", ctx, int64(7)).Return(adjustment, nil)
	m.memberRepo.On("ApplySavingsDelta", ctx, int64(7), decimal.RequireFromString("50.00")).Return(nil)
	m.savingsRepo.On("Delete", ctx, int64(61)).Return(nil)
	m.publisher.On("Publish", mock.Anything).Return(nil)

	service := NewReversalService(m.memberRepo, m.balanceRepo, m.savingsRepo, m.publisher)

	err := service.ReverseSavingsAdjustment(ctx, 61)

	require.NoError(t, err)
	m.savingsRepo.AssertExpectations(t)
}

func TestReversalService_ReverseSavingsAdjustment_WouldGoNegative(t *testing.T) {
	ctx := context.Background()
	m := newAdjustmentMocks()

	// Reversing this increase would take 80 off a savings of 30
	adjustment := &entities.SavingsAdjustment{
		ID:            62,
		MemberID:      7,
		Kind:          entities.SavingsAdjustmentIncrease,
		Amount:        decimal.RequireFromString("80.00"),
		SavingsBefore: decimal.RequireFromString("0.00"),
		SavingsAfter:  decimal.RequireFromString("80.00"),
	}
	member := testMember(7, "5000.00", "30.00", 0)

	m.savingsRepo.On("GetByID", ctx, int64(62)).Return(adjustment, nil)
	m.memberRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(member, nil)
	m.savingsRepo.On("GetLatestForMember", ctx, int64(7)).Return(adjustment, nil)

	service := NewReversalService(m.memberRepo, m.balanceRepo, m.savingsRepo, m.publisher)

	err := service.ReverseSavingsAdjustment(ctx, 62)

	assert.ErrorIs(t, err, entities.ErrInsufficientSavings)
	m.memberRepo.AssertNotCalled(t, "ApplySavingsDelta", mock.Anything, mock.Anything, mock.Anything)
}
