package testhelpers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"kolekta/domain/entities"
	"kolekta/domain/events"
)

// MockMemberRepository is a mock implementation of MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, name string, balance, savings decimal.Decimal, enrolledOn time.Time) (*entities.Member, error) {
	args := m.Called(ctx, name, balance, savings, enrolledOn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id int64) (*entities.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Member), args.Error(1)
}

func (m *MockMemberRepository) UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error {
	args := m.Called(ctx, id, newBalance)
	return args.Error(0)
}

func (m *MockMemberRepository) UpdateSavings(ctx context.Context, id int64, newSavings decimal.Decimal) error {
	args := m.Called(ctx, id, newSavings)
	return args.Error(0)
}

func (m *MockMemberRepository) SetDaysCount(ctx context.Context, id int64, daysCount int) error {
	args := m.Called(ctx, id, daysCount)
	return args.Error(0)
}

func (m *MockMemberRepository) ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockMemberRepository) ApplySavingsDelta(ctx context.Context, id int64, delta decimal.Decimal) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockMemberRepository) DecrementDaysCount(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMemberRepository) GetAll(ctx context.Context) ([]*entities.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Member), args.Error(1)
}

// MockBalanceAdjustmentRepository is a mock implementation of BalanceAdjustmentRepository
type MockBalanceAdjustmentRepository struct {
	mock.Mock
}

func (m *MockBalanceAdjustmentRepository) Create(ctx context.Context, adjustment *entities.BalanceAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

func (m *MockBalanceAdjustmentRepository) GetByID(ctx context.Context, id int64) (*entities.BalanceAdjustment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BalanceAdjustment), args.Error(1)
}

func (m *MockBalanceAdjustmentRepository) GetLatestForMember(ctx context.Context, memberID int64) (*entities.BalanceAdjustment, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BalanceAdjustment), args.Error(1)
}

func (m *MockBalanceAdjustmentRepository) ExistsForMemberSince(ctx context.Context, memberID int64, kind entities.BalanceAdjustmentKind, since time.Time) (bool, error) {
	args := m.Called(ctx, memberID, kind, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockBalanceAdjustmentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBalanceAdjustmentRepository) ShiftWeekendDates(ctx context.Context, timezone string) (int64, error) {
	args := m.Called(ctx, timezone)
	return args.Get(0).(int64), args.Error(1)
}

// MockSavingsAdjustmentRepository is a mock implementation of SavingsAdjustmentRepository
type MockSavingsAdjustmentRepository struct {
	mock.Mock
}

func (m *MockSavingsAdjustmentRepository) Create(ctx context.Context, adjustment *entities.SavingsAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

func (m *MockSavingsAdjustmentRepository) GetByID(ctx context.Context, id int64) (*entities.SavingsAdjustment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SavingsAdjustment), args.Error(1)
}

func (m *MockSavingsAdjustmentRepository) GetLatestForMember(ctx context.Context, memberID int64) (*entities.SavingsAdjustment, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SavingsAdjustment), args.Error(1)
}

func (m *MockSavingsAdjustmentRepository) ExistsForMemberSince(ctx context.Context, memberID int64, kind entities.SavingsAdjustmentKind, since time.Time) (bool, error) {
	args := m.Called(ctx, memberID, kind, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockSavingsAdjustmentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSavingsAdjustmentRepository) ShiftWeekendDates(ctx context.Context, timezone string) (int64, error) {
	args := m.Called(ctx, timezone)
	return args.Get(0).(int64), args.Error(1)
}

// MockSavingsAccrualRepository is a mock implementation of SavingsAccrualRepository
type MockSavingsAccrualRepository struct {
	mock.Mock
}

func (m *MockSavingsAccrualRepository) AccrueThrough(ctx context.Context, asOf time.Time, increment decimal.Decimal) (int, int, error) {
	args := m.Called(ctx, asOf, increment)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockSavingsAccrualRepository) CountForMember(ctx context.Context, memberID int64) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockSavingsAccrualRepository) ListForMember(ctx context.Context, memberID int64) ([]*entities.SavingsAccrual, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SavingsAccrual), args.Error(1)
}

// MockAccrualRunRepository is a mock implementation of AccrualRunRepository
type MockAccrualRunRepository struct {
	mock.Mock
}

func (m *MockAccrualRunRepository) Create(ctx context.Context, run *entities.AccrualRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockAccrualRunRepository) GetByDate(ctx context.Context, date time.Time) ([]*entities.AccrualRun, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AccrualRun), args.Error(1)
}

func (m *MockAccrualRunRepository) GetLatest(ctx context.Context) (*entities.AccrualRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AccrualRun), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher that also
// records every published event for assertions
type MockEventPublisher struct {
	mock.Mock
	Published []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	m.Published = append(m.Published, event)
	args := m.Called(event)
	return args.Error(0)
}
