package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"kolekta/domain/calendar"
	"kolekta/domain/entities"
	"kolekta/domain/events"
	"kolekta/domain/interfaces"
)

// BalanceAdjustmentParams describes a loan-balance posting request
type BalanceAdjustmentParams struct {
	MemberID int64
	Kind     entities.BalanceAdjustmentKind
	Amount   decimal.Decimal
	// EffectiveDate overrides today as the natural date of the adjustment.
	// Weekend normalization applies either way.
	EffectiveDate *time.Time
	// DaysCount overrides the automatic days counter increment on a deduct
	DaysCount *int
	PostedBy  string
}

// SavingsAdjustmentParams describes a manual savings posting request
type SavingsAdjustmentParams struct {
	MemberID      int64
	Kind          entities.SavingsAdjustmentKind
	Amount        decimal.Decimal
	EffectiveDate *time.Time
	PostedBy      string
}

// adjustmentService implements the adjustment posting protocol
type adjustmentService struct {
	memberRepo         interfaces.MemberRepository
	balanceRepo        interfaces.BalanceAdjustmentRepository
	savingsRepo        interfaces.SavingsAdjustmentRepository
	eventPublisher     interfaces.EventPublisher
	calendar           *calendar.Calendar
	daysCountMilestone int
}

// NewAdjustmentService creates a new adjustment service. The repositories
// and publisher must belong to the same unit of work.
func NewAdjustmentService(
	memberRepo interfaces.MemberRepository,
	balanceRepo interfaces.BalanceAdjustmentRepository,
	savingsRepo interfaces.SavingsAdjustmentRepository,
	eventPublisher interfaces.EventPublisher,
	cal *calendar.Calendar,
	daysCountMilestone int,
) *adjustmentService {
	return &adjustmentService{
		memberRepo:         memberRepo,
		balanceRepo:        balanceRepo,
		savingsRepo:        savingsRepo,
		eventPublisher:     eventPublisher,
		calendar:           cal,
		daysCountMilestone: daysCountMilestone,
	}
}

// PostBalanceAdjustment posts a loan-balance deduct or increase for a member.
// At most one adjustment of each kind per member per calendar day; a second
// attempt returns a *entities.DuplicateEntryError and changes nothing.
func (s *adjustmentService) PostBalanceAdjustment(ctx context.Context, params BalanceAdjustmentParams) (*entities.BalanceAdjustment, error) {
	if !params.Kind.IsValid() {
		return nil, fmt.Errorf("unknown balance adjustment kind %q", params.Kind)
	}
	if !params.Amount.IsPositive() {
		return nil, entities.ErrInvalidAmount
	}

	member, err := s.memberRepo.GetByIDForUpdate(ctx, params.MemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock member: %w", err)
	}
	if member == nil {
		return nil, entities.ErrMemberNotFound
	}

	effective := s.effectiveDate(params.EffectiveDate)

	exists, err := s.balanceRepo.ExistsForMemberSince(ctx, params.MemberID, params.Kind, s.calendar.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate adjustment: %w", err)
	}
	if exists {
		return nil, &entities.DuplicateEntryError{
			MemberID: params.MemberID,
			Kind:     params.Kind.String(),
			Date:     s.calendar.Today(),
		}
	}

	before := member.Balance
	var after decimal.Decimal
	if params.Kind == entities.BalanceAdjustmentDeduct {
		after = member.BalanceAfterDeduct(params.Amount)
	} else {
		after = member.BalanceAfterIncrease(params.Amount)
	}

	adjustment := &entities.BalanceAdjustment{
		MemberID:      params.MemberID,
		Kind:          params.Kind,
		Amount:        params.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		PostedBy:      params.PostedBy,
		CreatedAt:     effective,
	}
	if err := adjustment.Validate(); err != nil {
		return nil, err
	}

	if err := s.memberRepo.UpdateBalance(ctx, params.MemberID, after); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}
	if err := s.balanceRepo.Create(ctx, adjustment); err != nil {
		return nil, fmt.Errorf("failed to record adjustment: %w", err)
	}

	if params.Kind == entities.BalanceAdjustmentDeduct {
		if err := s.advanceDaysCount(ctx, member, params.DaysCount); err != nil {
			return nil, err
		}
	}

	if err := s.eventPublisher.Publish(events.BalanceChangeEvent{
		MemberID:      params.MemberID,
		AdjustmentID:  adjustment.ID,
		Kind:          params.Kind.String(),
		Amount:        params.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		EffectiveDate: effective,
	}); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return adjustment, nil
}

// PostSavingsAdjustment posts a manual savings increase or withdrawal for a
// member, subject to the same per-day duplicate guard. A withdrawal that
// would push savings below zero is rejected with ErrInsufficientSavings.
func (s *adjustmentService) PostSavingsAdjustment(ctx context.Context, params SavingsAdjustmentParams) (*entities.SavingsAdjustment, error) {
	if !params.Kind.IsValid() {
		return nil, fmt.Errorf("unknown savings adjustment kind %q", params.Kind)
	}
	if !params.Amount.IsPositive() {
		return nil, entities.ErrInvalidAmount
	}

	member, err := s.memberRepo.GetByIDForUpdate(ctx, params.MemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock member: %w", err)
	}
	if member == nil {
		return nil, entities.ErrMemberNotFound
	}

	effective := s.effectiveDate(params.EffectiveDate)

	exists, err := s.savingsRepo.ExistsForMemberSince(ctx, params.MemberID, params.Kind, s.calendar.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate adjustment: %w", err)
	}
	if exists {
		return nil, &entities.DuplicateEntryError{
			MemberID: params.MemberID,
			Kind:     params.Kind.String(),
			Date:     s.calendar.Today(),
		}
	}

	before := member.Savings
	var after decimal.Decimal
	if params.Kind == entities.SavingsAdjustmentWithdraw {
		if !member.CanWithdraw(params.Amount) {
			return nil, entities.ErrInsufficientSavings
		}
		after = before.Sub(params.Amount)
	} else {
		after = before.Add(params.Amount)
	}

	adjustment := &entities.SavingsAdjustment{
		MemberID:      params.MemberID,
		Kind:          params.Kind,
		Amount:        params.Amount,
		SavingsBefore: before,
		SavingsAfter:  after,
		PostedBy:      params.PostedBy,
		CreatedAt:     effective,
	}
	if err := adjustment.Validate(); err != nil {
		return nil, err
	}

	if err := s.memberRepo.UpdateSavings(ctx, params.MemberID, after); err != nil {
		return nil, fmt.Errorf("failed to update savings: %w", err)
	}
	if err := s.savingsRepo.Create(ctx, adjustment); err != nil {
		return nil, fmt.Errorf("failed to record adjustment: %w", err)
	}

	if err := s.eventPublisher.Publish(events.SavingsChangeEvent{
		MemberID:      params.MemberID,
		AdjustmentID:  adjustment.ID,
		Kind:          params.Kind.String(),
		Amount:        params.Amount,
		SavingsBefore: before,
		SavingsAfter:  after,
		EffectiveDate: effective,
	}); err != nil {
		log.WithError(err).Error("Failed to publish savings change event")
	}

	return adjustment, nil
}

// effectiveDate resolves the date an adjustment is attributed to: the
// override if given, otherwise now, with weekend dates shifted to Monday
func (s *adjustmentService) effectiveDate(override *time.Time) time.Time {
	natural := s.calendar.Now()
	if override != nil {
		natural = *override
	}
	return s.calendar.NextBusinessDay(natural)
}

// advanceDaysCount bumps the consecutive collection days counter after a
// deduct and emits a milestone event when the new count lands on the
// configured threshold
func (s *adjustmentService) advanceDaysCount(ctx context.Context, member *entities.Member, override *int) error {
	newCount := member.DaysCount + 1
	if override != nil {
		newCount = *override
	}

	if err := s.memberRepo.SetDaysCount(ctx, member.ID, newCount); err != nil {
		return fmt.Errorf("failed to update days count: %w", err)
	}

	if s.daysCountMilestone > 0 && newCount > 0 && newCount%s.daysCountMilestone == 0 {
		if err := s.eventPublisher.Publish(events.MilestoneReachedEvent{
			MemberID:  member.ID,
			DaysCount: newCount,
			Milestone: s.daysCountMilestone,
		}); err != nil {
			log.WithError(err).Error("Failed to publish milestone event")
		}
	}

	return nil
}
