package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"kolekta/domain/entities"
	"kolekta/domain/events"
	"kolekta/domain/interfaces"
)

// reversalService implements the adjustment reversal protocol
type reversalService struct {
	memberRepo     interfaces.MemberRepository
	balanceRepo    interfaces.BalanceAdjustmentRepository
	savingsRepo    interfaces.SavingsAdjustmentRepository
	eventPublisher interfaces.EventPublisher
}

// NewReversalService creates a new reversal service. The repositories and
// publisher must belong to the same unit of work so a reversal is
// all-or-nothing.
func NewReversalService(
	memberRepo interfaces.MemberRepository,
	balanceRepo interfaces.BalanceAdjustmentRepository,
	savingsRepo interfaces.SavingsAdjustmentRepository,
	eventPublisher interfaces.EventPublisher,
) *reversalService {
	return &reversalService{
		memberRepo:     memberRepo,
		balanceRepo:    balanceRepo,
		savingsRepo:    savingsRepo,
		eventPublisher: eventPublisher,
	}
}

// ReverseBalanceAdjustment undoes a posted balance adjustment: the inverse
// delta is applied to the member's current balance, the days counter is
// walked back for a deduct, and the adjustment row is deleted. Only the
// member's most recent balance adjustment can be reversed.
func (s *reversalService) ReverseBalanceAdjustment(ctx context.Context, adjustmentID int64) error {
	adjustment, err := s.balanceRepo.GetByID(ctx, adjustmentID)
	if err != nil {
		return fmt.Errorf("failed to load adjustment: %w", err)
	}
	if adjustment == nil {
		return entities.ErrAdjustmentNotFound
	}

	member, err := s.memberRepo.GetByIDForUpdate(ctx, adjustment.MemberID)
	if err != nil {
		return fmt.Errorf("failed to lock member: %w", err)
	}
	if member == nil {
		return entities.ErrMemberNotFound
	}

	latest, err := s.balanceRepo.GetLatestForMember(ctx, adjustment.MemberID)
	if err != nil {
		return fmt.Errorf("failed to load latest adjustment: %w", err)
	}
	if latest == nil || latest.ID != adjustment.ID {
		return entities.ErrNotLatestAdjustment
	}

	if err := s.memberRepo.ApplyBalanceDelta(ctx, adjustment.MemberID, adjustment.ReverseDelta()); err != nil {
		return fmt.Errorf("failed to undo balance change: %w", err)
	}

	if adjustment.Kind == entities.BalanceAdjustmentDeduct {
		if err := s.memberRepo.DecrementDaysCount(ctx, adjustment.MemberID); err != nil {
			return fmt.Errorf("failed to walk back days count: %w", err)
		}
	}

	if err := s.balanceRepo.Delete(ctx, adjustment.ID); err != nil {
		return fmt.Errorf("failed to delete adjustment: %w", err)
	}

	if err := s.eventPublisher.Publish(events.AdjustmentReversedEvent{
		MemberID:     adjustment.MemberID,
		AdjustmentID: adjustment.ID,
		Ledger:       "balance",
		Kind:         adjustment.Kind.String(),
		Amount:       adjustment.Amount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish reversal event")
	}

	return nil
}

// ReverseSavingsAdjustment undoes a posted savings adjustment the same way.
// Reversing an increase that has since been withdrawn below the increase
// amount is rejected, since savings can never go negative.
func (s *reversalService) ReverseSavingsAdjustment(ctx context.Context, adjustmentID int64) error {
	adjustment, err := s.savingsRepo.GetByID(ctx, adjustmentID)
	if err != nil {
		return fmt.Errorf("failed to load adjustment: %w", err)
	}
	if adjustment == nil {
		return entities.ErrAdjustmentNotFound
	}

	member, err := s.memberRepo.GetByIDForUpdate(ctx, adjustment.MemberID)
	if err != nil {
		return fmt.Errorf("failed to lock member: %w", err)
	}
	if member == nil {
		return entities.ErrMemberNotFound
	}

	latest, err := s.savingsRepo.GetLatestForMember(ctx, adjustment.MemberID)
	if err != nil {
		return fmt.Errorf("failed to load latest adjustment: %w", err)
	}
	if latest == nil || latest.ID != adjustment.ID {
		return entities.ErrNotLatestAdjustment
	}

	reverse := adjustment.ReverseDelta()
	if reverse.IsNegative() && member.Savings.Add(reverse).IsNegative() {
		return entities.ErrInsufficientSavings
	}

	if err := s.memberRepo.ApplySavingsDelta(ctx, adjustment.MemberID, reverse); err != nil {
		return fmt.Errorf("failed to undo savings change: %w", err)
	}

	if err := s.savingsRepo.Delete(ctx, adjustment.ID); err != nil {
		return fmt.Errorf("failed to delete adjustment: %w", err)
	}

	if err := s.eventPublisher.Publish(events.AdjustmentReversedEvent{
		MemberID:     adjustment.MemberID,
		AdjustmentID: adjustment.ID,
		Ledger:       "savings",
		Kind:         adjustment.Kind.String(),
		Amount:       adjustment.Amount,
	}); err != nil {
		log.WithError(err).Error("Failed to publish reversal event")
	}

	return nil
}
