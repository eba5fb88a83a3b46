package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"kolekta/domain/calendar"
	"kolekta/domain/entities"
	"kolekta/domain/events"
	"kolekta/domain/interfaces"
)

// AccrualRunResult summarizes one accrual run
type AccrualRunResult struct {
	RunDate        string
	RowsInserted   int
	MembersUpdated int
}

// accrualService implements the daily savings accrual engine
type accrualService struct {
	accrualRepo    interfaces.SavingsAccrualRepository
	runRepo        interfaces.AccrualRunRepository
	eventPublisher interfaces.EventPublisher
	calendar       *calendar.Calendar
	increment      decimal.Decimal
}

// NewAccrualService creates a new accrual service. The repositories and
// publisher must belong to the same unit of work so a run is all-or-nothing.
func NewAccrualService(
	accrualRepo interfaces.SavingsAccrualRepository,
	runRepo interfaces.AccrualRunRepository,
	eventPublisher interfaces.EventPublisher,
	cal *calendar.Calendar,
	increment decimal.Decimal,
) *accrualService {
	return &accrualService{
		accrualRepo:    accrualRepo,
		runRepo:        runRepo,
		eventPublisher: eventPublisher,
		calendar:       cal,
		increment:      increment,
	}
}

// AccrueOnce posts the daily increment for every member for every elapsed
// day since that member's last accrual, up to and including today. Safe to
// invoke any number of times: re-runs and concurrent runs converge because
// accrual rows are unique per (member, date).
func (s *accrualService) AccrueOnce(ctx context.Context) (*AccrualRunResult, error) {
	if !s.increment.IsPositive() {
		return nil, fmt.Errorf("daily increment %s: %w", s.increment, entities.ErrInvalidIncrement)
	}

	today := s.calendar.Today()

	rowsInserted, membersUpdated, err := s.accrualRepo.AccrueThrough(ctx, today, s.increment)
	if err != nil {
		return nil, fmt.Errorf("accrual run failed: %w", err)
	}

	run := &entities.AccrualRun{
		RunDate:        today,
		RowsInserted:   rowsInserted,
		MembersUpdated: membersUpdated,
		Increment:      s.increment,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record accrual run: %w", err)
	}

	if err := s.eventPublisher.Publish(events.SavingsAccruedEvent{
		RunDate:        today,
		RowsInserted:   rowsInserted,
		MembersUpdated: membersUpdated,
		Increment:      s.increment,
	}); err != nil {
		log.WithError(err).Error("Failed to publish savings accrued event")
	}

	log.WithFields(log.Fields{
		"runDate":        today.Format("2006-01-02"),
		"rowsInserted":   rowsInserted,
		"membersUpdated": membersUpdated,
		"increment":      s.increment.String(),
	}).Info("Savings accrual run completed")

	return &AccrualRunResult{
		RunDate:        today.Format("2006-01-02"),
		RowsInserted:   rowsInserted,
		MembersUpdated: membersUpdated,
	}, nil
}
