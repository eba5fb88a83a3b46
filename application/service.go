package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"kolekta/config"
	"kolekta/domain/calendar"
	"kolekta/domain/entities"
	"kolekta/domain/events"
	"kolekta/domain/interfaces"
	"kolekta/domain/services"
)

// Adjustment kinds as submitted by collection officers
const (
	KindBalanceDeduct   = "BALANCE_DEDUCT"
	KindBalanceIncrease = "BALANCE_INCREASE"
	KindSavingsIncrease = "SAVINGS_INCREASE"
	KindSavingsWithdraw = "SAVINGS_WITHDRAW"
)

// Ledger identifies which adjustment ledger an operation targets
type Ledger string

const (
	LedgerBalance Ledger = "balance"
	LedgerSavings Ledger = "savings"
)

// AdjustmentRequest is a single posting request
type AdjustmentRequest struct {
	MemberID      int64
	Kind          string
	Amount        decimal.Decimal
	EffectiveDate *time.Time
	DaysCount     *int
	PostedBy      string
}

// Adjustment is the ledger-neutral view of a posted adjustment returned to callers
type Adjustment struct {
	ID            int64
	MemberID      int64
	Ledger        Ledger
	Kind          string
	Amount        decimal.Decimal
	Before        decimal.Decimal
	After         decimal.Decimal
	EffectiveDate time.Time
}

// Service is the operation facade over the ledger core. Each call owns its
// unit-of-work lifecycle; callers never see a transaction.
type Service struct {
	uowFactory interfaces.UnitOfWorkFactory
	eventBus   *events.Bus
	calendar   *calendar.Calendar
	cfg        *config.Config
}

// NewService creates the application service
func NewService(uowFactory interfaces.UnitOfWorkFactory, eventBus *events.Bus, cal *calendar.Calendar, cfg *config.Config) *Service {
	return &Service{
		uowFactory: uowFactory,
		eventBus:   eventBus,
		calendar:   cal,
		cfg:        cfg,
	}
}

// AccrueSavingsOnce runs one accrual pass for all members. Idempotent; safe
// to call at any frequency from cron, CLI and manual triggers concurrently.
func (s *Service) AccrueSavingsOnce(ctx context.Context) (*services.AccrualRunResult, error) {
	// Validate the configured increment before touching the store
	increment, err := s.cfg.ParseDailySavingsIncrement()
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin accrual transaction: %w", err)
	}
	defer uow.Rollback()

	accrualService := services.NewAccrualService(
		uow.SavingsAccrualRepository(),
		uow.AccrualRunRepository(),
		uow.EventBus(),
		s.calendar,
		increment,
	)

	result, err := accrualService.AccrueOnce(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit accrual run: %w", err)
	}

	return result, nil
}

// PostAdjustment posts a single adjustment for a member, dispatching on kind
func (s *Service) PostAdjustment(ctx context.Context, req AdjustmentRequest) (*Adjustment, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin adjustment transaction: %w", err)
	}
	defer uow.Rollback()

	adjustment, err := s.postWithinUnitOfWork(ctx, uow, req)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	return adjustment, nil
}

func (s *Service) postWithinUnitOfWork(ctx context.Context, uow interfaces.UnitOfWork, req AdjustmentRequest) (*Adjustment, error) {
	adjustmentService := services.NewAdjustmentService(
		uow.MemberRepository(),
		uow.BalanceAdjustmentRepository(),
		uow.SavingsAdjustmentRepository(),
		uow.EventBus(),
		s.calendar,
		s.cfg.DaysCountMilestone,
	)

	switch req.Kind {
	case KindBalanceDeduct, KindBalanceIncrease:
		kind := entities.BalanceAdjustmentDeduct
		if req.Kind == KindBalanceIncrease {
			kind = entities.BalanceAdjustmentIncrease
		}
		posted, err := adjustmentService.PostBalanceAdjustment(ctx, services.BalanceAdjustmentParams{
			MemberID:      req.MemberID,
			Kind:          kind,
			Amount:        req.Amount,
			EffectiveDate: req.EffectiveDate,
			DaysCount:     req.DaysCount,
			PostedBy:      req.PostedBy,
		})
		if err != nil {
			return nil, err
		}
		return &Adjustment{
			ID:            posted.ID,
			MemberID:      posted.MemberID,
			Ledger:        LedgerBalance,
			Kind:          req.Kind,
			Amount:        posted.Amount,
			Before:        posted.BalanceBefore,
			After:         posted.BalanceAfter,
			EffectiveDate: posted.CreatedAt,
		}, nil

	case KindSavingsIncrease, KindSavingsWithdraw:
		kind := entities.SavingsAdjustmentIncrease
		if req.Kind == KindSavingsWithdraw {
			kind = entities.SavingsAdjustmentWithdraw
		}
		posted, err := adjustmentService.PostSavingsAdjustment(ctx, services.SavingsAdjustmentParams{
			MemberID:      req.MemberID,
			Kind:          kind,
			Amount:        req.Amount,
			EffectiveDate: req.EffectiveDate,
			PostedBy:      req.PostedBy,
		})
		if err != nil {
			return nil, err
		}
		return &Adjustment{
			ID:            posted.ID,
			MemberID:      posted.MemberID,
			Ledger:        LedgerSavings,
			Kind:          req.Kind,
			Amount:        posted.Amount,
			Before:        posted.SavingsBefore,
			After:         posted.SavingsAfter,
			EffectiveDate: posted.CreatedAt,
		}, nil

	default:
		return nil, fmt.Errorf("unknown adjustment kind %q", req.Kind)
	}
}

// ReverseAdjustment undoes a posted adjustment in the given ledger
func (s *Service) ReverseAdjustment(ctx context.Context, ledger Ledger, adjustmentID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin reversal transaction: %w", err)
	}
	defer uow.Rollback()

	reversalService := services.NewReversalService(
		uow.MemberRepository(),
		uow.BalanceAdjustmentRepository(),
		uow.SavingsAdjustmentRepository(),
		uow.EventBus(),
	)

	var err error
	switch ledger {
	case LedgerBalance:
		err = reversalService.ReverseBalanceAdjustment(ctx, adjustmentID)
	case LedgerSavings:
		err = reversalService.ReverseSavingsAdjustment(ctx, adjustmentID)
	default:
		return fmt.Errorf("unknown ledger %q", ledger)
	}
	if err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit reversal: %w", err)
	}

	return nil
}

// BackfillWeekendDates shifts historical weekend-dated adjustment rows to
// the following Monday in both ledgers. Re-running it shifts nothing.
func (s *Service) BackfillWeekendDates(ctx context.Context) (balanceShifted, savingsShifted int64, err error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to begin backfill transaction: %w", err)
	}
	defer uow.Rollback()

	tz := s.cfg.BusinessTimezone

	balanceShifted, err = uow.BalanceAdjustmentRepository().ShiftWeekendDates(ctx, tz)
	if err != nil {
		return 0, 0, err
	}
	savingsShifted, err = uow.SavingsAdjustmentRepository().ShiftWeekendDates(ctx, tz)
	if err != nil {
		return 0, 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit backfill: %w", err)
	}

	log.WithFields(log.Fields{
		"balanceRowsShifted": balanceShifted,
		"savingsRowsShifted": savingsShifted,
		"timezone":           tz,
	}).Info("Weekend date backfill completed")

	return balanceShifted, savingsShifted, nil
}

// IsDuplicateEntry reports whether an error is the expected same-day
// duplicate rejection
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, entities.ErrDuplicateEntry)
}
