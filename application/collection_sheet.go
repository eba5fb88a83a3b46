package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"kolekta/domain/entities"
	"kolekta/domain/events"
)

// CollectionSheetEntry is one row of an officer's daily collection sheet
type CollectionSheetEntry struct {
	MemberID int64
	Kind     string
	Amount   string // decimal string as keyed in by the officer
	PostedBy string
}

// EntryStatus classifies the outcome of a single sheet entry
type EntryStatus string

const (
	EntryPosted    EntryStatus = "posted"
	EntryDuplicate EntryStatus = "duplicate"
	EntryNotFound  EntryStatus = "member_not_found"
	EntryRejected  EntryStatus = "rejected"
	EntryFailed    EntryStatus = "failed"
)

// EntryOutcome is the per-row result of processing a collection sheet
type EntryOutcome struct {
	MemberID     int64
	Kind         string
	Status       EntryStatus
	AdjustmentID int64
	Reason       string
}

// SheetResult summarizes a processed collection sheet
type SheetResult struct {
	Outcomes []EntryOutcome
	Posted   int
	Skipped  int
	Failed   int
}

// ProcessCollectionSheet posts each entry of a collection sheet in its own
// transaction. One member's duplicate, rejection or failure never blocks
// the rest of the sheet; every entry gets a structured outcome.
func (s *Service) ProcessCollectionSheet(ctx context.Context, entries []CollectionSheetEntry) (*SheetResult, error) {
	result := &SheetResult{}

	for _, entry := range entries {
		outcome := s.processEntry(ctx, entry)
		result.Outcomes = append(result.Outcomes, outcome)

		switch outcome.Status {
		case EntryPosted:
			result.Posted++
		case EntryFailed:
			result.Failed++
		default:
			result.Skipped++
		}
	}

	log.WithFields(log.Fields{
		"entries": len(entries),
		"posted":  result.Posted,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}).Info("Collection sheet processed")

	return result, nil
}

func (s *Service) processEntry(ctx context.Context, entry CollectionSheetEntry) EntryOutcome {
	outcome := EntryOutcome{MemberID: entry.MemberID, Kind: entry.Kind}

	req, err := entry.toRequest()
	if err != nil {
		outcome.Status = EntryRejected
		outcome.Reason = err.Error()
		return outcome
	}

	adjustment, err := s.PostAdjustment(ctx, req)
	switch {
	case err == nil:
		outcome.Status = EntryPosted
		outcome.AdjustmentID = adjustment.ID

	case errors.Is(err, entities.ErrDuplicateEntry):
		outcome.Status = EntryDuplicate
		outcome.Reason = err.Error()
		// Audit trail only; duplicates are an expected outcome, not a fault
		s.eventBus.Emit(ctx, events.DuplicateAdjustmentEvent{
			MemberID:    entry.MemberID,
			Kind:        entry.Kind,
			AttemptedAt: s.calendar.Now(),
		})

	case errors.Is(err, entities.ErrMemberNotFound):
		outcome.Status = EntryNotFound
		outcome.Reason = err.Error()

	case errors.Is(err, entities.ErrInvalidAmount), errors.Is(err, entities.ErrInsufficientSavings):
		outcome.Status = EntryRejected
		outcome.Reason = err.Error()

	default:
		outcome.Status = EntryFailed
		outcome.Reason = err.Error()
		log.WithError(err).WithFields(log.Fields{
			"memberID": entry.MemberID,
			"kind":     entry.Kind,
		}).Error("Collection sheet entry failed")
	}

	return outcome
}

func (e CollectionSheetEntry) toRequest() (AdjustmentRequest, error) {
	amount, err := parseAmount(e.Amount)
	if err != nil {
		return AdjustmentRequest{}, err
	}
	return AdjustmentRequest{
		MemberID: e.MemberID,
		Kind:     e.Kind,
		Amount:   amount,
		PostedBy: e.PostedBy,
	}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("amount %q is not a valid decimal: %w", raw, entities.ErrInvalidAmount)
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, entities.ErrInvalidAmount
	}
	return amount, nil
}
