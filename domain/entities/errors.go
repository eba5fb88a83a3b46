package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidIncrement is returned when the configured daily savings
	// increment is missing, non-numeric or non-positive
	ErrInvalidIncrement = errors.New("invalid daily savings increment")

	// ErrMemberNotFound is returned when a referenced member doesn't exist
	ErrMemberNotFound = errors.New("member not found")

	// ErrAdjustmentNotFound is returned when a referenced adjustment doesn't exist
	ErrAdjustmentNotFound = errors.New("adjustment not found")

	// ErrDuplicateEntry is returned when an adjustment of the same kind was
	// already posted for the member today. This is an expected business-rule
	// rejection, not a system fault.
	ErrDuplicateEntry = errors.New("adjustment already posted today")

	// ErrInvalidAmount is returned when an adjustment amount is not positive
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientSavings is returned when a withdrawal would push the
	// member's savings below zero
	ErrInsufficientSavings = errors.New("insufficient savings")

	// ErrNotLatestAdjustment is returned when trying to reverse an
	// adjustment that is not the member's most recent one in that ledger
	ErrNotLatestAdjustment = errors.New("only the most recent adjustment can be reversed")
)

// DuplicateEntryError carries the details of a per-day duplicate rejection
type DuplicateEntryError struct {
	MemberID int64
	Kind     string
	Date     time.Time
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("%s adjustment already posted for member %d on %s",
		e.Kind, e.MemberID, e.Date.Format("2006-01-02"))
}

func (e *DuplicateEntryError) Unwrap() error {
	return ErrDuplicateEntry
}
