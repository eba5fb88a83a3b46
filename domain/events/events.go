package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeSavingsChange       EventType = "savings_change"
	EventTypeSavingsAccrued      EventType = "savings_accrued"
	EventTypeMilestoneReached    EventType = "milestone_reached"
	EventTypeDuplicateAdjustment EventType = "duplicate_adjustment"
	EventTypeAdjustmentReversed  EventType = "adjustment_reversed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a posted loan-balance adjustment
type BalanceChangeEvent struct {
	MemberID      int64
	AdjustmentID  int64
	Kind          string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	EffectiveDate time.Time
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// SavingsChangeEvent represents a posted manual savings adjustment
type SavingsChangeEvent struct {
	MemberID      int64
	AdjustmentID  int64
	Kind          string
	Amount        decimal.Decimal
	SavingsBefore decimal.Decimal
	SavingsAfter  decimal.Decimal
	EffectiveDate time.Time
}

func (e SavingsChangeEvent) Type() EventType {
	return EventTypeSavingsChange
}

// SavingsAccruedEvent represents a completed daily accrual run
type SavingsAccruedEvent struct {
	RunDate        time.Time
	RowsInserted   int
	MembersUpdated int
	Increment      decimal.Decimal
}

func (e SavingsAccruedEvent) Type() EventType {
	return EventTypeSavingsAccrued
}

// MilestoneReachedEvent represents a member crossing the consecutive
// collection days milestone
type MilestoneReachedEvent struct {
	MemberID  int64
	DaysCount int
	Milestone int
}

func (e MilestoneReachedEvent) Type() EventType {
	return EventTypeMilestoneReached
}

// DuplicateAdjustmentEvent represents a rejected same-day duplicate posting
// attempt, recorded for the audit trail
type DuplicateAdjustmentEvent struct {
	MemberID    int64
	Kind        string
	AttemptedAt time.Time
}

func (e DuplicateAdjustmentEvent) Type() EventType {
	return EventTypeDuplicateAdjustment
}

// AdjustmentReversedEvent represents an adjustment that was reversed and deleted
type AdjustmentReversedEvent struct {
	MemberID     int64
	AdjustmentID int64
	Ledger       string // "balance" or "savings"
	Kind         string
	Amount       decimal.Decimal
}

func (e AdjustmentReversedEvent) Type() EventType {
	return EventTypeAdjustmentReversed
}
