package application

import (
	"context"

	log "github.com/sirupsen/logrus"

	"kolekta/domain/events"
)

// RegisterAuditSubscriptions attaches logrus-based audit handlers to the
// event bus. Handlers are fire-and-forget: a failing handler never affects
// the ledger operation that emitted the event.
func RegisterAuditSubscriptions(bus *events.Bus) {
	bus.Subscribe(events.EventTypeSavingsAccrued, func(ctx context.Context, event events.Event) {
		e := event.(events.SavingsAccruedEvent)
		log.WithFields(log.Fields{
			"runDate":        e.RunDate.Format("2006-01-02"),
			"rowsInserted":   e.RowsInserted,
			"membersUpdated": e.MembersUpdated,
			"increment":      e.Increment.String(),
		}).Info("Audit: savings accrued")
	})

	bus.Subscribe(events.EventTypeMilestoneReached, func(ctx context.Context, event events.Event) {
		e := event.(events.MilestoneReachedEvent)
		log.WithFields(log.Fields{
			"memberID":  e.MemberID,
			"daysCount": e.DaysCount,
			"milestone": e.Milestone,
		}).Info("Audit: collection days milestone reached")
	})

	bus.Subscribe(events.EventTypeDuplicateAdjustment, func(ctx context.Context, event events.Event) {
		e := event.(events.DuplicateAdjustmentEvent)
		log.WithFields(log.Fields{
			"memberID":    e.MemberID,
			"kind":        e.Kind,
			"attemptedAt": e.AttemptedAt,
		}).Warn("Audit: duplicate adjustment attempt")
	})

	bus.Subscribe(events.EventTypeAdjustmentReversed, func(ctx context.Context, event events.Event) {
		e := event.(events.AdjustmentReversedEvent)
		log.WithFields(log.Fields{
			"memberID":     e.MemberID,
			"adjustmentID": e.AdjustmentID,
			"ledger":       e.Ledger,
			"kind":         e.Kind,
			"amount":       e.Amount.String(),
		}).Info("Audit: adjustment reversed")
	})
}
