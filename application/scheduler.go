package application

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs the daily accrual job on a cron schedule evaluated in the
// business timezone. Because the accrual is idempotent, overlapping or
// repeated runs are harmless.
type Scheduler struct {
	cron    *cron.Cron
	service *Service
}

// NewScheduler creates a scheduler for the given cron expression
func NewScheduler(service *Service, cronExpr string) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(service.calendar.Location()))

	s := &Scheduler{
		cron:    c,
		service: service,
	}

	_, err := c.AddFunc(cronExpr, s.runAccrual)
	if err != nil {
		return nil, fmt.Errorf("invalid accrual cron expression %q: %w", cronExpr, err)
	}

	return s, nil
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info("Accrual scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Accrual scheduler stopped")
}

func (s *Scheduler) runAccrual() {
	result, err := s.service.AccrueSavingsOnce(context.Background())
	if err != nil {
		// Next scheduled run retries; accrual retries are always safe
		log.WithError(err).Error("Scheduled accrual run failed")
		return
	}

	log.WithFields(log.Fields{
		"runDate":        result.RunDate,
		"rowsInserted":   result.RowsInserted,
		"membersUpdated": result.MembersUpdated,
	}).Info("Scheduled accrual run finished")
}
