package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"kolekta/application"
	"kolekta/config"
	"kolekta/database"
	"kolekta/domain/calendar"
	"kolekta/domain/events"
	"kolekta/repository"
)

// Run initializes the ledger core and keeps the accrual scheduler running
// until the context is cancelled
func Run(ctx context.Context) error {
	log.Info("Starting kolekta ledger core...")

	cfg := config.Get()

	cal, err := calendar.New(cfg.BusinessTimezone, calendar.SystemClock())
	if err != nil {
		return err
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	application.RegisterAuditSubscriptions(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	service := application.NewService(uowFactory, eventBus, cal, cfg)

	scheduler, err := application.NewScheduler(service, cfg.AccrualCron)
	if err != nil {
		db.Close()
		return err
	}
	scheduler.Start()

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"timezone":    cfg.BusinessTimezone,
		"accrualCron": cfg.AccrualCron,
	}).Info("Ledger core is running")

	<-ctx.Done()

	log.Info("Shutting down...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}
