package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"kolekta/application"
	"kolekta/cmd"
	"kolekta/config"
	"kolekta/database"
	"kolekta/domain/calendar"
	"kolekta/domain/events"
	"kolekta/repository"
)

func main() {
	setupLogging()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error: ", err)
			}
			return
		case "accrue":
			if err := runOnce(func(ctx context.Context, svc *application.Service) error {
				result, err := svc.AccrueSavingsOnce(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("accrual run %s: %d rows inserted, %d members updated\n",
					result.RunDate, result.RowsInserted, result.MembersUpdated)
				return nil
			}); err != nil {
				log.Fatal("Accrual error: ", err)
			}
			return
		case "backfill-weekends":
			if err := runOnce(func(ctx context.Context, svc *application.Service) error {
				balance, savings, err := svc.BackfillWeekendDates(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("weekend backfill: %d balance rows shifted, %d savings rows shifted\n",
					balance, savings)
				return nil
			}); err != nil {
				log.Fatal("Backfill error: ", err)
			}
			return
		}
	}

	// Long-running scheduler process
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func setupLogging() {
	log.SetFormatter(&log.JSONFormatter{})
	level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: kolekta migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// runOnce wires the ledger core, runs a single operation and tears down
func runOnce(op func(ctx context.Context, svc *application.Service) error) error {
	ctx := context.Background()
	cfg := config.Get()

	cal, err := calendar.New(cfg.BusinessTimezone, calendar.SystemClock())
	if err != nil {
		return err
	}

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()
	application.RegisterAuditSubscriptions(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	svc := application.NewService(uowFactory, eventBus, cal, cfg)

	return op(ctx, svc)
}
