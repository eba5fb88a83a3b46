package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"kolekta/database"
	"kolekta/domain/entities"
	"kolekta/domain/interfaces"
)

// AccrualRunRepository implements the AccrualRunRepository interface
type AccrualRunRepository struct {
	q Queryable
}

// NewAccrualRunRepository creates a new accrual run repository
func NewAccrualRunRepository(db *database.DB) *AccrualRunRepository {
	return &AccrualRunRepository{q: db.Pool}
}

// newAccrualRunRepositoryWithTx creates a repository bound to a transaction
func newAccrualRunRepositoryWithTx(tx Queryable) interfaces.AccrualRunRepository {
	return &AccrualRunRepository{q: tx}
}

const accrualRunColumns = `id, run_date, rows_inserted, members_updated, increment, created_at`

// Create records a completed accrual run. Written in the same transaction
// as the run itself, so a failed run leaves no audit record.
func (r *AccrualRunRepository) Create(ctx context.Context, run *entities.AccrualRun) error {
	query := `
		INSERT INTO accrual_runs (run_date, rows_inserted, members_updated, increment)
		VALUES ($1::date, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		run.RunDate.Format("2006-01-02"),
		run.RowsInserted,
		run.MembersUpdated,
		run.Increment,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create accrual run for %s: %w", run.RunDate.Format("2006-01-02"), err)
	}
	return nil
}

// GetByDate returns all runs recorded for a specific date, oldest first
func (r *AccrualRunRepository) GetByDate(ctx context.Context, date time.Time) ([]*entities.AccrualRun, error) {
	query := `
		SELECT ` + accrualRunColumns + `
		FROM accrual_runs
		WHERE run_date = $1::date
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get accrual runs for %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var runs []*entities.AccrualRun
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accrual run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accrual runs: %w", err)
	}

	return runs, nil
}

// GetLatest returns the most recent run
func (r *AccrualRunRepository) GetLatest(ctx context.Context) (*entities.AccrualRun, error) {
	query := `
		SELECT ` + accrualRunColumns + `
		FROM accrual_runs
		ORDER BY id DESC
		LIMIT 1
	`

	run, err := r.scanRun(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest accrual run: %w", err)
	}
	return run, nil
}

func (r *AccrualRunRepository) scanRun(row pgx.Row) (*entities.AccrualRun, error) {
	var run entities.AccrualRun
	err := row.Scan(
		&run.ID,
		&run.RunDate,
		&run.RowsInserted,
		&run.MembersUpdated,
		&run.Increment,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
