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

// SavingsAdjustmentRepository implements the SavingsAdjustmentRepository interface
type SavingsAdjustmentRepository struct {
	q Queryable
}

// NewSavingsAdjustmentRepository creates a new savings adjustment repository
func NewSavingsAdjustmentRepository(db *database.DB) *SavingsAdjustmentRepository {
	return &SavingsAdjustmentRepository{q: db.Pool}
}

// newSavingsAdjustmentRepositoryWithTx creates a repository bound to a transaction
func newSavingsAdjustmentRepositoryWithTx(tx Queryable) interfaces.SavingsAdjustmentRepository {
	return &SavingsAdjustmentRepository{q: tx}
}

const savingsAdjustmentColumns = `id, member_id, kind, amount, savings_before, savings_after, posted_by, created_at`

// Create inserts a new adjustment row. The caller supplies CreatedAt as the
// (possibly weekend-shifted) effective date.
func (r *SavingsAdjustmentRepository) Create(ctx context.Context, adjustment *entities.SavingsAdjustment) error {
	query := `
		INSERT INTO savings_adjustments (member_id, kind, amount, savings_before, savings_after, posted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		adjustment.MemberID,
		adjustment.Kind.String(),
		adjustment.Amount,
		adjustment.SavingsBefore,
		adjustment.SavingsAfter,
		adjustment.PostedBy,
		adjustment.CreatedAt,
	).Scan(&adjustment.ID)

	if err != nil {
		return fmt.Errorf("failed to create savings adjustment for member %d: %w", adjustment.MemberID, err)
	}
	return nil
}

// GetByID retrieves an adjustment by primary key
func (r *SavingsAdjustmentRepository) GetByID(ctx context.Context, id int64) (*entities.SavingsAdjustment, error) {
	query := `SELECT ` + savingsAdjustmentColumns + ` FROM savings_adjustments WHERE id = $1`

	adjustment, err := r.scanAdjustment(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get savings adjustment %d: %w", id, err)
	}
	return adjustment, nil
}

// GetLatestForMember returns the member's most recent adjustment
func (r *SavingsAdjustmentRepository) GetLatestForMember(ctx context.Context, memberID int64) (*entities.SavingsAdjustment, error) {
	query := `
		SELECT ` + savingsAdjustmentColumns + `
		FROM savings_adjustments
		WHERE member_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	adjustment, err := r.scanAdjustment(r.q.QueryRow(ctx, query, memberID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest savings adjustment for member %d: %w", memberID, err)
	}
	return adjustment, nil
}

// ExistsForMemberSince reports whether an adjustment of the given kind
// exists for the member with an effective date at or after `since`
func (r *SavingsAdjustmentRepository) ExistsForMemberSince(ctx context.Context, memberID int64, kind entities.SavingsAdjustmentKind, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM savings_adjustments
			WHERE member_id = $1 AND kind = $2 AND created_at >= $3
		)
	`

	var exists bool
	err := r.q.QueryRow(ctx, query, memberID, kind.String(), since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check savings adjustment for member %d: %w", memberID, err)
	}
	return exists, nil
}

// Delete removes an adjustment row. Only the reversal protocol calls this.
func (r *SavingsAdjustmentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM savings_adjustments WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete savings adjustment %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("savings adjustment %d not found", id)
	}
	return nil
}

// ShiftWeekendDates moves rows whose effective date falls on a Saturday or
// Sunday in the given timezone to the following Monday
func (r *SavingsAdjustmentRepository) ShiftWeekendDates(ctx context.Context, timezone string) (int64, error) {
	query := `
		UPDATE savings_adjustments
		SET created_at = created_at + make_interval(days =>
			CASE EXTRACT(ISODOW FROM created_at AT TIME ZONE $1)::int
				WHEN 6 THEN 2
				WHEN 7 THEN 1
			END)
		WHERE EXTRACT(ISODOW FROM created_at AT TIME ZONE $1)::int IN (6, 7)
	`

	result, err := r.q.Exec(ctx, query, timezone)
	if err != nil {
		return 0, fmt.Errorf("failed to shift weekend savings adjustments: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *SavingsAdjustmentRepository) scanAdjustment(row pgx.Row) (*entities.SavingsAdjustment, error) {
	var adjustment entities.SavingsAdjustment
	var kind string
	err := row.Scan(
		&adjustment.ID,
		&adjustment.MemberID,
		&kind,
		&adjustment.Amount,
		&adjustment.SavingsBefore,
		&adjustment.SavingsAfter,
		&adjustment.PostedBy,
		&adjustment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	adjustment.Kind = entities.SavingsAdjustmentKind(kind)
	return &adjustment, nil
}
