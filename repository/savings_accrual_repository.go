package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kolekta/database"
	"kolekta/domain/entities"
	"kolekta/domain/interfaces"
)

// SavingsAccrualRepository implements the SavingsAccrualRepository interface
type SavingsAccrualRepository struct {
	q Queryable
}

// NewSavingsAccrualRepository creates a new savings accrual repository
func NewSavingsAccrualRepository(db *database.DB) *SavingsAccrualRepository {
	return &SavingsAccrualRepository{q: db.Pool}
}

// newSavingsAccrualRepositoryWithTx creates a repository bound to a transaction
func newSavingsAccrualRepositoryWithTx(tx Queryable) interfaces.SavingsAccrualRepository {
	return &SavingsAccrualRepository{q: tx}
}

// AccrueThrough posts one accrual row per member per elapsed date from the
// day after each member's savings_last_accrued_at up to and including asOf,
// then credits each affected member's savings and advances
// savings_last_accrued_at. A single set-based statement; the unique
// (member_id, accrued_for_date) constraint makes concurrent and repeated
// runs converge on the same state.
//
// asOf is bound as a yyyy-mm-dd string so the date survives the connection's
// UTC session timezone unchanged.
func (r *SavingsAccrualRepository) AccrueThrough(ctx context.Context, asOf time.Time, increment decimal.Decimal) (int, int, error) {
	query := `
		WITH inserted AS (
			INSERT INTO savings_accruals (member_id, accrued_for_date, amount)
			SELECT m.id, d::date, $1
			FROM members m
			CROSS JOIN LATERAL generate_series(
				(m.savings_last_accrued_at + 1)::timestamp,
				$2::date::timestamp,
				interval '1 day'
			) AS d
			ON CONFLICT (member_id, accrued_for_date) DO NOTHING
			RETURNING member_id
		),
		per_member AS (
			SELECT member_id, COUNT(*) AS days
			FROM inserted
			GROUP BY member_id
		),
		updated AS (
			UPDATE members m
			SET savings = m.savings + (p.days * $1),
				savings_last_accrued_at = GREATEST(m.savings_last_accrued_at, $2::date),
				updated_at = NOW()
			FROM per_member p
			WHERE m.id = p.member_id
			RETURNING p.days
		)
		SELECT COALESCE(SUM(days), 0)::int, COUNT(*)::int FROM updated
	`

	var rowsInserted, membersUpdated int
	err := r.q.QueryRow(ctx, query, increment, asOf.Format("2006-01-02")).Scan(&rowsInserted, &membersUpdated)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to accrue savings through %s: %w", asOf.Format("2006-01-02"), err)
	}
	return rowsInserted, membersUpdated, nil
}

// CountForMember returns the number of accrual rows for a member
func (r *SavingsAccrualRepository) CountForMember(ctx context.Context, memberID int64) (int, error) {
	query := `SELECT COUNT(*) FROM savings_accruals WHERE member_id = $1`

	var count int
	err := r.q.QueryRow(ctx, query, memberID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accruals for member %d: %w", memberID, err)
	}
	return count, nil
}

// ListForMember returns a member's accrual rows, oldest first
func (r *SavingsAccrualRepository) ListForMember(ctx context.Context, memberID int64) ([]*entities.SavingsAccrual, error) {
	query := `
		SELECT id, member_id, accrued_for_date, amount, created_at
		FROM savings_accruals
		WHERE member_id = $1
		ORDER BY accrued_for_date
	`

	rows, err := r.q.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accruals for member %d: %w", memberID, err)
	}
	defer rows.Close()

	var accruals []*entities.SavingsAccrual
	for rows.Next() {
		var accrual entities.SavingsAccrual
		err := rows.Scan(
			&accrual.ID,
			&accrual.MemberID,
			&accrual.AccruedForDate,
			&accrual.Amount,
			&accrual.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accrual: %w", err)
		}
		accruals = append(accruals, &accrual)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accruals: %w", err)
	}

	return accruals, nil
}
