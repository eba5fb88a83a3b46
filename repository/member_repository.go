package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"kolekta/database"
	"kolekta/domain/entities"
	"kolekta/domain/interfaces"
)

// MemberRepository implements the MemberRepository interface
type MemberRepository struct {
	q Queryable
}

// NewMemberRepository creates a new member repository backed by the pool
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{q: db.Pool}
}

// newMemberRepositoryWithTx creates a member repository bound to a transaction
func newMemberRepositoryWithTx(tx Queryable) interfaces.MemberRepository {
	return &MemberRepository{q: tx}
}

const memberColumns = `id, name, balance, savings, days_count, savings_last_accrued_at, created_at, updated_at`

// Create creates a new member with opening balance and savings.
// savings_last_accrued_at is set to the enrollment business date, so accrual
// starts the day after enrollment. The date is bound as yyyy-mm-dd so the
// UTC session timezone can't shift it to the previous Manila day.
func (r *MemberRepository) Create(ctx context.Context, name string, balance, savings decimal.Decimal, enrolledOn time.Time) (*entities.Member, error) {
	query := `
		INSERT INTO members (name, balance, savings, savings_last_accrued_at)
		VALUES ($1, $2, $3, $4::date)
		RETURNING ` + memberColumns

	member, err := r.scanMember(r.q.QueryRow(ctx, query, name, balance, savings, enrolledOn.Format("2006-01-02")))
	if err != nil {
		return nil, fmt.Errorf("failed to create member %q: %w", name, err)
	}
	return member, nil
}

// GetByID retrieves a member by primary key
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*entities.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	member, err := r.scanMember(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %d: %w", id, err)
	}
	return member, nil
}

// GetByIDForUpdate retrieves a member with a row lock. Concurrent
// adjustments for the same member serialize here; different members never
// block each other.
func (r *MemberRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1 FOR UPDATE`

	member, err := r.scanMember(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock member %d: %w", id, err)
	}
	return member, nil
}

// UpdateBalance writes a new balance for the member
func (r *MemberRepository) UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error {
	query := `UPDATE members SET balance = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.Exec(ctx, query, newBalance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance for member %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %d not found", id)
	}
	return nil
}

// UpdateSavings writes a new savings total for the member
func (r *MemberRepository) UpdateSavings(ctx context.Context, id int64, newSavings decimal.Decimal) error {
	query := `UPDATE members SET savings = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.Exec(ctx, query, newSavings, id)
	if err != nil {
		return fmt.Errorf("failed to update savings for member %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %d not found", id)
	}
	return nil
}

// SetDaysCount writes the consecutive collection days counter
func (r *MemberRepository) SetDaysCount(ctx context.Context, id int64, daysCount int) error {
	query := `UPDATE members SET days_count = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.Exec(ctx, query, daysCount, id)
	if err != nil {
		return fmt.Errorf("failed to set days count for member %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %d not found", id)
	}
	return nil
}

// ApplyBalanceDelta atomically increments the member's balance. Used by the
// reversal protocol, which undoes an adjustment against the current balance
// rather than restoring a snapshot.
func (r *MemberRepository) ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal) error {
	query := `UPDATE members SET balance = balance + $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.Exec(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to apply balance delta for member %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %d not found", id)
	}
	return nil
}

// ApplySavingsDelta atomically increments the member's savings
func (r *MemberRepository) ApplySavingsDelta(ctx context.Context, id int64, delta decimal.Decimal) error {
	query := `UPDATE members SET savings = savings + $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.Exec(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to apply savings delta for member %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %d not found", id)
	}
	return nil
}

// DecrementDaysCount decrements the days counter, floored at zero
func (r *MemberRepository) DecrementDaysCount(ctx context.Context, id int64) error {
	query := `UPDATE members SET days_count = GREATEST(days_count - 1, 0), updated_at = NOW() WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to decrement days count for member %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %d not found", id)
	}
	return nil
}

// GetAll returns all members, oldest first
func (r *MemberRepository) GetAll(ctx context.Context) ([]*entities.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all members: %w", err)
	}
	defer rows.Close()

	var members []*entities.Member
	for rows.Next() {
		member, err := r.scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

func (r *MemberRepository) scanMember(row pgx.Row) (*entities.Member, error) {
	var member entities.Member
	err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Balance,
		&member.Savings,
		&member.DaysCount,
		&member.SavingsLastAccruedAt,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &member, nil
}
