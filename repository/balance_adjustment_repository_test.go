package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kolekta/domain/entities"
	"kolekta/repository/testutil"
)

func TestBalanceAdjustmentRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	memberRepo := NewMemberRepository(testDB.DB)
	adjustmentRepo := NewBalanceAdjustmentRepository(testDB.DB)

	member, err := memberRepo.Create(ctx, "Rosa Dimaano",
		decimal.RequireFromString("5000.00"), decimal.Zero,
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	effective := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	adjustment := testutil.CreateTestBalanceAdjustment(member.ID,
		entities.BalanceAdjustmentDeduct, decimal.RequireFromString("500.00"),
		decimal.RequireFromString("5000.00"), effective)

	err = adjustmentRepo.Create(ctx, adjustment)
	require.NoError(t, err)
	assert.NotZero(t, adjustment.ID)

	loaded, err := adjustmentRepo.GetByID(ctx, adjustment.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, entities.BalanceAdjustmentDeduct, loaded.Kind)
	assert.True(t, loaded.Amount.Equal(decimal.RequireFromString("500.00")))
	assert.True(t, loaded.BalanceAfter.Equal(decimal.RequireFromString("4500.00")))
	assert.Equal(t, "test-officer", loaded.PostedBy)
	assert.True(t, loaded.CreatedAt.Equal(effective))
}

func TestBalanceAdjustmentRepository_GetByID_NotFound(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	adjustmentRepo := NewBalanceAdjustmentRepository(testDB.DB)

	loaded, err := adjustmentRepo.GetByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestBalanceAdjustmentRepository_ExistsForMemberSince(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	memberRepo := NewMemberRepository(testDB.DB)
	adjustmentRepo := NewBalanceAdjustmentRepository(testDB.DB)

	member, err := memberRepo.Create(ctx, "Lito Ramos",
		decimal.RequireFromString("5000.00"), decimal.Zero,
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	posted := time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)
	adjustment := testutil.CreateTestBalanceAdjustment(member.ID,
		entities.BalanceAdjustmentDeduct, decimal.RequireFromString("500.00"),
		decimal.RequireFromString("5000.00"), posted)
	require.NoError(t, adjustmentRepo.Create(ctx, adjustment))

	startOfDay := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	exists, err := adjustmentRepo.ExistsForMemberSince(ctx, member.ID, entities.BalanceAdjustmentDeduct, startOfDay)
	require.NoError(t, err)
	assert.True(t, exists)

	// A different kind the same day is not a duplicate
	exists, err = adjustmentRepo.ExistsForMemberSince(ctx, member.ID, entities.BalanceAdjustmentIncrease, startOfDay)
	require.NoError(t, err)
	assert.False(t, exists)

	// The next day the probe comes up empty
	nextDay := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	exists, err = adjustmentRepo.ExistsForMemberSince(ctx, member.ID, entities.BalanceAdjustmentDeduct, nextDay)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBalanceAdjustmentRepository_GetLatestForMember(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	memberRepo := NewMemberRepository(testDB.DB)
	adjustmentRepo := NewBalanceAdjustmentRepository(testDB.DB)

	member, err := memberRepo.Create(ctx, "Nene Cruz",
		decimal.RequireFromString("5000.00"), decimal.Zero,
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	latest, err := adjustmentRepo.GetLatestForMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first := testutil.CreateTestBalanceAdjustment(member.ID,
		entities.BalanceAdjustmentDeduct, decimal.RequireFromString("500.00"),
		decimal.RequireFromString("5000.00"), time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, adjustmentRepo.Create(ctx, first))

	second := testutil.CreateTestBalanceAdjustment(member.ID,
		entities.BalanceAdjustmentDeduct, decimal.RequireFromString("300.00"),
		decimal.RequireFromString("4500.00"), time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC))
	require.NoError(t, adjustmentRepo.Create(ctx, second))

	latest, err = adjustmentRepo.GetLatestForMember(ctx, member.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestBalanceAdjustmentRepository_Delete(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	memberRepo := NewMemberRepository(testDB.DB)
	adjustmentRepo := NewBalanceAdjustmentRepository(testDB.DB)

	member, err := memberRepo.Create(ctx, "Rosa Dimaano",
		decimal.RequireFromString("5000.00"), decimal.Zero,
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	adjustment := testutil.CreateTestBalanceAdjustment(member.ID,
		entities.BalanceAdjustmentDeduct, decimal.RequireFromString("500.00"),
		decimal.RequireFromString("5000.00"), time.Now())
	require.NoError(t, adjustmentRepo.Create(ctx, adjustment))

	require.NoError(t, adjustmentRepo.Delete(ctx, adjustment.ID))

	loaded, err := adjustmentRepo.GetByID(ctx, adjustment.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting again reports the missing row
	err = adjustmentRepo.Delete(ctx, adjustment.ID)
	assert.Error(t, err)
}

func TestBalanceAdjustmentRepository_ShiftWeekendDates(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	memberRepo := NewMemberRepository(testDB.DB)
	adjustmentRepo := NewBalanceAdjustmentRepository(testDB.DB)

	member, err := memberRepo.Create(ctx, "Lito Ramos",
		decimal.RequireFromString("9000.00"), decimal.Zero,
		time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	saturday := time.Date(2024, 6, 8, 10, 0, 0, 0, manila)
	sunday := time.Date(2024, 6, 9, 10, 0, 0, 0, manila)
	wednesday := time.Date(2024, 6, 5, 10, 0, 0, 0, manila)

	balances := []string{"9000.00", "8500.00", "8000.00"}
	for i, effective := range []time.Time{saturday, sunday, wednesday} {
		adjustment := testutil.CreateTestBalanceAdjustment(member.ID,
			entities.BalanceAdjustmentDeduct, decimal.RequireFromString("500.00"),
			decimal.RequireFromString(balances[i]), effective)
		require.NoError(t, adjustmentRepo.Create(ctx, adjustment))
	}

	shifted, err := adjustmentRepo.ShiftWeekendDates(ctx, "Asia/Manila")
	require.NoError(t, err)
	assert.Equal(t, int64(2), shifted)

	// Both weekend rows now land on Monday 2024-06-10; the weekday row is untouched
	rows, err := testDB.DB.Query(ctx,
		`SELECT created_at FROM balance_adjustments WHERE member_id = $1 ORDER BY id`, member.ID)
	require.NoError(t, err)
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var createdAt time.Time
		require.NoError(t, rows.Scan(&createdAt))
		dates = append(dates, createdAt.In(manila).Format("2006-01-02"))
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"2024-06-10", "2024-06-10", "2024-06-05"}, dates)

	// Re-running the backfill is a no-op
	shifted, err = adjustmentRepo.ShiftWeekendDates(ctx, "Asia/Manila")
	require.NoError(t, err)
	assert.Equal(t, int64(0), shifted)
}
