package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kolekta/repository/testutil"
)

func TestMemberRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewMemberRepository(testDB.DB)

	enrolled := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	member, err := repo.Create(ctx, "Rosa Dimaano",
		decimal.RequireFromString("5000.00"), decimal.RequireFromString("100.00"), enrolled)
	require.NoError(t, err)
	assert.NotZero(t, member.ID)
	assert.Equal(t, 0, member.DaysCount)
	// Accrual starts the day after enrollment
	assert.Equal(t, "2024-06-10", member.SavingsLastAccruedAt.Format("2006-01-02"))

	loaded, err := repo.GetByID(ctx, member.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Rosa Dimaano", loaded.Name)
	assert.True(t, loaded.Balance.Equal(decimal.RequireFromString("5000.00")))
	assert.True(t, loaded.Savings.Equal(decimal.RequireFromString("100.00")))
}

func TestMemberRepository_GetByID_NotFound(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMemberRepository(testDB.DB)

	member, err := repo.GetByID(context.Background(), 424242)
	require.NoError(t, err)
	assert.Nil(t, member)
}

func TestMemberRepository_ApplyDeltas(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewMemberRepository(testDB.DB)

	member, err := repo.Create(ctx, "Lito Ramos",
		decimal.RequireFromString("5000.00"), decimal.RequireFromString("100.00"),
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, repo.ApplyBalanceDelta(ctx, member.ID, decimal.RequireFromString("-500.00")))
	require.NoError(t, repo.ApplySavingsDelta(ctx, member.ID, decimal.RequireFromString("20.00")))

	loaded, err := repo.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Balance.Equal(decimal.RequireFromString("4500.00")))
	assert.True(t, loaded.Savings.Equal(decimal.RequireFromString("120.00")))
}

func TestMemberRepository_DecrementDaysCount_FlooredAtZero(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewMemberRepository(testDB.DB)

	member, err := repo.Create(ctx, "Nene Cruz", decimal.Zero, decimal.Zero,
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, repo.SetDaysCount(ctx, member.ID, 1))
	require.NoError(t, repo.DecrementDaysCount(ctx, member.ID))
	require.NoError(t, repo.DecrementDaysCount(ctx, member.ID))

	loaded, err := repo.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.DaysCount)
}

func TestMemberRepository_UpdateMissingMember(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewMemberRepository(testDB.DB)

	err := repo.UpdateBalance(ctx, 424242, decimal.RequireFromString("1.00"))
	assert.Error(t, err)

	err = repo.SetDaysCount(ctx, 424242, 5)
	assert.Error(t, err)
}
