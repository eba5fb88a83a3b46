package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kolekta/application"
	"kolekta/config"
	"kolekta/domain/calendar"
	"kolekta/domain/events"
	"kolekta/repository/testutil"
)

// End-to-end exercise of the ledger core against a real database:
// accrue, post, reject a duplicate, process a sheet, reverse.
func TestLedger_RoundTrip(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	// Pin "now" to Monday 2024-06-10 09:00 business time
	cal, err := calendar.New("Asia/Manila", calendar.FixedClock(time.Date(2024, 6, 10, 9, 0, 0, 0, manila)))
	require.NoError(t, err)

	cfg := config.NewTestConfig()
	eventBus := events.NewBus()
	uowFactory := NewUnitOfWorkFactory(testDB.DB, eventBus)
	service := application.NewService(uowFactory, eventBus, cal, cfg)

	// Enrolled the Saturday before the pinned Monday
	memberRepo := NewMemberRepository(testDB.DB)
	member, err := memberRepo.Create(ctx, "Rosa Dimaano",
		decimal.RequireFromString("5000.00"), decimal.RequireFromString("100.00"),
		time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Two elapsed days at 20.00 each
	result, err := service.AccrueSavingsOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsInserted)
	assert.Equal(t, 1, result.MembersUpdated)

	loaded, err := memberRepo.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Savings.Equal(decimal.RequireFromString("140.00")),
		"savings = %s", loaded.Savings)
	assert.Equal(t, "2024-06-10", loaded.SavingsLastAccruedAt.Format("2006-01-02"))

	// A second run the same day converges to the same state
	result, err = service.AccrueSavingsOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RowsInserted)

	runRepo := NewAccrualRunRepository(testDB.DB)
	runs, err := runRepo.GetByDate(ctx, cal.Today())
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// Collection day: deduct the loan payment
	posted, err := service.PostAdjustment(ctx, application.AdjustmentRequest{
		MemberID: member.ID,
		Kind:     application.KindBalanceDeduct,
		Amount:   decimal.RequireFromString("500.00"),
		PostedBy: "officer-1",
	})
	require.NoError(t, err)
	assert.True(t, posted.After.Equal(decimal.RequireFromString("4500.00")))

	loaded, err = memberRepo.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Balance.Equal(decimal.RequireFromString("4500.00")))
	assert.Equal(t, 1, loaded.DaysCount)

	// Same member, same kind, same day: rejected without mutation
	_, err = service.PostAdjustment(ctx, application.AdjustmentRequest{
		MemberID: member.ID,
		Kind:     application.KindBalanceDeduct,
		Amount:   decimal.RequireFromString("500.00"),
		PostedBy: "officer-1",
	})
	require.Error(t, err)
	assert.True(t, application.IsDuplicateEntry(err))

	loaded, err = memberRepo.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Balance.Equal(decimal.RequireFromString("4500.00")))
	assert.Equal(t, 1, loaded.DaysCount)

	// Reversal restores balance and walks the days counter back
	err = service.ReverseAdjustment(ctx, application.LedgerBalance, posted.ID)
	require.NoError(t, err)

	loaded, err = memberRepo.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Balance.Equal(decimal.RequireFromString("5000.00")))
	assert.Equal(t, 0, loaded.DaysCount)

	adjustmentRepo := NewBalanceAdjustmentRepository(testDB.DB)
	gone, err := adjustmentRepo.GetByID(ctx, posted.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestLedger_CollectionSheet_PerEntryIsolation(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	cal, err := calendar.New("Asia/Manila", calendar.FixedClock(time.Date(2024, 6, 10, 9, 0, 0, 0, manila)))
	require.NoError(t, err)

	cfg := config.NewTestConfig()
	eventBus := events.NewBus()
	uowFactory := NewUnitOfWorkFactory(testDB.DB, eventBus)
	service := application.NewService(uowFactory, eventBus, cal, cfg)

	memberRepo := NewMemberRepository(testDB.DB)
	rosa, err := memberRepo.Create(ctx, "Rosa Dimaano",
		decimal.RequireFromString("5000.00"), decimal.RequireFromString("100.00"), cal.Today())
	require.NoError(t, err)
	lito, err := memberRepo.Create(ctx, "Lito Ramos",
		decimal.RequireFromString("3000.00"), decimal.Zero, cal.Today())
	require.NoError(t, err)

	// Lito already paid today
	_, err = service.PostAdjustment(ctx, application.AdjustmentRequest{
		MemberID: lito.ID,
		Kind:     application.KindBalanceDeduct,
		Amount:   decimal.RequireFromString("200.00"),
		PostedBy: "officer-2",
	})
	require.NoError(t, err)

	sheet := []application.CollectionSheetEntry{
		{MemberID: rosa.ID, Kind: application.KindBalanceDeduct, Amount: "500.00", PostedBy: "officer-2"},
		{MemberID: rosa.ID, Kind: application.KindSavingsIncrease, Amount: "50.00", PostedBy: "officer-2"},
		{MemberID: lito.ID, Kind: application.KindBalanceDeduct, Amount: "200.00", PostedBy: "officer-2"},
		{MemberID: 99999, Kind: application.KindBalanceDeduct, Amount: "100.00", PostedBy: "officer-2"},
		{MemberID: rosa.ID, Kind: application.KindSavingsWithdraw, Amount: "not-a-number", PostedBy: "officer-2"},
	}

	result, err := service.ProcessCollectionSheet(ctx, sheet)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 5)

	assert.Equal(t, application.EntryPosted, result.Outcomes[0].Status)
	assert.Equal(t, application.EntryPosted, result.Outcomes[1].Status)
	assert.Equal(t, application.EntryDuplicate, result.Outcomes[2].Status)
	assert.Equal(t, application.EntryNotFound, result.Outcomes[3].Status)
	assert.Equal(t, application.EntryRejected, result.Outcomes[4].Status)

	assert.Equal(t, 2, result.Posted)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 0, result.Failed)

	// Failed and skipped entries never blocked the successful ones
	loadedRosa, err := memberRepo.GetByID(ctx, rosa.ID)
	require.NoError(t, err)
	assert.True(t, loadedRosa.Balance.Equal(decimal.RequireFromString("4500.00")))
	assert.True(t, loadedRosa.Savings.Equal(decimal.RequireFromString("150.00")))

	// Lito's earlier payment stands untouched
	loadedLito, err := memberRepo.GetByID(ctx, lito.ID)
	require.NoError(t, err)
	assert.True(t, loadedLito.Balance.Equal(decimal.RequireFromString("2800.00")))
	assert.Equal(t, 1, loadedLito.DaysCount)
}
