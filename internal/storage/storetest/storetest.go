// Package storetest is a behaviour suite every FundStore backend must pass.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a FundStore. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) interfaces.FundStore) {
	t.Run("SaveAndGetFund", func(t *testing.T) { testSaveAndGet(t, newStore(t)) })
	t.Run("SaveFundUpdates", func(t *testing.T) { testSaveUpdates(t, newStore(t)) })
	t.Run("GetFundNotFound", func(t *testing.T) { testGetNotFound(t, newStore(t)) })
	t.Run("ListFundsByName", func(t *testing.T) { testListFunds(t, newStore(t)) })
	t.Run("Records", func(t *testing.T) { testRecords(t, newStore(t)) })
	t.Run("PutRecordUnknownFund", func(t *testing.T) { testPutRecordUnknownFund(t, newStore(t)) })
	t.Run("DeleteFundCascades", func(t *testing.T) { testDeleteFund(t, newStore(t)) })
}

func sampleFund(name string) *models.FundConfig {
	exit := models.MustMonthKey("2024-10")
	return &models.FundConfig{
		Name:              name,
		ChitValue:         decimal.RequireFromString("100000"),
		InstallmentAmount: decimal.RequireFromString("5000.50"),
		TotalMonths:       20,
		StartMonth:        models.MustMonthKey("2024-01"),
		EndMonth:          models.MustMonthKey("2025-08"),
		EarlyExitMonth:    &exit,
		ExitPayout:        decimal.RequireFromString("42000"),
		Notes:             "office chit",
	}
}

func testSaveAndGet(t *testing.T, store interfaces.FundStore) {
	ctx := context.Background()
	fund := sampleFund("Alpha")
	require.NoError(t, store.SaveFund(ctx, fund))
	require.NotEmpty(t, fund.ID)
	assert.False(t, fund.CreatedAt.IsZero())

	got, err := store.GetFund(ctx, fund.ID)
	require.NoError(t, err)
	assert.Equal(t, fund.ID, got.ID)
	assert.Equal(t, "Alpha", got.Name)
	assert.True(t, fund.InstallmentAmount.Equal(got.InstallmentAmount), "installment %s", got.InstallmentAmount)
	assert.True(t, fund.ChitValue.Equal(got.ChitValue))
	assert.True(t, fund.ExitPayout.Equal(got.ExitPayout))
	assert.Equal(t, 20, got.TotalMonths)
	assert.Equal(t, "2024-01", got.StartMonth.String())
	assert.Equal(t, "2025-08", got.EndMonth.String())
	require.NotNil(t, got.EarlyExitMonth)
	assert.Equal(t, "2024-10", got.EarlyExitMonth.String())
	assert.Equal(t, "office chit", got.Notes)
}

func testSaveUpdates(t *testing.T, store interfaces.FundStore) {
	ctx := context.Background()
	fund := sampleFund("Beta")
	fund.EarlyExitMonth = nil
	require.NoError(t, store.SaveFund(ctx, fund))
	created := fund.CreatedAt

	fund.Name = "Beta renamed"
	fund.InstallmentAmount = decimal.RequireFromString("6000")
	require.NoError(t, store.SaveFund(ctx, fund))

	got, err := store.GetFund(ctx, fund.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beta renamed", got.Name)
	assert.True(t, decimal.RequireFromString("6000").Equal(got.InstallmentAmount))
	assert.Nil(t, got.EarlyExitMonth)
	assert.True(t, created.Equal(got.CreatedAt), "created_at changed: %v -> %v", created, got.CreatedAt)

	funds, err := store.ListFunds(ctx)
	require.NoError(t, err)
	assert.Len(t, funds, 1)
}

func testGetNotFound(t *testing.T, store interfaces.FundStore) {
	_, err := store.GetFund(context.Background(), "fund_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrFundNotFound), "got %v", err)
}

func testListFunds(t *testing.T, store interfaces.FundStore) {
	ctx := context.Background()
	for _, name := range []string{"Gamma", "Alpha", "Beta"} {
		require.NoError(t, store.SaveFund(ctx, sampleFund(name)))
	}
	funds, err := store.ListFunds(ctx)
	require.NoError(t, err)
	require.Len(t, funds, 3)
	assert.Equal(t, "Alpha", funds[0].Name)
	assert.Equal(t, "Beta", funds[1].Name)
	assert.Equal(t, "Gamma", funds[2].Name)
}

func testRecords(t *testing.T, store interfaces.FundStore) {
	ctx := context.Background()
	fund := sampleFund("Records")
	require.NoError(t, store.SaveFund(ctx, fund))

	records, err := store.ListRecords(ctx, fund.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	put := func(month string, paid bool, dividend, prize string) {
		require.NoError(t, store.PutRecord(ctx, fund.ID, models.MonthlyRecord{
			Month:           models.MustMonthKey(month),
			InstallmentPaid: paid,
			Dividend:        decimal.RequireFromString(dividend),
			PrizeMoney:      decimal.RequireFromString(prize),
		}))
	}
	put("2024-03", true, "800", "0")
	put("2024-01", true, "1000.25", "0")
	put("2024-02", false, "0", "25000")
	put("2024-03", true, "950", "0") // replaces the first March record

	records, err = store.ListRecords(ctx, fund.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-01", records[0].Month.String())
	assert.Equal(t, "2024-02", records[1].Month.String())
	assert.Equal(t, "2024-03", records[2].Month.String())
	assert.True(t, records[0].InstallmentPaid)
	assert.True(t, decimal.RequireFromString("1000.25").Equal(records[0].Dividend))
	assert.False(t, records[1].InstallmentPaid)
	assert.True(t, decimal.RequireFromString("25000").Equal(records[1].PrizeMoney))
	assert.True(t, decimal.RequireFromString("950").Equal(records[2].Dividend))

	require.NoError(t, store.DeleteRecord(ctx, fund.ID, models.MustMonthKey("2024-02")))
	records, err = store.ListRecords(ctx, fund.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// Deleting a missing month is not an error.
	assert.NoError(t, store.DeleteRecord(ctx, fund.ID, models.MustMonthKey("2030-01")))
}

func testPutRecordUnknownFund(t *testing.T, store interfaces.FundStore) {
	err := store.PutRecord(context.Background(), "fund_missing", models.MonthlyRecord{
		Month:           models.MustMonthKey("2024-01"),
		InstallmentPaid: true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrFundNotFound), "got %v", err)
}

func testDeleteFund(t *testing.T, store interfaces.FundStore) {
	ctx := context.Background()
	keep := sampleFund("Keep")
	drop := sampleFund("Drop")
	require.NoError(t, store.SaveFund(ctx, keep))
	require.NoError(t, store.SaveFund(ctx, drop))
	for _, f := range []*models.FundConfig{keep, drop} {
		require.NoError(t, store.PutRecord(ctx, f.ID, models.MonthlyRecord{
			Month:           models.MustMonthKey("2024-01"),
			InstallmentPaid: true,
		}))
	}

	require.NoError(t, store.DeleteFund(ctx, drop.ID))

	_, err := store.GetFund(ctx, drop.ID)
	assert.True(t, errors.Is(err, interfaces.ErrFundNotFound))
	records, err := store.ListRecords(ctx, drop.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = store.ListRecords(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	err = store.DeleteFund(ctx, drop.ID)
	assert.True(t, errors.Is(err, interfaces.ErrFundNotFound), "second delete: %v", err)
}
