package sqldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/bobmcallan/chitlens/internal/storage/storetest"
	tcommon "github.com/bobmcallan/chitlens/tests/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "chitlens.db")
	store, err := Open(context.Background(), SQLite, path, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteFundStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) interfaces.FundStore {
		return openSQLite(t)
	})
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chitlens.db")

	store, err := Open(ctx, SQLite, path, common.NewSilentLogger())
	require.NoError(t, err)
	fund := reopenFund()
	require.NoError(t, store.SaveFund(ctx, fund))
	require.NoError(t, store.Close())

	store, err = Open(ctx, SQLite, path, common.NewSilentLogger())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetFund(ctx, fund.ID)
	require.NoError(t, err)
	assert.Equal(t, fund.Name, got.Name)
}

func TestPostgresFundStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pg := tcommon.StartPostgres(t)

	storetest.Run(t, func(t *testing.T) interfaces.FundStore {
		ctx := context.Background()
		store, err := Open(ctx, Postgres, pg.DSN(), common.NewSilentLogger())
		require.NoError(t, err)
		for _, table := range []string{"fund_record", "fund"} {
			_, err := store.db.ExecContext(ctx, "DELETE FROM "+table)
			require.NoError(t, err)
		}
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	lite := &Store{dialect: SQLite}

	q := "SELECT * FROM fund_record WHERE fund_id = ? AND month = ?"
	assert.Equal(t, "SELECT * FROM fund_record WHERE fund_id = $1 AND month = $2", pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), Dialect("oracle"), "x", common.NewSilentLogger())
	assert.Error(t, err)
}

func reopenFund() *models.FundConfig {
	return &models.FundConfig{
		Name:              "Reopen",
		ChitValue:         decimal.NewFromInt(50000),
		InstallmentAmount: decimal.NewFromInt(2500),
		TotalMonths:       20,
		StartMonth:        models.MustMonthKey("2024-01"),
		EndMonth:          models.MustMonthKey("2025-08"),
	}
}
