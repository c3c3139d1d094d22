package surrealdb

import (
	"context"
	"errors"
	"testing"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/storage/storetest"
	tcommon "github.com/bobmcallan/chitlens/tests/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) interfaces.FundStore {
		store, err := NewFundStore(context.Background(), testDB(t), testLogger())
		require.NoError(t, err)
		return store
	})
}

func TestFundStoreUnknownFund(t *testing.T) {
	store, err := NewFundStore(context.Background(), testDB(t), testLogger())
	require.NoError(t, err)

	_, err = store.ListRecords(context.Background(), "fund_nobody")
	assert.NoError(t, err)
	_, err = store.GetFund(context.Background(), "fund_nobody")
	assert.True(t, errors.Is(err, interfaces.ErrFundNotFound))
}

func TestConnect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	sc := tcommon.StartSurrealDB(t)

	store, err := Connect(context.Background(), sc.StorageConfig("connect"), testLogger())
	require.NoError(t, err)
	defer store.Close()

	funds, err := store.ListFunds(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, funds)
}

func TestConnectBadAddress(t *testing.T) {
	_, err := Connect(context.Background(), common.StorageConfig{Address: "ws://127.0.0.1:1/rpc"}, testLogger())
	assert.Error(t, err)
}
