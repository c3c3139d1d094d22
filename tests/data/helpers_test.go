package data

import (
	"context"
	"testing"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/storage"
	tcommon "github.com/bobmcallan/chitlens/tests/common"
)

var backends = []string{common.BackendSQLite, common.BackendPostgres, common.BackendSurrealDB}

// testStore opens a FundStore for backend through the storage factory,
// isolated per test. Container backends are skipped in -short mode.
func testStore(t *testing.T, backend string) interfaces.FundStore {
	t.Helper()
	if backend != common.BackendSQLite && testing.Short() {
		t.Skipf("%s backend needs Docker, skipping in short mode", backend)
	}

	cfg := common.NewDefaultConfig()
	cfg.Environment = "test"
	cfg.Storage = tcommon.StorageConfig(t, backend)

	store, err := storage.NewFundStore(testContext(), common.NewSilentLogger(), cfg)
	if err != nil {
		t.Fatalf("create %s fund store: %v", backend, err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// forEachBackend runs fn as a subtest per storage backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, store interfaces.FundStore)) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			fn(t, testStore(t, backend))
		})
	}
}

// testContext returns a background context.
func testContext() context.Context {
	return context.Background()
}
