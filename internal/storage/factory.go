// Package storage selects and opens the configured FundStore backend.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/storage/sqldb"
	"github.com/bobmcallan/chitlens/internal/storage/surrealdb"
)

// NewFundStore opens the backend named by config.Storage.Backend.
// Supported backends: "sqlite" (default), "postgres", "surrealdb".
func NewFundStore(ctx context.Context, logger *common.Logger, config *common.Config) (interfaces.FundStore, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = common.BackendSQLite
	}

	var (
		store interfaces.FundStore
		err   error
	)
	switch backend {
	case common.BackendSQLite:
		store, err = openSQL(ctx, sqldb.SQLite, config.Storage.DSN, logger)

	case common.BackendPostgres:
		store, err = openSQL(ctx, sqldb.Postgres, config.Storage.DSN, logger)

	case common.BackendSurrealDB:
		var s *surrealdb.FundStore
		if s, err = surrealdb.Connect(ctx, config.Storage, logger); err == nil {
			store = s
		}

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: sqlite, postgres, surrealdb)", backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

func openSQL(ctx context.Context, dialect sqldb.Dialect, dsn string, logger *common.Logger) (interfaces.FundStore, error) {
	s, err := sqldb.Open(ctx, dialect, dsn, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}
