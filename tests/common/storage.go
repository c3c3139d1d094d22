package common

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/chitlens/internal/common"
)

// StorageConfig returns an isolated storage configuration for the backend.
// Postgres and SurrealDB share one container per run with a fresh database per test.
func StorageConfig(t *testing.T, backend string) common.StorageConfig {
	t.Helper()
	switch backend {
	case common.BackendSQLite:
		return common.StorageConfig{
			Backend: common.BackendSQLite,
			DSN:     filepath.Join(t.TempDir(), "chitlens.db"),
		}
	case common.BackendPostgres:
		return StartPostgres(t).StorageConfig(t, DatabaseName(t))
	case common.BackendSurrealDB:
		return StartSurrealDB(t).StorageConfig(DatabaseName(t))
	}
	t.Fatalf("unknown test backend %q", backend)
	return common.StorageConfig{}
}

// DatabaseName derives a unique lower-case identifier from the test name.
// Subtest names contain "/" which neither Postgres nor SurrealDB accept unquoted.
func DatabaseName(t *testing.T) string {
	name := strings.ToLower(strings.NewReplacer("/", "_", " ", "_", "-", "_").Replace(t.Name()))
	if len(name) > 40 {
		name = name[:40]
	}
	return fmt.Sprintf("d_%s_%d", name, time.Now().UnixNano()%100000)
}
