package common

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var postgres = &sharedContainer{name: "Postgres", port: "5432/tcp"}

// PostgresContainer is the shared PostgreSQL instance for the test run.
type PostgresContainer struct {
	shared *sharedContainer
}

// StartPostgres starts the shared PostgreSQL container on first use.
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	postgres.start(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{postgres.port},
		Env: map[string]string{
			"POSTGRES_USER":     "chitlens",
			"POSTGRES_PASSWORD": "chitlens",
			"POSTGRES_DB":       "chitlens",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(nat.Port(postgres.port)),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60 * time.Second),
	})
	return &PostgresContainer{shared: postgres}
}

// DSN returns a lib/pq connection string for the default database.
func (c *PostgresContainer) DSN() string {
	return c.databaseDSN("chitlens")
}

func (c *PostgresContainer) databaseDSN(name string) string {
	return fmt.Sprintf("postgres://chitlens:chitlens@%s:%s/%s?sslmode=disable", c.shared.host, c.shared.mapped, name)
}

// NewDatabase creates an empty database and returns its DSN. The database is dropped on cleanup.
func (c *PostgresContainer) NewDatabase(t *testing.T, name string) string {
	t.Helper()
	admin, err := sql.Open("postgres", c.DSN())
	if err != nil {
		t.Fatalf("open postgres admin connection: %v", err)
	}
	defer admin.Close()

	if _, err := admin.Exec(`CREATE DATABASE "` + name + `"`); err != nil {
		t.Fatalf("create database %s: %v", name, err)
	}
	t.Cleanup(func() {
		db, err := sql.Open("postgres", c.DSN())
		if err != nil {
			return
		}
		defer db.Close()
		db.Exec(`DROP DATABASE IF EXISTS "` + name + `" WITH (FORCE)`)
	})
	return c.databaseDSN(name)
}

// StorageConfig creates a fresh database named database and points a postgres FundStore at it.
func (c *PostgresContainer) StorageConfig(t *testing.T, database string) common.StorageConfig {
	t.Helper()
	return common.StorageConfig{
		Backend: common.BackendPostgres,
		DSN:     c.NewDatabase(t, database),
	}
}
