package common

import (
	"fmt"
	"testing"
	"time"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	SurrealUser = "root"
	SurrealPass = "root"
	// SurrealNamespace holds every per-test database.
	SurrealNamespace = "chitlens_test"
)

var surreal = &sharedContainer{name: "SurrealDB", port: "8000/tcp"}

// SurrealDBContainer is the shared SurrealDB instance for the test run.
type SurrealDBContainer struct {
	shared *sharedContainer
}

// StartSurrealDB starts the shared SurrealDB container on first use.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()
	surreal.start(t, testcontainers.ContainerRequest{
		Image:        "surrealdb/surrealdb:v3.0.0",
		ExposedPorts: []string{surreal.port},
		Cmd:          []string{"start", "--user", SurrealUser, "--pass", SurrealPass},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(nat.Port(surreal.port)),
			wait.ForLog("Started web server"),
		).WithDeadline(60 * time.Second),
	})
	return &SurrealDBContainer{shared: surreal}
}

// Address returns the WebSocket RPC address.
func (c *SurrealDBContainer) Address() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.shared.host, c.shared.mapped)
}

// StorageConfig points a surrealdb FundStore at database in the test namespace.
func (c *SurrealDBContainer) StorageConfig(database string) common.StorageConfig {
	return common.StorageConfig{
		Backend:   common.BackendSurrealDB,
		Address:   c.Address(),
		Username:  SurrealUser,
		Password:  SurrealPass,
		Namespace: SurrealNamespace,
		Database:  database,
	}
}
