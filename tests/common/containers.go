// Package common provides shared container infrastructure for storage tests.
// It must not import internal/app or internal/server so store packages can use it.
package common

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

// sharedContainer starts one container per test process and hands the same
// host and port to every caller.
type sharedContainer struct {
	name string
	port string

	once      sync.Once
	container testcontainers.Container
	host      string
	mapped    string
	err       error
}

// start runs req on first use. Later calls return the first result.
func (s *sharedContainer) start(t *testing.T, req testcontainers.ContainerRequest) {
	t.Helper()

	s.once.Do(func() {
		ctx := context.Background()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			s.err = fmt.Errorf("start %s container: %w", s.name, err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			container.Terminate(ctx)
			s.err = fmt.Errorf("get %s host: %w", s.name, err)
			return
		}

		mappedPort, err := container.MappedPort(ctx, nat.Port(s.port))
		if err != nil {
			container.Terminate(ctx)
			s.err = fmt.Errorf("get %s port: %w", s.name, err)
			return
		}

		s.container = container
		s.host = host
		s.mapped = mappedPort.Port()
	})

	if s.err != nil {
		t.Fatalf("%s container failed: %v", s.name, s.err)
	}
}

func (s *sharedContainer) terminate() {
	if s.container != nil {
		s.container.Terminate(context.Background())
		s.container = nil
	}
}

// CleanupContainers terminates any shared containers started during the run. Call from TestMain.
func CleanupContainers() {
	surreal.terminate()
	postgres.terminate()
}
