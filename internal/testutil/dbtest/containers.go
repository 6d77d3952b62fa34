//go:build integration

package dbtest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/leapstack-labs/dabiro/internal/testutil"
	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

const (
	MySQLImage    = "mysql:8.4"
	PostgresImage = "postgres:16-alpine"

	testUser     = "dabiro"
	testPassword = "test_password"
	testDatabase = "dabiro_test"
)

type server struct {
	once sync.Once
	desc core.ConnectionDescriptor
	err  error
}

var (
	mysqlServer    server
	postgresServer server
)

// MySQL returns the descriptor of a shared MySQL container.
// The container is started once per test binary and reused.
func MySQL(t *testing.T) core.ConnectionDescriptor {
	t.Helper()
	return mysqlServer.get(t, func(ctx context.Context) (core.ConnectionDescriptor, error) {
		return start(ctx, core.DialectMySQL, testcontainers.ContainerRequest{
			Image:        MySQLImage,
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": testPassword,
				"MYSQL_DATABASE":      testDatabase,
			},
			WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(120 * time.Second),
		}, "3306", "root")
	})
}

// Postgres returns the descriptor of a shared PostgreSQL container.
func Postgres(t *testing.T) core.ConnectionDescriptor {
	t.Helper()
	return postgresServer.get(t, func(ctx context.Context) (core.ConnectionDescriptor, error) {
		return start(ctx, core.DialectPostgres, testcontainers.ContainerRequest{
			Image:        PostgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       testDatabase,
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		}, "5432", testUser)
	})
}

func (s *server) get(t *testing.T, setup func(context.Context) (core.ConnectionDescriptor, error)) core.ConnectionDescriptor {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}
	s.once.Do(func() {
		s.desc, s.err = setup(context.Background())
	})
	if s.err != nil {
		t.Fatalf("Failed to start database container: %v", s.err)
	}
	return s.desc
}

func start(ctx context.Context, dialect string, req testcontainers.ContainerRequest, port, user string) (core.ConnectionDescriptor, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return core.ConnectionDescriptor{}, fmt.Errorf("failed to start %s container: %w", dialect, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return core.ConnectionDescriptor{}, fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		return core.ConnectionDescriptor{}, fmt.Errorf("failed to get container port: %w", err)
	}

	return core.ConnectionDescriptor{
		Dialect:  dialect,
		Host:     host,
		Port:     mapped.Int(),
		User:     user,
		Password: testPassword,
		Database: testDatabase,
	}, nil
}

// Connect opens the registered adapter for desc, retrying while the server
// finishes starting. The adapter is closed on cleanup.
func Connect(t *testing.T, desc core.ConnectionDescriptor) adapter.Adapter {
	t.Helper()
	ctx := context.Background()

	var (
		h   adapter.Adapter
		err error
	)
	for i := 0; i < 20; i++ {
		if h, err = adapter.Open(ctx, desc, testutil.NewTestLogger(t)); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", desc.Dialect, err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}
