package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/dabiro/internal/testutil"
	_ "github.com/leapstack-labs/dabiro/pkg/adapters/sqlite"
	"github.com/leapstack-labs/dabiro/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	desc := core.ConnectionDescriptor{Dialect: "sqlite", Path: filepath.Join(t.TempDir(), "s.db")}

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	s, err := Open(ctx, desc, testutil.NewTestLogger(t), Options{IdleTimeout: 10 * time.Minute, Now: func() time.Time { return clock }})
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID.String())
	assert.Equal(t, desc, s.Descriptor)
	assert.Equal(t, start, s.OpenedAt)
	assert.Equal(t, "main", s.Handle.CurrentDatabase())

	assert.False(t, s.Expired(start.Add(10*time.Minute)))
	assert.True(t, s.Expired(start.Add(11*time.Minute)))

	clock = start.Add(9 * time.Minute)
	s.Touch()
	assert.False(t, s.Expired(start.Add(15*time.Minute)))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, s.Closed())

	_, err = s.Handle.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, core.ErrNotConnected)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, core.ConnectionDescriptor{Dialect: "oracle"}, nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown dialect "oracle"`)

	_, err = Open(ctx, core.ConnectionDescriptor{Dialect: "sqlite", Path: filepath.Join(t.TempDir(), "missing", "dir", "x.db")}, nil, Options{})
	var connErr *core.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "sqlite", connErr.Dialect)
}

func TestNoExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, core.ConnectionDescriptor{Dialect: "sqlite", Path: ":memory:"}, nil, Options{IdleTimeout: -1})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.False(t, s.Expired(time.Now().Add(24*time.Hour)))
}
