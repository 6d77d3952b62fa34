package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/leapstack-labs/dabiro/pkg/core"
)

// Factory builds an unconnected adapter. A nil logger means discard.
type Factory func(*slog.Logger) Adapter

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// dialectName folds aliases (mariadb, postgresql, sqlite3) onto the
// canonical dialect name.
func dialectName(name string) string {
	return core.ConnectionDescriptor{Dialect: name}.NormalizedDialect()
}

// Register adds a factory for a dialect. Adapter packages call it from init.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[dialectName(name)] = factory
}

// Get returns the factory registered for name or one of its aliases.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[dialectName(name)]
	return f, ok
}

// IsRegistered reports whether an adapter serves the dialect.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// ListAdapters returns the registered dialect names, sorted.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// NewAdapter returns an unconnected adapter for the descriptor's dialect.
func NewAdapter(desc core.ConnectionDescriptor, logger *slog.Logger) (Adapter, error) {
	if desc.NormalizedDialect() == "" {
		return nil, &core.ValidationError{Field: "dialect", Reason: "is required"}
	}
	factory, ok := Get(desc.Dialect)
	if !ok {
		return nil, &UnknownAdapterError{Type: desc.Dialect, Available: ListAdapters()}
	}
	return factory(logger), nil
}

// Open creates an adapter for desc and connects it.
func Open(ctx context.Context, desc core.ConnectionDescriptor, logger *slog.Logger) (Adapter, error) {
	a, err := NewAdapter(desc, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, desc); err != nil {
		return nil, err
	}
	return a, nil
}

// UnknownAdapterError reports a dialect with no registered adapter.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown dialect %q\nAvailable dialects: %v\nHint: Check connection.dialect in dabiro.yaml", e.Type, e.Available)
}
