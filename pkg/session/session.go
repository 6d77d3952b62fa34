// Package session ties a connection descriptor to its open handle for the
// lifetime of an administrative session.
//
// A Session owns its handle exclusively and is not safe for concurrent use;
// operations within a session are sequential.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/dabiro/pkg/adapter"
	"github.com/leapstack-labs/dabiro/pkg/core"
)

// DefaultIdleTimeout is the idle time after which a session expires.
const DefaultIdleTimeout = 30 * time.Minute

// Options configures a session.
type Options struct {
	// IdleTimeout defaults to DefaultIdleTimeout. Negative disables expiry.
	IdleTimeout time.Duration

	// Now is the clock, for tests.
	Now func() time.Time
}

// Session is an open connection and its descriptor.
type Session struct {
	ID         uuid.UUID
	Descriptor core.ConnectionDescriptor
	Handle     adapter.Adapter
	OpenedAt   time.Time
	LastUsed   time.Time

	idle   time.Duration
	now    func() time.Time
	logger *slog.Logger
	closed bool
}

// Open connects desc and starts a session. Connection failures are returned
// as *core.ConnectionError.
func Open(ctx context.Context, desc core.ConnectionDescriptor, logger *slog.Logger, opts Options) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h, err := adapter.Open(ctx, desc, logger)
	if err != nil {
		return nil, err
	}
	return newSession(desc, h, logger, opts), nil
}

// New starts a session around an already connected handle.
func New(h adapter.Adapter, logger *slog.Logger, opts Options) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return newSession(h.Descriptor(), h, logger, opts)
}

func newSession(desc core.ConnectionDescriptor, h adapter.Adapter, logger *slog.Logger, opts Options) *Session {
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	now := opts.Now()
	s := &Session{
		ID:         uuid.New(),
		Descriptor: desc,
		Handle:     h,
		OpenedAt:   now,
		LastUsed:   now,
		idle:       opts.IdleTimeout,
		now:        opts.Now,
	}
	s.logger = logger.With(slog.String("session", s.ID.String()))
	s.logger.Info("session opened",
		slog.String("dialect", desc.NormalizedDialect()),
		slog.String("database", h.CurrentDatabase()))
	return s
}

// Touch records activity.
func (s *Session) Touch() {
	s.LastUsed = s.now()
}

// Expired reports whether the session has been idle longer than its timeout.
func (s *Session) Expired(now time.Time) bool {
	if s.idle < 0 {
		return false
	}
	return now.Sub(s.LastUsed) > s.idle
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed
}

// Close closes the handle. Calling Close more than once is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("session closed", slog.Duration("duration", s.now().Sub(s.OpenedAt)))
	return s.Handle.Close()
}
