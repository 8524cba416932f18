package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/use-agent/channelscope/models"
	"golang.org/x/sync/semaphore"
)

// ManagerConfig holds configuration for the session manager.
type ManagerConfig struct {
	// MaxSessions caps concurrently running sessions.
	MaxSessions int

	// QueueTimeout bounds the wait for a free slot. Zero waits as long as
	// the caller's context allows.
	QueueTimeout time.Duration
}

// Manager hands out one fresh session per request and tracks its release.
// Sessions are never pooled or reused.
type Manager struct {
	cfg      ManagerConfig
	launcher Launcher
	slots    *semaphore.Weighted

	nextID   atomic.Int64
	active   atomic.Int32
	launched atomic.Int64
	released atomic.Int64
	rejected atomic.Int64
}

// NewManager creates a Manager that launches sessions with l.
func NewManager(l Launcher, cfg ManagerConfig) *Manager {
	if cfg.MaxSessions < 1 {
		cfg.MaxSessions = 1
	}
	return &Manager{
		cfg:      cfg,
		launcher: l,
		slots:    semaphore.NewWeighted(int64(cfg.MaxSessions)),
	}
}

// Lease is an acquired session. Release must be called exactly once by the
// acquiring request; further calls are no-ops.
type Lease struct {
	Session

	m        *Manager
	once     sync.Once
	acquired time.Time
}

// Release closes the session and frees its slot. Idempotent.
func (l *Lease) Release() {
	l.once.Do(func() {
		if err := l.Session.Close(); err != nil {
			slog.Warn("session close failed", "session", l.ID(), "error", err)
		}
		l.m.slots.Release(1)
		l.m.active.Add(-1)
		l.m.released.Add(1)
		slog.Debug("session released",
			"session", l.ID(),
			"held_ms", time.Since(l.acquired).Milliseconds(),
		)
	})
}

// Acquire waits for a free slot and launches a new session.
func (m *Manager) Acquire(ctx context.Context) (*Lease, error) {
	if !m.launcher.Available() {
		return nil, models.NewScrapeError(
			models.ErrCodeEngineUnavailable,
			"browser binary not found",
			nil,
		)
	}

	waitCtx := ctx
	if m.cfg.QueueTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, m.cfg.QueueTimeout)
		defer cancel()
	}
	if err := m.slots.Acquire(waitCtx, 1); err != nil {
		m.rejected.Add(1)
		if ctx.Err() != nil {
			return nil, models.NewScrapeError(models.ErrCodeTimeout, "request canceled while waiting for a browser", ctx.Err())
		}
		return nil, models.NewScrapeError(
			models.ErrCodeEngineBusy,
			fmt.Sprintf("all %d browser sessions are busy", m.cfg.MaxSessions),
			err,
		)
	}

	id := m.nextID.Add(1)
	sess, err := m.launcher.Launch(ctx, id)
	if err != nil {
		m.slots.Release(1)
		var se *models.ScrapeError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, models.NewScrapeError(models.ErrCodeEngineUnavailable, "failed to launch browser", err)
	}

	m.active.Add(1)
	m.launched.Add(1)
	slog.Debug("session acquired", "session", id, "engine", m.launcher.Name())

	return &Lease{Session: sess, m: m, acquired: time.Now()}, nil
}

// WithSession runs fn with a freshly acquired session and releases it on
// every exit path, including panics inside fn.
func (m *Manager) WithSession(ctx context.Context, fn func(ctx context.Context, s Session) error) error {
	lease, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	return fn(ctx, lease)
}

// Available reports whether the rendering engine can be launched.
func (m *Manager) Available() bool {
	return m.launcher.Available()
}

// Stats returns a snapshot of session usage.
func (m *Manager) Stats() models.SessionStats {
	return models.SessionStats{
		MaxSessions:    m.cfg.MaxSessions,
		ActiveSessions: int(m.active.Load()),
		Launched:       m.launched.Load(),
		Released:       m.released.Load(),
		Rejected:       m.rejected.Load(),
	}
}
