package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/channelscope/models"
)

type fakeSession struct {
	id     int64
	closes atomic.Int32
}

func (s *fakeSession) ID() int64 { return s.id }
func (s *fakeSession) Navigate(context.Context, string) (int, error) {
	return 200, nil
}
func (s *fakeSession) Content(context.Context) (string, error) { return "<html></html>", nil }
func (s *fakeSession) Close() error {
	s.closes.Add(1)
	return nil
}

type fakeLauncher struct {
	mu        sync.Mutex
	sessions  []*fakeSession
	available bool
	launchErr error
}

func (l *fakeLauncher) Name() string    { return "fake" }
func (l *fakeLauncher) Available() bool { return l.available }
func (l *fakeLauncher) Launch(_ context.Context, id int64) (Session, error) {
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	s := &fakeSession{id: id}
	l.sessions = append(l.sessions, s)
	return s, nil
}

func TestManager_ReleaseIsIdempotent(t *testing.T) {
	l := &fakeLauncher{available: true}
	m := NewManager(l, ManagerConfig{MaxSessions: 2})

	lease, err := m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Stats().ActiveSessions)

	lease.Release()
	lease.Release()

	require.Len(t, l.sessions, 1)
	assert.Equal(t, int32(1), l.sessions[0].closes.Load())
	stats := m.Stats()
	assert.Equal(t, 0, stats.ActiveSessions)
	assert.Equal(t, int64(1), stats.Launched)
	assert.Equal(t, int64(1), stats.Released)
}

func TestManager_WithSessionReleasesOnEveryPath(t *testing.T) {
	l := &fakeLauncher{available: true}
	m := NewManager(l, ManagerConfig{MaxSessions: 1})
	boom := errors.New("boom")

	require.NoError(t, m.WithSession(context.Background(), func(context.Context, Session) error { return nil }))
	assert.ErrorIs(t, m.WithSession(context.Background(), func(context.Context, Session) error { return boom }), boom)
	assert.Panics(t, func() {
		_ = m.WithSession(context.Background(), func(context.Context, Session) error { panic("crash") })
	})

	require.Len(t, l.sessions, 3)
	for _, s := range l.sessions {
		assert.Equal(t, int32(1), s.closes.Load())
	}
	stats := m.Stats()
	assert.Equal(t, stats.Launched, stats.Released)
	assert.Equal(t, 0, stats.ActiveSessions)
}

func TestManager_EngineUnavailableFailsBeforeLaunch(t *testing.T) {
	l := &fakeLauncher{available: false}
	m := NewManager(l, ManagerConfig{MaxSessions: 1})

	_, err := m.Acquire(context.Background())
	assert.True(t, models.HasCode(err, models.ErrCodeEngineUnavailable))
	assert.Empty(t, l.sessions)
	assert.Equal(t, int64(0), m.Stats().Launched)
}

func TestManager_LaunchFailureFreesSlot(t *testing.T) {
	l := &fakeLauncher{available: true, launchErr: errors.New("exec format error")}
	m := NewManager(l, ManagerConfig{MaxSessions: 1})

	_, err := m.Acquire(context.Background())
	assert.True(t, models.HasCode(err, models.ErrCodeEngineUnavailable))

	l.launchErr = nil
	lease, err := m.Acquire(context.Background())
	require.NoError(t, err, "slot must be returned after a failed launch")
	lease.Release()
}

func TestManager_BusyWhenAllSlotsHeld(t *testing.T) {
	l := &fakeLauncher{available: true}
	m := NewManager(l, ManagerConfig{MaxSessions: 1, QueueTimeout: 20 * time.Millisecond})

	held, err := m.Acquire(context.Background())
	require.NoError(t, err)

	_, err = m.Acquire(context.Background())
	assert.True(t, models.HasCode(err, models.ErrCodeEngineBusy))
	assert.Equal(t, int64(1), m.Stats().Rejected)

	held.Release()
	lease, err := m.Acquire(context.Background())
	require.NoError(t, err)
	lease.Release()
}

func TestManager_ConcurrentRequestsNeverExceedLimit(t *testing.T) {
	l := &fakeLauncher{available: true}
	m := NewManager(l, ManagerConfig{MaxSessions: 3})

	var peak, current atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithSession(context.Background(), func(context.Context, Session) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(3))
	stats := m.Stats()
	assert.Equal(t, int64(20), stats.Launched)
	assert.Equal(t, int64(20), stats.Released)
}
