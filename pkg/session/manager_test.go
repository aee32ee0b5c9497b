package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.Session
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.Session)
	}
	s.data[sessionID] = sess.Snapshot()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.data[sessionID]; ok {
		return sess.Snapshot(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestManager_UpdateSerializesReadModifyWrite(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Save(ctx, id, domain.NewSession(id, "groceries")))

	var wg sync.WaitGroup
	const writers = 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := manager.Update(ctx, id, func(_ context.Context, cur *domain.Session) (*domain.Session, error) {
				cur.Version++
				return cur, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(writers), sess.Version, "no update was lost")
}

func TestManager_UpdateSkipsUnchanged(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	_, _, err := manager.Update(ctx, "missing", func(_ context.Context, cur *domain.Session) (*domain.Session, error) {
		return cur, nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, manager.Save(ctx, "s", domain.NewSession("s", "")))
	before, after, err := manager.Update(ctx, "s", func(_ context.Context, cur *domain.Session) (*domain.Session, error) {
		cur.States["x"] = domain.ItemState{Checked: true}
		return cur, nil
	})
	require.NoError(t, err)
	assert.NotContains(t, before.States, "x")
	assert.Contains(t, after.States, "x")

	stored, err := manager.Load(ctx, "s")
	require.NoError(t, err)
	assert.NotContains(t, stored.States, "x", "same version means nothing to persist")

	boom := errors.New("boom")
	_, _, err = manager.Update(ctx, "s", func(context.Context, *domain.Session) (*domain.Session, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestManager_LoadOrStart(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "atomic-init"

	var starts, created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, isNew, err := manager.LoadOrStart(ctx, id, func(context.Context) (*domain.Session, error) {
				starts.Add(1)
				return domain.NewSession(id, "groceries"), nil
			})
			assert.NoError(t, err)
			assert.NotNil(t, sess)
			if isNew {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), starts.Load())
	assert.Equal(t, int32(1), created.Load())

	sess, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "groceries", sess.TreeID)
}

type fakeLocker struct {
	mu     sync.Mutex
	held   map[string]bool
	ttls   []time.Duration
	failOn string
}

func (f *fakeLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.failOn {
		return nil, errors.New("lock busy")
	}
	if f.held[key] {
		return nil, errors.New("already held")
	}
	f.held[key] = true
	f.ttls = append(f.ttls, ttl)
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, key)
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{}, failOn: "busy"}
	manager := session.NewManager(&SlowStore{},
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "s", domain.NewSession("s", "")))
	assert.Equal(t, []time.Duration{5 * time.Second}, locker.ttls)
	assert.Empty(t, locker.held, "lock released after the operation")

	err := manager.Save(ctx, "busy", domain.NewSession("busy", ""))
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}
