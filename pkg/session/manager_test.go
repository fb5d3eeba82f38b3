package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/heartsquest/internal/runtime"
	"github.com/aretw0/heartsquest/internal/testutils"
	"github.com/aretw0/heartsquest/pkg/adapters/memory"
	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/ports"
	"github.com/aretw0/heartsquest/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data  map[string]*domain.Progress
	saves []uint64
	mu    sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, p *domain.Progress) error {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.Progress)
	}
	s.data[sessionID] = p.Clone()
	s.saves = append(s.saves, p.Revision)
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	time.Sleep(2 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.data[sessionID]; ok {
		return p.Clone(), nil
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
	return nil, nil
}

func (s *SlowStore) revisions() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.saves...)
}

type failingStore struct {
	*memory.Store
}

func (f *failingStore) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	return nil, errors.New("connection refused")
}

func factory(table *content.Table, clock ports.Clock) session.FlowFactory {
	return func(sessionID string, p *domain.Progress) (ports.Flow, error) {
		if p == nil {
			return runtime.New(table, sessionID, runtime.WithClock(clock), runtime.WithSeed(1)), nil
		}
		return runtime.Resume(table, p, runtime.WithClock(clock), runtime.WithSeed(1))
	}
}

func TestManager_ConcurrentOpenSharesOneFlow(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store, session.WithFlowFactory(factory(content.MustVariant("map"), testutils.NewManualClock())))
	ctx := context.Background()
	t.Cleanup(func() { _ = manager.Shutdown(ctx) })
	id := "race-test"

	flows := make([]ports.Flow, 10)
	var wg sync.WaitGroup
	for i := range flows {
		wg.Add(1)
		go func() {
			defer wg.Done()
			flow, err := manager.Open(ctx, id)
			assert.NoError(t, err)
			flows[i] = flow
		}()
	}
	wg.Wait()

	for _, f := range flows {
		assert.Same(t, flows[0], f)
	}
	assert.Equal(t, []uint64{0}, store.revisions(), "the id is reserved once")

	p, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StepID("start"), p.CurrentStep)
}

func TestManager_OpenWritesThrough(t *testing.T) {
	ctx := context.Background()
	store := &SlowStore{}
	manager := session.NewManager(store, session.WithFlowFactory(factory(content.MustVariant("map"), testutils.NewManualClock())))
	t.Cleanup(func() { _ = manager.Shutdown(ctx) })

	id, flow, err := manager.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	again, err := manager.Open(ctx, id)
	require.NoError(t, err)
	assert.Same(t, flow, again, "a live session is shared")

	_, _ = flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentStart})
	_, _ = flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentSelect, Node: "q2"}) // locked
	_, _ = flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentSelect, Node: "q1"})
	_, _ = flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentSubmit, Text: "frog"})

	stored, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StepID("s1"), stored.CurrentStep)
	assert.Equal(t, []uint64{0, 1, 2, 3}, store.revisions(), "one save per accepted mutation, in order")
	assert.Equal(t, []string{id}, manager.Live())
}

func TestManager_CloseAndResume(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clock := testutils.NewManualClock()
	manager := session.NewManager(store, session.WithFlowFactory(factory(content.MustVariant("map"), clock)))
	t.Cleanup(func() { _ = manager.Shutdown(ctx) })

	flow, err := manager.Open(ctx, "keep")
	require.NoError(t, err)
	_, _ = flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentSelect, Node: "q1"})
	_, _ = flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentAnswer, Text: "fro"})

	require.NoError(t, manager.Close(ctx, "keep"))
	assert.Empty(t, manager.Live())
	_, err = flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentContinue})
	assert.ErrorIs(t, err, domain.ErrFlowClosed)

	resumed, err := manager.Open(ctx, "keep")
	require.NoError(t, err)
	p := resumed.Snapshot()
	assert.Equal(t, domain.StepID("q1"), p.CurrentStep)
	assert.Equal(t, "fro", p.Answer)
	assert.Equal(t, uint64(2), p.Revision)
}

func TestManager_TimerMutationsArePersisted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clock := testutils.NewManualClock()
	manager := session.NewManager(store, session.WithFlowFactory(factory(content.MustVariant("map"), clock)))
	t.Cleanup(func() { _ = manager.Shutdown(ctx) })

	p := domain.NewProgress("wheel", "wheel")
	p.Unlock(8)
	require.NoError(t, store.Save(ctx, "wheel", p))

	flow, err := manager.Open(ctx, "wheel")
	require.NoError(t, err)
	out, err := flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentAction, Game: "wheel", Action: "spin"})
	require.NoError(t, err)
	require.True(t, out.Accepted)

	clock.Advance(2 * time.Second)

	stored, err := store.Load(ctx, "wheel")
	require.NoError(t, err)
	require.NotNil(t, stored.Games.Wheel)
	assert.True(t, stored.Games.Wheel.Settled())
}

func TestManager_BounceTicksAreNotWrittenThrough(t *testing.T) {
	ctx := context.Background()
	store := &SlowStore{}
	clock := testutils.NewManualClock()
	table, err := content.Parse([]byte(`
start: chase
final: end
steps:
  - id: chase
    kind: chase
    success: end
    params: { mode: bounce, tick: 16ms }
  - { id: end, kind: final }
`))
	require.NoError(t, err)
	manager := session.NewManager(store, session.WithFlowFactory(factory(table, clock)))
	t.Cleanup(func() { _ = manager.Shutdown(ctx) })

	flow, err := manager.Open(ctx, "bounce")
	require.NoError(t, err)

	clock.Advance(time.Second)
	moved := flow.Snapshot()
	require.Greater(t, moved.Revision, uint64(60))
	assert.Equal(t, []uint64{0}, store.revisions(), "no save per frame")

	out, err := flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentAction, Game: "chase", Action: "catch"})
	require.NoError(t, err)
	require.True(t, out.Accepted)
	assert.Equal(t, []uint64{0, out.Revision}, store.revisions(), "a catch saves the latest position with it")

	clock.Advance(100 * time.Millisecond)
	require.NoError(t, manager.Close(ctx, "bounce"))
	saves := store.revisions()
	assert.Len(t, saves, 3)
	assert.Equal(t, flow.Snapshot().Revision, saves[2], "close keeps the last motion")
}

func TestManager_DeleteStopsLiveFlow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	manager := session.NewManager(store, session.WithFlowFactory(factory(content.MustVariant("linear"), testutils.NewManualClock())))

	flow, err := manager.Open(ctx, "gone")
	require.NoError(t, err)
	require.NoError(t, manager.Delete(ctx, "gone"))

	_, err = flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentStart})
	assert.ErrorIs(t, err, domain.ErrFlowClosed)
	_, err = store.Load(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_OpenErrors(t *testing.T) {
	ctx := context.Background()

	strict := session.NewManager(memory.NewStore(),
		session.WithFlowFactory(factory(content.MustVariant("map"), testutils.NewManualClock())))
	_, err := strict.Resume(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = session.NewManager(memory.NewStore()).Open(ctx, "x")
	assert.Error(t, err, "no factory")

	broken := session.NewManager(&failingStore{Store: memory.NewStore()},
		session.WithFlowFactory(factory(content.MustVariant("map"), testutils.NewManualClock())))
	_, err = broken.Open(ctx, "x")
	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, broken.Live())
}
