package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/heartsquest/internal/logging"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock may be held.
const DefaultLockTTL = 30 * time.Second

// FlowFactory builds a live flow for a session. A nil progress starts a new
// session; otherwise the flow resumes from the stored snapshot.
type FlowFactory func(sessionID string, progress *domain.Progress) (ports.Flow, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// liveFlow is a running session and its write-through state.
type liveFlow struct {
	flow   ports.Flow
	cancel func()

	mu     sync.Mutex
	saved  uint64
	stored bool
	closed bool
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It keeps the live flows of this process and writes every accepted mutation
// through to the store, in revision order. Flows that implement
// ports.SettledFlow skip their motion-only mutations; Close saves the last one.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store   ports.StateStore
	factory FlowFactory

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	flowsMu sync.Mutex
	flows   map[string]*liveFlow

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithFlowFactory sets how live flows are built. Without it the Manager
// only persists snapshots and Open fails.
func WithFlowFactory(factory FlowFactory) Option {
	return func(m *Manager) {
		m.factory = factory
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		flows:   make(map[string]*liveFlow),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create opens a brand new session under a random id.
func (m *Manager) Create(ctx context.Context) (string, ports.Flow, error) {
	id := uuid.NewString()
	flow, err := m.Open(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return id, flow, nil
}

// Open returns the live flow of a session. A session that is not live is
// resumed from the store, or started fresh when the store does not know it.
func (m *Manager) Open(ctx context.Context, sessionID string) (ports.Flow, error) {
	return m.open(ctx, sessionID, true)
}

// Resume is Open for sessions that must already exist. Unknown sessions
// fail with domain.ErrSessionNotFound.
func (m *Manager) Resume(ctx context.Context, sessionID string) (ports.Flow, error) {
	return m.open(ctx, sessionID, false)
}

func (m *Manager) open(ctx context.Context, sessionID string, create bool) (ports.Flow, error) {
	if m.factory == nil {
		return nil, errors.New("session manager has no flow factory")
	}
	if flow, ok := m.Get(sessionID); ok {
		return flow, nil
	}

	var flow ports.Flow
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if live, ok := m.Get(sessionID); ok {
			flow = live
			return nil
		}

		stored, err := m.store.Load(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		if stored == nil && !create {
			return domain.ErrSessionNotFound
		}
		if stored != nil {
			m.logger.Debug("resuming session", "session_id", sessionID, "step", stored.CurrentStep, "revision", stored.Revision)
		}

		flow, err = m.factory(sessionID, stored)
		if err != nil {
			return fmt.Errorf("failed to open session %s: %w", sessionID, err)
		}

		lf := &liveFlow{flow: flow}
		subscribe := flow.Subscribe
		if settled, ok := flow.(ports.SettledFlow); ok {
			subscribe = settled.SubscribeSettled
		}
		lf.cancel = subscribe(func(p *domain.Progress) {
			m.persist(lf, p, false)
		})

		// Persist immediately to reserve the ID
		if err := m.persistNow(ctx, lf, flow.Snapshot()); err != nil {
			lf.cancel()
			flow.Close()
			return fmt.Errorf("failed to initialize session: %w", err)
		}

		m.flowsMu.Lock()
		m.flows[sessionID] = lf
		m.flowsMu.Unlock()
		return nil
	})
	return flow, err
}

// Get returns the live flow of a session, if this process runs it.
func (m *Manager) Get(sessionID string) (ports.Flow, bool) {
	m.flowsMu.Lock()
	defer m.flowsMu.Unlock()
	lf, ok := m.flows[sessionID]
	if !ok {
		return nil, false
	}
	return lf.flow, true
}

// Live returns the ids of the sessions running in this process, sorted.
func (m *Manager) Live() []string {
	m.flowsMu.Lock()
	defer m.flowsMu.Unlock()
	ids := make([]string, 0, len(m.flows))
	for id := range m.flows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// persist writes a snapshot unless a newer one was already written.
func (m *Manager) persist(lf *liveFlow, p *domain.Progress, force bool) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if lf.closed && !force {
		return
	}
	if lf.stored && p.Revision <= lf.saved && !force {
		return
	}
	if err := m.store.Save(context.Background(), p.SessionID, p); err != nil {
		m.logger.Warn("Failed to write session snapshot", "session_id", p.SessionID, "revision", p.Revision, "err", err)
		return
	}
	lf.saved, lf.stored = p.Revision, true
}

func (m *Manager) persistNow(ctx context.Context, lf *liveFlow, p *domain.Progress) error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if err := m.store.Save(ctx, p.SessionID, p); err != nil {
		return err
	}
	lf.saved, lf.stored = p.Revision, true
	return nil
}

// detach stops a live flow and removes it from the registry.
func (m *Manager) detach(sessionID string) *liveFlow {
	m.flowsMu.Lock()
	lf, ok := m.flows[sessionID]
	delete(m.flows, sessionID)
	m.flowsMu.Unlock()
	if !ok {
		return nil
	}

	lf.mu.Lock()
	lf.closed = true
	lf.mu.Unlock()
	lf.cancel()
	lf.flow.Close()
	return lf
}

// Close stops the live flow of a session and saves its final snapshot.
// The session stays in the store and can be opened again.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		lf := m.detach(sessionID)
		if lf == nil {
			return nil
		}
		m.persist(lf, lf.flow.Snapshot(), true)
		return nil
	})
}

// Shutdown closes every live flow.
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	for _, id := range m.Live() {
		if err := m.Close(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	var progress *domain.Progress
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		progress, err = m.store.Load(ctx, sessionID)
		return err
	})
	return progress, err
}

// Delete stops the session if it is live and removes it from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.detach(sessionID)
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
