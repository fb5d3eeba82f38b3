package heartsquest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/heartsquest/internal/logging"
	"github.com/aretw0/heartsquest/internal/runtime"
	"github.com/aretw0/heartsquest/pkg/adapters/memory"
	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/ports"
	"github.com/aretw0/heartsquest/pkg/session"
)

// Engine is the high-level entry point for the Hearts Quest library.
// It binds a content table to a session manager and builds the live flows.
type Engine struct {
	table    *content.Table
	sessions *session.Manager
	store    ports.StateStore
	locker   ports.DistributedLocker
	clock    ports.Clock
	seed     *uint64
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	err      error
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTable plays the given content table.
func WithTable(t *content.Table) Option {
	return func(e *Engine) {
		e.table = t
	}
}

// WithVariant plays one of the embedded tables ("map" or "linear").
func WithVariant(name string) Option {
	return func(e *Engine) {
		t, err := content.Variant(name)
		if err != nil {
			e.err = err
			return
		}
		e.table = t
	}
}

// WithContentFile plays a content table loaded from a YAML file.
func WithContentFile(path string) Option {
	return func(e *Engine) {
		t, err := content.Load(path)
		if err != nil {
			e.err = err
			return
		}
		e.table = t
	}
}

// WithStore sets where session snapshots are written (default: in memory).
func WithStore(s ports.StateStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker enables distributed session locks.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithClock drives every flow timer from the given clock.
func WithClock(c ports.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithSeed makes mini-game randomness reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = &seed
	}
}

// WithLifecycleHooks registers observability hooks on every flow.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Engine. Without options it plays the embedded map
// table and keeps sessions in memory.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.err != nil {
		return nil, fmt.Errorf("invalid content: %w", eng.err)
	}

	if eng.table == nil {
		t, err := content.Variant(content.DefaultVariant)
		if err != nil {
			return nil, err
		}
		eng.table = t
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	eng.Name = eng.table.Title
	if eng.Name != "" {
		eng.logger = eng.logger.With("quest", eng.Name)
	}

	managerOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithFlowFactory(eng.buildFlow),
	}
	if eng.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, managerOpts...)

	return eng, nil
}

// buildFlow is the session.FlowFactory of the engine.
func (e *Engine) buildFlow(sessionID string, p *domain.Progress) (ports.Flow, error) {
	if p == nil {
		return e.NewFlow(sessionID), nil
	}
	return runtime.Resume(e.table, p, e.flowOptions()...)
}

func (e *Engine) flowOptions() []runtime.Option {
	opts := []runtime.Option{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
	}
	if e.clock != nil {
		opts = append(opts, runtime.WithClock(e.clock))
	}
	if e.seed != nil {
		opts = append(opts, runtime.WithSeed(*e.seed))
	}
	return opts
}

// NewFlow starts an unmanaged flow: nothing is persisted and the caller
// must Close it.
func (e *Engine) NewFlow(sessionID string) ports.Flow {
	return runtime.New(e.table, sessionID, e.flowOptions()...)
}

// Table returns the content table being played.
func (e *Engine) Table() *content.Table {
	return e.table
}

// Sessions returns the session manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Store returns the StateStore sessions are written to.
func (e *Engine) Store() ports.StateStore {
	return e.store
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Create starts a new persisted session under a random id.
func (e *Engine) Create(ctx context.Context) (string, ports.Flow, error) {
	return e.sessions.Create(ctx)
}

// Open returns the live flow of a session, resuming or starting it.
func (e *Engine) Open(ctx context.Context, sessionID string) (ports.Flow, error) {
	return e.sessions.Open(ctx, sessionID)
}

// Resume returns the live flow of an existing session.
func (e *Engine) Resume(ctx context.Context, sessionID string) (ports.Flow, error) {
	return e.sessions.Resume(ctx, sessionID)
}

// Close stops a live session, keeping its snapshot.
func (e *Engine) Close(ctx context.Context, sessionID string) error {
	return e.sessions.Close(ctx, sessionID)
}

// Delete stops a session and removes its snapshot.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// List returns the ids of the stored sessions.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Load returns the stored snapshot of a session.
func (e *Engine) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	return e.sessions.Load(ctx, sessionID)
}

// Shutdown stops every live session, saving their final snapshots.
func (e *Engine) Shutdown(ctx context.Context) error {
	return e.sessions.Shutdown(ctx)
}
