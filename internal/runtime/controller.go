package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/heartsquest/internal/logging"
	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/games"
	"github.com/aretw0/heartsquest/pkg/ports"
)

// Controller is the flow controller of one session. It owns the Progress,
// every mini-game sub-state and the timers of the active step.
//
// All mutations are serialized by one mutex. Hooks and subscribers run
// after the mutex is released, in mutation order; they must not call back
// into the same Controller synchronously.
type Controller struct {
	table  *content.Table
	clock  ports.Clock
	rng    games.Rand
	logger *slog.Logger
	hooks  domain.LifecycleHooks

	mu       sync.Mutex
	progress *domain.Progress
	sched    *scheduler
	closed   bool
	queued   []func(context.Context)
	motion   bool
	subs     map[uint64]subscriber
	nextSub  uint64

	notifyMu sync.Mutex
}

type subscriber struct {
	fn      func(*domain.Progress)
	settled bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock used for step timers.
func WithClock(clock ports.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithRand sets the randomness source of the mini-games.
func WithRand(r games.Rand) Option {
	return func(c *Controller) {
		c.rng = r
	}
}

// WithSeed seeds a deterministic randomness source.
func WithSeed(seed uint64) Option {
	return func(c *Controller) {
		c.rng = games.NewRand(seed)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// New creates a controller positioned at the table's start step.
func New(table *content.Table, sessionID string, opts ...Option) *Controller {
	c := newController(table, domain.NewProgress(sessionID, table.Start), opts)
	c.mu.Lock()
	c.activate(true)
	c.flushLocked(context.Background())
	return c
}

// Resume creates a controller from a stored snapshot. Mini-game state is
// kept as is and the timers of the current step are armed again.
func Resume(table *content.Table, p *domain.Progress, opts ...Option) (*Controller, error) {
	if p == nil {
		return nil, domain.ErrSessionNotFound
	}
	if _, ok := table.Step(p.CurrentStep); !ok {
		return nil, fmt.Errorf("cannot resume session %s at %q: %w", p.SessionID, p.CurrentStep, domain.ErrUnknownStep)
	}
	c := newController(table, p.Clone(), opts)
	c.mu.Lock()
	c.activate(false)
	c.flushLocked(context.Background())
	return c, nil
}

func newController(table *content.Table, p *domain.Progress, opts []Option) *Controller {
	c := &Controller{
		table:    table,
		clock:    ports.SystemClock{},
		logger:   logging.NewNop(),
		progress: p,
		subs:     make(map[uint64]subscriber),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = games.NewRand(uint64(time.Now().UnixNano()))
	}
	c.logger = c.logger.With("session_id", p.SessionID)
	c.sched = newScheduler(c.clock)
	return c
}

// SessionID returns the id of the session this controller drives.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.SessionID
}

// Table returns the content table the controller runs.
func (c *Controller) Table() *content.Table {
	return c.table
}

// Snapshot returns a deep copy of the current Progress.
func (c *Controller) Snapshot() *domain.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.Clone()
}

// Subscribe registers fn to receive a snapshot after every accepted mutation.
func (c *Controller) Subscribe(fn func(*domain.Progress)) (cancel func()) {
	return c.subscribe(subscriber{fn: fn})
}

// SubscribeSettled is Subscribe without the motion-only mutations: the
// bounce ticks of the chase and the frames of the runner that only move
// things on screen. The next settled snapshot carries their effect.
func (c *Controller) SubscribeSettled(fn func(*domain.Progress)) (cancel func()) {
	return c.subscribe(subscriber{fn: fn, settled: true})
}

func (c *Controller) subscribe(sub subscriber) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = sub
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Close cancels every pending timer. Later intents fail with domain.ErrFlowClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.logger.Debug("flow closed", "step", c.progress.CurrentStep, "timers", c.sched.pending())
	}
	c.closed = true
	c.sched.release()
}

var _ ports.SettledFlow = (*Controller)(nil)

// mutate runs fn under the lock. An accepted mutation bumps the revision and
// is published to hooks and subscribers once the lock is released.
func (c *Controller) mutate(ctx context.Context, fn func() bool) (domain.Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.Outcome{}, domain.ErrFlowClosed
	}

	c.motion = false
	accepted := fn()
	if accepted {
		c.progress.Revision++
	}
	motion := c.motion
	out := domain.Outcome{
		Accepted: accepted,
		Step:     c.progress.CurrentStep,
		Revision: c.progress.Revision,
	}

	var (
		snap *domain.Progress
		subs []func(*domain.Progress)
	)
	if accepted && len(c.subs) > 0 {
		snap = c.progress.Clone()
		subs = make([]func(*domain.Progress), 0, len(c.subs))
		for _, sub := range c.subs {
			if motion && sub.settled {
				continue
			}
			subs = append(subs, sub.fn)
		}
	}

	// Hand over to the notify lock before releasing the state lock, so
	// observers see mutations in the order they happened.
	c.notifyMu.Lock()
	events := c.queued
	c.queued = nil
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, emit := range events {
		emit(ctx)
	}
	for _, sub := range subs {
		sub(snap.Clone())
	}
	return out, nil
}

// flushLocked releases the state lock held by the caller and delivers the
// queued hook events, with the same hand-over as mutate.
func (c *Controller) flushLocked(ctx context.Context) {
	c.notifyMu.Lock()
	events := c.queued
	c.queued = nil
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	for _, emit := range events {
		emit(ctx)
	}
}

// current returns the definition of the active step.
func (c *Controller) current() *content.Step {
	s, _ := c.table.Step(c.progress.CurrentStep)
	return s
}

// goTo leaves the active step and enters id.
func (c *Controller) goTo(id domain.StepID) {
	if _, ok := c.table.Step(id); !ok {
		c.logger.Error("transition to unknown step ignored", "from", c.progress.CurrentStep, "to", id)
		return
	}
	from := c.current()
	c.emitStep(domain.EventStepLeave, from)
	c.logger.Debug("transition", "from", from.ID, "to", id)

	c.progress.CurrentStep = id
	c.progress.History = append(c.progress.History, id)
	c.activate(true)
}

// activate acquires a scope for the current step, resets its mini-game when
// fresh (or when no state exists yet) and arms its timers.
func (c *Controller) activate(fresh bool) {
	step := c.current()
	sc := c.sched.acquire()
	if fresh || !c.hasGame(step) {
		c.resetGame(step)
	}
	c.emitStep(domain.EventStepEnter, step)
	c.arm(sc, step)
}

// after runs fn on the controller after d, unless the scope was released.
func (c *Controller) after(sc *scope, d time.Duration, fn func() bool) {
	c.sched.after(sc, d, func(ref *timerRef) {
		_, _ = c.mutate(context.Background(), func() bool {
			if !c.sched.live(sc) {
				return false
			}
			sc.forget(ref)
			return fn()
		})
	})
}

// allComplete reports whether every map node is in the completed set.
func (c *Controller) allComplete() bool {
	for _, n := range c.table.Nodes {
		if !c.progress.HasCompleted(n.ID) {
			return false
		}
	}
	return true
}

func (c *Controller) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: c.clock.Now(), Type: t, SessionID: c.progress.SessionID}
}

func (c *Controller) emitStep(t domain.EventType, step *content.Step) {
	hook := c.hooks.OnStepEnter
	if t == domain.EventStepLeave {
		hook = c.hooks.OnStepLeave
	}
	if hook == nil || step == nil {
		return
	}
	ev := &domain.StepEvent{EventBase: c.base(t), StepID: step.ID, StepKind: step.Kind}
	c.queued = append(c.queued, func(ctx context.Context) { hook(ctx, ev) })
}

func (c *Controller) emitAnswer(step domain.StepID, accepted bool) {
	if c.hooks.OnAnswer == nil {
		return
	}
	ev := &domain.AnswerEvent{EventBase: c.base(domain.EventAnswer), StepID: step, Accepted: accepted}
	c.queued = append(c.queued, func(ctx context.Context) { c.hooks.OnAnswer(ctx, ev) })
}

func (c *Controller) emitNode(node domain.StepID) {
	if c.hooks.OnNodeComplete == nil {
		return
	}
	ev := &domain.NodeEvent{EventBase: c.base(domain.EventNodeComplete), NodeID: node, HighestUnlocked: c.progress.HighestUnlocked}
	c.queued = append(c.queued, func(ctx context.Context) { c.hooks.OnNodeComplete(ctx, ev) })
}

func (c *Controller) emitGame(step domain.StepID, game, action string, accepted bool) {
	if c.hooks.OnGameAction == nil {
		return
	}
	ev := &domain.GameEvent{EventBase: c.base(domain.EventGameAction), StepID: step, Game: game, Action: action, Accepted: accepted}
	c.queued = append(c.queued, func(ctx context.Context) { c.hooks.OnGameAction(ctx, ev) })
}

func (c *Controller) emitReset() {
	if c.hooks.OnReset == nil {
		return
	}
	ev := c.base(domain.EventReset)
	c.queued = append(c.queued, func(ctx context.Context) { c.hooks.OnReset(ctx, &ev) })
}
