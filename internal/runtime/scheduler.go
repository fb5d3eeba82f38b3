package runtime

import (
	"time"

	"github.com/aretw0/heartsquest/pkg/ports"
)

// scope owns the timers started while one step is active. Entering a step
// acquires a new scope; leaving it releases the scope and stops its timers.
type scope struct {
	gen      uint64
	timers   map[*timerRef]struct{}
	released bool
}

// timerRef is filled in under the controller lock after the timer is armed.
// Callbacks read it only after taking that lock.
type timerRef struct {
	t ports.Timer
}

// scheduler hands out step scopes. It is guarded by the controller's mutex.
type scheduler struct {
	clock   ports.Clock
	current *scope
	gen     uint64
}

func newScheduler(clock ports.Clock) *scheduler {
	return &scheduler{clock: clock}
}

// acquire releases the current scope and opens a new one.
func (s *scheduler) acquire() *scope {
	s.release()
	s.gen++
	s.current = &scope{gen: s.gen, timers: make(map[*timerRef]struct{})}
	return s.current
}

// release stops every pending timer of the current scope.
func (s *scheduler) release() {
	if s.current == nil {
		return
	}
	for ref := range s.current.timers {
		ref.t.Stop()
	}
	s.current.timers = nil
	s.current.released = true
	s.current = nil
}

// live reports whether sc is still the active scope.
func (s *scheduler) live(sc *scope) bool {
	return sc != nil && !sc.released && s.current == sc
}

// pending counts the armed timers of the active scope.
func (s *scheduler) pending() int {
	if s.current == nil {
		return 0
	}
	return len(s.current.timers)
}

// after arms fire to run once after d. fire receives the reference so it
// can forget the timer once it holds the lock.
func (s *scheduler) after(sc *scope, d time.Duration, fire func(ref *timerRef)) {
	if !s.live(sc) {
		return
	}
	ref := &timerRef{}
	ref.t = s.clock.AfterFunc(d, func() { fire(ref) })
	sc.timers[ref] = struct{}{}
}

// forget drops a fired timer from its scope.
func (sc *scope) forget(ref *timerRef) {
	if sc.timers != nil {
		delete(sc.timers, ref)
	}
}
