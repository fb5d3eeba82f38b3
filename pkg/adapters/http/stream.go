package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/ports"
)

// subscriberBuffer is how many diffs a slow SSE client may lag behind before
// messages are dropped.
const subscriberBuffer = 10

// feed is the diff source of one session: a subscription on its live flow
// and the last snapshot sent.
type feed struct {
	flow   ports.Flow
	cancel func()
	last   *domain.Progress
	subs   map[chan string]struct{}
}

// StreamManager handles active SSE connections. The first subscriber of a
// session attaches to its flow; the last one to leave detaches.
//
// The flow is never called with mu held: flows deliver snapshots to publish
// while holding their own locks.
type StreamManager struct {
	mu     sync.Mutex
	feeds  map[string]*feed
	logger *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		feeds:  make(map[string]*feed),
		logger: logger,
	}
}

// Subscribe registers a client for the diffs of a session. The first message
// on the channel is the full load of the current snapshot.
func (sm *StreamManager) Subscribe(sessionID string, flow ports.Flow) (<-chan string, func()) {
	ch := make(chan string, subscriberBuffer)

	sm.mu.Lock()
	f, ok := sm.feeds[sessionID]
	if !ok || f.flow != flow {
		sm.mu.Unlock()
		f = sm.attach(sessionID, flow)
		sm.mu.Lock()
	}
	if msg, err := json.Marshal(domain.Diff(nil, f.last)); err == nil {
		ch <- string(msg)
	}
	f.subs[ch] = struct{}{}
	sm.mu.Unlock()

	return ch, func() {
		sm.mu.Lock()
		if _, ok := f.subs[ch]; !ok {
			sm.mu.Unlock()
			return
		}
		delete(f.subs, ch)
		close(ch)
		var detach func()
		if len(f.subs) == 0 && sm.feeds[sessionID] == f {
			delete(sm.feeds, sessionID)
			detach = f.cancel
		}
		sm.mu.Unlock()
		if detach != nil {
			detach()
		}
	}
}

// attach subscribes to flow and installs the feed, unless a concurrent
// caller already did. It returns the installed feed.
func (sm *StreamManager) attach(sessionID string, flow ports.Flow) *feed {
	f := &feed{flow: flow, subs: make(map[chan string]struct{})}
	f.cancel = flow.Subscribe(func(p *domain.Progress) {
		sm.publish(sessionID, f, p)
	})
	snap := flow.Snapshot()

	sm.mu.Lock()
	var stale []func()
	current, ok := sm.feeds[sessionID]
	switch {
	case ok && current.flow == flow:
		// Lost the race to another subscriber.
		stale = append(stale, f.cancel)
		f = current
	default:
		if ok {
			// The session was reopened: streams of the old flow end and
			// clients reconnect to the new one.
			stale = append(stale, current.cancel)
			for ch := range current.subs {
				close(ch)
			}
			current.subs = map[chan string]struct{}{}
		}
		if f.last == nil || snap.Revision > f.last.Revision {
			f.last = snap
		}
		sm.feeds[sessionID] = f
	}
	sm.mu.Unlock()

	for _, cancel := range stale {
		cancel()
	}
	return f
}

// publish turns a snapshot into a diff against the last one sent.
func (sm *StreamManager) publish(sessionID string, f *feed, p *domain.Progress) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if f.last != nil && p.Revision <= f.last.Revision {
		return
	}
	diff := domain.Diff(f.last, p)
	f.last = p
	if diff == nil || sm.feeds[sessionID] != f {
		return
	}
	msg, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("SSE: diff encode failed", "session_id", sessionID, "err", err)
		return
	}

	sm.logger.Debug("StreamManager: Broadcasting", "session_id", sessionID, "payload_size", len(msg), "count", len(f.subs))
	for ch := range f.subs {
		select {
		case ch <- string(msg):
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// CloseSession ends every stream of a session.
func (sm *StreamManager) CloseSession(sessionID string) {
	sm.mu.Lock()
	f, ok := sm.feeds[sessionID]
	if !ok {
		sm.mu.Unlock()
		return
	}
	delete(sm.feeds, sessionID)
	for ch := range f.subs {
		close(ch)
	}
	f.subs = map[chan string]struct{}{}
	sm.mu.Unlock()

	f.cancel()
}

// Active returns the number of streaming clients of a session.
func (sm *StreamManager) Active(sessionID string) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if f, ok := sm.feeds[sessionID]; ok {
		return len(f.subs)
	}
	return 0
}
