package ports

import (
	"context"

	"github.com/aretw0/heartsquest/pkg/domain"
)

// Flow is one live session of the quest.
// Adapters (HTTP, MCP, terminal runner) drive it through Dispatch and
// observe it through View and Subscribe.
type Flow interface {
	// Dispatch applies an intent. Intents that do not apply to the current
	// step are rejected silently (Outcome.Accepted == false, nil error).
	Dispatch(ctx context.Context, intent domain.Intent) (domain.Outcome, error)

	// View derives the view model of the current screen.
	View() domain.View

	// Snapshot returns a deep copy of the current Progress.
	Snapshot() *domain.Progress

	// Subscribe registers fn to receive a snapshot after every accepted
	// mutation, including timer-driven ones. The returned func unregisters it.
	Subscribe(fn func(*domain.Progress)) (cancel func())

	// Close cancels every pending timer. Later intents fail with domain.ErrFlowClosed.
	Close()
}

// SettledFlow is implemented by flows that can leave motion-only mutations
// (positions of a frame-driven mini-game) out of a subscription. Stores
// subscribe this way so they are not written at frame rate.
type SettledFlow interface {
	Flow
	SubscribeSettled(fn func(*domain.Progress)) (cancel func())
}
