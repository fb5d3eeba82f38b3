package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter    EventType = "step_enter"
	EventStepLeave    EventType = "step_leave"
	EventAnswer       EventType = "answer"
	EventNodeComplete EventType = "node_complete"
	EventGameAction   EventType = "game_action"
	EventReset        EventType = "reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	StepID   StepID   `json:"step_id"`
	StepKind StepKind `json:"step_kind"`
}

// AnswerEvent records a trivia submission. The raw text is not kept.
type AnswerEvent struct {
	EventBase
	StepID   StepID `json:"step_id"`
	Accepted bool   `json:"accepted"`
}

// NodeEvent records a node entering the completed set.
type NodeEvent struct {
	EventBase
	NodeID          StepID `json:"node_id"`
	HighestUnlocked int    `json:"highest_unlocked"`
}

// GameEvent records a mini-game action or timer outcome.
type GameEvent struct {
	EventBase
	StepID   StepID `json:"step_id"`
	Game     string `json:"game"`
	Action   string `json:"action"`
	Accepted bool   `json:"accepted"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run after the controller releases its lock, in mutation order.
type LifecycleHooks struct {
	OnStepEnter    func(context.Context, *StepEvent)
	OnStepLeave    func(context.Context, *StepEvent)
	OnAnswer       func(context.Context, *AnswerEvent)
	OnNodeComplete func(context.Context, *NodeEvent)
	OnGameAction   func(context.Context, *GameEvent)
	OnReset        func(context.Context, *EventBase)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:    chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:    chain(h.OnStepLeave, other.OnStepLeave),
		OnAnswer:       chain(h.OnAnswer, other.OnAnswer),
		OnNodeComplete: chain(h.OnNodeComplete, other.OnNodeComplete),
		OnGameAction:   chain(h.OnGameAction, other.OnGameAction),
		OnReset:        chain(h.OnReset, other.OnReset),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
