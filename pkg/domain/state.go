package domain

import (
	"slices"

	"github.com/aretw0/heartsquest/pkg/games"
)

// Progress is the per-session snapshot owned by the flow controller.
// Revision grows on every accepted mutation and orders snapshots for stores
// and subscribers.
type Progress struct {
	SessionID string `json:"session_id"`
	Revision  uint64 `json:"revision"`

	CurrentStep StepID `json:"current_step"`

	// HighestUnlocked never decreases except on reset.
	HighestUnlocked int `json:"highest_unlocked"`

	// Completed holds each node id at most once, in completion order.
	Completed []StepID `json:"completed,omitempty"`

	// Answer is the transient free-text buffer of the trivia step.
	Answer string `json:"answer,omitempty"`

	// History is the path taken, one entry per step entered.
	History []StepID `json:"history,omitempty"`

	Games GameState `json:"games"`

	// Sealed carries an encrypted snapshot when a store wraps progress at
	// rest. It is empty on every snapshot the controller sees.
	Sealed string `json:"sealed,omitempty"`
}

// GameState holds the mini-game sub-states. A field is non-nil only after
// its step has been entered since the last reset.
type GameState struct {
	Chase   *games.Chase   `json:"chase,omitempty"`
	Press   *games.Press   `json:"press,omitempty"`
	Tug     *games.Tug     `json:"tug,omitempty"`
	Wheel   *games.Wheel   `json:"wheel,omitempty"`
	Bond    *games.Bond    `json:"bond,omitempty"`
	Runner  *games.Runner  `json:"runner,omitempty"`
	Flags   *games.Flags   `json:"flags,omitempty"`
	Sliders *games.Sliders `json:"sliders,omitempty"`
	Quiz    *games.Quiz    `json:"quiz,omitempty"`
}

// NewProgress creates a clean snapshot positioned at the start step.
func NewProgress(sessionID string, start StepID) *Progress {
	return &Progress{
		SessionID:   sessionID,
		CurrentStep: start,
		History:     []StepID{start},
	}
}

// HasCompleted reports whether the node is in the completed set.
func (p *Progress) HasCompleted(id StepID) bool {
	return slices.Contains(p.Completed, id)
}

// MarkCompleted adds the node to the completed set. It returns false if the
// node was already there.
func (p *Progress) MarkCompleted(id StepID) bool {
	if id == "" || p.HasCompleted(id) {
		return false
	}
	p.Completed = append(p.Completed, id)
	return true
}

// Unlock raises HighestUnlocked to n. Lower values are ignored.
func (p *Progress) Unlock(n int) bool {
	if n <= p.HighestUnlocked {
		return false
	}
	p.HighestUnlocked = n
	return true
}

// Clone returns a deep copy so snapshots can leave the controller's lock.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}
	c := *p
	c.Completed = slices.Clone(p.Completed)
	c.History = slices.Clone(p.History)
	c.Games = p.Games.clone()
	return &c
}

func (g GameState) clone() GameState {
	c := GameState{
		Chase: clonePtr(g.Chase),
		Press: clonePtr(g.Press),
		Tug:   clonePtr(g.Tug),
		Wheel: clonePtr(g.Wheel),
	}
	if g.Bond != nil {
		b := g.Bond.Clone()
		c.Bond = &b
	}
	if g.Runner != nil {
		r := g.Runner.Clone()
		c.Runner = &r
	}
	if g.Flags != nil {
		f := *g.Flags
		c.Flags = &f
	}
	if g.Sliders != nil {
		s := g.Sliders.Clone()
		c.Sliders = &s
	}
	if g.Quiz != nil {
		q := g.Quiz.Clone()
		c.Quiz = &q
	}
	return c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
