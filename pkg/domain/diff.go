package domain

import (
	"reflect"
	"slices"
)

// ProgressDiff represents the changes between two snapshots.
// It is serialized to JSON for partial updates on the client.
type ProgressDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`
	Revision  uint64 `json:"revision"`

	// Rewind is set when the new snapshot does not extend the old one
	// (a reset). Clients should drop their local copy and apply the diff
	// as a full load.
	Rewind bool `json:"rewind,omitempty"`

	CurrentStep     *StepID `json:"current_step,omitempty"`
	HighestUnlocked *int    `json:"highest_unlocked,omitempty"`
	Answer          *string `json:"answer,omitempty"`

	// Completed and History carry only appended items.
	Completed []StepID `json:"completed,omitempty"`
	History   []StepID `json:"history,omitempty"`

	// Games contains only changed mini-game states, keyed by game name.
	// A cleared game is present with a nil value.
	Games map[string]any `json:"games,omitempty"`
}

// Diff calculates the difference between oldP and newP.
// If oldP is nil, it returns a diff representing the entire newP (initial load).
func Diff(oldP, newP *Progress) *ProgressDiff {
	if newP == nil {
		return nil
	}
	if oldP != nil && !extends(oldP, newP) {
		d := Diff(nil, newP)
		d.Rewind = true
		return d
	}

	d := &ProgressDiff{SessionID: newP.SessionID, Revision: newP.Revision}

	if oldP == nil || oldP.CurrentStep != newP.CurrentStep {
		d.CurrentStep = &newP.CurrentStep
	}
	if oldP == nil || oldP.HighestUnlocked != newP.HighestUnlocked {
		d.HighestUnlocked = &newP.HighestUnlocked
	}
	if (oldP == nil && newP.Answer != "") || (oldP != nil && oldP.Answer != newP.Answer) {
		d.Answer = &newP.Answer
	}

	var old *Progress
	if oldP != nil {
		old = oldP
	} else {
		old = &Progress{}
	}
	d.Completed = appended(old.Completed, newP.Completed)
	d.History = appended(old.History, newP.History)
	d.Games = diffGames(old.Games.named(), newP.Games.named())

	if oldP != nil && d.IsEmpty() {
		return nil
	}
	return d
}

// extends reports whether newP can be reached from oldP without a reset:
// the append-only lists keep their prefix and the unlock index never drops.
func extends(oldP, newP *Progress) bool {
	if newP.HighestUnlocked < oldP.HighestUnlocked {
		return false
	}
	if len(newP.Completed) < len(oldP.Completed) || !slices.Equal(oldP.Completed, newP.Completed[:len(oldP.Completed)]) {
		return false
	}
	if len(newP.History) < len(oldP.History) || !slices.Equal(oldP.History, newP.History[:len(oldP.History)]) {
		return false
	}
	return true
}

func appended(old, new []StepID) []StepID {
	if len(new) <= len(old) {
		return nil
	}
	return slices.Clone(new[len(old):])
}

func diffGames(old, new map[string]any) map[string]any {
	delta := make(map[string]any)
	for k, newVal := range new {
		if oldVal, ok := old[k]; !ok || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}
	for k := range old {
		if _, ok := new[k]; !ok {
			delta[k] = nil
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// named flattens the non-nil sub-states into a map keyed by game name.
func (g GameState) named() map[string]any {
	m := make(map[string]any)
	put := func(name string, ok bool, v any) {
		if ok {
			m[name] = v
		}
	}
	put("chase", g.Chase != nil, g.Chase)
	put("press", g.Press != nil, g.Press)
	put("tug", g.Tug != nil, g.Tug)
	put("wheel", g.Wheel != nil, g.Wheel)
	put("bond", g.Bond != nil, g.Bond)
	put("runner", g.Runner != nil, g.Runner)
	put("flags", g.Flags != nil, g.Flags)
	put("sliders", g.Sliders != nil, g.Sliders)
	put("quiz", g.Quiz != nil, g.Quiz)
	return m
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *ProgressDiff) IsEmpty() bool {
	return !d.Rewind &&
		d.CurrentStep == nil &&
		d.HighestUnlocked == nil &&
		d.Answer == nil &&
		len(d.Completed) == 0 &&
		len(d.History) == 0 &&
		len(d.Games) == 0
}
