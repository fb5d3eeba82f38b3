package domain

// Intensity is the mood hint for the background of a screen.
type Intensity string

const (
	IntensityNormal Intensity = "normal"
	IntensityHigh   Intensity = "high"
)

// View is the derived view model a rendering surface needs to draw the
// current screen.
type View struct {
	Step     Step         `json:"step"`
	Progress *Progress    `json:"progress"`
	Nodes    []NodeStatus `json:"nodes,omitempty"`

	// Percent is the quest progress bar, 0..100.
	Percent      int  `json:"percent"`
	ShowProgress bool `json:"show_progress"`

	Intensity Intensity `json:"intensity"`

	// Params are the typed mini-game parameters of the step, if any.
	Params any `json:"params,omitempty"`

	// Actions lists the intents that would be accepted right now, as
	// "kind" or "game/action".
	Actions []string `json:"actions,omitempty"`
}
