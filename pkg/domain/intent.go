package domain

// IntentKind is the verb of an inbound intent.
type IntentKind string

const (
	IntentStart    IntentKind = "start"    // leave the intro screen
	IntentAnswer   IntentKind = "answer"   // replace the answer buffer
	IntentSubmit   IntentKind = "submit"   // submit a trivia answer
	IntentSelect   IntentKind = "select"   // pick a node on the map
	IntentContinue IntentKind = "continue" // main button of the current screen
	IntentAction   IntentKind = "action"   // mini-game action
	IntentFrame    IntentKind = "frame"    // animation frame from the surface
	IntentReset    IntentKind = "reset"    // play again
)

// Intent is a user action forwarded by a rendering surface.
//
// Text carries the answer for answer/submit. Node is the target of select.
// Game and Action identify a mini-game action; Index and Value carry its
// arguments (slider index/value, quiz question/option).
type Intent struct {
	Kind   IntentKind `json:"kind"`
	Text   string     `json:"text,omitempty"`
	Node   StepID     `json:"node,omitempty"`
	Game   string     `json:"game,omitempty"`
	Action string     `json:"action,omitempty"`
	Index  int        `json:"index,omitempty"`
	Value  string     `json:"value,omitempty"`
}

// Outcome reports whether an intent changed the session.
// Rejected intents are silent: there is no reason to show the player.
type Outcome struct {
	Accepted bool   `json:"accepted"`
	Step     StepID `json:"step"`
	Revision uint64 `json:"revision"`
}
