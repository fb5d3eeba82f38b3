package domain

// Trigger names what fires an edge.
type Trigger string

const (
	TriggerContinue Trigger = "continue" // user presses the screen's main button
	TriggerAnswer   Trigger = "answer"   // accepted trivia answer
	TriggerComplete Trigger = "complete" // mini-game success condition
	TriggerSelect   Trigger = "select"   // map node selection
	TriggerTimer    Trigger = "timer"    // fixed delay elapsed
	TriggerReset    Trigger = "reset"    // play again
)

// Edge is one directed transition of the step graph.
type Edge struct {
	To StepID  `json:"to" yaml:"to"`
	On Trigger `json:"on" yaml:"on"`
}
