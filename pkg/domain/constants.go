package domain

// StepKind defines how the controller treats a step.
type StepKind string

const (
	// KindIntro is the start screen; "continue" moves to its next step.
	KindIntro StepKind = "intro"
	// KindHub is the non-linear map that selects among unlocked nodes.
	KindHub StepKind = "hub"
	// KindTrivia accepts a free-text answer checked by a matching rule.
	KindTrivia StepKind = "trivia"
	// KindSuccess is the screen shown after a node's success condition is met.
	// Continuing from it completes the node.
	KindSuccess StepKind = "success"
	// KindScreen is a one-shot screen with a single "continue".
	KindScreen StepKind = "screen"

	KindChase   StepKind = "chase"
	KindPress   StepKind = "press"
	KindTug     StepKind = "tug"
	KindWheel   StepKind = "wheel"
	KindBond    StepKind = "bond"
	KindRunner  StepKind = "runner"
	KindFlags   StepKind = "flags"
	KindSliders StepKind = "sliders"
	KindQuiz    StepKind = "quiz"

	// KindCalculating moves to its next step after a fixed delay.
	KindCalculating StepKind = "calculating"
	// KindFinal is the terminal screen.
	KindFinal StepKind = "final"
)

// IsGame reports whether the kind owns mini-game state.
func (k StepKind) IsGame() bool {
	switch k {
	case KindChase, KindPress, KindTug, KindWheel, KindBond, KindRunner, KindFlags, KindSliders, KindQuiz:
		return true
	}
	return false
}
