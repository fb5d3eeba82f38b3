package content

import (
	"time"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/games"
)

// RuleType selects how a trivia answer is matched.
type RuleType string

const (
	RuleContains RuleType = "contains" // answer contains the single value
	RuleExact    RuleType = "exact"    // answer equals the single value
	RuleAny      RuleType = "any"      // answer contains any of the values
)

// Rule is the acceptance rule of a trivia step. Values are compared against
// the normalized answer, so they must be normalized themselves.
type Rule struct {
	Type   RuleType `yaml:"type" json:"type"`
	Values []string `yaml:"values" json:"values"`
}

// Step is the full definition of one screen.
type Step struct {
	ID          domain.StepID   `yaml:"id"`
	Kind        domain.StepKind `yaml:"kind"`
	Title       string          `yaml:"title"`
	Body        string          `yaml:"body"`
	Button      string          `yaml:"button"`
	Placeholder string          `yaml:"placeholder"`

	// Node is the map node a success step completes.
	Node domain.StepID `yaml:"node"`

	// Next is the step after "continue" (intro, screen, success) or after
	// the delay (calculating). An empty Next on a success step returns to the hub.
	Next domain.StepID `yaml:"next"`

	// Success is where a trivia answer or a finished mini-game leads.
	Success domain.StepID `yaml:"success"`

	Rule  *Rule         `yaml:"rule"`
	Delay time.Duration `yaml:"delay"`

	Params map[string]any `yaml:"params"`

	// Game holds the decoded params of a mini-game step.
	Game GameParams `yaml:"-"`
}

// GameParams holds the typed parameters of a mini-game step. Only the field
// matching the step kind is set.
type GameParams struct {
	Chase   *games.ChaseParams
	Press   *games.PressParams
	Tug     *games.TugParams
	Wheel   *games.WheelParams
	Bond    *games.BondParams
	Runner  *games.RunnerParams
	Flags   *games.FlagsParams
	Sliders *games.SlidersParams
	Quiz    *games.QuizParams
}

// Value returns the set params as an untyped value for the view model.
func (g GameParams) Value() any {
	switch {
	case g.Chase != nil:
		return g.Chase
	case g.Press != nil:
		return g.Press
	case g.Tug != nil:
		return g.Tug
	case g.Wheel != nil:
		return g.Wheel
	case g.Bond != nil:
		return g.Bond
	case g.Runner != nil:
		return g.Runner
	case g.Flags != nil:
		return g.Flags
	case g.Sliders != nil:
		return g.Sliders
	case g.Quiz != nil:
		return g.Quiz
	}
	return nil
}

// Table is a loaded and validated content table.
type Table struct {
	Title       string        `yaml:"title"`
	Start       domain.StepID `yaml:"start"`
	Hub         domain.StepID `yaml:"hub"`
	Calculating domain.StepID `yaml:"calculating"`
	Final       domain.StepID `yaml:"final"`

	// Order drives the progress bar of tables without a hub.
	Order []domain.StepID `yaml:"order"`

	Nodes []domain.Node `yaml:"nodes"`
	Steps []*Step       `yaml:"steps"`

	index map[domain.StepID]*Step
}

// Step looks up a step by id.
func (t *Table) Step(id domain.StepID) (*Step, bool) {
	s, ok := t.index[id]
	return s, ok
}

// Node looks up a map node by id.
func (t *Table) Node(id domain.StepID) (domain.Node, bool) {
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Node{}, false
}

// HasHub reports whether the table uses the non-linear map.
func (t *Table) HasHub() bool {
	return t.Hub != ""
}

// Graph returns the graph-facing view of every step, in table order.
func (t *Table) Graph() []domain.Step {
	out := make([]domain.Step, 0, len(t.Steps))
	for _, s := range t.Steps {
		out = append(out, t.summary(s))
	}
	return out
}

// Summary returns the graph-facing view of one step.
func (t *Table) Summary(id domain.StepID) (domain.Step, bool) {
	s, ok := t.index[id]
	if !ok {
		return domain.Step{}, false
	}
	return t.summary(s), true
}

func (t *Table) summary(s *Step) domain.Step {
	return domain.Step{
		ID:          s.ID,
		Kind:        s.Kind,
		Title:       s.Title,
		Body:        s.Body,
		Button:      s.Button,
		Placeholder: s.Placeholder,
		Node:        s.Node,
		Edges:       t.edges(s),
	}
}

func (t *Table) edges(s *Step) []domain.Edge {
	var edges []domain.Edge
	add := func(to domain.StepID, on domain.Trigger) {
		if to != "" {
			edges = append(edges, domain.Edge{To: to, On: on})
		}
	}
	switch s.Kind {
	case domain.KindIntro, domain.KindScreen:
		add(s.Next, domain.TriggerContinue)
	case domain.KindHub:
		for _, n := range t.Nodes {
			add(n.ID, domain.TriggerSelect)
		}
	case domain.KindTrivia:
		add(s.Success, domain.TriggerAnswer)
	case domain.KindSuccess:
		if s.Next == "" {
			add(t.Hub, domain.TriggerContinue)
		} else {
			add(s.Next, domain.TriggerContinue)
		}
	case domain.KindCalculating:
		add(s.Next, domain.TriggerTimer)
	case domain.KindFinal:
		add(t.Start, domain.TriggerReset)
	default:
		if s.Kind.IsGame() {
			add(s.Success, domain.TriggerComplete)
		}
	}
	return edges
}
