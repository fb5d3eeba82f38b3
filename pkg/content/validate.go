package content

import (
	"fmt"
	"time"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/games"
)

func (t *Table) validate() []error {
	var errs []error
	fail := func(key, reason string, value any) {
		errs = append(errs, &ValidationError{Key: key, Reason: reason, Value: value})
	}
	ref := func(key, field string, id domain.StepID) {
		if id == "" {
			fail(key, field+" is required", nil)
			return
		}
		if _, ok := t.index[id]; !ok {
			fail(key, fmt.Sprintf("%s refers to %v", field, domain.ErrUnknownStep), id)
		}
	}
	kindOf := func(key string, id domain.StepID, want domain.StepKind) {
		if s, ok := t.index[id]; ok && s.Kind != want {
			fail(key, fmt.Sprintf("must be a %s step", want), s.Kind)
		}
	}

	ref("start", "start", t.Start)
	ref("final", "final", t.Final)
	kindOf("final", t.Final, domain.KindFinal)
	if t.Calculating != "" {
		ref("calculating", "calculating", t.Calculating)
		kindOf("calculating", t.Calculating, domain.KindCalculating)
	}
	if len(t.Nodes) > 0 && t.Hub == "" {
		fail("hub", "a table with nodes needs a hub", nil)
	}
	if t.Hub != "" {
		ref("hub", "hub", t.Hub)
		kindOf("hub", t.Hub, domain.KindHub)
	}
	for _, id := range t.Order {
		ref("order", "order entry", id)
	}

	for i, n := range t.Nodes {
		key := fmt.Sprintf("nodes[%d]", i)
		ref(key, "id", n.ID)
		if n.Order != i {
			fail(key, fmt.Sprintf("orders must run from 0 without gaps, expected %d", i), n.Order)
		}
	}

	for _, s := range t.Steps {
		if s == nil || s.ID == "" {
			continue
		}
		key := string(s.ID)
		switch s.Kind {
		case domain.KindIntro, domain.KindScreen:
			ref(key, "next", s.Next)
		case domain.KindHub:
		case domain.KindTrivia:
			ref(key, "success", s.Success)
			errs = append(errs, validateRule(key, s.Rule)...)
		case domain.KindSuccess:
			if s.Next == "" && t.Hub == "" {
				fail(key, "next is required without a hub", nil)
			} else if s.Next != "" {
				ref(key, "next", s.Next)
			}
			if s.Node != "" {
				if _, ok := t.Node(s.Node); !ok {
					fail(key, "node is not on the map", s.Node)
				}
			}
		case domain.KindCalculating:
			ref(key, "next", s.Next)
			if s.Delay <= 0 {
				fail(key, "delay must be positive", s.Delay)
			}
		case domain.KindFinal:
		default:
			if !s.Kind.IsGame() {
				fail(key, "unknown kind", s.Kind)
				continue
			}
			ref(key, "success", s.Success)
			errs = append(errs, validateGame(key, s.Game)...)
		}
	}
	return errs
}

func validateRule(key string, r *Rule) []error {
	if r == nil {
		return []error{&ValidationError{Key: key, Reason: "trivia needs a rule"}}
	}
	var errs []error
	switch r.Type {
	case RuleContains, RuleExact:
		if len(r.Values) != 1 {
			errs = append(errs, &ValidationError{Key: key, Reason: fmt.Sprintf("%s rule takes exactly one value", r.Type), Value: len(r.Values)})
		}
	case RuleAny:
		if len(r.Values) == 0 {
			errs = append(errs, &ValidationError{Key: key, Reason: "any rule needs at least one value"})
		}
	default:
		errs = append(errs, &ValidationError{Key: key, Reason: "unknown rule type", Value: r.Type})
	}
	for _, v := range r.Values {
		if !isNormalized(v) {
			errs = append(errs, &ValidationError{Key: key, Reason: "rule values must be lowercase letters, digits and inner spaces", Value: v})
		}
	}
	return errs
}

func isNormalized(v string) bool {
	if v == "" || v[0] == ' ' || v[len(v)-1] == ' ' {
		return false
	}
	for _, r := range v {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ') {
			return false
		}
	}
	return true
}

// Scripted ranges of the mini-games.
const (
	minChaseCatches  = 5
	maxChaseCatches  = 10
	minWheelSpins    = 5
	minWheelDuration = 2 * time.Second
	maxWheelDuration = 4 * time.Second
)

func validateGame(key string, g GameParams) []error {
	var errs []error
	fail := func(reason string, value any) {
		errs = append(errs, &ValidationError{Key: key, Reason: reason, Value: value})
	}
	switch {
	case g.Chase != nil:
		if g.Chase.Mode != games.ChaseTeleport && g.Chase.Mode != games.ChaseBounce {
			fail("unknown chase mode", g.Chase.Mode)
		}
		if g.Chase.Required < minChaseCatches || g.Chase.Required > maxChaseCatches {
			fail(fmt.Sprintf("required catches must be %d to %d", minChaseCatches, maxChaseCatches), g.Chase.Required)
		}
		if g.Chase.Mode == games.ChaseBounce && g.Chase.Tick <= 0 {
			fail("bounce tick must be positive", g.Chase.Tick)
		}
		if g.Chase.Bounds.Min >= g.Chase.Bounds.Max {
			fail("bounds are empty", g.Chase.Bounds)
		}
	case g.Press != nil:
		if g.Press.Target <= 0 || g.Press.RelocateEvery <= 0 {
			fail("target and relocate_every must be positive", nil)
		}
	case g.Tug != nil:
		if g.Tug.PlayerStep <= 0 || g.Tug.OpponentMax <= 0 || g.Tug.Tick <= 0 {
			fail("player_step, opponent_max and tick must be positive", nil)
		}
	case g.Wheel != nil:
		if len(g.Wheel.Options) == 0 {
			fail("wheel needs options", nil)
		}
		if g.Wheel.MinSpins < minWheelSpins {
			fail(fmt.Sprintf("min_spins must be at least %d", minWheelSpins), g.Wheel.MinSpins)
		}
		if g.Wheel.Duration < minWheelDuration || g.Wheel.Duration > maxWheelDuration {
			fail(fmt.Sprintf("duration must be %s to %s", minWheelDuration, maxWheelDuration), g.Wheel.Duration)
		}
	case g.Bond != nil:
		if len(g.Bond.Stats) == 0 || len(g.Bond.Actions) == 0 {
			fail("bond needs stats and actions", nil)
		}
		if g.Bond.Threshold <= 0 {
			fail("threshold must be positive", g.Bond.Threshold)
		}
		for _, a := range g.Bond.Actions {
			if a.ID == "" || a.ID == "finish" {
				fail("bond action ids must be set and not \"finish\"", a.ID)
			}
		}
	case g.Runner != nil:
		if g.Runner.Target <= 0 || g.Runner.PerTick <= 0 || g.Runner.Frame <= 0 {
			fail("target, per_tick and frame must be positive", nil)
		}
	case g.Flags != nil:
		if len(g.Flags.Flags) == 0 {
			fail("flag game needs flags", nil)
		}
		for _, f := range g.Flags.Flags {
			if f.Ideal != games.VerdictRed && f.Ideal != games.VerdictGreen {
				fail("flag ideal must be red or green", f.Ideal)
			}
		}
	case g.Sliders != nil:
		if len(g.Sliders.Sliders) == 0 {
			fail("sliders screen needs sliders", nil)
		}
	case g.Quiz != nil:
		if len(g.Quiz.Questions) == 0 {
			fail("quiz needs questions", nil)
		}
		for i, q := range g.Quiz.Questions {
			probe := games.Quiz{Answers: make([]string, len(g.Quiz.Questions))}
			if !probe.Choose(*g.Quiz, i, q.Default) {
				fail(fmt.Sprintf("question %d default is not one of its options", i), q.Default)
			}
		}
	}
	return errs
}
