package runtime

import (
	"slices"

	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/aretw0/heartsquest/pkg/domain"
)

// View derives the view model of the current screen.
func (c *Controller) View() domain.View {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.current()
	summary, _ := c.table.Summary(step.ID)
	v := domain.View{
		Step:         summary,
		Progress:     c.progress.Clone(),
		Percent:      c.percent(),
		ShowProgress: showsProgress(step.Kind),
		Intensity:    intensity(step.Kind),
		Params:       step.Game.Value(),
		Actions:      c.actions(step),
	}
	if c.table.HasHub() {
		v.Nodes = make([]domain.NodeStatus, 0, len(c.table.Nodes))
		for _, n := range c.table.Nodes {
			v.Nodes = append(v.Nodes, domain.StatusOf(n, c.progress))
		}
	}
	return v
}

// percent is the quest progress bar. Map tables count completed nodes;
// linear tables use the position of the step in the table's order.
func (c *Controller) percent() int {
	if c.table.HasHub() {
		if len(c.table.Nodes) == 0 {
			return 0
		}
		return min(len(c.progress.Completed)*100/len(c.table.Nodes), 100)
	}
	if len(c.table.Order) == 0 {
		return 0
	}
	idx := slices.Index(c.table.Order, c.progress.CurrentStep)
	return min((idx+1)*100/len(c.table.Order), 100)
}

func showsProgress(k domain.StepKind) bool {
	switch k {
	case domain.KindIntro, domain.KindCalculating, domain.KindFinal:
		return false
	}
	return true
}

func intensity(k domain.StepKind) domain.Intensity {
	switch k {
	case domain.KindIntro, domain.KindSuccess, domain.KindCalculating, domain.KindFinal:
		return domain.IntensityHigh
	}
	return domain.IntensityNormal
}

// actions lists the intents the current state would accept.
func (c *Controller) actions(step *content.Step) []string {
	g := c.progress.Games
	p := step.Game
	var out []string
	add := func(a ...string) { out = append(out, a...) }

	switch step.Kind {
	case domain.KindIntro:
		add("start", "continue")
	case domain.KindHub:
		add("select")
	case domain.KindTrivia:
		add("answer", "submit")
	case domain.KindSuccess, domain.KindScreen:
		add("continue")
	case domain.KindChase:
		add("chase/catch")
	case domain.KindPress:
		if g.Press.Count < p.Press.Target {
			add("press/press")
		}
	case domain.KindTug:
		if !g.Tug.Locked && !g.Tug.Done {
			add("tug/pull")
		}
	case domain.KindWheel:
		if !g.Wheel.Spinning {
			add("wheel/spin")
		}
		if g.Wheel.Settled() {
			add("wheel/claim")
		}
	case domain.KindBond:
		for _, a := range p.Bond.Actions {
			add("bond/" + a.ID)
		}
		if g.Bond.CanFinish(*p.Bond) {
			add("bond/finish")
		}
	case domain.KindRunner:
		if !g.Runner.Finished {
			add("frame")
			if !g.Runner.Airborne {
				add("runner/jump")
			}
		}
	case domain.KindFlags:
		add("flags/red", "flags/green")
	case domain.KindSliders:
		add("sliders/set", "sliders/submit", "continue")
	case domain.KindQuiz:
		add("quiz/choose", "quiz/submit", "continue")
	case domain.KindFinal:
		add("final/play_again", "continue")
	}
	add("reset")
	return out
}
