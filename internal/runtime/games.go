package runtime

import (
	"context"
	"strconv"

	"github.com/aretw0/heartsquest/pkg/content"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/games"
)

// Game names used by action intents. Every mini-game is addressed by its
// step kind; the final screen answers to "final".
const gameFinal = "final"

// hasGame reports whether the sub-state of the step's game exists.
func (c *Controller) hasGame(step *content.Step) bool {
	g := &c.progress.Games
	switch step.Kind {
	case domain.KindChase:
		return g.Chase != nil
	case domain.KindPress:
		return g.Press != nil
	case domain.KindTug:
		return g.Tug != nil
	case domain.KindWheel:
		return g.Wheel != nil
	case domain.KindBond:
		return g.Bond != nil
	case domain.KindRunner:
		return g.Runner != nil
	case domain.KindFlags:
		return g.Flags != nil
	case domain.KindSliders:
		return g.Sliders != nil
	case domain.KindQuiz:
		return g.Quiz != nil
	}
	return true
}

// resetGame puts the step's mini-game back to its initial state.
func (c *Controller) resetGame(step *content.Step) {
	g := &c.progress.Games
	p := step.Game
	switch step.Kind {
	case domain.KindChase:
		s := games.NewChase(*p.Chase, c.rng)
		g.Chase = &s
	case domain.KindPress:
		s := games.NewPress(*p.Press)
		g.Press = &s
	case domain.KindTug:
		s := games.NewTug(*p.Tug)
		g.Tug = &s
	case domain.KindWheel:
		s := games.NewWheel()
		g.Wheel = &s
	case domain.KindBond:
		s := games.NewBond(*p.Bond)
		g.Bond = &s
	case domain.KindRunner:
		g.Runner = &games.Runner{}
	case domain.KindFlags:
		g.Flags = &games.Flags{}
	case domain.KindSliders:
		s := games.NewSliders(*p.Sliders)
		g.Sliders = &s
	case domain.KindQuiz:
		s := games.NewQuiz(*p.Quiz)
		g.Quiz = &s
	}
}

// arm starts the timers the step needs in its current state.
func (c *Controller) arm(sc *scope, step *content.Step) {
	switch step.Kind {
	case domain.KindCalculating:
		c.after(sc, step.Delay, func() bool {
			c.goTo(step.Next)
			return true
		})
	case domain.KindChase:
		if step.Game.Chase.Mode == games.ChaseBounce {
			c.chaseTick(sc, step)
		}
	case domain.KindTug:
		if c.progress.Games.Tug.Locked {
			c.after(sc, step.Game.Tug.Countdown, func() bool {
				c.progress.Games.Tug.Unlock()
				c.tugTick(sc, step)
				return true
			})
		} else if !c.progress.Games.Tug.Done {
			c.tugTick(sc, step)
		}
	case domain.KindWheel:
		if c.progress.Games.Wheel.Spinning {
			c.armReveal(sc, step)
		}
	case domain.KindRunner:
		if c.progress.Games.Runner.Finished {
			c.armRunnerFinish(sc, step)
		}
	}
}

func (c *Controller) chaseTick(sc *scope, step *content.Step) {
	p := *step.Game.Chase
	c.after(sc, p.Tick, func() bool {
		c.progress.Games.Chase.Step(p)
		c.motion = true
		c.chaseTick(sc, step)
		return true
	})
}

func (c *Controller) tugTick(sc *scope, step *content.Step) {
	p := *step.Game.Tug
	c.after(sc, p.Tick, func() bool {
		t := c.progress.Games.Tug
		if t.Done {
			return false
		}
		t.OpponentTick(p, c.rng)
		c.tugTick(sc, step)
		return true
	})
}

func (c *Controller) armReveal(sc *scope, step *content.Step) {
	c.after(sc, step.Game.Wheel.Duration, func() bool {
		return c.progress.Games.Wheel.Reveal(*step.Game.Wheel)
	})
}

func (c *Controller) armRunnerFinish(sc *scope, step *content.Step) {
	c.after(sc, step.Game.Runner.FinishDelay, func() bool {
		c.goTo(step.Success)
		return true
	})
}

// Action applies a mini-game action. Actions for another game than the
// active one, or that the game refuses, are rejected.
func (c *Controller) Action(ctx context.Context, game, action string, index int, value string) (domain.Outcome, error) {
	return c.mutate(ctx, func() bool {
		step := c.current()
		if step.Kind == domain.KindFinal && game == gameFinal && action == "play_again" {
			c.reset()
			return true
		}
		if !step.Kind.IsGame() || game != string(step.Kind) {
			return false
		}
		ok := c.apply(step, action, index, value)
		c.emitGame(step.ID, game, action, ok)
		return ok
	})
}

func (c *Controller) apply(step *content.Step, action string, index int, value string) bool {
	g := &c.progress.Games
	p := step.Game
	sc := c.sched.current

	switch step.Kind {
	case domain.KindChase:
		if action != "catch" {
			return false
		}
		if g.Chase.Catch(*p.Chase, c.rng) {
			c.goTo(step.Success)
		}
		return true

	case domain.KindPress:
		if action != "press" || g.Press.Count >= p.Press.Target {
			return false
		}
		if g.Press.Press(*p.Press, c.rng) {
			c.goTo(step.Success)
		}
		return true

	case domain.KindTug:
		if action != "pull" || g.Tug.Locked || g.Tug.Done {
			return false
		}
		if g.Tug.Pull(*p.Tug) {
			c.goTo(step.Success)
		}
		return true

	case domain.KindWheel:
		switch action {
		case "spin":
			if !g.Wheel.Spin(*p.Wheel, c.rng) {
				return false
			}
			c.armReveal(sc, step)
			return true
		case "claim":
			if !g.Wheel.Settled() {
				return false
			}
			c.goTo(step.Success)
			return true
		}

	case domain.KindBond:
		if action == "finish" {
			if !g.Bond.CanFinish(*p.Bond) {
				return false
			}
			c.goTo(step.Success)
			return true
		}
		return g.Bond.Apply(*p.Bond, action)

	case domain.KindRunner:
		if action == "jump" {
			return g.Runner.Jump(*p.Runner)
		}

	case domain.KindFlags:
		ok, done := g.Flags.Judge(*p.Flags, action)
		if done {
			c.goTo(step.Success)
		}
		return ok

	case domain.KindSliders:
		switch action {
		case "set":
			v, err := strconv.Atoi(value)
			if err != nil {
				return false
			}
			return g.Sliders.Set(index, v)
		case "submit":
			c.goTo(step.Success)
			return true
		}

	case domain.KindQuiz:
		switch action {
		case "choose":
			return g.Quiz.Choose(*p.Quiz, index, value)
		case "submit":
			c.goTo(step.Success)
			return true
		}
	}
	return false
}

// frames advances the runner. The completion transition is scheduled once,
// on the tick that reaches the target.
func (c *Controller) frames(n int) bool {
	step := c.current()
	if step.Kind != domain.KindRunner || c.progress.Games.Runner.Finished {
		return false
	}
	p := *step.Game.Runner
	c.motion = true
	for i := 0; i < n; i++ {
		if c.progress.Games.Runner.Tick(p, c.rng) {
			c.logger.Debug("runner finished", "distance", c.progress.Games.Runner.Distance)
			c.motion = false
			c.armRunnerFinish(c.sched.current, step)
			break
		}
	}
	return true
}
