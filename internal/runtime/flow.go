package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/heartsquest/pkg/domain"
)

// maxFrames bounds the ticks a single frame intent may advance.
const maxFrames = 1000

// Dispatch routes an intent to the matching operation. Text or values that
// fail sanitizing make the intent a rejected no-op, like a wrong answer.
func (c *Controller) Dispatch(ctx context.Context, in domain.Intent) (domain.Outcome, error) {
	var textErr, valueErr error
	in.Text, textErr = SanitizeInput(in.Text)
	in.Value, valueErr = SanitizeInput(in.Value)
	if err := errors.Join(textErr, valueErr); err != nil {
		if !knownIntent(in.Kind) {
			return domain.Outcome{}, fmt.Errorf("%w: %q", domain.ErrUnknownIntent, in.Kind)
		}
		return c.mutate(ctx, func() bool {
			c.logger.Debug("input rejected", "kind", in.Kind, "err", err)
			return false
		})
	}

	switch in.Kind {
	case domain.IntentStart:
		return c.Start(ctx)
	case domain.IntentContinue:
		return c.Continue(ctx)
	case domain.IntentAnswer:
		return c.TypeAnswer(ctx, in.Text)
	case domain.IntentSubmit:
		return c.SubmitAnswer(ctx, in.Text)
	case domain.IntentSelect:
		return c.SelectNode(ctx, in.Node)
	case domain.IntentAction:
		return c.Action(ctx, in.Game, in.Action, in.Index, in.Value)
	case domain.IntentFrame:
		return c.Frame(ctx, in.Index)
	case domain.IntentReset:
		return c.Reset(ctx)
	}
	return domain.Outcome{}, fmt.Errorf("%w: %q", domain.ErrUnknownIntent, in.Kind)
}

func knownIntent(k domain.IntentKind) bool {
	switch k {
	case domain.IntentStart, domain.IntentContinue, domain.IntentAnswer, domain.IntentSubmit,
		domain.IntentSelect, domain.IntentAction, domain.IntentFrame, domain.IntentReset:
		return true
	}
	return false
}

// Start leaves the intro screen.
func (c *Controller) Start(ctx context.Context) (domain.Outcome, error) {
	return c.mutate(ctx, func() bool {
		step := c.current()
		if step.Kind != domain.KindIntro {
			return false
		}
		c.goTo(step.Next)
		return true
	})
}

// TypeAnswer replaces the answer buffer of a trivia step.
func (c *Controller) TypeAnswer(ctx context.Context, text string) (domain.Outcome, error) {
	return c.mutate(ctx, func() bool {
		if c.current().Kind != domain.KindTrivia || c.progress.Answer == text {
			return false
		}
		c.progress.Answer = text
		return true
	})
}

// SubmitAnswer checks raw (or the answer buffer when raw is empty) against
// the trivia rule of the current step. Accepted answers clear the buffer and
// lead to the success screen; rejected ones change nothing.
func (c *Controller) SubmitAnswer(ctx context.Context, raw string) (domain.Outcome, error) {
	return c.mutate(ctx, func() bool {
		step := c.current()
		if step.Kind != domain.KindTrivia {
			return false
		}
		if raw == "" {
			raw = c.progress.Answer
		}
		ok := Match(step.Rule, Normalize(raw))
		c.emitAnswer(step.ID, ok)
		if !ok {
			c.logger.Debug("answer rejected", "step", step.ID)
			return false
		}
		c.progress.Answer = ""
		c.goTo(step.Success)
		return true
	})
}

// AdvanceFromSuccess completes the node of the current success screen,
// raises the unlock index to nextIndex (never lowering it) and moves on to
// the scripted next step, or back to the hub.
func (c *Controller) AdvanceFromSuccess(ctx context.Context, nextIndex int) (domain.Outcome, error) {
	return c.mutate(ctx, func() bool {
		if c.current().Kind != domain.KindSuccess {
			return false
		}
		c.advance(nextIndex)
		return true
	})
}

func (c *Controller) advance(nextIndex int) {
	step := c.current()
	if step.Node != "" && c.progress.MarkCompleted(step.Node) {
		c.progress.Unlock(nextIndex)
		c.emitNode(step.Node)
	} else {
		c.progress.Unlock(nextIndex)
	}

	target := step.Next
	if target == "" {
		target = c.table.Hub
	}
	if next, ok := c.table.Step(target); ok && next.Kind == domain.KindCalculating && !c.allComplete() {
		c.logger.Debug("calculating is gated", "completed", len(c.progress.Completed), "nodes", len(c.table.Nodes))
		target = c.table.Hub
	}
	if target == "" {
		return
	}
	c.goTo(target)
}

// SelectNode enters an unlocked map node from the hub or the intro screen.
// Locked or unknown nodes are refused, and so is every other step: a node
// in progress must be finished through its success screen.
func (c *Controller) SelectNode(ctx context.Context, id domain.StepID) (domain.Outcome, error) {
	return c.mutate(ctx, func() bool {
		if k := c.current().Kind; k != domain.KindHub && k != domain.KindIntro {
			c.logger.Debug("node selection refused", "node", id, "step", c.progress.CurrentStep)
			return false
		}
		node, ok := c.table.Node(id)
		if !ok || node.Order > c.progress.HighestUnlocked {
			c.logger.Debug("node selection refused", "node", id, "highest_unlocked", c.progress.HighestUnlocked)
			return false
		}
		c.goTo(node.ID)
		return true
	})
}

// Continue presses the main button of the current screen.
func (c *Controller) Continue(ctx context.Context) (domain.Outcome, error) {
	return c.mutate(ctx, func() bool {
		step := c.current()
		switch step.Kind {
		case domain.KindIntro, domain.KindScreen:
			c.goTo(step.Next)
		case domain.KindSuccess:
			next := c.progress.HighestUnlocked
			if node, ok := c.table.Node(step.Node); ok {
				next = node.Order + 1
			}
			c.advance(next)
		case domain.KindSliders, domain.KindQuiz:
			c.emitGame(step.ID, string(step.Kind), "submit", true)
			c.goTo(step.Success)
		case domain.KindFinal:
			c.reset()
		default:
			return false
		}
		return true
	})
}

// Reset restores every field to its session-start default, clears every
// mini-game and returns to the start step.
func (c *Controller) Reset(ctx context.Context) (domain.Outcome, error) {
	return c.mutate(ctx, func() bool {
		c.reset()
		return true
	})
}

func (c *Controller) reset() {
	c.emitStep(domain.EventStepLeave, c.current())
	c.sched.release()

	rev := c.progress.Revision
	c.progress = domain.NewProgress(c.progress.SessionID, c.table.Start)
	// Revisions keep growing across resets so stores and streams stay ordered.
	c.progress.Revision = rev
	c.emitReset()
	c.logger.Debug("session reset")
	c.activate(true)
}

// Frame advances the frame-driven mini-game by n ticks (at least one).
func (c *Controller) Frame(ctx context.Context, n int) (domain.Outcome, error) {
	if n < 1 {
		n = 1
	}
	if n > maxFrames {
		n = maxFrames
	}
	return c.mutate(ctx, func() bool {
		return c.frames(n)
	})
}
