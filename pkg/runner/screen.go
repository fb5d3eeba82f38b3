package runner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/games"
)

// barWidth is the number of cells of the text progress bars.
const barWidth = 20

// Screen renders a view as markdown for terminal surfaces.
func Screen(v domain.View) string {
	var b strings.Builder

	title := v.Step.Title
	if title == "" {
		title = string(v.Step.ID)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if v.Step.Body != "" {
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(v.Step.Body))
	}
	if v.ShowProgress {
		fmt.Fprintf(&b, "`%s` %d%%\n\n", bar(v.Percent), v.Percent)
	}

	if status := stepStatus(v); status != "" {
		b.WriteString(status)
		b.WriteString("\n\n")
	}

	if hint := hint(v); hint != "" {
		fmt.Fprintf(&b, "_%s_\n", hint)
	}
	return b.String()
}

func bar(percent int) string {
	filled := games.ClampPercent(percent) * barWidth / 100
	return strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
}

// stepStatus describes the live state of the step: map nodes, the answer
// buffer or the mini-game.
func stepStatus(v domain.View) string {
	if v.Progress == nil {
		return ""
	}
	g := v.Progress.Games

	switch v.Step.Kind {
	case domain.KindHub:
		var lines []string
		for i, n := range v.Nodes {
			mark := "locked"
			switch {
			case n.Completed:
				mark = "done"
			case n.Active:
				mark = "new"
			case n.Unlocked:
				mark = "open"
			}
			lines = append(lines, fmt.Sprintf("%d. %s %s (%s) [%s]", i+1, n.Icon, n.Label, n.ID, mark))
		}
		return strings.Join(lines, "\n")

	case domain.KindTrivia:
		if v.Progress.Answer != "" {
			return "Answer: " + v.Progress.Answer
		}
		return v.Step.Placeholder

	case domain.KindChase:
		if g.Chase != nil {
			p, _ := v.Params.(*games.ChaseParams)
			return fmt.Sprintf("Caught %d of %d. The heart is at (%.0f, %.0f).", g.Chase.Catches, required(p), g.Chase.Position.X, g.Chase.Position.Y)
		}

	case domain.KindPress:
		if g.Press != nil {
			target := games.DefaultPressParams().Target
			if p, ok := v.Params.(*games.PressParams); ok && p.Target > 0 {
				target = p.Target
			}
			return fmt.Sprintf("Pressed %d of %d", g.Press.Count, target)
		}

	case domain.KindTug:
		if t := g.Tug; t != nil {
			s := fmt.Sprintf("You `%s` %d%%\nThem `%s` %d%%", bar(t.Player), t.Player, bar(t.Opponent), t.Opponent)
			if t.Locked {
				s += "\n\nGet ready..."
			}
			return s
		}

	case domain.KindWheel:
		if w := g.Wheel; w != nil {
			switch {
			case w.Spinning:
				return "The wheel is spinning..."
			case w.Result != "":
				return "You won: **" + w.Result + "**"
			}
		}

	case domain.KindBond:
		if bd := g.Bond; bd != nil {
			stats := make([]string, 0, len(bd.Stats))
			for name := range bd.Stats {
				stats = append(stats, name)
			}
			sort.Strings(stats)
			var lines []string
			for _, name := range stats {
				lines = append(lines, fmt.Sprintf("%-12s `%s` %d", name, bar(bd.Stats[name]), bd.Stats[name]))
			}
			if p, ok := v.Params.(*games.BondParams); ok {
				for _, a := range p.Actions {
					lines = append(lines, fmt.Sprintf("- `%s` %s", a.ID, a.Label))
				}
			}
			if n := len(bd.Log); n > 0 {
				lines = append(lines, "", bd.Log[n-1])
			}
			return strings.Join(lines, "\n")
		}

	case domain.KindRunner:
		if r := g.Runner; r != nil {
			s := fmt.Sprintf("Distance %d, hits %d", r.Distance, r.Hits)
			if r.Airborne {
				s += ", jumping"
			}
			if r.Finished {
				s += "\n\nYou made it!"
			}
			return s
		}

	case domain.KindFlags:
		if f := g.Flags; f != nil {
			if p, ok := v.Params.(*games.FlagsParams); ok {
				if flag, ok := f.Current(*p); ok {
					return fmt.Sprintf("%d/%d: %s", f.Index+1, len(p.Flags), flag.Text)
				}
			}
		}

	case domain.KindSliders:
		if s := g.Sliders; s != nil {
			p, _ := v.Params.(*games.SlidersParams)
			var lines []string
			for i, val := range s.Values {
				label := fmt.Sprintf("Slider %d", i+1)
				if p != nil && i < len(p.Sliders) && p.Sliders[i].Label != "" {
					label = p.Sliders[i].Label
				}
				lines = append(lines, fmt.Sprintf("%d. %s `%s` %d", i+1, label, bar(val), val))
			}
			return strings.Join(lines, "\n")
		}

	case domain.KindQuiz:
		if q := g.Quiz; q != nil {
			p, ok := v.Params.(*games.QuizParams)
			if !ok {
				return ""
			}
			var lines []string
			for i, question := range p.Questions {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, question.Prompt))
				for _, o := range question.Options {
					mark := " "
					if i < len(q.Answers) && q.Answers[i] == o.ID {
						mark = "x"
					}
					lines = append(lines, fmt.Sprintf("   [%s] `%s` %s", mark, o.ID, o.Label))
				}
			}
			return strings.Join(lines, "\n")
		}
	}
	return ""
}

func required(p *games.ChaseParams) int {
	if p == nil || p.Required <= 0 {
		return games.DefaultChaseParams().Required
	}
	return p.Required
}

// hint tells the player what to type.
func hint(v domain.View) string {
	switch v.Step.Kind {
	case domain.KindIntro:
		return "Press Enter to start."
	case domain.KindHub:
		return "Type a node number or id."
	case domain.KindTrivia:
		return "Type your answer."
	case domain.KindCalculating:
		return "Calculating..."
	case domain.KindFinal:
		return "Press Enter to play again, :quit to leave."
	case domain.KindRunner:
		return "Enter runs, `jump` jumps."
	case domain.KindSliders:
		return "`set N VALUE` moves a slider, Enter submits."
	case domain.KindQuiz:
		return "`choose N OPTION` picks an answer, Enter submits."
	case domain.KindFlags:
		return "`red` or `green`?"
	}
	if v.Step.Kind.IsGame() {
		var names []string
		for _, a := range v.Actions {
			if _, name, ok := strings.Cut(a, "/"); ok {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			return "Actions: " + strings.Join(names, ", ")
		}
		return ""
	}
	if v.Step.Button != "" {
		return "Press Enter: " + v.Step.Button
	}
	return "Press Enter to continue."
}
