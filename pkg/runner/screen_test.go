package runner

import (
	"testing"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/games"
	"github.com/stretchr/testify/assert"
)

func TestScreen_Trivia(t *testing.T) {
	p := domain.NewProgress("s", "q1")
	p.Answer = "fro"
	v := domain.View{
		Step:         domain.Step{ID: "q1", Kind: domain.KindTrivia, Title: "First picture?", Placeholder: "Type..."},
		Progress:     p,
		Percent:      50,
		ShowProgress: true,
	}

	out := Screen(v)
	assert.Contains(t, out, "# First picture?")
	assert.Contains(t, out, "`##########----------` 50%")
	assert.Contains(t, out, "Answer: fro")
	assert.Contains(t, out, "Type your answer.")
}

func TestScreen_Hub(t *testing.T) {
	p := domain.NewProgress("s", "map")
	v := domain.View{
		Step:     domain.Step{ID: "map", Kind: domain.KindHub},
		Progress: p,
		Nodes: []domain.NodeStatus{
			{Node: domain.Node{ID: "q1", Label: "Frogs"}, Unlocked: true, Completed: true},
			{Node: domain.Node{ID: "q2", Order: 1, Label: "Games"}, Unlocked: true, Active: true},
			{Node: domain.Node{ID: "q3", Order: 2, Label: "Words"}},
		},
	}

	out := Screen(v)
	assert.Contains(t, out, "# map")
	assert.Contains(t, out, "Frogs (q1) [done]")
	assert.Contains(t, out, "2.  Games (q2) [new]")
	assert.Contains(t, out, "Words (q3) [locked]")
	assert.NotContains(t, out, "%", "no progress bar unless asked")
}

func TestScreen_Games(t *testing.T) {
	p := domain.NewProgress("s", "g")
	p.Games.Tug = &games.Tug{Player: 40, Opponent: 35, Locked: true}
	out := Screen(domain.View{Step: domain.Step{ID: "g", Kind: domain.KindTug}, Progress: p, Actions: []string{"reset"}})
	assert.Contains(t, out, "You `########------------` 40%")
	assert.Contains(t, out, "Get ready...")

	p = domain.NewProgress("s", "g")
	p.Games.Wheel = &games.Wheel{Result: "1 hour of Overwatch", Pending: 2}
	out = Screen(domain.View{Step: domain.Step{ID: "g", Kind: domain.KindWheel}, Progress: p, Actions: []string{"wheel/spin", "wheel/claim"}})
	assert.Contains(t, out, "You won: **1 hour of Overwatch**")
	assert.Contains(t, out, "Actions: spin, claim")

	p = domain.NewProgress("s", "g")
	p.Games.Quiz = &games.Quiz{Answers: []string{"b"}}
	params := &games.QuizParams{Questions: []games.QuizQuestion{{
		Prompt:  "Pineapple on pizza?",
		Options: []games.QuizOption{{ID: "a", Label: "Yes"}, {ID: "b", Label: "No"}},
	}}}
	out = Screen(domain.View{Step: domain.Step{ID: "g", Kind: domain.KindQuiz}, Progress: p, Params: params})
	assert.Contains(t, out, "1. Pineapple on pizza?")
	assert.Contains(t, out, "[x] `b` No")
	assert.Contains(t, out, "[ ] `a` Yes")
}
