package games_test

import (
	"testing"

	"github.com/aretw0/heartsquest/pkg/games"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBond_StatsStayClamped(t *testing.T) {
	p := games.DefaultBondParams()
	p.Actions = append(p.Actions,
		games.BondAction{ID: "nuke", Deltas: map[string]int{"trust": -1000, "fun": -250}},
		games.BondAction{ID: "boost", Deltas: map[string]int{"trust": 999, "chaos": 180}},
	)
	b := games.NewBond(p)
	r := games.NewRand(11)

	for i := 0; i < 500; i++ {
		action := p.Actions[r.IntN(len(p.Actions))]
		require.True(t, b.Apply(p, action.ID))
		for stat, v := range b.Stats {
			require.GreaterOrEqual(t, v, 0, "%s underflow after %s", stat, action.ID)
			require.LessOrEqual(t, v, 100, "%s overflow after %s", stat, action.ID)
		}
	}
	assert.Equal(t, 500, b.Actions)
}

func TestBond_FinishThreshold(t *testing.T) {
	p := games.DefaultBondParams()
	b := games.NewBond(p)

	for i := 0; i < p.Threshold-1; i++ {
		b.Apply(p, "nap")
		assert.False(t, b.CanFinish(p))
	}
	b.Apply(p, "nap")
	assert.True(t, b.CanFinish(p))
	assert.Equal(t, 100, b.Stats["rest"])
}

func TestBond_CountsActionsWithoutTouchedStats(t *testing.T) {
	p := games.BondParams{
		Stats:   []string{"trust"},
		Initial: 50,
		Actions: []games.BondAction{{ID: "ghost", Deltas: map[string]int{"unknown": 10}}},
	}
	b := games.NewBond(p)

	assert.True(t, b.Apply(p, "ghost"))
	assert.Equal(t, 1, b.Actions)
	assert.Equal(t, 50, b.Stats["trust"])
}

func TestBond_UnknownActionRefused(t *testing.T) {
	p := games.DefaultBondParams()
	b := games.NewBond(p)
	assert.False(t, b.Apply(p, "undo"))
	assert.Zero(t, b.Actions)
}

func TestBond_CloneIsDeep(t *testing.T) {
	p := games.DefaultBondParams()
	b := games.NewBond(p)
	c := b.Clone()
	b.Apply(p, "nap")
	assert.Equal(t, 50, c.Stats["rest"])
	assert.Empty(t, c.Log)
}
