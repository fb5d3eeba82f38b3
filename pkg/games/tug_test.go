package games_test

import (
	"testing"

	"github.com/aretw0/heartsquest/pkg/games"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTug_AlwaysTies(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		p := games.DefaultTugParams()
		p.PlayerStep = 1 + int(seed%7)
		r := games.NewRand(seed)
		tug := games.NewTug(p)
		tug.Unlock()

		for !tug.Done {
			// Give the opponent many more ticks than the player gets pulls.
			for i := 0; i < 10; i++ {
				tug.OpponentTick(p, r)
				require.Less(t, tug.Opponent, 100, "opponent finished first (seed %d)", seed)
			}
			tug.Pull(p)
		}

		assert.Equal(t, 100, tug.Player)
		assert.Equal(t, 100, tug.Opponent, "opponent forced to 100 in the same update")
	}
}

func TestTug_LockedUntilCountdown(t *testing.T) {
	p := games.DefaultTugParams()
	tug := games.NewTug(p)
	require.True(t, tug.Locked)

	assert.False(t, tug.Pull(p))
	tug.OpponentTick(p, games.NewRand(1))
	assert.Zero(t, tug.Player)
	assert.Zero(t, tug.Opponent)

	tug.Unlock()
	tug.Pull(p)
	assert.Equal(t, p.PlayerStep, tug.Player)
}

func TestTug_NoCountdownStartsUnlocked(t *testing.T) {
	p := games.DefaultTugParams()
	p.Countdown = 0
	assert.False(t, games.NewTug(p).Locked)
}

func TestTug_IgnoresPullsAfterDone(t *testing.T) {
	p := games.TugParams{PlayerStep: 100}
	tug := games.NewTug(p)
	assert.True(t, tug.Pull(p))
	assert.False(t, tug.Pull(p))
	assert.Equal(t, 100, tug.Player)
}
