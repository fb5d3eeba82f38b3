package games

import "time"

// TugParams configures the "Who Loves More" tug of war.
type TugParams struct {
	PlayerStep  int           `json:"player_step" mapstructure:"player_step"`
	OpponentMax int           `json:"opponent_max" mapstructure:"opponent_max"`
	Tick        time.Duration `json:"tick" mapstructure:"tick"`
	Countdown   time.Duration `json:"countdown" mapstructure:"countdown"`
}

// DefaultTugParams returns a 5% pull and a 1..3% opponent every 400ms after a 3s countdown.
func DefaultTugParams() TugParams {
	return TugParams{
		PlayerStep:  5,
		OpponentMax: 3,
		Tick:        400 * time.Millisecond,
		Countdown:   3 * time.Second,
	}
}

// Tug is the live state of the tug of war. The opponent can never finish
// first, and finishes the instant the player does.
type Tug struct {
	Player   int  `json:"player"`
	Opponent int  `json:"opponent"`
	Locked   bool `json:"locked"`
	Done     bool `json:"done"`
}

// NewTug returns a fresh game, locked when a countdown is configured.
func NewTug(p TugParams) Tug {
	return Tug{Locked: p.Countdown > 0}
}

// Unlock ends the countdown.
func (t *Tug) Unlock() {
	t.Locked = false
}

// Pull applies one player action. It reports true when the player reaches
// 100, at which point the opponent is forced to 100 in the same update.
func (t *Tug) Pull(p TugParams) bool {
	if t.Locked || t.Done {
		return false
	}
	t.Player = ClampPercent(t.Player + p.PlayerStep)
	if t.Player == 100 {
		t.Opponent = 100
		t.Done = true
	}
	return t.Done
}

// OpponentTick advances the passive opponent by a random 1..OpponentMax.
// While the player is below 100 the opponent stays at 99 or less.
func (t *Tug) OpponentTick(p TugParams, r Rand) {
	if t.Locked || t.Done {
		return
	}
	step := 1
	if p.OpponentMax > 1 {
		step += r.IntN(p.OpponentMax)
	}
	t.Opponent += step
	if t.Opponent > 99 {
		t.Opponent = 99
	}
}
