package games

import (
	"math"
	"time"
)

// WheelParams configures the affection wheel.
type WheelParams struct {
	Options  []string      `json:"options" mapstructure:"options"`
	MinSpins int           `json:"min_spins" mapstructure:"min_spins"`
	Duration time.Duration `json:"duration" mapstructure:"duration"`
}

// DefaultWheelParams returns the three stock rewards.
func DefaultWheelParams() WheelParams {
	return WheelParams{
		Options: []string{
			"1 full minute of me complimenting you.",
			"You have to try a stupid pick up line on me.",
			"1 hour of Overwatch",
		},
		MinSpins: 5,
		Duration: 2 * time.Second,
	}
}

// Wheel is the live state of the prize wheel. Rotation is the cumulative
// clockwise rotation in degrees; it is never wrapped, so every spin moves
// the wheel forward.
type Wheel struct {
	Rotation float64 `json:"rotation"`
	Spinning bool    `json:"spinning"`
	Pending  int     `json:"pending"`
	Result   string  `json:"result,omitempty"`
	Spins    int     `json:"spins"`
}

// NewWheel returns an idle wheel.
func NewWheel() Wheel {
	return Wheel{Pending: -1}
}

// Spin draws a uniformly random option and sets the target rotation.
// It refuses to spin while a spin is in flight or when there are no options.
func (w *Wheel) Spin(p WheelParams, r Rand) bool {
	if w.Spinning || len(p.Options) == 0 {
		return false
	}
	idx := r.IntN(len(p.Options))
	w.Rotation = TargetRotation(w.Rotation, idx, len(p.Options), p.MinSpins)
	w.Spinning = true
	w.Pending = idx
	w.Result = ""
	w.Spins++
	return true
}

// Reveal ends the spin and exposes the drawn option.
func (w *Wheel) Reveal(p WheelParams) bool {
	if !w.Spinning || w.Pending < 0 || w.Pending >= len(p.Options) {
		return false
	}
	w.Spinning = false
	w.Result = p.Options[w.Pending]
	return true
}

// Settled reports whether a result is visible and no spin is running.
func (w *Wheel) Settled() bool {
	return !w.Spinning && w.Result != ""
}

// TargetRotation returns the rotation that moves the wheel forward from prev
// by at least spins full turns and leaves segment idx centered under the
// pointer at the top.
func TargetRotation(prev float64, idx, segments, spins int) float64 {
	seg := 360 / float64(segments)
	center := float64(idx)*seg + seg/2
	desired := math.Mod(360-center, 360)
	delta := math.Mod(desired-math.Mod(prev, 360)+360, 360)
	return prev + float64(spins)*360 + delta
}
