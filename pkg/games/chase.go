package games

import (
	"math"
	"time"
)

// ChaseMode selects how the heart evades the player.
type ChaseMode string

const (
	// ChaseTeleport relocates the heart to a random point after every catch.
	ChaseTeleport ChaseMode = "teleport"
	// ChaseBounce moves the heart continuously and bounces it off the bounds.
	ChaseBounce ChaseMode = "bounce"
)

// ChaseParams configures the chase mini-game.
type ChaseParams struct {
	Mode     ChaseMode `json:"mode" mapstructure:"mode"`
	Required int       `json:"required" mapstructure:"required"`
	Bounds   Bounds    `json:"bounds" mapstructure:"bounds"`

	// Teleport mode: the relocation transition shrinks by TransitionStep per
	// catch, never below MinTransition.
	BaseTransition time.Duration `json:"base_transition" mapstructure:"base_transition"`
	TransitionStep time.Duration `json:"transition_step" mapstructure:"transition_step"`
	MinTransition  time.Duration `json:"min_transition" mapstructure:"min_transition"`

	// Bounce mode: distance per tick is BaseSpeed + SpeedStep*catches.
	BaseSpeed float64       `json:"base_speed" mapstructure:"base_speed"`
	SpeedStep float64       `json:"speed_step" mapstructure:"speed_step"`
	Tick      time.Duration `json:"tick" mapstructure:"tick"`
}

// DefaultChaseParams returns the teleport variant with five catches.
func DefaultChaseParams() ChaseParams {
	return ChaseParams{
		Mode:           ChaseTeleport,
		Required:       5,
		Bounds:         DefaultBounds,
		BaseTransition: 500 * time.Millisecond,
		TransitionStep: 80 * time.Millisecond,
		MinTransition:  100 * time.Millisecond,
		BaseSpeed:      0.6,
		SpeedStep:      0.25,
		Tick:           16 * time.Millisecond,
	}
}

// Speed is the bounce distance per tick after the given number of catches.
func (p ChaseParams) Speed(catches int) float64 {
	return p.BaseSpeed + p.SpeedStep*float64(catches)
}

// TransitionFor is the teleport animation length after the given number of catches.
func (p ChaseParams) TransitionFor(catches int) time.Duration {
	d := p.BaseTransition - time.Duration(catches)*p.TransitionStep
	if d < p.MinTransition {
		return p.MinTransition
	}
	return d
}

// Chase is the live state of the heart chase.
type Chase struct {
	Catches    int           `json:"catches"`
	Position   Point         `json:"position"`
	Velocity   Point         `json:"velocity"`
	Transition time.Duration `json:"transition"`
}

// NewChase places the heart at a random interior point. In bounce mode it
// also picks a random heading at the base speed.
func NewChase(p ChaseParams, r Rand) Chase {
	c := Chase{
		Position:   RandomPoint(r, p.Bounds),
		Transition: p.TransitionFor(0),
	}
	if p.Mode == ChaseBounce {
		angle := r.Float64() * 2 * math.Pi
		speed := p.Speed(0)
		c.Velocity = Point{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed}
	}
	return c
}

// Catch registers a click on the heart. It reports true when the required
// number of catches is reached, in which case the counter is reset to zero.
func (c *Chase) Catch(p ChaseParams, r Rand) bool {
	c.Catches++
	if c.Catches >= p.Required {
		c.Catches = 0
		return true
	}

	switch p.Mode {
	case ChaseBounce:
		c.Velocity = scaleTo(c.Velocity, p.Speed(c.Catches))
	default:
		c.Position = RandomPoint(r, p.Bounds)
		c.Transition = p.TransitionFor(c.Catches)
	}
	return false
}

// Step advances the bounce motion by one tick. A component that would cross
// a boundary has its velocity reflected and the position is moved one step in
// the reflected direction instead, so the heart never sticks to an edge.
func (c *Chase) Step(p ChaseParams) {
	if p.Mode != ChaseBounce {
		return
	}
	next := c.Position.Add(c.Velocity)
	if next.X < p.Bounds.Min || next.X > p.Bounds.Max {
		c.Velocity.X = -c.Velocity.X
		next.X = c.Position.X + c.Velocity.X
	}
	if next.Y < p.Bounds.Min || next.Y > p.Bounds.Max {
		c.Velocity.Y = -c.Velocity.Y
		next.Y = c.Position.Y + c.Velocity.Y
	}
	c.Position = p.Bounds.Clamp(next)
}

func scaleTo(v Point, magnitude float64) Point {
	length := math.Hypot(v.X, v.Y)
	if length == 0 {
		return Point{X: magnitude}
	}
	k := magnitude / length
	return Point{X: v.X * k, Y: v.Y * k}
}
