package games

import "time"

// RunnerParams configures the endless runner. Positions are in percent of
// the track width; durations are simulated time, advanced by Frame per tick.
type RunnerParams struct {
	Target      int           `json:"target" mapstructure:"target"`
	PerTick     int           `json:"per_tick" mapstructure:"per_tick"`
	Frame       time.Duration `json:"frame" mapstructure:"frame"`
	SpawnEvery  time.Duration `json:"spawn_every" mapstructure:"spawn_every"`
	Speed       float64       `json:"speed" mapstructure:"speed"`
	Width       float64       `json:"width" mapstructure:"width"`
	HitMin      float64       `json:"hit_min" mapstructure:"hit_min"`
	HitMax      float64       `json:"hit_max" mapstructure:"hit_max"`
	JumpFor     time.Duration `json:"jump_for" mapstructure:"jump_for"`
	JumpHeight  float64       `json:"jump_height" mapstructure:"jump_height"`
	HurtFor     time.Duration `json:"hurt_for" mapstructure:"hurt_for"`
	FinishDelay time.Duration `json:"finish_delay" mapstructure:"finish_delay"`
	Labels      []string      `json:"labels" mapstructure:"labels"`
}

// DefaultRunnerParams returns a run to 6767 at 60 frames per second.
func DefaultRunnerParams() RunnerParams {
	return RunnerParams{
		Target:      6767,
		PerTick:     7,
		Frame:       16 * time.Millisecond,
		SpawnEvery:  1500 * time.Millisecond,
		Speed:       1.2,
		Width:       100,
		HitMin:      8,
		HitMax:      16,
		JumpFor:     600 * time.Millisecond,
		JumpHeight:  60,
		HurtFor:     300 * time.Millisecond,
		FinishDelay: time.Second,
		Labels:      []string{"Monday", "Exam", "Alarm clock", "Dishes"},
	}
}

// Obstacle scrolls from the right edge toward the player.
type Obstacle struct {
	X     float64 `json:"x"`
	Label string  `json:"label,omitempty"`
}

// Runner is the live state of the endless runner.
type Runner struct {
	Distance   int           `json:"distance"`
	Obstacles  []Obstacle    `json:"obstacles,omitempty"`
	Airborne   bool          `json:"airborne"`
	Height     float64       `json:"height"`
	JumpLeft   time.Duration `json:"jump_left,omitempty"`
	Hurt       bool          `json:"hurt"`
	HurtLeft   time.Duration `json:"hurt_left,omitempty"`
	Hits       int           `json:"hits"`
	SinceSpawn time.Duration `json:"since_spawn"`
	Finished   bool          `json:"finished"`
}

// Tick advances the run by one frame. It reports true exactly once, on the
// frame the distance reaches the target; the distance never exceeds it.
func (g *Runner) Tick(p RunnerParams, r Rand) bool {
	if g.Finished {
		return false
	}

	g.Distance += p.PerTick
	if g.Distance >= p.Target {
		g.Distance = p.Target
		g.Finished = true
		return true
	}

	if g.Airborne {
		g.JumpLeft -= p.Frame
		if g.JumpLeft <= 0 {
			g.Airborne, g.Height, g.JumpLeft = false, 0, 0
		}
	}
	if g.Hurt {
		g.HurtLeft -= p.Frame
		if g.HurtLeft <= 0 {
			g.Hurt, g.HurtLeft = false, 0
		}
	}

	g.SinceSpawn += p.Frame
	if p.SpawnEvery > 0 && g.SinceSpawn >= p.SpawnEvery {
		g.SinceSpawn -= p.SpawnEvery
		g.Obstacles = append(g.Obstacles, Obstacle{X: p.Width, Label: pickLabel(p.Labels, r)})
	}

	kept := g.Obstacles[:0]
	for _, o := range g.Obstacles {
		o.X -= p.Speed
		if o.X < -p.Speed {
			continue
		}
		kept = append(kept, o)
	}
	g.Obstacles = kept

	if !g.Airborne && g.colliding(p) {
		if !g.Hurt {
			g.Hits++
		}
		g.Hurt, g.HurtLeft = true, p.HurtFor
	}
	return false
}

// Jump lifts the player for JumpFor. Jumping while airborne is refused.
func (g *Runner) Jump(p RunnerParams) bool {
	if g.Airborne || g.Finished {
		return false
	}
	g.Airborne = true
	g.Height = p.JumpHeight
	g.JumpLeft = p.JumpFor
	return true
}

func (g *Runner) colliding(p RunnerParams) bool {
	for _, o := range g.Obstacles {
		if o.X >= p.HitMin && o.X <= p.HitMax {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (g Runner) Clone() Runner {
	out := g
	if g.Obstacles != nil {
		out.Obstacles = append([]Obstacle(nil), g.Obstacles...)
	}
	return out
}

func pickLabel(labels []string, r Rand) string {
	if len(labels) == 0 {
		return ""
	}
	return labels[r.IntN(len(labels))]
}
