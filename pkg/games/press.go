package games

// PressParams configures the "Prove You Love Me" press counter.
type PressParams struct {
	Target        int    `json:"target" mapstructure:"target"`
	RelocateEvery int    `json:"relocate_every" mapstructure:"relocate_every"`
	Bounds        Bounds `json:"bounds" mapstructure:"bounds"`
}

// DefaultPressParams returns a 100 press target relocating every 10 presses.
func DefaultPressParams() PressParams {
	return PressParams{Target: 100, RelocateEvery: 10, Bounds: DefaultBounds}
}

// Press is the live state of the press counter.
type Press struct {
	Count    int   `json:"count"`
	Position Point `json:"position"`
}

// NewPress starts the button in the middle of the area.
func NewPress(p PressParams) Press {
	return Press{Position: p.Bounds.Center()}
}

// Press registers one press. Presses beyond the target are ignored.
// It reports true on the press that reaches the target.
func (s *Press) Press(p PressParams, r Rand) bool {
	if s.Count >= p.Target {
		return false
	}
	s.Count++
	if p.RelocateEvery > 0 && s.Count%p.RelocateEvery == 0 {
		s.Position = RandomPoint(r, p.Bounds)
	}
	return s.Count == p.Target
}
