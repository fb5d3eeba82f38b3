package games

// BondAction is one labeled button in the Bond Lab.
type BondAction struct {
	ID     string         `json:"id" mapstructure:"id"`
	Label  string         `json:"label" mapstructure:"label"`
	Deltas map[string]int `json:"deltas" mapstructure:"deltas"`
}

// BondParams configures the Bond Lab stat accumulator.
type BondParams struct {
	Stats     []string     `json:"stats" mapstructure:"stats"`
	Initial   int          `json:"initial" mapstructure:"initial"`
	Threshold int          `json:"threshold" mapstructure:"threshold"`
	Actions   []BondAction `json:"actions" mapstructure:"actions"`
}

// DefaultBondParams returns five stats at 50 and a finish threshold of 5.
func DefaultBondParams() BondParams {
	return BondParams{
		Stats:     []string{"trust", "fun", "communication", "chaos", "rest"},
		Initial:   50,
		Threshold: 5,
		Actions: []BondAction{
			{ID: "date_night", Label: "Plan a date night", Deltas: map[string]int{"fun": 15, "rest": -10}},
			{ID: "deep_talk", Label: "Have a 2am deep talk", Deltas: map[string]int{"communication": 20, "trust": 10, "rest": -15}},
			{ID: "send_reels", Label: "Send 40 reels in a row", Deltas: map[string]int{"fun": 10, "chaos": 20}},
			{ID: "nap", Label: "Take a nap together", Deltas: map[string]int{"rest": 30, "fun": -5}},
			{ID: "steal_fries", Label: "Steal their fries", Deltas: map[string]int{"chaos": 25, "trust": -10}},
		},
	}
}

// Action looks up an action by id.
func (p BondParams) Action(id string) (BondAction, bool) {
	for _, a := range p.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return BondAction{}, false
}

// Bond is the live stat vector of the Bond Lab.
type Bond struct {
	Stats   map[string]int `json:"stats"`
	Actions int            `json:"actions"`
	Log     []string       `json:"log,omitempty"`
}

// NewBond sets every stat to the initial value.
func NewBond(p BondParams) Bond {
	b := Bond{Stats: make(map[string]int, len(p.Stats))}
	for _, s := range p.Stats {
		b.Stats[s] = ClampPercent(p.Initial)
	}
	return b
}

// Apply runs the action with the given id. Deltas on unknown stats are
// ignored; every touched stat is clamped to [0, 100]. The action counter
// increments regardless of which stats moved. Unknown actions are refused.
func (b *Bond) Apply(p BondParams, id string) bool {
	action, ok := p.Action(id)
	if !ok {
		return false
	}
	if b.Stats == nil {
		b.Stats = make(map[string]int)
	}
	for stat, delta := range action.Deltas {
		current, known := b.Stats[stat]
		if !known {
			continue
		}
		b.Stats[stat] = ClampPercent(current + delta)
	}
	b.Actions++
	b.Log = append(b.Log, action.ID)
	return true
}

// CanFinish reports whether enough actions were taken to move on.
func (b *Bond) CanFinish(p BondParams) bool {
	return b.Actions >= p.Threshold
}

// Clone returns a deep copy.
func (b Bond) Clone() Bond {
	out := Bond{Actions: b.Actions}
	if b.Stats != nil {
		out.Stats = make(map[string]int, len(b.Stats))
		for k, v := range b.Stats {
			out.Stats[k] = v
		}
	}
	if b.Log != nil {
		out.Log = append([]string(nil), b.Log...)
	}
	return out
}
