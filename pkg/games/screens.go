package games

// Verdicts accepted by the flag game.
const (
	VerdictRed   = "red"
	VerdictGreen = "green"
)

// Flag is one statement judged in the red/green flag game.
type Flag struct {
	Text  string `json:"text" mapstructure:"text"`
	Ideal string `json:"ideal" mapstructure:"ideal"`
}

// FlagsParams lists the statements in play order.
type FlagsParams struct {
	Flags []Flag `json:"flags" mapstructure:"flags"`
}

// Flags is the live state of the flag game.
type Flags struct {
	Index  int `json:"index"`
	Agreed int `json:"agreed"`
}

// Current returns the statement being judged.
func (f *Flags) Current(p FlagsParams) (Flag, bool) {
	if f.Index < 0 || f.Index >= len(p.Flags) {
		return Flag{}, false
	}
	return p.Flags[f.Index], true
}

// Judge records a verdict for the current statement. It reports whether the
// verdict was valid and whether it was the last one.
func (f *Flags) Judge(p FlagsParams, verdict string) (ok, done bool) {
	if verdict != VerdictRed && verdict != VerdictGreen {
		return false, false
	}
	flag, exists := f.Current(p)
	if !exists {
		return false, false
	}
	if flag.Ideal == verdict {
		f.Agreed++
	}
	if f.Index < len(p.Flags)-1 {
		f.Index++
		return true, false
	}
	return true, true
}

// SliderSpec is one labeled 0..100 slider.
type SliderSpec struct {
	Label   string `json:"label,omitempty" mapstructure:"label"`
	Low     string `json:"low,omitempty" mapstructure:"low"`
	High    string `json:"high,omitempty" mapstructure:"high"`
	Default int    `json:"default" mapstructure:"default"`
}

// SlidersParams configures a rating screen.
type SlidersParams struct {
	Sliders []SliderSpec `json:"sliders" mapstructure:"sliders"`
}

// Sliders holds the current slider values.
type Sliders struct {
	Values []int `json:"values"`
}

// NewSliders sets every slider to its default.
func NewSliders(p SlidersParams) Sliders {
	s := Sliders{Values: make([]int, len(p.Sliders))}
	for i, spec := range p.Sliders {
		s.Values[i] = ClampPercent(spec.Default)
	}
	return s
}

// Set moves slider i to v, clamped to [0, 100].
func (s *Sliders) Set(i, v int) bool {
	if i < 0 || i >= len(s.Values) {
		return false
	}
	s.Values[i] = ClampPercent(v)
	return true
}

// Clone returns a deep copy.
func (s Sliders) Clone() Sliders {
	return Sliders{Values: append([]int(nil), s.Values...)}
}

// QuizOption is one radio choice.
type QuizOption struct {
	ID    string `json:"id" mapstructure:"id"`
	Label string `json:"label" mapstructure:"label"`
}

// QuizQuestion is one radio group of the compatibility test.
type QuizQuestion struct {
	Prompt  string       `json:"prompt" mapstructure:"prompt"`
	Options []QuizOption `json:"options" mapstructure:"options"`
	Default string       `json:"default" mapstructure:"default"`
}

// QuizParams configures the compatibility test. Score is the result shown
// whatever the answers are.
type QuizParams struct {
	Questions []QuizQuestion `json:"questions" mapstructure:"questions"`
	Score     int            `json:"score" mapstructure:"score"`
}

// Quiz holds the chosen option id per question.
type Quiz struct {
	Answers []string `json:"answers"`
}

// NewQuiz preselects every default.
func NewQuiz(p QuizParams) Quiz {
	q := Quiz{Answers: make([]string, len(p.Questions))}
	for i, question := range p.Questions {
		q.Answers[i] = question.Default
	}
	return q
}

// Choose selects option for question i. Unknown options are refused.
func (q *Quiz) Choose(p QuizParams, i int, option string) bool {
	if i < 0 || i >= len(p.Questions) || i >= len(q.Answers) {
		return false
	}
	for _, o := range p.Questions[i].Options {
		if o.ID == option {
			q.Answers[i] = option
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (q Quiz) Clone() Quiz {
	return Quiz{Answers: append([]string(nil), q.Answers...)}
}
