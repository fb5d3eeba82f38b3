package content

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"sort"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/games"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var tables embed.FS

// Variants lists the embedded tables.
var Variants = []string{"map", "linear"}

// DefaultVariant is the table used when none is named.
const DefaultVariant = "map"

// Variant loads an embedded table by name.
func Variant(name string) (*Table, error) {
	if name == "" {
		name = DefaultVariant
	}
	data, err := tables.ReadFile("tables/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown content variant %q", name)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("variant %s: %w", name, err)
	}
	return t, nil
}

// MustVariant is like Variant but panics on error. It is meant for the
// embedded tables, which are covered by tests.
func MustVariant(name string) *Table {
	t, err := Variant(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads a table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return Parse(data)
}

// Parse decodes, indexes and validates a YAML table.
func Parse(data []byte) (*Table, error) {
	var t Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	var errs []error
	t.index = make(map[domain.StepID]*Step, len(t.Steps))
	for i, s := range t.Steps {
		if s == nil || s.ID == "" {
			errs = append(errs, &ValidationError{Key: fmt.Sprintf("steps[%d]", i), Reason: "missing id"})
			continue
		}
		if _, dup := t.index[s.ID]; dup {
			errs = append(errs, &ValidationError{Key: string(s.ID), Reason: "duplicate step id"})
			continue
		}
		t.index[s.ID] = s
		if err := decodeGame(s); err != nil {
			errs = append(errs, &ValidationError{Key: string(s.ID), Reason: err.Error()})
		}
	}
	sort.SliceStable(t.Nodes, func(i, j int) bool { return t.Nodes[i].Order < t.Nodes[j].Order })

	errs = append(errs, t.validate()...)
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return &t, nil
}

// decodeGame decodes the step's params over the defaults of its game.
func decodeGame(s *Step) error {
	var err error
	switch s.Kind {
	case domain.KindChase:
		p := games.DefaultChaseParams()
		err = decodeParams(s.Params, &p)
		s.Game.Chase = &p
	case domain.KindPress:
		p := games.DefaultPressParams()
		err = decodeParams(s.Params, &p)
		s.Game.Press = &p
	case domain.KindTug:
		p := games.DefaultTugParams()
		err = decodeParams(s.Params, &p)
		s.Game.Tug = &p
	case domain.KindWheel:
		p := games.DefaultWheelParams()
		err = decodeParams(s.Params, &p)
		s.Game.Wheel = &p
	case domain.KindBond:
		p := games.DefaultBondParams()
		err = decodeParams(s.Params, &p)
		s.Game.Bond = &p
	case domain.KindRunner:
		p := games.DefaultRunnerParams()
		err = decodeParams(s.Params, &p)
		s.Game.Runner = &p
	case domain.KindFlags:
		var p games.FlagsParams
		err = decodeParams(s.Params, &p)
		s.Game.Flags = &p
	case domain.KindSliders:
		var p games.SlidersParams
		err = decodeParams(s.Params, &p)
		s.Game.Sliders = &p
	case domain.KindQuiz:
		p := games.QuizParams{Score: 100}
		err = decodeParams(s.Params, &p)
		s.Game.Quiz = &p
	default:
		if len(s.Params) > 0 {
			return fmt.Errorf("params are not allowed on %s steps", s.Kind)
		}
	}
	if err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

// decodeParams overlays in onto out. Slices and maps named in the params
// replace the defaults instead of merging into them.
func decodeParams(in map[string]any, out any) error {
	if len(in) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
