package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/heartsquest/pkg/domain"
)

var (
	// ErrQuit is returned by Parse for the quit command.
	ErrQuit = errors.New("quit")
	// ErrUnknownCommand is returned when a line maps to no intent on the current screen.
	ErrUnknownCommand = errors.New("unknown command")
)

// FramesPerRun is how many runner ticks a bare Enter advances.
const FramesPerRun = 60

// defaultAction is what Enter does on a mini-game screen.
var defaultAction = map[domain.StepKind]string{
	domain.KindChase:   "catch",
	domain.KindPress:   "press",
	domain.KindTug:     "pull",
	domain.KindSliders: "submit",
	domain.KindQuiz:    "submit",
}

// Parse maps a line typed on the given screen to an intent.
//
// Lines starting with "{" are decoded as a JSON intent. Lines starting with
// ":" are meta commands (:quit, :reset, :frame N, :answer TEXT). Anything
// else is read against the current step: Enter presses the main button,
// trivia text is submitted, map lines pick a node by id or number, and on
// mini-games the first word is the action, followed by an optional 1-based
// index and a value ("set 2 80", "choose 1 b").
func Parse(v domain.View, line string) (domain.Intent, error) {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, "{") {
		var in domain.Intent
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			return domain.Intent{}, fmt.Errorf("invalid intent: %w", err)
		}
		return in, nil
	}
	if strings.HasPrefix(line, ":") {
		return parseMeta(line)
	}

	kind := v.Step.Kind
	switch kind {
	case domain.KindIntro:
		return domain.Intent{Kind: domain.IntentStart}, nil
	case domain.KindTrivia:
		return domain.Intent{Kind: domain.IntentSubmit, Text: line}, nil
	case domain.KindHub:
		return parseSelect(v, line)
	case domain.KindFinal:
		if line == "" || strings.EqualFold(line, "again") {
			return action("final", "play_again", 0, ""), nil
		}
		return domain.Intent{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	case domain.KindRunner:
		if line == "" || line == "run" {
			return domain.Intent{Kind: domain.IntentFrame, Index: FramesPerRun}, nil
		}
	}

	if !kind.IsGame() {
		return domain.Intent{Kind: domain.IntentContinue}, nil
	}
	return parseAction(v, line)
}

func parseMeta(line string) (domain.Intent, error) {
	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "q", "quit", "exit":
		return domain.Intent{}, ErrQuit
	case "reset":
		return domain.Intent{Kind: domain.IntentReset}, nil
	case "continue":
		return domain.Intent{Kind: domain.IntentContinue}, nil
	case "answer":
		return domain.Intent{Kind: domain.IntentAnswer, Text: arg}, nil
	case "frame":
		n := 1
		if arg != "" {
			var err error
			if n, err = strconv.Atoi(arg); err != nil || n < 1 {
				return domain.Intent{}, fmt.Errorf("%w: frame count %q", ErrUnknownCommand, arg)
			}
		}
		return domain.Intent{Kind: domain.IntentFrame, Index: n}, nil
	}
	return domain.Intent{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
}

// parseSelect accepts a node id or its 1-based position on the map.
func parseSelect(v domain.View, line string) (domain.Intent, error) {
	if line == "" {
		return domain.Intent{}, fmt.Errorf("%w: pick a node", ErrUnknownCommand)
	}
	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 || n > len(v.Nodes) {
			return domain.Intent{}, fmt.Errorf("%w: no node %d", ErrUnknownCommand, n)
		}
		return domain.Intent{Kind: domain.IntentSelect, Node: v.Nodes[n-1].ID}, nil
	}
	return domain.Intent{Kind: domain.IntentSelect, Node: domain.StepID(line)}, nil
}

func parseAction(v domain.View, line string) (domain.Intent, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		name, ok := defaultAction[v.Step.Kind]
		if !ok {
			name = enterAction(v)
		}
		if name == "" {
			return domain.Intent{}, fmt.Errorf("%w: type an action", ErrUnknownCommand)
		}
		return action(string(v.Step.Kind), name, 0, ""), nil
	}

	index := 0
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return domain.Intent{}, fmt.Errorf("%w: %q is not a position", ErrUnknownCommand, fields[1])
		}
		index = n - 1
	}
	value := ""
	if len(fields) > 2 {
		value = strings.Join(fields[2:], " ")
	}
	return action(string(v.Step.Kind), fields[0], index, value), nil
}

// enterAction picks the first advertised action of the current game.
func enterAction(v domain.View) string {
	prefix := string(v.Step.Kind) + "/"
	for _, a := range v.Actions {
		if name, ok := strings.CutPrefix(a, prefix); ok {
			if v.Step.Kind == domain.KindWheel && name == "spin" && slices.Contains(v.Actions, prefix+"claim") {
				continue
			}
			return name
		}
	}
	return ""
}

func action(game, name string, index int, value string) domain.Intent {
	return domain.Intent{Kind: domain.IntentAction, Game: game, Action: name, Index: index, Value: value}
}
