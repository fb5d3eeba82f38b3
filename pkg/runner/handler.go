package runner

import (
	"context"

	"github.com/aretw0/heartsquest/pkg/domain"
)

// IOHandler defines the strategy for interacting with the player.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the current screen.
	Output(ctx context.Context, view domain.View) error

	// Input reads one line from the player. It returns ctx.Err() when the
	// context ends first; a line that arrives later is kept for the next call.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the player (e.g. a bad command).
	// This is distinct from content rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
