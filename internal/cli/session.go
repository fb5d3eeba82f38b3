package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/heartsquest"
	"github.com/aretw0/heartsquest/internal/presentation/tui"
	"github.com/aretw0/heartsquest/pkg/runner"
)

// DefaultSessionID is the session played when none is named.
const DefaultSessionID = "local"

// Terminal is the IO a play session runs on.
type Terminal struct {
	In    io.Reader
	Out   io.Writer
	TTY   bool
	Width int
}

// RunSession plays one session until the player quits or the input ends.
// The session is persisted and resumed by the next run with the same id.
func RunSession(opts Options, t Terminal) error {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()
	return runSession(sigCtx, opts, t)
}

func runSession(sigCtx *SignalContext, opts Options, t Terminal) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	logger, err := NewLogger(opts.LogLevel, opts.LogFormat, "off")
	if err != nil {
		return err
	}

	quiet := opts.JSON || opts.Headless || !t.TTY
	if !quiet {
		tui.PrintBanner(t.Out, heartsquest.Version)
	}

	engine, closeStore, err := NewEngine(opts, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	if opts.Fresh {
		if err := engine.Delete(sigCtx, sessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	logSessionStatus(sigCtx, engine, logger, t.Out, sessionID, quiet)

	runErr := engine.Play(sigCtx, sessionID, createRunnerOptions(logger, opts, t)...)
	if err := engine.Shutdown(context.WithoutCancel(sigCtx)); err != nil {
		runErr = errors.Join(runErr, err)
	}

	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}
	logCompletion(t.Out, sessionID, runErr, quiet, sigCtx.Signal())

	return handleExecutionError(runErr)
}

func logSessionStatus(ctx context.Context, engine *heartsquest.Engine, logger *slog.Logger, w io.Writer, sessionID string, quiet bool) {
	p, err := engine.Load(ctx, sessionID)
	if err != nil {
		logger.Info("Session Created", "session_id", sessionID)
		if !quiet {
			printSystemMessage(w, "Session '%s' active.", sessionID)
		}
		return
	}
	logger.Info("Session Resumed", "session_id", sessionID, "step", p.CurrentStep)
	if !quiet {
		printSystemMessage(w, "Resuming at '%s' step...", p.CurrentStep)
	}
}

// createRunnerOptions prepares the functional options for the Runner.
func createRunnerOptions(logger *slog.Logger, opts Options, t Terminal) []runner.Option {
	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithIO(t.In, t.Out),
		runner.WithHeadless(opts.Headless || !t.TTY),
	}
	switch {
	case opts.JSON:
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(t.In, t.Out)))
	case t.TTY && !opts.Headless:
		width := t.Width
		if width > 100 {
			width = 100
		}
		runnerOpts = append(runnerOpts, runner.WithRenderer(tui.NewRenderer(width)))
	}
	return runnerOpts
}
