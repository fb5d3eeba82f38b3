package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/heartsquest/internal/logging"
	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/ports"
)

// DefaultRefreshInterval bounds how often timer-driven changes redraw the screen.
const DefaultRefreshInterval = 250 * time.Millisecond

// Runner handles the play loop of one flow using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input and
	// Output is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// Refresh is the minimum time between two timer-driven redraws.
	Refresh time.Duration
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:   os.Stdin,
		Output:  os.Stdout,
		Logger:  logging.NewNop(),
		Refresh: DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// errRefresh reports that an input wait was interrupted by a state change.
var errRefresh = errors.New("refresh")

// Run drives the flow until the player quits, the input ends or ctx is done.
// Every screen change is rendered, including the ones caused by timers while
// the player is thinking.
func (r *Runner) Run(ctx context.Context, flow ports.Flow) error {
	handler := r.resolveHandler()

	updates := make(chan struct{}, 1)
	cancel := flow.Subscribe(func(*domain.Progress) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	defer cancel()

	for {
		if ctx.Err() != nil {
			return nil
		}

		view := flow.View()
		if err := handler.Output(ctx, view); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
		drawn := time.Now()

		line, err := r.awaitInput(ctx, handler, updates)
		if errors.Is(err, errRefresh) {
			r.pace(ctx, drawn)
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		intent, err := Parse(view, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			if err := handler.SystemOutput(ctx, err.Error()); err != nil {
				return err
			}
			continue
		}

		out, err := flow.Dispatch(ctx, intent)
		if errors.Is(err, domain.ErrFlowClosed) {
			return nil
		}
		if err != nil {
			if err := handler.SystemOutput(ctx, err.Error()); err != nil {
				return err
			}
			continue
		}
		r.Logger.Debug("intent dispatched", "kind", intent.Kind, "accepted", out.Accepted, "step", out.Step, "revision", out.Revision)

		// The redraw below already shows our own mutation.
		select {
		case <-updates:
		default:
		}
	}
}

// awaitInput reads one line, giving up with errRefresh when the flow changes
// on its own first.
func (r *Runner) awaitInput(ctx context.Context, handler IOHandler, updates <-chan struct{}) (string, error) {
	inputCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	refreshed := make(chan struct{})
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-updates:
			close(refreshed)
			cancel()
		case <-done:
		}
	}()

	line, err := handler.Input(inputCtx)
	if err != nil && ctx.Err() == nil {
		select {
		case <-refreshed:
			return "", errRefresh
		default:
		}
	}
	return line, err
}

// pace keeps timer-driven redraws at most one per Refresh.
func (r *Runner) pace(ctx context.Context, drawn time.Time) {
	wait := r.Refresh - time.Since(drawn)
	if wait <= 0 {
		return
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	if !r.Headless && r.Output != nil {
		fmt.Fprintln(r.Output, "--- Hearts Quest ---")
	}
	// Memoize to prevent creating new Pumps on subsequent Run() calls
	r.Handler = th
	return th
}
