package heartsquest

import (
	"context"
	"errors"

	"github.com/aretw0/heartsquest/pkg/runner"
)

// Play runs an interactive session in the terminal until the player quits,
// the input ends or ctx is done. The session is persisted like any other and
// can be played again later under the same id.
func (e *Engine) Play(ctx context.Context, sessionID string, opts ...runner.Option) (err error) {
	flow, err := e.Open(ctx, sessionID)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, e.Close(context.WithoutCancel(ctx), sessionID))
	}()

	r := runner.NewRunner(append([]runner.Option{runner.WithLogger(e.logger)}, opts...)...)
	return r.Run(ctx, flow)
}
