/*
Package runner implements the terminal play loop of a Hearts Quest session.

It acts as the bridge between a live flow (ports.Flow) and the outside world.
The runner renders every screen through a pluggable handler, maps typed lines
to intents, and redraws when timers change the session while the player is
thinking.

# Key Components

  - Runner: The main loop; one Run per flow.
  - IOHandler: Decouples how screens are shown and lines are read (CLI, JSON, etc.).
  - TextHandler: Markdown screens for interactive CLI usage.
  - JSONHandler: One domain.View per line for scripted hosts.
  - Parse: The command language of the terminal.

# Usage

	r := runner.NewRunner(
		runner.WithRenderer(tui.NewRenderer(80)),
		runner.WithLogger(logger),
	)

	if err := r.Run(ctx, flow); err != nil {
		log.Fatal(err)
	}
*/
package runner
