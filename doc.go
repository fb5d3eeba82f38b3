/*
Package heartsquest is the engine of Hearts Quest, a small interactive
experience: a linear or map-based sequence of screens where the player
answers memory trivia and plays mini-games (chase, press counter, tug of war,
prize wheel, Bond Lab, endless runner, flags, sliders and a quiz), then
reaches an "always 100%" final screen.

The engine separates the content (a YAML table of steps and nodes), the
live flow of each session (a controller that accepts intents and publishes
snapshots) and the adapters that host it (terminal runner, HTTP API, MCP
server). Every accepted change is written through to a StateStore, so a
session can be resumed after a restart.

# Usage

	eng, err := heartsquest.New(heartsquest.WithVariant("map"))
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Shutdown(ctx)

	id, flow, err := eng.Create(ctx)
	if err != nil {
		log.Fatal(err)
	}

	out, err := flow.Dispatch(ctx, domain.Intent{Kind: domain.IntentStart})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(id, out.Step, flow.View().Percent)

Rejected intents (a wrong answer, a locked node, an action of another game)
return an Outcome with Accepted set to false and no error. Errors are kept
for the infrastructure edge: unknown sessions, malformed intents and store
failures.

# Terminal

Play runs the text loop of package runner against a persisted session:

	err := eng.Play(ctx, "local", runner.WithIO(os.Stdin, os.Stdout))
*/
package heartsquest
