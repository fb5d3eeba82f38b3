/*
Package observability turns the engine's lifecycle hooks into Prometheus
metrics: step visits and dwell time, trivia answers, node completions,
mini-game actions and resets.

	m := observability.NewMetrics()
	eng, _ := heartsquest.New(heartsquest.WithLifecycleHooks(m.Hooks()))
	http.Handle("/metrics", m.Handler())
*/
package observability
