// Package observability exposes quest lifecycle events as Prometheus metrics.
package observability

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "heartsquest"

// Metrics holds the collectors fed by the engine's lifecycle hooks.
// Each Metrics owns its registry so several engines can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	stepVisits     *prometheus.CounterVec
	stepDuration   *prometheus.HistogramVec
	answers        *prometheus.CounterVec
	nodesCompleted *prometheus.CounterVec
	gameActions    *prometheus.CounterVec
	resets         prometheus.Counter

	mu      sync.Mutex
	entered map[string]time.Time
}

// NewMetrics creates and registers the quest collectors.
// Go runtime and process collectors are registered alongside them.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_visits_total",
				Help:      "Total number of step visits",
			},
			[]string{"step_id", "kind"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Time spent on a step before leaving it",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"kind"},
		),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_total",
				Help:      "Trivia submissions by outcome",
			},
			[]string{"step_id", "accepted"},
		),
		nodesCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_completed_total",
				Help:      "Map nodes completed",
			},
			[]string{"node_id"},
		),
		gameActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "game_actions_total",
				Help:      "Mini-game actions and timer outcomes",
			},
			[]string{"game", "action", "accepted"},
		),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Sessions sent back to the start screen",
		}),
		entered: make(map[string]time.Time),
	}

	m.registry.MustRegister(
		m.stepVisits,
		m.stepDuration,
		m.answers,
		m.nodesCompleted,
		m.gameActions,
		m.resets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.stepVisits.WithLabelValues(string(e.StepID), string(e.StepKind)).Inc()
			m.mu.Lock()
			m.entered[e.SessionID] = e.Timestamp
			m.mu.Unlock()
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			m.mu.Lock()
			since, ok := m.entered[e.SessionID]
			delete(m.entered, e.SessionID)
			m.mu.Unlock()
			if ok && !e.Timestamp.Before(since) {
				m.stepDuration.WithLabelValues(string(e.StepKind)).Observe(e.Timestamp.Sub(since).Seconds())
			}
		},
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			m.answers.WithLabelValues(string(e.StepID), strconv.FormatBool(e.Accepted)).Inc()
		},
		OnNodeComplete: func(_ context.Context, e *domain.NodeEvent) {
			m.nodesCompleted.WithLabelValues(string(e.NodeID)).Inc()
		},
		OnGameAction: func(_ context.Context, e *domain.GameEvent) {
			m.gameActions.WithLabelValues(e.Game, e.Action, strconv.FormatBool(e.Accepted)).Inc()
		},
		OnReset: func(_ context.Context, _ *domain.EventBase) {
			m.resets.Inc()
		},
	}
}
