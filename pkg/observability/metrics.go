package observability

import (
	"time"

	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for both coordinators.
type Metrics struct {
	GoalTransitions  *prometheus.CounterVec
	SafetyOverrides  prometheus.Counter
	GamepieceChanges *prometheus.CounterVec
	CurrentGoal      *prometheus.GaugeVec
	GamepieceState   prometheus.Gauge
	AtGoal           prometheus.Gauge
	CycleDuration    prometheus.Histogram
	Cycles           prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GoalTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "robocoord_goal_transitions_total",
				Help: "Total number of current goal changes",
			},
			[]string{"coordinator", "to"},
		),
		SafetyOverrides: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "robocoord_safety_overrides_total",
			Help: "Times the climber interlock forced RESET_CLIMB",
		}),
		GamepieceChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "robocoord_gamepiece_changes_total",
				Help: "Total number of gamepiece state changes",
			},
			[]string{"to"},
		),
		CurrentGoal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "robocoord_current_goal",
				Help: "Ordinal of the goal executed on the last cycle",
			},
			[]string{"coordinator"},
		),
		GamepieceState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "robocoord_gamepiece_state",
			Help: "0 none, 1 shooter staged, 2 backpack staged",
		}),
		AtGoal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "robocoord_superstructure_at_goal",
			Help: "1 when the superstructure reached its desired goal",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "robocoord_cycle_duration_seconds",
			Help:    "Wall time spent in one control cycle",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .02},
		}),
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "robocoord_cycles_total",
			Help: "Total number of control cycles run",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.GoalTransitions,
			m.SafetyOverrides,
			m.GamepieceChanges,
			m.CurrentGoal,
			m.GamepieceState,
			m.AtGoal,
			m.CycleDuration,
			m.Cycles,
		)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the event counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGoalChange: func(e *domain.GoalEvent) {
			m.GoalTransitions.WithLabelValues(e.Coordinator, e.To).Inc()
		},
		OnGamepieceChange: func(e *domain.GamepieceEvent) {
			m.GamepieceChanges.WithLabelValues(e.To.String()).Inc()
		},
		OnSafetyOverride: func(*domain.GoalEvent) {
			m.SafetyOverrides.Inc()
		},
	}
}

// ObserveCycle records one finished cycle.
func (m *Metrics) ObserveCycle(snap domain.Snapshot, took time.Duration) {
	m.Cycles.Inc()
	m.CycleDuration.Observe(took.Seconds())
	m.CurrentGoal.WithLabelValues(domain.CoordinatorRollers).Set(float64(snap.Rollers.Goal))
	m.CurrentGoal.WithLabelValues(domain.CoordinatorSuperstructure).Set(float64(snap.Superstructure.CurrentGoal))
	m.GamepieceState.Set(float64(snap.Rollers.GamepieceState))
	if snap.Superstructure.AtGoal {
		m.AtGoal.Set(1)
	} else {
		m.AtGoal.Set(0)
	}
}
