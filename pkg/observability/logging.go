package observability

import (
	"log/slog"

	"github.com/mechadv/robocoord/pkg/domain"
)

// LoggingHooks logs every lifecycle event at Info, the safety override at Warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGoalChange: func(e *domain.GoalEvent) {
			logger.Info("goal_change",
				"coordinator", e.Coordinator,
				"cycle", e.Cycle,
				"from", e.From,
				"to", e.To,
				"desired", e.Desired,
			)
		},
		OnGamepieceChange: func(e *domain.GamepieceEvent) {
			logger.Info("gamepiece_change",
				"cycle", e.Cycle,
				"from", e.From,
				"to", e.To,
			)
		},
		OnSafetyOverride: func(e *domain.GoalEvent) {
			logger.Warn("safety_override",
				"cycle", e.Cycle,
				"desired", e.Desired,
				"forced", e.To,
			)
		},
	}
}
