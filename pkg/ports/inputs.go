package ports

import (
	"context"

	"github.com/mechadv/robocoord/pkg/domain"
)

// Sensors provides the roller staging sensors. Read is called once per cycle.
type Sensors interface {
	Read() domain.SensorInputs
}

// RobotMode reports the match state, polled once per cycle.
type RobotMode interface {
	IsDisabled() bool
	IsAutonomousEnabled() bool
}

// Indicators receives driver feedback flags (LEDs, dashboards).
type Indicators interface {
	SetHasNote(bool)
	SetIntaking(bool)
}

// Publisher ships snapshots to a telemetry backend. It may block, so it is
// only called from the runner, never from inside a coordinator's Tick.
type Publisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}
