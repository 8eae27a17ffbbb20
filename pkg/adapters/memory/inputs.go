package memory

import (
	"sync/atomic"

	"github.com/mechadv/robocoord/pkg/domain"
)

// Sensors is a settable ports.Sensors. It also carries the intake contact
// sensor so simulated intakes can share it.
type Sensors struct {
	shooter  atomic.Bool
	backpack atomic.Bool
	touching atomic.Bool
}

// NewSensors creates sensors reporting no note.
func NewSensors() *Sensors {
	return &Sensors{}
}

// Set replaces both staging readings.
func (s *Sensors) Set(in domain.SensorInputs) {
	s.shooter.Store(in.ShooterStaged)
	s.backpack.Store(in.BackpackStaged)
}

// SetIntakeTouching sets the intake contact reading.
func (s *Sensors) SetIntakeTouching(v bool) {
	s.touching.Store(v)
}

// IntakeTouching reports the intake contact reading.
func (s *Sensors) IntakeTouching() bool {
	return s.touching.Load()
}

// Read implements ports.Sensors.
func (s *Sensors) Read() domain.SensorInputs {
	return domain.SensorInputs{
		ShooterStaged:  s.shooter.Load(),
		BackpackStaged: s.backpack.Load(),
	}
}

// Mode is a settable ports.RobotMode. It starts disabled, like a robot on
// power-up.
type Mode struct {
	enabled    atomic.Bool
	autonomous atomic.Bool
}

// NewMode creates a disabled, teleoperated mode source.
func NewMode() *Mode {
	return &Mode{}
}

// SetEnabled enables or disables the robot.
func (m *Mode) SetEnabled(v bool) {
	m.enabled.Store(v)
}

// SetAutonomous switches between autonomous and teleoperated.
func (m *Mode) SetAutonomous(v bool) {
	m.autonomous.Store(v)
}

// IsDisabled implements ports.RobotMode.
func (m *Mode) IsDisabled() bool {
	return !m.enabled.Load()
}

// IsAutonomousEnabled implements ports.RobotMode.
func (m *Mode) IsAutonomousEnabled() bool {
	return m.enabled.Load() && m.autonomous.Load()
}

// Indicators records the driver feedback flags.
type Indicators struct {
	hasNote  atomic.Bool
	intaking atomic.Bool
}

// NewIndicators creates cleared indicators.
func NewIndicators() *Indicators {
	return &Indicators{}
}

func (i *Indicators) SetHasNote(v bool)  { i.hasNote.Store(v) }
func (i *Indicators) SetIntaking(v bool) { i.intaking.Store(v) }
func (i *Indicators) HasNote() bool      { return i.hasNote.Load() }
func (i *Indicators) Intaking() bool     { return i.intaking.Load() }
