package robocoord

import (
	"github.com/mechadv/robocoord/pkg/adapters/memory"
	"github.com/mechadv/robocoord/pkg/config"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/mechanism"
	"github.com/mechadv/robocoord/pkg/rollers"
	"github.com/mechadv/robocoord/pkg/superstructure"
	"github.com/mechadv/robocoord/pkg/timing"
)

// Sim is a Robot built on simulated mechanisms, in-memory inputs and a manual
// clock that advances one period per Tick.
type Sim struct {
	*Robot

	Clock      *timing.ManualClock
	Sensors    *memory.Sensors
	Mode       *memory.Mode
	Indicators *memory.Indicators

	Intake           *mechanism.Intake
	Indexer          *mechanism.Roller[domain.IndexerGoal]
	Feeder           *mechanism.Roller[domain.FeederGoal]
	Backpack         *mechanism.Roller[domain.BackpackGoal]
	Arm              *mechanism.Arm
	Climber          *mechanism.Climber
	BackpackActuator *mechanism.BackpackActuator
}

// NewSim builds a simulated robot from cfg. The robot starts disabled.
// WithConfig, WithClock and WithIndicators are set by NewSim.
func NewSim(cfg config.Config, opts ...Option) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	armCfg, err := cfg.ArmConfig()
	if err != nil {
		return nil, err
	}
	volts, err := cfg.RollerVolts()
	if err != nil {
		return nil, err
	}

	s := &Sim{
		Clock:            timing.NewManualClock(),
		Sensors:          memory.NewSensors(),
		Mode:             memory.NewMode(),
		Indicators:       memory.NewIndicators(),
		Indexer:          mechanism.NewIndexer(volts.Indexer),
		Feeder:           mechanism.NewFeeder(volts.Feeder),
		Backpack:         mechanism.NewBackpack(volts.Backpack),
		Arm:              mechanism.NewArm(armCfg),
		Climber:          mechanism.NewClimber(cfg.ClimberConfig()),
		BackpackActuator: mechanism.NewBackpackActuator(cfg.BackpackActuatorConfig()),
	}
	s.Intake = mechanism.NewIntake(volts.Intake, s.Sensors.IntakeTouching)

	opts = append(opts,
		WithConfig(cfg),
		WithClock(s.Clock),
		WithIndicators(s.Indicators),
	)
	robot, err := New(Mechanisms{
		Rollers: rollers.Mechanisms{
			Intake:   s.Intake,
			Indexer:  s.Indexer,
			Feeder:   s.Feeder,
			Backpack: s.Backpack,
		},
		Superstructure: superstructure.Mechanisms{
			Arm:              s.Arm,
			Climber:          s.Climber,
			BackpackActuator: s.BackpackActuator,
		},
	}, s.Sensors, s.Mode, opts...)
	if err != nil {
		return nil, err
	}
	s.Robot = robot
	return s, nil
}

// Tick runs one cycle at the current simulated time, then advances the clock
// by one period.
func (s *Sim) Tick() domain.Snapshot {
	snap := s.Robot.Tick()
	s.Clock.Advance(s.cfg.Period)
	return snap
}
