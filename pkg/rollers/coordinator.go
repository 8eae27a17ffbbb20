// Package rollers arbitrates the intake, indexer, feeder and backpack rollers
// against the note's location inside the robot.
package rollers

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mechadv/robocoord/internal/logging"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/ports"
	"github.com/mechadv/robocoord/pkg/timing"
)

const (
	// DefaultJackhammerHalfPeriod is the length of one jackhammer phase.
	DefaultJackhammerHalfPeriod = 75 * time.Millisecond
	// DefaultStationDebounce is how long a staged note must persist before the
	// station intake is considered caught.
	DefaultStationDebounce = 60 * time.Millisecond
)

// Mechanisms groups the leaf mechanisms owned by the coordinator.
type Mechanisms struct {
	Intake   ports.Intake
	Indexer  ports.Indexer
	Feeder   ports.Feeder
	Backpack ports.Backpack
}

type subGoals struct {
	intake   domain.IntakeGoal
	indexer  domain.IndexerGoal
	feeder   domain.FeederGoal
	backpack domain.BackpackGoal
}

// Coordinator owns goal arbitration for the four roller mechanisms.
//
// Tick must be called exactly once per control period from a single goroutine.
// Hold, Shuffle and the read-only queries are safe from any goroutine.
type Coordinator struct {
	mech       Mechanisms
	sensors    ports.Sensors
	mode       ports.RobotMode
	indicators ports.Indicators
	clock      timing.Clock
	logger     *slog.Logger
	hooks      domain.LifecycleHooks

	jackhammerHalfPeriod time.Duration
	stationDebounce      time.Duration

	desired *domain.Slot[domain.RollersGoal]
	state   atomic.Uint32

	// Owned by Tick.
	gamepiece  *timing.EdgeTimer[domain.GamepieceState]
	goal       *timing.EdgeTimer[domain.RollersGoal]
	jackhammer *timing.Timer
	cycle      uint64

	snapshot atomic.Pointer[domain.RollersSnapshot]
}

// New creates a rollers coordinator. Every mechanism, the sensor source and the
// robot mode source are required.
func New(mech Mechanisms, sensors ports.Sensors, mode ports.RobotMode, opts ...Option) (*Coordinator, error) {
	switch {
	case mech.Intake == nil:
		return nil, fmt.Errorf("rollers: intake: %w", domain.ErrMissingDependency)
	case mech.Indexer == nil:
		return nil, fmt.Errorf("rollers: indexer: %w", domain.ErrMissingDependency)
	case mech.Feeder == nil:
		return nil, fmt.Errorf("rollers: feeder: %w", domain.ErrMissingDependency)
	case mech.Backpack == nil:
		return nil, fmt.Errorf("rollers: backpack: %w", domain.ErrMissingDependency)
	case sensors == nil:
		return nil, fmt.Errorf("rollers: sensors: %w", domain.ErrMissingDependency)
	case mode == nil:
		return nil, fmt.Errorf("rollers: robot mode: %w", domain.ErrMissingDependency)
	}

	c := &Coordinator{
		mech:                 mech,
		sensors:              sensors,
		mode:                 mode,
		logger:               logging.NewNop(),
		jackhammerHalfPeriod: DefaultJackhammerHalfPeriod,
		stationDebounce:      DefaultStationDebounce,
		desired:              domain.NewSlot(domain.RollersIdle),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = timing.NewMonotonicClock()
	}
	c.logger = c.logger.With("coordinator", domain.CoordinatorRollers)

	c.gamepiece = timing.NewEdgeTimer(c.clock, domain.GamepieceNone)
	c.goal = timing.NewEdgeTimer(c.clock, domain.RollersIdle)
	c.jackhammer = timing.NewTimer(c.clock)
	c.snapshot.Store(&domain.RollersSnapshot{})
	return c, nil
}

// Hold makes goal the desired goal until the hold is released, after which the
// coordinator reverts to IDLE.
func (c *Coordinator) Hold(goal domain.RollersGoal) *domain.Hold[domain.RollersGoal] {
	return c.desired.Acquire(goal)
}

// HoldUntil is Hold with a completion condition checked at the start of every
// cycle; the hold releases itself on the first cycle where done is true.
func (c *Coordinator) HoldUntil(goal domain.RollersGoal, done func(domain.GamepieceState) bool) *domain.Hold[domain.RollersGoal] {
	return c.desired.Acquire(goal, domain.Until(func() bool {
		return done(c.GamepieceState())
	}))
}

// Shuffle moves the note to the other staging location and releases itself once
// it arrives.
func (c *Coordinator) Shuffle() *domain.Hold[domain.RollersGoal] {
	if c.GamepieceState() == domain.GamepieceShooterStaged {
		return c.HoldUntil(domain.RollersShuffleBackpack, func(s domain.GamepieceState) bool {
			return s == domain.GamepieceBackpackStaged
		})
	}
	return c.HoldUntil(domain.RollersShuffleShooter, func(s domain.GamepieceState) bool {
		return s == domain.GamepieceShooterStaged
	})
}

// DesiredGoal returns the goal currently held by callers.
func (c *Coordinator) DesiredGoal() domain.RollersGoal {
	return c.desired.Goal()
}

// Goal returns the goal executed on the last cycle.
func (c *Coordinator) Goal() domain.RollersGoal {
	return c.snapshot.Load().Goal
}

// GamepieceState returns the state derived on the last cycle.
func (c *Coordinator) GamepieceState() domain.GamepieceState {
	return domain.GamepieceState(c.state.Load())
}

// IsTouchingNote reports whether the intake is touching a note or a note is
// already staged.
func (c *Coordinator) IsTouchingNote() bool {
	return c.mech.Intake.IsTouchingNote() || c.GamepieceState() != domain.GamepieceNone
}

// Snapshot returns the observable state published on the last cycle.
func (c *Coordinator) Snapshot() domain.RollersSnapshot {
	return *c.snapshot.Load()
}

// Tick runs one control cycle.
func (c *Coordinator) Tick() {
	c.cycle++

	state := domain.GamepieceFromSensors(c.sensors.Read())
	if prev, changed := c.gamepiece.Update(state); changed {
		c.state.Store(uint32(state))
		c.logger.Debug("gamepiece state changed", "from", prev, "to", state)
		if c.hooks.OnGamepieceChange != nil {
			c.hooks.OnGamepieceChange(&domain.GamepieceEvent{
				EventBase: c.event(domain.EventGamepieceChange),
				From:      prev,
				To:        state,
			})
		}
	}

	if c.mode.IsDisabled() {
		c.desired.Reset()
	} else if h := c.desired.Current(); h.Done() {
		h.Release()
	}

	goal := c.desired.Goal()
	if prev, changed := c.goal.Update(goal); changed {
		c.jackhammer.Reset()
		c.logger.Debug("goal changed", "from", prev, "to", goal)
		if c.hooks.OnGoalChange != nil {
			c.hooks.OnGoalChange(&domain.GoalEvent{
				EventBase: c.event(domain.EventGoalChange),
				From:      prev.String(),
				To:        goal.String(),
				Desired:   goal.String(),
			})
		}
	}

	out := c.dispatch(goal, state)
	c.mech.Intake.SetGoal(out.intake)
	c.mech.Indexer.SetGoal(out.indexer)
	c.mech.Feeder.SetGoal(out.feeder)
	c.mech.Backpack.SetGoal(out.backpack)

	c.mech.Feeder.Periodic()
	c.mech.Indexer.Periodic()
	c.mech.Intake.Periodic()
	c.mech.Backpack.Periodic()

	hasNote := state != domain.GamepieceNone
	if c.indicators != nil {
		c.indicators.SetHasNote(hasNote)
		c.indicators.SetIntaking(goal.Intaking())
	}

	c.snapshot.Store(&domain.RollersSnapshot{
		Cycle:          c.cycle,
		Goal:           goal,
		GamepieceState: state,
		StateAge:       c.gamepiece.Age(),
		HasNote:        hasNote,
		Intaking:       goal.Intaking(),
		TouchingNote:   c.mech.Intake.IsTouchingNote() || hasNote,
		Intake:         out.intake,
		Indexer:        out.indexer,
		Feeder:         out.feeder,
		Backpack:       out.backpack,
	})
}

// dispatch maps the goal to roller sub-goals. Every mechanism starts from
// IDLING and each goal overrides only the mechanisms it drives.
func (c *Coordinator) dispatch(goal domain.RollersGoal, state domain.GamepieceState) subGoals {
	var out subGoals

	switch goal {
	case domain.RollersIdle:
		// Baseline only.

	case domain.RollersFloorIntake:
		if state == domain.GamepieceShooterStaged {
			// Already holding a note; spit out anything else we touch.
			out.intake = domain.IntakeEjecting
			out.feeder = domain.FeederEjecting
			out.indexer = domain.IndexerIdling
		} else {
			out.intake = domain.IntakeFloorIntaking
			out.feeder = domain.FeederFloorIntaking
			out.indexer = domain.IndexerFloorIntaking
		}

	case domain.RollersStationIntake:
		if state != domain.GamepieceNone && c.gamepiece.Stable(c.stationDebounce) {
			out.indexer = domain.IndexerIdling
		} else {
			out.indexer = domain.IndexerStationIntaking
		}

	case domain.RollersEjectToFloor:
		out.feeder = domain.FeederEjecting
		out.indexer = domain.IndexerIdling
		out.intake = domain.IntakeEjecting
		out.backpack = domain.BackpackIdling

	case domain.RollersUnjamUntaco:
		out.feeder = domain.FeederFloorIntaking
		out.intake = domain.IntakeIdling
		if state == domain.GamepieceShooterStaged {
			out.indexer = domain.IndexerIdling
		} else {
			out.indexer = domain.IndexerFloorIntaking
		}

	case domain.RollersUnjamFeeder:
		out.feeder = domain.FeederEjecting
		out.indexer = domain.IndexerIdling
		out.intake = domain.IntakeFloorIntaking
		out.backpack = domain.BackpackIdling

	case domain.RollersQuickIntakeToFeed:
		out.feeder = domain.FeederShooting
		out.indexer = domain.IndexerShooting
		out.intake = domain.IntakeFloorIntaking

	case domain.RollersFeedToShooter:
		out.feeder = domain.FeederShooting
		out.indexer = domain.IndexerShooting

	case domain.RollersAmpScore:
		out.feeder = domain.FeederShuffling
		out.indexer = domain.IndexerEjecting
		out.backpack = domain.BackpackAmpScoring

	case domain.RollersTrapPrescore:
		out.feeder = domain.FeederFloorIntaking
		out.indexer = domain.IndexerEjecting
		out.backpack = domain.BackpackIdling

	case domain.RollersTrapScore:
		out.feeder = domain.FeederFloorIntaking
		out.indexer = domain.IndexerEjecting
		out.backpack = domain.BackpackTrapScoring

	case domain.RollersJackhammering:
		out.feeder = domain.FeederFloorIntaking
		out.indexer = domain.IndexerEjecting
		c.jackhammer.RestartIfElapsed(2 * c.jackhammerHalfPeriod)
		if c.jackhammer.HasElapsed(c.jackhammerHalfPeriod) {
			out.backpack = domain.BackpackTrapJackhammerIn
		} else {
			out.backpack = domain.BackpackTrapJackhammerOut
		}

	case domain.RollersShuffleBackpack:
		out.feeder = domain.FeederShuffling
		if state != domain.GamepieceBackpackStaged {
			out.indexer = domain.IndexerEjecting
			out.backpack = domain.BackpackAmpScoring
		} else {
			out.indexer = domain.IndexerIdling
			out.backpack = domain.BackpackIdling
		}

	case domain.RollersShuffleShooter:
		out.feeder = domain.FeederShuffling
		out.backpack = domain.BackpackEjecting
		if state != domain.GamepieceShooterStaged {
			out.indexer = domain.IndexerFloorIntaking
		} else {
			out.indexer = domain.IndexerIdling
		}

	default:
		// Unknown goals keep the idle baseline.
	}

	return out
}

func (c *Coordinator) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Type:        t,
		Coordinator: domain.CoordinatorRollers,
		Cycle:       c.cycle,
		At:          c.clock.Now(),
	}
}
