// Package superstructure arbitrates the arm, climber and backpack actuator,
// including the interlock that keeps the climber from staying extended outside
// a climb.
package superstructure

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

// DefaultUntrapExtendTime is how long UNTRAP pushes the backpack out before
// pulling it back in.
const DefaultUntrapExtendTime = 100 * time.Millisecond

// DefaultMaxConstraints are the arm limits restored after a constrained hold.
var DefaultMaxConstraints = domain.ProfileConstraints{MaxVelocity: 360, MaxAcceleration: 720}

// Mechanisms groups the leaf mechanisms owned by the coordinator.
type Mechanisms struct {
	Arm              ports.Arm
	Climber          ports.Climber
	BackpackActuator ports.BackpackActuator
}

type plan struct {
	arm      domain.ArmGoal
	climber  domain.ClimberGoal
	backpack domain.BackpackActuatorGoal
	// stopClimberUntilArm replaces the climber goal with STOP until the arm
	// reports it reached its goal.
	stopClimberUntilArm bool
}

// Coordinator owns goal arbitration for the superstructure.
//
// Tick must be called exactly once per control period from a single goroutine.
// Holds and the read-only queries are safe from any goroutine.
type Coordinator struct {
	mech   Mechanisms
	mode   ports.RobotMode
	clock  timing.Clock
	logger *slog.Logger
	hooks  domain.LifecycleHooks

	untrapExtendTime time.Duration
	maxConstraints   domain.ProfileConstraints

	desired        *domain.Slot[domain.SuperstructureGoal]
	characterizing atomic.Bool

	// Owned by Tick.
	goal       *timing.EdgeTimer[domain.SuperstructureGoal]
	overriding bool
	cycle      uint64

	snapshot atomic.Pointer[domain.SuperstructureSnapshot]
}

// New creates a superstructure coordinator.
func New(mech Mechanisms, mode ports.RobotMode, opts ...Option) (*Coordinator, error) {
	switch {
	case mech.Arm == nil:
		return nil, fmt.Errorf("superstructure: arm: %w", domain.ErrMissingDependency)
	case mech.Climber == nil:
		return nil, fmt.Errorf("superstructure: climber: %w", domain.ErrMissingDependency)
	case mech.BackpackActuator == nil:
		return nil, fmt.Errorf("superstructure: backpack actuator: %w", domain.ErrMissingDependency)
	case mode == nil:
		return nil, fmt.Errorf("superstructure: robot mode: %w", domain.ErrMissingDependency)
	}

	c := &Coordinator{
		mech:             mech,
		mode:             mode,
		logger:           logging.NewNop(),
		untrapExtendTime: DefaultUntrapExtendTime,
		maxConstraints:   DefaultMaxConstraints,
		desired:          domain.NewSlot(domain.SuperstructureStow),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = timing.NewMonotonicClock()
	}
	c.logger = c.logger.With("coordinator", domain.CoordinatorSuperstructure)

	c.goal = timing.NewEdgeTimer(c.clock, domain.SuperstructureStow)
	c.snapshot.Store(&domain.SuperstructureSnapshot{})
	return c, nil
}

// Hold makes goal the desired goal until the hold is released, after which the
// coordinator reverts to STOW.
func (c *Coordinator) Hold(goal domain.SuperstructureGoal) *domain.Hold[domain.SuperstructureGoal] {
	return c.desired.Acquire(goal)
}

// HoldUntil is Hold with a completion condition checked at the start of every
// cycle.
func (c *Coordinator) HoldUntil(goal domain.SuperstructureGoal, done func() bool) *domain.Hold[domain.SuperstructureGoal] {
	return c.desired.Acquire(goal, domain.Until(done))
}

// HoldWithConstraints is Hold with custom arm profile limits for the lifetime of
// the hold. The maximum limits are restored when it ends.
func (c *Coordinator) HoldWithConstraints(goal domain.SuperstructureGoal, pc domain.ProfileConstraints) *domain.Hold[domain.SuperstructureGoal] {
	h := c.desired.Acquire(goal, domain.OnRelease(func() {
		c.mech.Arm.SetProfileConstraints(c.maxConstraints)
	}))
	c.mech.Arm.SetProfileConstraints(pc)
	return h
}

// AimWithCompensation holds AIM with the arm setpoint offset by degrees. The
// offset is cleared when the hold ends.
func (c *Coordinator) AimWithCompensation(degrees float64) *domain.Hold[domain.SuperstructureGoal] {
	h := c.desired.Acquire(domain.SuperstructureAim, domain.OnRelease(func() {
		c.mech.Arm.SetCurrentCompensation(0)
	}))
	c.mech.Arm.SetCurrentCompensation(degrees)
	return h
}

// DesiredGoal returns the goal currently held by callers.
func (c *Coordinator) DesiredGoal() domain.SuperstructureGoal {
	return c.desired.Goal()
}

// CurrentGoal returns the goal executed on the last cycle.
func (c *Coordinator) CurrentGoal() domain.SuperstructureGoal {
	return c.snapshot.Load().CurrentGoal
}

// AtGoal reports whether the last cycle executed the desired goal with both the
// arm and the climber settled.
func (c *Coordinator) AtGoal() bool {
	return c.snapshot.Load().AtGoal
}

// AtArmGoal is AtGoal ignoring the climber.
func (c *Coordinator) AtArmGoal() bool {
	return c.snapshot.Load().AtArmGoal
}

// Snapshot returns the observable state published on the last cycle.
func (c *Coordinator) Snapshot() domain.SuperstructureSnapshot {
	return *c.snapshot.Load()
}

// RunArmCharacterization drives the arm open loop. Goal dispatch is suspended
// until EndArmCharacterization.
func (c *Coordinator) RunArmCharacterization(input float64) {
	c.characterizing.Store(true)
	c.mech.Arm.RunCharacterization(input)
}

// ArmCharacterizationVelocity reports the arm velocity during characterization.
func (c *Coordinator) ArmCharacterizationVelocity() float64 {
	return c.mech.Arm.CharacterizationVelocity()
}

// EndArmCharacterization stops characterization and resumes goal dispatch.
func (c *Coordinator) EndArmCharacterization() {
	c.mech.Arm.EndCharacterization()
	c.characterizing.Store(false)
}

// Tick runs one control cycle.
func (c *Coordinator) Tick() {
	c.cycle++

	disabled := c.mode.IsDisabled()
	if disabled {
		c.desired.Reset()
		c.mech.Arm.Stop()
	} else if h := c.desired.Current(); h.Done() {
		h.Release()
	}

	desired := c.desired.Goal()
	current := desired
	override := !disabled &&
		!c.mech.Climber.Retracted() &&
		!desired.Climbing() &&
		!c.mode.IsAutonomousEnabled()
	if override {
		current = domain.SuperstructureResetClimb
	}

	if override && !c.overriding {
		c.logger.Warn("climber extended outside a climb, forcing reset", "desired", desired)
		if c.hooks.OnSafetyOverride != nil {
			c.hooks.OnSafetyOverride(c.goalEvent(domain.EventSafetyOverride, desired, current, desired))
		}
	}
	c.overriding = override

	if prev, changed := c.goal.Update(current); changed {
		c.logger.Debug("goal changed", "from", prev, "to", current, "desired", desired)
		if c.hooks.OnGoalChange != nil {
			c.hooks.OnGoalChange(c.goalEvent(domain.EventGoalChange, prev, current, desired))
		}
	}

	characterizing := c.characterizing.Load()
	var p plan
	if !characterizing {
		p = c.dispatch(current)
		c.mech.Arm.SetGoal(p.arm)
		if p.stopClimberUntilArm && !c.mech.Arm.AtGoal() {
			// Arm is in an unsafe pose for retracting; apply no output.
			p.climber = domain.ClimberStop
		}
		c.mech.Climber.SetGoal(p.climber)
		c.mech.BackpackActuator.SetGoal(p.backpack)
	}

	c.mech.Arm.Periodic()
	c.mech.Climber.Periodic()
	c.mech.BackpackActuator.Periodic()

	// RESET may have cleared the desired goal during dispatch.
	desired = c.desired.Goal()
	armAtGoal := c.mech.Arm.AtGoal()
	c.snapshot.Store(&domain.SuperstructureSnapshot{
		Cycle:            c.cycle,
		DesiredGoal:      desired,
		CurrentGoal:      current,
		GoalAge:          c.goal.Age(),
		SafetyOverride:   override,
		Characterizing:   characterizing,
		AtGoal:           current == desired && armAtGoal && c.mech.Climber.AtGoal(),
		AtArmGoal:        current == desired && armAtGoal,
		Arm:              p.arm,
		Climber:          p.climber,
		BackpackActuator: p.backpack,
	})
}

func (c *Coordinator) dispatch(goal domain.SuperstructureGoal) plan {
	switch goal {
	case domain.SuperstructureStow:
		return plan{arm: domain.ArmStow, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructureBackpackOutUnjam:
		return plan{arm: domain.ArmUnjamIntake, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorExtend}
	case domain.SuperstructureUnjamFeeder:
		return plan{arm: domain.ArmUnjamIntake, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructureAim:
		return plan{arm: domain.ArmAim, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructureSuperPoop:
		return plan{arm: domain.ArmSuperPoop, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructureStationIntake:
		return plan{arm: domain.ArmStationIntake, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructureAmp:
		return plan{arm: domain.ArmAmp, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructureSubwoofer:
		return plan{arm: domain.ArmSubwoofer, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructurePodium:
		return plan{arm: domain.ArmPodium, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructureResetClimb:
		return plan{
			arm:                 domain.ArmResetClimb,
			climber:             domain.ClimberIdle,
			backpack:            domain.BackpackActuatorRetract,
			stopClimberUntilArm: true,
		}
	case domain.SuperstructurePreparePrepareTrapClimb:
		return plan{arm: domain.ArmPreparePrepareTrapClimb, climber: domain.ClimberExtend, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructurePrepareClimb:
		return plan{arm: domain.ArmPrepareClimb, climber: domain.ClimberExtend, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructurePostPrepareTrapClimb:
		return plan{arm: domain.ArmClimb, climber: domain.ClimberExtend, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructureClimb:
		return plan{arm: domain.ArmClimb, climber: domain.ClimberRetract, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructureTrap:
		return plan{arm: domain.ArmClimb, climber: domain.ClimberRetract, backpack: domain.BackpackActuatorExtend}
	case domain.SuperstructureUntrap:
		p := plan{arm: domain.ArmUntrap, climber: domain.ClimberRetract, backpack: domain.BackpackActuatorExtend}
		if c.goal.Stable(c.untrapExtendTime) {
			p.backpack = domain.BackpackActuatorRetract
		}
		return p
	case domain.SuperstructureReset:
		// One-cycle pulse back to STOW.
		c.desired.Reset()
		return plan{arm: domain.ArmStow, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	case domain.SuperstructureDiagnosticArm:
		return plan{arm: domain.ArmCustom, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	default:
		return plan{arm: domain.ArmStow, climber: domain.ClimberIdle, backpack: domain.BackpackActuatorRetract}
	}
}

func (c *Coordinator) goalEvent(t domain.EventType, from, to, desired domain.SuperstructureGoal) *domain.GoalEvent {
	return &domain.GoalEvent{
		EventBase: domain.EventBase{
			Type:        t,
			Coordinator: domain.CoordinatorSuperstructure,
			Cycle:       c.cycle,
			At:          c.clock.Now(),
		},
		From:    from.String(),
		To:      to.String(),
		Desired: desired.String(),
	}
}
