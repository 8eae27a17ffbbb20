package superstructure_test

import (
	"testing"
	"time"

	"github.com/mechadv/robocoord/pkg/adapters/memory"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/superstructure"
	"github.com/mechadv/robocoord/pkg/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const period = 20 * time.Millisecond

type fakeArm struct {
	goal         domain.ArmGoal
	atGoal       bool
	stops        int
	periodics    int
	constraints  []domain.ProfileConstraints
	compensation float64
	charInput    float64
	charEnded    bool
}

func (a *fakeArm) SetGoal(g domain.ArmGoal)           { a.goal = g }
func (a *fakeArm) AtGoal() bool                       { return a.atGoal }
func (a *fakeArm) Stop()                              { a.stops++ }
func (a *fakeArm) Periodic()                          { a.periodics++ }
func (a *fakeArm) SetCurrentCompensation(deg float64) { a.compensation = deg }
func (a *fakeArm) RunCharacterization(input float64)  { a.charInput = input; a.charEnded = false }
func (a *fakeArm) CharacterizationVelocity() float64  { return a.charInput * 2 }
func (a *fakeArm) EndCharacterization()               { a.charEnded = true }
func (a *fakeArm) SetProfileConstraints(c domain.ProfileConstraints) {
	a.constraints = append(a.constraints, c)
}

type fakeClimber struct {
	goal      domain.ClimberGoal
	retracted bool
	atGoal    bool
}

func (c *fakeClimber) SetGoal(g domain.ClimberGoal) { c.goal = g }
func (c *fakeClimber) AtGoal() bool                 { return c.atGoal }
func (c *fakeClimber) Retracted() bool              { return c.retracted }
func (c *fakeClimber) Periodic()                    {}

type fakeActuator struct {
	goal domain.BackpackActuatorGoal
}

func (b *fakeActuator) SetGoal(g domain.BackpackActuatorGoal) { b.goal = g }
func (b *fakeActuator) Periodic()                             {}

type rig struct {
	clock    *timing.ManualClock
	mode     *memory.Mode
	arm      *fakeArm
	climber  *fakeClimber
	actuator *fakeActuator
	c        *superstructure.Coordinator
}

func newRig(t *testing.T, opts ...superstructure.Option) *rig {
	t.Helper()
	r := &rig{
		clock:    timing.NewManualClock(),
		mode:     memory.NewMode(),
		arm:      &fakeArm{atGoal: true},
		climber:  &fakeClimber{retracted: true, atGoal: true},
		actuator: &fakeActuator{},
	}
	r.mode.SetEnabled(true)

	opts = append([]superstructure.Option{superstructure.WithClock(r.clock)}, opts...)
	c, err := superstructure.New(superstructure.Mechanisms{
		Arm:              r.arm,
		Climber:          r.climber,
		BackpackActuator: r.actuator,
	}, r.mode, opts...)
	require.NoError(t, err)
	r.c = c
	return r
}

func (r *rig) tick() {
	r.c.Tick()
	r.clock.Advance(period)
}

type subGoals struct {
	arm      domain.ArmGoal
	climber  domain.ClimberGoal
	actuator domain.BackpackActuatorGoal
}

func (r *rig) subGoals() subGoals {
	return subGoals{r.arm.goal, r.climber.goal, r.actuator.goal}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := superstructure.New(superstructure.Mechanisms{}, memory.NewMode())
	assert.ErrorIs(t, err, domain.ErrMissingDependency)

	_, err = superstructure.New(superstructure.Mechanisms{
		Arm:              &fakeArm{},
		Climber:          &fakeClimber{},
		BackpackActuator: &fakeActuator{},
	}, nil)
	assert.ErrorIs(t, err, domain.ErrMissingDependency)
}

func TestDispatch_AllGoals(t *testing.T) {
	retract, extend := domain.BackpackActuatorRetract, domain.BackpackActuatorExtend
	want := map[domain.SuperstructureGoal]subGoals{
		domain.SuperstructureStow:                    {domain.ArmStow, domain.ClimberIdle, retract},
		domain.SuperstructureBackpackOutUnjam:        {domain.ArmUnjamIntake, domain.ClimberIdle, extend},
		domain.SuperstructureUnjamFeeder:             {domain.ArmUnjamIntake, domain.ClimberIdle, retract},
		domain.SuperstructureAim:                     {domain.ArmAim, domain.ClimberIdle, retract},
		domain.SuperstructureSuperPoop:               {domain.ArmSuperPoop, domain.ClimberIdle, retract},
		domain.SuperstructureStationIntake:           {domain.ArmStationIntake, domain.ClimberIdle, retract},
		domain.SuperstructureAmp:                     {domain.ArmAmp, domain.ClimberIdle, retract},
		domain.SuperstructureSubwoofer:               {domain.ArmSubwoofer, domain.ClimberIdle, retract},
		domain.SuperstructurePodium:                  {domain.ArmPodium, domain.ClimberIdle, retract},
		domain.SuperstructureResetClimb:              {domain.ArmResetClimb, domain.ClimberIdle, retract},
		domain.SuperstructurePreparePrepareTrapClimb: {domain.ArmPreparePrepareTrapClimb, domain.ClimberExtend, retract},
		domain.SuperstructurePrepareClimb:            {domain.ArmPrepareClimb, domain.ClimberExtend, retract},
		domain.SuperstructurePostPrepareTrapClimb:    {domain.ArmClimb, domain.ClimberExtend, retract},
		domain.SuperstructureClimb:                   {domain.ArmClimb, domain.ClimberRetract, retract},
		domain.SuperstructureTrap:                    {domain.ArmClimb, domain.ClimberRetract, extend},
		domain.SuperstructureUntrap:                  {domain.ArmUntrap, domain.ClimberRetract, extend},
		domain.SuperstructureReset:                   {domain.ArmStow, domain.ClimberIdle, retract},
		domain.SuperstructureDiagnosticArm:           {domain.ArmCustom, domain.ClimberIdle, retract},
	}

	for _, goal := range domain.AllSuperstructureGoals() {
		expected, ok := want[goal]
		require.True(t, ok, "missing dispatch expectation for %s", goal)

		t.Run(goal.String(), func(t *testing.T) {
			r := newRig(t)
			h := r.c.Hold(goal)
			defer h.Release()

			r.tick()
			assert.Equal(t, goal, r.c.CurrentGoal())
			assert.Equal(t, expected, r.subGoals())
		})
	}
}

func TestDispatch_UnknownGoalStows(t *testing.T) {
	r := newRig(t)
	h := r.c.Hold(domain.SuperstructureGoal(200))
	defer h.Release()

	r.tick()
	assert.Equal(t, subGoals{domain.ArmStow, domain.ClimberIdle, domain.BackpackActuatorRetract}, r.subGoals())
}

func TestTick_DisabledStowsAndStopsArm(t *testing.T) {
	r := newRig(t)
	h := r.c.Hold(domain.SuperstructureAmp)
	r.mode.SetEnabled(false)
	// An extended climber must not trigger the override while disabled.
	r.climber.retracted = false

	r.tick()
	assert.Equal(t, domain.SuperstructureStow, r.c.DesiredGoal())
	assert.Equal(t, domain.SuperstructureStow, r.c.CurrentGoal())
	assert.False(t, r.c.Snapshot().SafetyOverride)
	assert.False(t, h.Active())
	assert.Equal(t, 1, r.arm.stops)

	r.mode.SetEnabled(true)
	r.climber.retracted = true
	r.tick()
	assert.Equal(t, domain.SuperstructureStow, r.c.CurrentGoal(), "disable drops the hold for good")
	assert.Equal(t, 1, r.arm.stops)
}

func TestTick_SafetyOverride(t *testing.T) {
	var overrides []*domain.GoalEvent
	r := newRig(t, superstructure.WithLifecycleHooks(domain.LifecycleHooks{
		OnSafetyOverride: func(e *domain.GoalEvent) { overrides = append(overrides, e) },
	}))
	h := r.c.Hold(domain.SuperstructureAmp)
	defer h.Release()
	r.climber.retracted = false

	r.tick()
	r.tick()
	snap := r.c.Snapshot()
	assert.Equal(t, domain.SuperstructureAmp, snap.DesiredGoal)
	assert.Equal(t, domain.SuperstructureResetClimb, snap.CurrentGoal)
	assert.True(t, snap.SafetyOverride)
	assert.False(t, snap.AtGoal, "overridden cycles are never at goal")
	assert.Equal(t, domain.ArmResetClimb, r.arm.goal)
	require.Len(t, overrides, 1, "hook fires on the rising edge only")
	assert.Equal(t, "AMP", overrides[0].Desired)
	assert.Equal(t, domain.CoordinatorSuperstructure, overrides[0].Coordinator)

	r.climber.retracted = true
	r.tick()
	assert.Equal(t, domain.SuperstructureAmp, r.c.CurrentGoal())
	assert.False(t, r.c.Snapshot().SafetyOverride)
}

func TestTick_SafetyOverrideSkipped(t *testing.T) {
	t.Run("climbing goal", func(t *testing.T) {
		r := newRig(t)
		h := r.c.Hold(domain.SuperstructureClimb)
		defer h.Release()
		r.climber.retracted = false

		r.tick()
		assert.Equal(t, domain.SuperstructureClimb, r.c.CurrentGoal())
	})

	t.Run("autonomous", func(t *testing.T) {
		r := newRig(t)
		r.mode.SetAutonomous(true)
		h := r.c.Hold(domain.SuperstructurePodium)
		defer h.Release()
		r.climber.retracted = false

		r.tick()
		assert.Equal(t, domain.SuperstructurePodium, r.c.CurrentGoal())
	})
}

func TestResetClimb_StopsClimberUntilArmArrives(t *testing.T) {
	r := newRig(t)
	h := r.c.Hold(domain.SuperstructureResetClimb)
	defer h.Release()
	r.arm.atGoal = false

	r.tick()
	assert.Equal(t, domain.ArmResetClimb, r.arm.goal)
	assert.Equal(t, domain.ClimberStop, r.climber.goal)

	r.arm.atGoal = true
	r.tick()
	assert.Equal(t, domain.ClimberIdle, r.climber.goal)
}

func TestUntrap_RetractsBackpackAfterExtendTime(t *testing.T) {
	r := newRig(t)
	h := r.c.Hold(domain.SuperstructureUntrap)
	defer h.Release()

	// 0, 20, 40, 60, 80ms extended; 100ms retracted.
	for i := 0; i < 5; i++ {
		r.tick()
		assert.Equal(t, domain.BackpackActuatorExtend, r.actuator.goal, "cycle %d", i)
	}
	r.tick()
	assert.Equal(t, domain.BackpackActuatorRetract, r.actuator.goal)
	assert.Equal(t, domain.ClimberRetract, r.climber.goal)
}

func TestUntrap_TimerRestartsOnReentry(t *testing.T) {
	r := newRig(t, superstructure.WithUntrapExtendTime(40*time.Millisecond))
	h := r.c.Hold(domain.SuperstructureUntrap)
	for i := 0; i < 3; i++ {
		r.tick()
	}
	require.Equal(t, domain.BackpackActuatorRetract, r.actuator.goal)

	h = r.c.Hold(domain.SuperstructureTrap)
	r.tick()
	h.Release()
	r.c.Hold(domain.SuperstructureUntrap)
	r.tick()
	assert.Equal(t, domain.BackpackActuatorExtend, r.actuator.goal)
}

func TestGoalTimer_ResetsOnlyOnChange(t *testing.T) {
	var events []*domain.GoalEvent
	r := newRig(t, superstructure.WithLifecycleHooks(domain.LifecycleHooks{
		OnGoalChange: func(e *domain.GoalEvent) { events = append(events, e) },
	}))

	r.tick()
	r.tick()
	assert.Equal(t, 20*time.Millisecond, r.c.Snapshot().GoalAge)
	assert.Empty(t, events)

	h := r.c.Hold(domain.SuperstructureAim)
	defer h.Release()
	r.tick()
	assert.Zero(t, r.c.Snapshot().GoalAge)
	r.tick()
	r.tick()
	assert.Equal(t, 40*time.Millisecond, r.c.Snapshot().GoalAge)

	require.Len(t, events, 1)
	assert.Equal(t, "STOW", events[0].From)
	assert.Equal(t, "AIM", events[0].To)
	assert.Equal(t, domain.EventGoalChange, events[0].Type)
}

func TestReset_IsOneCyclePulse(t *testing.T) {
	r := newRig(t)
	h := r.c.Hold(domain.SuperstructureReset)

	r.tick()
	assert.Equal(t, domain.SuperstructureReset, r.c.CurrentGoal())
	assert.Equal(t, domain.SuperstructureStow, r.c.DesiredGoal())
	assert.False(t, h.Active())

	r.tick()
	assert.Equal(t, domain.SuperstructureStow, r.c.CurrentGoal())
}

func TestHoldWithConstraints_RestoresMax(t *testing.T) {
	slow := domain.ProfileConstraints{MaxVelocity: 90, MaxAcceleration: 180}
	r := newRig(t)

	h := r.c.HoldWithConstraints(domain.SuperstructurePrepareClimb, slow)
	r.tick()
	assert.Equal(t, []domain.ProfileConstraints{slow}, r.arm.constraints)

	h.Release()
	h.Release()
	assert.Equal(t, []domain.ProfileConstraints{slow, superstructure.DefaultMaxConstraints}, r.arm.constraints)
}

func TestHoldWithConstraints_RestoredWhenSuperseded(t *testing.T) {
	max := domain.ProfileConstraints{MaxVelocity: 200, MaxAcceleration: 400}
	r := newRig(t, superstructure.WithMaxProfileConstraints(max))

	r.c.HoldWithConstraints(domain.SuperstructureClimb, domain.ProfileConstraints{MaxVelocity: 10, MaxAcceleration: 10})
	r.c.Hold(domain.SuperstructureStow)
	require.Len(t, r.arm.constraints, 2)
	assert.Equal(t, max, r.arm.constraints[1])
}

func TestAimWithCompensation(t *testing.T) {
	r := newRig(t)
	h := r.c.AimWithCompensation(3.5)
	r.tick()
	assert.Equal(t, domain.ArmAim, r.arm.goal)
	assert.Equal(t, 3.5, r.arm.compensation)

	h.Release()
	assert.Zero(t, r.arm.compensation)
}

func TestAtGoal(t *testing.T) {
	r := newRig(t)
	h := r.c.Hold(domain.SuperstructureAmp)
	defer h.Release()
	r.arm.atGoal = false

	r.tick()
	assert.False(t, r.c.AtGoal())
	assert.False(t, r.c.AtArmGoal())

	r.arm.atGoal = true
	r.climber.atGoal = false
	r.tick()
	assert.False(t, r.c.AtGoal())
	assert.True(t, r.c.AtArmGoal())

	r.climber.atGoal = true
	r.tick()
	assert.True(t, r.c.AtGoal())
}

func TestCharacterization_BypassesDispatch(t *testing.T) {
	r := newRig(t)
	r.tick()
	require.Equal(t, domain.ArmStow, r.arm.goal)

	r.c.RunArmCharacterization(1.5)
	h := r.c.Hold(domain.SuperstructureAmp)
	defer h.Release()
	r.tick()
	assert.Equal(t, domain.ArmStow, r.arm.goal, "no goals applied while characterizing")
	assert.True(t, r.c.Snapshot().Characterizing)
	assert.Equal(t, 3.0, r.c.ArmCharacterizationVelocity())
	assert.Equal(t, 2, r.arm.periodics)

	r.c.EndArmCharacterization()
	assert.True(t, r.arm.charEnded)
	r.tick()
	assert.Equal(t, domain.ArmAmp, r.arm.goal)
}

func TestHoldUntil_ReleasesOnCondition(t *testing.T) {
	r := newRig(t)
	done := false
	r.c.Hold(domain.SuperstructureSubwoofer)
	r.tick()
	assert.Equal(t, domain.SuperstructureSubwoofer, r.c.CurrentGoal())

	r.c.HoldUntil(domain.SuperstructureAmp, func() bool { return done })
	r.tick()
	assert.Equal(t, domain.SuperstructureAmp, r.c.CurrentGoal())

	done = true
	r.tick()
	assert.Equal(t, domain.SuperstructureStow, r.c.CurrentGoal())
}
