package robocoord_test

import (
	"testing"

	"github.com/mechadv/robocoord"
	"github.com/mechadv/robocoord/internal/testutils"
	"github.com/mechadv/robocoord/pkg/config"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSim_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Period = 0
	_, err := robocoord.NewSim(cfg)
	assert.Error(t, err)
}

func TestSim_StartsDisabledAndIdle(t *testing.T) {
	sim, err := robocoord.NewSim(config.Default())
	require.NoError(t, err)

	sim.Rollers().Hold(domain.RollersFloorIntake)
	sim.Superstructure().Hold(domain.SuperstructureAmp)
	snap := sim.Tick()

	assert.Equal(t, uint64(1), snap.Cycle)
	assert.Equal(t, domain.RollersIdle, snap.Rollers.Goal)
	assert.Equal(t, domain.SuperstructureStow, snap.Superstructure.CurrentGoal)
	assert.Equal(t, snap, sim.Snapshot())
}

func TestSim_ArmReachesAmp(t *testing.T) {
	sim := testutils.NewSim(t)
	h := sim.Superstructure().Hold(domain.SuperstructureAmp)
	defer h.Release()

	snap := testutils.TickUntil(t, sim, 200, func(s domain.Snapshot) bool { return s.Superstructure.AtGoal })
	assert.Equal(t, domain.ArmAmp, snap.Superstructure.Arm)
	assert.InDelta(t, 110, sim.Arm.Angle(), 2)
	assert.Greater(t, snap.Cycle, uint64(10), "the profile takes time to get there")
}

func TestSim_ClimberInterlockReturnsToStow(t *testing.T) {
	var overrides int
	sim := testutils.NewSim(t, robocoord.WithLifecycleHooks(domain.LifecycleHooks{
		OnSafetyOverride: func(*domain.GoalEvent) { overrides++ },
	}))

	h := sim.Superstructure().Hold(domain.SuperstructurePrepareClimb)
	testutils.TickUntil(t, sim, 300, func(domain.Snapshot) bool { return !sim.Climber.Retracted() && sim.Climber.AtGoal() })

	// Dropping the climb with the hooks up must route through RESET_CLIMB.
	h.Release()
	snap := sim.Tick()
	assert.Equal(t, domain.SuperstructureStow, snap.Superstructure.DesiredGoal)
	assert.Equal(t, domain.SuperstructureResetClimb, snap.Superstructure.CurrentGoal)
	assert.True(t, snap.Superstructure.SafetyOverride)
	assert.Equal(t, domain.ClimberStop, snap.Superstructure.Climber, "climber waits for the arm")

	snap = testutils.TickUntil(t, sim, 1000, func(s domain.Snapshot) bool {
		return s.Superstructure.CurrentGoal == domain.SuperstructureStow
	})
	assert.False(t, snap.Superstructure.SafetyOverride)
	assert.True(t, sim.Climber.Retracted())
	assert.Equal(t, 1, overrides)
}

func TestSim_FloorIntakeStagesNote(t *testing.T) {
	sim := testutils.NewSim(t)
	h := sim.Rollers().Hold(domain.RollersFloorIntake)
	defer h.Release()

	snap := sim.Tick()
	assert.True(t, snap.Rollers.Intaking)
	assert.True(t, sim.Indicators.Intaking())
	assert.Equal(t, 10.0, sim.Intake.Volts())

	sim.Sensors.Set(domain.SensorInputs{ShooterStaged: true})
	snap = sim.Tick()
	assert.Equal(t, domain.GamepieceShooterStaged, snap.Rollers.GamepieceState)
	assert.True(t, snap.Rollers.HasNote)
	assert.True(t, sim.Indicators.HasNote())
	assert.Equal(t, domain.IntakeEjecting, snap.Rollers.Intake, "a staged note turns the intake around")
	assert.Equal(t, domain.FeederEjecting, snap.Rollers.Feeder)
}

func TestSim_TimeAdvancesPerTick(t *testing.T) {
	sim := testutils.NewSim(t)
	first := sim.Tick()
	second := sim.Tick()
	assert.Equal(t, sim.Config().Period, second.Time-first.Time)
}
