package mechanism_test

import (
	"testing"

	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/mechanism"
	"github.com/mechadv/robocoord/pkg/ports"
	"github.com/stretchr/testify/assert"
)

var (
	_ ports.Arm              = (*mechanism.Arm)(nil)
	_ ports.Climber          = (*mechanism.Climber)(nil)
	_ ports.BackpackActuator = (*mechanism.BackpackActuator)(nil)
	_ ports.Intake           = (*mechanism.Intake)(nil)
	_ ports.Indexer          = (*mechanism.Roller[domain.IndexerGoal])(nil)
	_ ports.Feeder           = (*mechanism.Roller[domain.FeederGoal])(nil)
	_ ports.Backpack         = (*mechanism.Roller[domain.BackpackGoal])(nil)
)

func TestRoller_AppliesVoltageOnPeriodic(t *testing.T) {
	r := mechanism.NewFeeder(map[domain.FeederGoal]float64{domain.FeederShooting: 12})
	r.SetGoal(domain.FeederShooting)
	assert.Equal(t, 0.0, r.Volts(), "voltage changes only on Periodic")

	r.Periodic()
	assert.Equal(t, 12.0, r.Volts())
	assert.Equal(t, uint64(1), r.Cycles())

	r.SetGoal(domain.FeederEjecting)
	r.Periodic()
	assert.Equal(t, 0.0, r.Volts(), "unmapped goals run at zero")
}

func TestIntake_TouchingNote(t *testing.T) {
	touching := false
	in := mechanism.NewIntake(nil, func() bool { return touching })
	assert.False(t, in.IsTouchingNote())
	touching = true
	assert.True(t, in.IsTouchingNote())

	assert.False(t, mechanism.NewIntake(nil, nil).IsTouchingNote())
}
