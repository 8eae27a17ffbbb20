package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mechadv/robocoord/pkg/config"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20*time.Millisecond, cfg.Period)
	assert.Equal(t, 75*time.Millisecond, cfg.Rollers.JackhammerHalfPeriod)
	assert.Equal(t, 100*time.Millisecond, cfg.Superstructure.UntrapExtendTime)

	arm, err := cfg.ArmConfig()
	require.NoError(t, err)
	assert.Equal(t, 110.0, arm.Setpoints[domain.ArmAmp])
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_OverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.yaml")
	data := `
period: 10ms
log_level: debug
rollers:
  station_debounce: 120ms
superstructure:
  max_constraints:
    max_velocity: 180
    max_acceleration: 360
sim:
  arm:
    setpoints:
      AMP: 100
redis:
  addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10*time.Millisecond, cfg.Period)
	assert.Equal(t, 120*time.Millisecond, cfg.Rollers.StationDebounce)
	assert.Equal(t, 75*time.Millisecond, cfg.Rollers.JackhammerHalfPeriod, "unset keys keep defaults")
	assert.Equal(t, domain.ProfileConstraints{MaxVelocity: 180, MaxAcceleration: 360}, cfg.Superstructure.MaxConstraints)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	arm, err := cfg.ArmConfig()
	require.NoError(t, err)
	assert.Equal(t, 100.0, arm.Setpoints[domain.ArmAmp])
	assert.Equal(t, 10*time.Millisecond, arm.Period)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("period: [oops"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	err := cfg.ApplyOverrides(map[string]any{
		"rollers.jackhammer_half_period":              "50ms",
		"superstructure.max_constraints.max_velocity": "90",
		"http.addr":                 ":9000",
		"sim.volts.feeder.SHOOTING": "11.5",
	})
	require.NoError(t, err)

	assert.Equal(t, 50*time.Millisecond, cfg.Rollers.JackhammerHalfPeriod)
	assert.Equal(t, 90.0, cfg.Superstructure.MaxConstraints.MaxVelocity)
	assert.Equal(t, 720.0, cfg.Superstructure.MaxConstraints.MaxAcceleration)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 11.5, cfg.Sim.Volts.Feeder["SHOOTING"])
	assert.Equal(t, 3.0, cfg.Sim.Volts.Feeder["FLOOR_INTAKING"])
}

func TestApplyOverrides_UnknownKey(t *testing.T) {
	cfg := config.Default()
	err := cfg.ApplyOverrides(map[string]any{"rollers.warp_speed": "9"})
	assert.ErrorContains(t, err, "rollers.warp_speed")
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Period = 0
	cfg.LogLevel = "loud"
	cfg.Sim.Volts.Intake["SIDEWAYS"] = 1

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "period must be positive")
	assert.ErrorContains(t, err, "invalid log level")
	assert.ErrorIs(t, err, domain.ErrUnknownGoal)
}
