// Package config loads robot tunables from YAML and applies command-line
// overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mechadv/robocoord/internal/logging"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/mechanism"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the full set of robot tunables.
type Config struct {
	// Period is the control cycle length.
	Period   time.Duration `yaml:"period"`
	LogLevel string        `yaml:"log_level"`

	Rollers        RollersConfig        `yaml:"rollers"`
	Superstructure SuperstructureConfig `yaml:"superstructure"`
	Sim            SimConfig            `yaml:"sim"`
	HTTP           HTTPConfig           `yaml:"http"`
	Redis          RedisConfig          `yaml:"redis"`
}

type RollersConfig struct {
	JackhammerHalfPeriod time.Duration `yaml:"jackhammer_half_period"`
	StationDebounce      time.Duration `yaml:"station_debounce"`
}

type SuperstructureConfig struct {
	UntrapExtendTime time.Duration             `yaml:"untrap_extend_time"`
	MaxConstraints   domain.ProfileConstraints `yaml:"max_constraints"`
}

// SimConfig parameterizes the simulated mechanisms. Maps are keyed by goal
// name.
type SimConfig struct {
	Arm              ArmSimConfig              `yaml:"arm"`
	Climber          ClimberSimConfig          `yaml:"climber"`
	BackpackActuator BackpackActuatorSimConfig `yaml:"backpack_actuator"`
	Volts            VoltsConfig               `yaml:"volts"`
}

type ArmSimConfig struct {
	Setpoints            map[string]float64 `yaml:"setpoints"`
	Tolerance            float64            `yaml:"tolerance"`
	StartAngle           float64            `yaml:"start_angle"`
	CharacterizationGain float64            `yaml:"characterization_gain"`
}

type ClimberSimConfig struct {
	ExtendedPosition float64 `yaml:"extended_position"`
	Speed            float64 `yaml:"speed"`
	IdleSpeed        float64 `yaml:"idle_speed"`
	Tolerance        float64 `yaml:"tolerance"`
}

type BackpackActuatorSimConfig struct {
	Speed float64 `yaml:"speed"`
}

type VoltsConfig struct {
	Intake   map[string]float64 `yaml:"intake"`
	Indexer  map[string]float64 `yaml:"indexer"`
	Feeder   map[string]float64 `yaml:"feeder"`
	Backpack map[string]float64 `yaml:"backpack"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// RedisConfig enables snapshot publishing when Addr is set.
type RedisConfig struct {
	Addr   string        `yaml:"addr"`
	Prefix string        `yaml:"prefix"`
	TTL    time.Duration `yaml:"ttl"`
}

// Default returns the built-in tunables.
func Default() Config {
	arm := mechanism.DefaultArmConfig()
	climber := mechanism.DefaultClimberConfig()

	setpoints := make(map[string]float64, len(arm.Setpoints))
	for goal, deg := range arm.Setpoints {
		setpoints[goal.String()] = deg
	}

	return Config{
		Period:   20 * time.Millisecond,
		LogLevel: "info",
		Rollers: RollersConfig{
			JackhammerHalfPeriod: 75 * time.Millisecond,
			StationDebounce:      60 * time.Millisecond,
		},
		Superstructure: SuperstructureConfig{
			UntrapExtendTime: 100 * time.Millisecond,
			MaxConstraints:   arm.Constraints,
		},
		Sim: SimConfig{
			Arm: ArmSimConfig{
				Setpoints:            setpoints,
				Tolerance:            arm.Tolerance,
				CharacterizationGain: arm.CharacterizationGain,
			},
			Climber: ClimberSimConfig{
				ExtendedPosition: climber.ExtendedPosition,
				Speed:            climber.Speed,
				IdleSpeed:        climber.IdleSpeed,
				Tolerance:        climber.Tolerance,
			},
			BackpackActuator: BackpackActuatorSimConfig{Speed: 10},
			Volts: VoltsConfig{
				Intake: map[string]float64{
					"FLOOR_INTAKING": 10,
					"EJECTING":       -6,
				},
				Indexer: map[string]float64{
					"FLOOR_INTAKING":   4,
					"STATION_INTAKING": -3,
					"SHOOTING":         8,
					"EJECTING":         -6,
				},
				Feeder: map[string]float64{
					"FLOOR_INTAKING": 3,
					"SHOOTING":       10,
					"EJECTING":       -6,
					"SHUFFLING":      2,
				},
				Backpack: map[string]float64{
					"AMP_SCORING":         10,
					"EJECTING":            -6,
					"TRAP_SCORING":        8,
					"TRAP_JACKHAMMER_OUT": 6,
					"TRAP_JACKHAMMER_IN":  -6,
				},
			},
		},
		HTTP:  HTTPConfig{Addr: ":8080"},
		Redis: RedisConfig{Prefix: "robocoord"},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyOverrides decodes dotted keys such as "rollers.station_debounce" into the
// config. Values may be strings, as they arrive from the command line.
func (c *Config) ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}

	tree := map[string]any{}
	for key, value := range overrides {
		parts := strings.Split(key, ".")
		node := tree
		for _, part := range parts[:len(parts)-1] {
			next, ok := node[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				node[part] = next
			}
			node = next
		}
		node[parts[len(parts)-1]] = value
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		Metadata:         &md,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(tree); err != nil {
		return fmt.Errorf("invalid override: %w", err)
	}
	if len(md.Unused) > 0 {
		return fmt.Errorf("unknown config keys: %s", strings.Join(md.Unused, ", "))
	}
	return nil
}

// Validate checks the config for values the coordinators cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Period <= 0 {
		errs = append(errs, errors.New("period must be positive"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Rollers.JackhammerHalfPeriod <= 0 {
		errs = append(errs, errors.New("rollers.jackhammer_half_period must be positive"))
	}
	if c.Rollers.StationDebounce < 0 {
		errs = append(errs, errors.New("rollers.station_debounce must not be negative"))
	}
	if c.Superstructure.UntrapExtendTime < 0 {
		errs = append(errs, errors.New("superstructure.untrap_extend_time must not be negative"))
	}
	if pc := c.Superstructure.MaxConstraints; pc.MaxVelocity <= 0 || pc.MaxAcceleration <= 0 {
		errs = append(errs, errors.New("superstructure.max_constraints must be positive"))
	}
	if _, err := c.ArmConfig(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RollerVolts(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ArmConfig converts the arm simulation settings.
func (c Config) ArmConfig() (mechanism.ArmConfig, error) {
	setpoints, err := keyByGoal(c.Sim.Arm.Setpoints, domain.ParseArmGoal)
	if err != nil {
		return mechanism.ArmConfig{}, fmt.Errorf("sim.arm.setpoints: %w", err)
	}
	return mechanism.ArmConfig{
		Setpoints:            setpoints,
		Constraints:          c.Superstructure.MaxConstraints,
		Tolerance:            c.Sim.Arm.Tolerance,
		StartAngle:           c.Sim.Arm.StartAngle,
		Period:               c.Period,
		CharacterizationGain: c.Sim.Arm.CharacterizationGain,
	}, nil
}

// ClimberConfig converts the climber simulation settings.
func (c Config) ClimberConfig() mechanism.ClimberConfig {
	return mechanism.ClimberConfig{
		ExtendedPosition: c.Sim.Climber.ExtendedPosition,
		Speed:            c.Sim.Climber.Speed,
		IdleSpeed:        c.Sim.Climber.IdleSpeed,
		Tolerance:        c.Sim.Climber.Tolerance,
		Period:           c.Period,
	}
}

// BackpackActuatorConfig converts the backpack actuator simulation settings.
func (c Config) BackpackActuatorConfig() mechanism.BackpackActuatorConfig {
	return mechanism.BackpackActuatorConfig{
		Speed:  c.Sim.BackpackActuator.Speed,
		Period: c.Period,
	}
}

// RollerVolts holds per-goal voltages for each roller set.
type RollerVolts struct {
	Intake   map[domain.IntakeGoal]float64
	Indexer  map[domain.IndexerGoal]float64
	Feeder   map[domain.FeederGoal]float64
	Backpack map[domain.BackpackGoal]float64
}

// RollerVolts converts the roller voltage tables.
func (c Config) RollerVolts() (RollerVolts, error) {
	var (
		out RollerVolts
		err error
	)
	if out.Intake, err = keyByGoal(c.Sim.Volts.Intake, domain.ParseIntakeGoal); err != nil {
		return out, fmt.Errorf("sim.volts.intake: %w", err)
	}
	if out.Indexer, err = keyByGoal(c.Sim.Volts.Indexer, domain.ParseIndexerGoal); err != nil {
		return out, fmt.Errorf("sim.volts.indexer: %w", err)
	}
	if out.Feeder, err = keyByGoal(c.Sim.Volts.Feeder, domain.ParseFeederGoal); err != nil {
		return out, fmt.Errorf("sim.volts.feeder: %w", err)
	}
	if out.Backpack, err = keyByGoal(c.Sim.Volts.Backpack, domain.ParseBackpackGoal); err != nil {
		return out, fmt.Errorf("sim.volts.backpack: %w", err)
	}
	return out, nil
}

func keyByGoal[G comparable](in map[string]float64, parse func(string) (G, error)) (map[G]float64, error) {
	out := make(map[G]float64, len(in))
	for name, v := range in {
		goal, err := parse(name)
		if err != nil {
			return nil, err
		}
		out[goal] = v
	}
	return out, nil
}
