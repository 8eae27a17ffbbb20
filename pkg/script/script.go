// Package script replays timed operator actions against a robot: goal holds,
// sensor readings and match mode changes, with optional expectations on the
// resulting snapshots.
package script

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mechadv/robocoord/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Keywords accepted in place of a goal name.
const (
	Release = "release"
	Shuffle = "shuffle"
)

// ErrInvalidScript wraps every validation failure.
var ErrInvalidScript = errors.New("invalid script")

// Script is a named list of steps ordered by time.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step happens at a point in simulated time. Every field is optional.
type Step struct {
	At   time.Duration `yaml:"at"`
	Note string        `yaml:"note,omitempty"`

	// Rollers is a goal name, "release" or "shuffle".
	Rollers string `yaml:"rollers,omitempty"`
	// Superstructure is a goal name or "release".
	Superstructure string `yaml:"superstructure,omitempty"`

	Sensors *SensorStep  `yaml:"sensors,omitempty"`
	Mode    *ModeStep    `yaml:"mode,omitempty"`
	Expect  *Expectation `yaml:"expect,omitempty"`
	Stop    bool         `yaml:"stop,omitempty"`
}

// SensorStep changes sensor readings. Unset fields keep their value.
type SensorStep struct {
	ShooterStaged  *bool `yaml:"shooter_staged,omitempty"`
	BackpackStaged *bool `yaml:"backpack_staged,omitempty"`
	IntakeTouching *bool `yaml:"intake_touching,omitempty"`
}

// ModeStep changes the match mode. Unset fields keep their value.
type ModeStep struct {
	Enabled    *bool `yaml:"enabled,omitempty"`
	Autonomous *bool `yaml:"autonomous,omitempty"`
}

// Expectation is checked against the snapshot of the last finished cycle.
type Expectation struct {
	RollersGoal         *domain.RollersGoal        `yaml:"rollers_goal,omitempty"`
	GamepieceState      *domain.GamepieceState     `yaml:"gamepiece_state,omitempty"`
	SuperstructureGoal  *domain.SuperstructureGoal `yaml:"superstructure_goal,omitempty"`
	SafetyOverride      *bool                      `yaml:"safety_override,omitempty"`
	SuperstructureReady *bool                      `yaml:"at_goal,omitempty"`
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks step order and goal names.
func (s *Script) Validate() error {
	var errs []error
	var last time.Duration
	for i, step := range s.Steps {
		if step.At < 0 {
			errs = append(errs, fmt.Errorf("step %d: negative time %s", i, step.At))
		}
		if step.At < last {
			errs = append(errs, fmt.Errorf("step %d: at %s is before the previous step (%s)", i, step.At, last))
		}
		last = step.At

		if r := step.Rollers; r != "" && !isKeyword(r, Release, Shuffle) {
			if _, err := domain.ParseRollersGoal(r); err != nil {
				errs = append(errs, fmt.Errorf("step %d: %w", i, err))
			}
		}
		if g := step.Superstructure; g != "" && !isKeyword(g, Release) {
			if _, err := domain.ParseSuperstructureGoal(g); err != nil {
				errs = append(errs, fmt.Errorf("step %d: %w", i, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScript, errors.Join(errs...))
	}
	return nil
}

// Duration returns the time of the last step.
func (s *Script) Duration() time.Duration {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].At
}

func isKeyword(v string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.EqualFold(strings.TrimSpace(v), k) {
			return true
		}
	}
	return false
}
