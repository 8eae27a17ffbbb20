package script

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mechadv/robocoord/internal/logging"
	"github.com/mechadv/robocoord/pkg/domain"
)

// ErrExpectation is returned when a step's expectation does not hold.
var ErrExpectation = errors.New("expectation failed")

// Rollers is the part of the rollers coordinator a script drives.
type Rollers interface {
	Hold(goal domain.RollersGoal) *domain.Hold[domain.RollersGoal]
	Shuffle() *domain.Hold[domain.RollersGoal]
}

// Superstructure is the part of the superstructure coordinator a script drives.
type Superstructure interface {
	Hold(goal domain.SuperstructureGoal) *domain.Hold[domain.SuperstructureGoal]
}

// Sensors is a settable sensor source.
type Sensors interface {
	Read() domain.SensorInputs
	Set(in domain.SensorInputs)
	SetIntakeTouching(v bool)
}

// Mode is a settable match mode source.
type Mode interface {
	SetEnabled(v bool)
	SetAutonomous(v bool)
}

// Target bundles everything a script can act on. Nil members make the
// corresponding step fields no-ops.
type Target struct {
	Rollers        Rollers
	Superstructure Superstructure
	Sensors        Sensors
	Mode           Mode
}

// Player applies a script's steps as simulated time passes. It keeps the holds
// it takes so "release" returns control to the coordinator default.
type Player struct {
	script *Script
	target Target
	logger *slog.Logger

	next           int
	stopped        bool
	rollers        *domain.Hold[domain.RollersGoal]
	superstructure *domain.Hold[domain.SuperstructureGoal]
}

// NewPlayer creates a player positioned before the first step.
func NewPlayer(s *Script, target Target, logger *slog.Logger) *Player {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Player{script: s, target: target, logger: logger}
}

// Done reports whether every step has been applied or a stop step was reached.
func (p *Player) Done() bool {
	return p.stopped || p.next >= len(p.script.Steps)
}

// Stopped reports whether a stop step was reached.
func (p *Player) Stopped() bool {
	return p.stopped
}

// Advance applies every pending step due at or before now. last is the
// snapshot of the most recent finished cycle, used for expectations.
func (p *Player) Advance(now time.Duration, last domain.Snapshot) error {
	for !p.stopped && p.next < len(p.script.Steps) {
		step := p.script.Steps[p.next]
		if step.At > now {
			return nil
		}
		p.next++
		if err := p.apply(step, last); err != nil {
			return fmt.Errorf("step at %s: %w", step.At, err)
		}
	}
	return nil
}

// ReleaseAll drops any hold the script still owns.
func (p *Player) ReleaseAll() {
	p.rollers.Release()
	p.superstructure.Release()
}

func (p *Player) apply(step Step, last domain.Snapshot) error {
	if step.Note != "" {
		p.logger.Info("script", "at", step.At, "note", step.Note)
	}

	if err := check(step.Expect, last); err != nil {
		return err
	}

	if m := step.Mode; m != nil && p.target.Mode != nil {
		if m.Enabled != nil {
			p.target.Mode.SetEnabled(*m.Enabled)
		}
		if m.Autonomous != nil {
			p.target.Mode.SetAutonomous(*m.Autonomous)
		}
	}

	if s := step.Sensors; s != nil && p.target.Sensors != nil {
		in := p.target.Sensors.Read()
		if s.ShooterStaged != nil {
			in.ShooterStaged = *s.ShooterStaged
		}
		if s.BackpackStaged != nil {
			in.BackpackStaged = *s.BackpackStaged
		}
		p.target.Sensors.Set(in)
		if s.IntakeTouching != nil {
			p.target.Sensors.SetIntakeTouching(*s.IntakeTouching)
		}
	}

	if r := strings.TrimSpace(step.Rollers); r != "" && p.target.Rollers != nil {
		switch {
		case strings.EqualFold(r, Release):
			p.rollers.Release()
			p.rollers = nil
		case strings.EqualFold(r, Shuffle):
			p.rollers = p.target.Rollers.Shuffle()
		default:
			goal, err := domain.ParseRollersGoal(r)
			if err != nil {
				return err
			}
			p.rollers = p.target.Rollers.Hold(goal)
		}
		p.logger.Debug("script rollers", "at", step.At, "action", r)
	}

	if g := strings.TrimSpace(step.Superstructure); g != "" && p.target.Superstructure != nil {
		if strings.EqualFold(g, Release) {
			p.superstructure.Release()
			p.superstructure = nil
		} else {
			goal, err := domain.ParseSuperstructureGoal(g)
			if err != nil {
				return err
			}
			p.superstructure = p.target.Superstructure.Hold(goal)
		}
		p.logger.Debug("script superstructure", "at", step.At, "action", g)
	}

	if step.Stop {
		p.stopped = true
	}
	return nil
}

func check(e *Expectation, snap domain.Snapshot) error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.RollersGoal != nil && *e.RollersGoal != snap.Rollers.Goal {
		errs = append(errs, fmt.Errorf("rollers goal: want %s, got %s", *e.RollersGoal, snap.Rollers.Goal))
	}
	if e.GamepieceState != nil && *e.GamepieceState != snap.Rollers.GamepieceState {
		errs = append(errs, fmt.Errorf("gamepiece state: want %s, got %s", *e.GamepieceState, snap.Rollers.GamepieceState))
	}
	if e.SuperstructureGoal != nil && *e.SuperstructureGoal != snap.Superstructure.CurrentGoal {
		errs = append(errs, fmt.Errorf("superstructure goal: want %s, got %s", *e.SuperstructureGoal, snap.Superstructure.CurrentGoal))
	}
	if e.SafetyOverride != nil && *e.SafetyOverride != snap.Superstructure.SafetyOverride {
		errs = append(errs, fmt.Errorf("safety override: want %t, got %t", *e.SafetyOverride, snap.Superstructure.SafetyOverride))
	}
	if e.SuperstructureReady != nil && *e.SuperstructureReady != snap.Superstructure.AtGoal {
		errs = append(errs, fmt.Errorf("at goal: want %t, got %t", *e.SuperstructureReady, snap.Superstructure.AtGoal))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrExpectation, errors.Join(errs...))
	}
	return nil
}
