package mechanism

import (
	"math"
	"sync"
	"time"

	"github.com/mechadv/robocoord/pkg/domain"
)

// ClimberConfig parameterizes the simulated winch. Positions are in meters of
// hook travel; zero is fully retracted.
type ClimberConfig struct {
	ExtendedPosition float64
	Speed            float64
	IdleSpeed        float64
	Tolerance        float64
	StartPosition    float64
	Period           time.Duration
}

// DefaultClimberConfig returns typical winch parameters.
func DefaultClimberConfig() ClimberConfig {
	return ClimberConfig{
		ExtendedPosition: 0.5,
		Speed:            0.5,
		IdleSpeed:        0.2,
		Tolerance:        0.01,
		Period:           20 * time.Millisecond,
	}
}

// Climber moves toward extended or retracted at a constant speed. IDLE retracts
// slowly and rests once retracted; STOP applies no output.
type Climber struct {
	cfg ClimberConfig

	mu       sync.Mutex
	goal     domain.ClimberGoal
	position float64
}

// NewClimber creates a simulated climber.
func NewClimber(cfg ClimberConfig) *Climber {
	def := DefaultClimberConfig()
	if cfg.ExtendedPosition <= 0 {
		cfg.ExtendedPosition = def.ExtendedPosition
	}
	if cfg.Speed <= 0 {
		cfg.Speed = def.Speed
	}
	if cfg.IdleSpeed <= 0 {
		cfg.IdleSpeed = def.IdleSpeed
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.Period <= 0 {
		cfg.Period = def.Period
	}
	return &Climber{cfg: cfg, position: cfg.StartPosition}
}

func (c *Climber) SetGoal(goal domain.ClimberGoal) {
	c.mu.Lock()
	c.goal = goal
	c.mu.Unlock()
}

func (c *Climber) Goal() domain.ClimberGoal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goal
}

// Position returns the hook travel in meters.
func (c *Climber) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// SetPosition teleports the climber, for simulation scripts and tests.
func (c *Climber) SetPosition(p float64) {
	c.mu.Lock()
	c.position = math.Max(0, math.Min(c.cfg.ExtendedPosition, p))
	c.mu.Unlock()
}

func (c *Climber) Retracted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position <= c.cfg.Tolerance
}

func (c *Climber) AtGoal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.goal {
	case domain.ClimberExtend:
		return math.Abs(c.cfg.ExtendedPosition-c.position) <= c.cfg.Tolerance
	case domain.ClimberRetract, domain.ClimberIdle:
		return c.position <= c.cfg.Tolerance
	default:
		return true
	}
}

func (c *Climber) Periodic() {
	c.mu.Lock()
	defer c.mu.Unlock()

	dt := c.cfg.Period.Seconds()
	switch c.goal {
	case domain.ClimberExtend:
		c.position = approach(c.position, c.cfg.ExtendedPosition, c.cfg.Speed*dt)
	case domain.ClimberRetract:
		c.position = approach(c.position, 0, c.cfg.Speed*dt)
	case domain.ClimberIdle:
		c.position = approach(c.position, 0, c.cfg.IdleSpeed*dt)
	case domain.ClimberStop:
	}
}

// BackpackActuatorConfig parameterizes the simulated backpack actuator.
// Position runs from 0 (retracted) to 1 (extended).
type BackpackActuatorConfig struct {
	Speed  float64
	Period time.Duration
}

// BackpackActuator slides the backpack between retracted and extended.
type BackpackActuator struct {
	cfg BackpackActuatorConfig

	mu       sync.Mutex
	goal     domain.BackpackActuatorGoal
	position float64
}

// NewBackpackActuator creates a simulated backpack actuator.
func NewBackpackActuator(cfg BackpackActuatorConfig) *BackpackActuator {
	if cfg.Speed <= 0 {
		cfg.Speed = 10
	}
	if cfg.Period <= 0 {
		cfg.Period = 20 * time.Millisecond
	}
	return &BackpackActuator{cfg: cfg}
}

func (b *BackpackActuator) SetGoal(goal domain.BackpackActuatorGoal) {
	b.mu.Lock()
	b.goal = goal
	b.mu.Unlock()
}

func (b *BackpackActuator) Goal() domain.BackpackActuatorGoal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.goal
}

func (b *BackpackActuator) Position() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position
}

func (b *BackpackActuator) AtGoal() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.goal == domain.BackpackActuatorExtend {
		return b.position >= 1
	}
	return b.position <= 0
}

func (b *BackpackActuator) Periodic() {
	b.mu.Lock()
	defer b.mu.Unlock()
	target := 0.0
	if b.goal == domain.BackpackActuatorExtend {
		target = 1
	}
	b.position = approach(b.position, target, b.cfg.Speed*b.cfg.Period.Seconds())
}

func approach(from, to, step float64) float64 {
	if math.Abs(to-from) <= step {
		return to
	}
	if to > from {
		return from + step
	}
	return from - step
}
