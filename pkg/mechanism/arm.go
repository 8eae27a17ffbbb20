package mechanism

import (
	"math"
	"sync"
	"time"

	"github.com/mechadv/robocoord/pkg/domain"
)

// ArmConfig parameterizes the simulated arm. Angles are in degrees.
type ArmConfig struct {
	Setpoints   map[domain.ArmGoal]float64
	Constraints domain.ProfileConstraints
	Tolerance   float64
	StartAngle  float64
	Period      time.Duration
	// CharacterizationGain converts a characterization input into degrees per second.
	CharacterizationGain float64
}

// DefaultArmConfig returns setpoints and limits for a typical shooter arm.
func DefaultArmConfig() ArmConfig {
	return ArmConfig{
		Setpoints: map[domain.ArmGoal]float64{
			domain.ArmStow:                    0,
			domain.ArmUnjamIntake:             40,
			domain.ArmStationIntake:           45,
			domain.ArmAim:                     20,
			domain.ArmSuperPoop:               50,
			domain.ArmAmp:                     110,
			domain.ArmSubwoofer:               55,
			domain.ArmPodium:                  30,
			domain.ArmResetClimb:              80,
			domain.ArmPreparePrepareTrapClimb: 95,
			domain.ArmPrepareClimb:            105,
			domain.ArmClimb:                   10,
			domain.ArmUntrap:                  60,
		},
		Constraints:          domain.ProfileConstraints{MaxVelocity: 360, MaxAcceleration: 720},
		Tolerance:            2,
		Period:               20 * time.Millisecond,
		CharacterizationGain: 10,
	}
}

// Arm follows a trapezoidal velocity profile toward the active setpoint.
type Arm struct {
	cfg ArmConfig

	mu             sync.Mutex
	goal           domain.ArmGoal
	constraints    domain.ProfileConstraints
	compensation   float64
	custom         float64
	stopped        bool
	characterizing bool
	charInput      float64
	angle          float64
	velocity       float64
}

// NewArm creates a simulated arm resting at cfg.StartAngle.
func NewArm(cfg ArmConfig) *Arm {
	def := DefaultArmConfig()
	if cfg.Setpoints == nil {
		cfg.Setpoints = def.Setpoints
	}
	if cfg.Constraints.MaxVelocity <= 0 || cfg.Constraints.MaxAcceleration <= 0 {
		cfg.Constraints = def.Constraints
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.Period <= 0 {
		cfg.Period = def.Period
	}
	if cfg.CharacterizationGain == 0 {
		cfg.CharacterizationGain = def.CharacterizationGain
	}
	return &Arm{
		cfg:         cfg,
		constraints: cfg.Constraints,
		angle:       cfg.StartAngle,
		custom:      cfg.StartAngle,
	}
}

// MaxConstraints returns the arm's default profile limits.
func (a *Arm) MaxConstraints() domain.ProfileConstraints {
	return a.cfg.Constraints
}

func (a *Arm) SetGoal(goal domain.ArmGoal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if goal == domain.ArmCustom && a.goal != domain.ArmCustom {
		a.custom = a.angle
	}
	a.goal = goal
}

func (a *Arm) Goal() domain.ArmGoal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.goal
}

func (a *Arm) Stop() {
	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()
}

func (a *Arm) SetProfileConstraints(c domain.ProfileConstraints) {
	if c.MaxVelocity <= 0 || c.MaxAcceleration <= 0 {
		return
	}
	a.mu.Lock()
	a.constraints = c
	a.mu.Unlock()
}

func (a *Arm) Constraints() domain.ProfileConstraints {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.constraints
}

func (a *Arm) SetCurrentCompensation(degrees float64) {
	a.mu.Lock()
	a.compensation = degrees
	a.mu.Unlock()
}

func (a *Arm) RunCharacterization(input float64) {
	a.mu.Lock()
	a.characterizing = true
	a.charInput = input
	a.mu.Unlock()
}

func (a *Arm) CharacterizationVelocity() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.characterizing {
		return 0
	}
	return a.velocity
}

func (a *Arm) EndCharacterization() {
	a.mu.Lock()
	a.characterizing = false
	a.charInput = 0
	a.velocity = 0
	a.mu.Unlock()
}

// Angle returns the current arm angle in degrees.
func (a *Arm) Angle() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.angle
}

// Setpoint returns the angle the arm is driving toward.
func (a *Arm) Setpoint() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setpoint()
}

func (a *Arm) setpoint() float64 {
	switch a.goal {
	case domain.ArmCustom:
		return a.custom
	case domain.ArmAim:
		return a.cfg.Setpoints[domain.ArmAim] + a.compensation
	default:
		return a.cfg.Setpoints[a.goal]
	}
}

func (a *Arm) AtGoal() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return math.Abs(a.setpoint()-a.angle) <= a.cfg.Tolerance
}

// Periodic advances the simulation by one period.
func (a *Arm) Periodic() {
	a.mu.Lock()
	defer a.mu.Unlock()

	dt := a.cfg.Period.Seconds()
	if a.stopped {
		a.stopped = false
		a.velocity = 0
		return
	}
	if a.characterizing {
		a.velocity = a.charInput * a.cfg.CharacterizationGain
		a.angle += a.velocity * dt
		return
	}

	maxV, maxA := a.constraints.MaxVelocity, a.constraints.MaxAcceleration
	err := a.setpoint() - a.angle
	if err == 0 {
		a.velocity = 0
		return
	}

	// Fastest speed from which we can still stop at the setpoint.
	target := math.Copysign(math.Min(maxV, math.Sqrt(2*maxA*math.Abs(err))), err)
	dv := math.Max(-maxA*dt, math.Min(maxA*dt, target-a.velocity))
	a.velocity += dv

	step := a.velocity * dt
	if math.Abs(step) >= math.Abs(err) && math.Signbit(step) == math.Signbit(err) {
		a.angle = a.setpoint()
		a.velocity = 0
		return
	}
	a.angle += step
}
