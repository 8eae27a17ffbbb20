package ports

import "github.com/mechadv/robocoord/pkg/domain"

// Mechanism is the common per-cycle contract of every leaf mechanism.
type Mechanism interface {
	// Periodic applies the last-set goal to the actuators.
	Periodic()
}

// Arm is the articulated shooter arm. Profile constraints and compensation may
// be changed from outside the control goroutine when a hold starts or ends.
type Arm interface {
	Mechanism
	SetGoal(goal domain.ArmGoal)
	AtGoal() bool
	// Stop cuts output for the current cycle.
	Stop()
	SetProfileConstraints(c domain.ProfileConstraints)
	// SetCurrentCompensation offsets the AIM setpoint, in degrees.
	SetCurrentCompensation(degrees float64)
	RunCharacterization(input float64)
	CharacterizationVelocity() float64
	EndCharacterization()
}

// Climber is the climbing winch.
type Climber interface {
	Mechanism
	SetGoal(goal domain.ClimberGoal)
	AtGoal() bool
	Retracted() bool
}

// BackpackActuator extends and retracts the backpack.
type BackpackActuator interface {
	Mechanism
	SetGoal(goal domain.BackpackActuatorGoal)
}

// Intake is the floor intake.
type Intake interface {
	Mechanism
	SetGoal(goal domain.IntakeGoal)
	IsTouchingNote() bool
}

// Indexer moves notes between the intake and the feeder.
type Indexer interface {
	Mechanism
	SetGoal(goal domain.IndexerGoal)
}

// Feeder stages notes at the shooter.
type Feeder interface {
	Mechanism
	SetGoal(goal domain.FeederGoal)
}

// Backpack is the backpack roller set used for amp and trap scoring.
type Backpack interface {
	Mechanism
	SetGoal(goal domain.BackpackGoal)
}
