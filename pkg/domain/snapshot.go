package domain

import "time"

// RollersSnapshot is the observable output of one rollers cycle.
type RollersSnapshot struct {
	Cycle          uint64         `json:"cycle"`
	Goal           RollersGoal    `json:"goal"`
	GamepieceState GamepieceState `json:"gamepiece_state"`
	// StateAge is the time since the gamepiece state last changed.
	StateAge     time.Duration `json:"state_age"`
	HasNote      bool          `json:"has_note"`
	Intaking     bool          `json:"intaking"`
	TouchingNote bool          `json:"touching_note"`
	Intake       IntakeGoal    `json:"intake"`
	Indexer      IndexerGoal   `json:"indexer"`
	Feeder       FeederGoal    `json:"feeder"`
	Backpack     BackpackGoal  `json:"backpack"`
}

// SuperstructureSnapshot is the observable output of one superstructure cycle.
type SuperstructureSnapshot struct {
	Cycle       uint64             `json:"cycle"`
	DesiredGoal SuperstructureGoal `json:"desired_goal"`
	CurrentGoal SuperstructureGoal `json:"current_goal"`
	// GoalAge is the time since CurrentGoal last changed.
	GoalAge          time.Duration        `json:"goal_age"`
	SafetyOverride   bool                 `json:"safety_override"`
	Characterizing   bool                 `json:"characterizing"`
	AtGoal           bool                 `json:"at_goal"`
	AtArmGoal        bool                 `json:"at_arm_goal"`
	Arm              ArmGoal              `json:"arm"`
	Climber          ClimberGoal          `json:"climber"`
	BackpackActuator BackpackActuatorGoal `json:"backpack_actuator"`
}

// Snapshot combines both coordinators' outputs for one control cycle.
type Snapshot struct {
	Cycle          uint64                 `json:"cycle"`
	Time           time.Duration          `json:"time"`
	Rollers        RollersSnapshot        `json:"rollers"`
	Superstructure SuperstructureSnapshot `json:"superstructure"`
}
