package domain

// RollersGoal is an operator intent for the roller mechanisms.
type RollersGoal uint8

const (
	RollersIdle RollersGoal = iota
	RollersFloorIntake
	RollersStationIntake
	RollersEjectToFloor
	RollersUnjamUntaco
	RollersUnjamFeeder
	RollersQuickIntakeToFeed
	RollersFeedToShooter
	RollersAmpScore
	RollersTrapPrescore
	RollersTrapScore
	RollersJackhammering
	RollersShuffleBackpack
	RollersShuffleShooter
)

var rollersGoalNames = []string{
	"IDLE",
	"FLOOR_INTAKE",
	"STATION_INTAKE",
	"EJECT_TO_FLOOR",
	"UNJAM_UNTACO",
	"UNJAM_FEEDER",
	"QUICK_INTAKE_TO_FEED",
	"FEED_TO_SHOOTER",
	"AMP_SCORE",
	"TRAP_PRESCORE",
	"TRAP_SCORE",
	"JACKHAMMERING",
	"SHUFFLE_BACKPACK",
	"SHUFFLE_SHOOTER",
}

func (g RollersGoal) String() string { return enumString(rollersGoalNames, g) }

// Intaking reports whether the goal is pulling a note into the robot.
func (g RollersGoal) Intaking() bool {
	return g == RollersFloorIntake || g == RollersStationIntake
}

func (g RollersGoal) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *RollersGoal) UnmarshalText(b []byte) error {
	v, err := ParseRollersGoal(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// ParseRollersGoal converts a goal name such as "FLOOR_INTAKE" into a RollersGoal.
func ParseRollersGoal(s string) (RollersGoal, error) {
	return parseEnum[RollersGoal]("rollers goal", rollersGoalNames, s)
}

// AllRollersGoals lists every rollers goal in declaration order.
func AllRollersGoals() []RollersGoal { return allEnum[RollersGoal](rollersGoalNames) }

// SuperstructureGoal is an operator intent for the arm, climber and backpack actuator.
type SuperstructureGoal uint8

const (
	SuperstructureStow SuperstructureGoal = iota
	SuperstructureBackpackOutUnjam
	SuperstructureAim
	SuperstructureSuperPoop
	SuperstructureUnjamFeeder
	SuperstructureStationIntake
	SuperstructureAmp
	SuperstructureSubwoofer
	SuperstructurePodium
	SuperstructureResetClimb
	SuperstructurePreparePrepareTrapClimb
	SuperstructurePrepareClimb
	SuperstructurePostPrepareTrapClimb
	SuperstructureClimb
	SuperstructureTrap
	SuperstructureUntrap
	SuperstructureReset
	SuperstructureDiagnosticArm
)

var superstructureGoalNames = []string{
	"STOW",
	"BACKPACK_OUT_UNJAM",
	"AIM",
	"SUPER_POOP",
	"UNJAM_FEEDER",
	"STATION_INTAKE",
	"AMP",
	"SUBWOOFER",
	"PODIUM",
	"RESET_CLIMB",
	"PREPARE_PREPARE_TRAP_CLIMB",
	"PREPARE_CLIMB",
	"POST_PREPARE_TRAP_CLIMB",
	"CLIMB",
	"TRAP",
	"UNTRAP",
	"RESET",
	"DIAGNOSTIC_ARM",
}

func (g SuperstructureGoal) String() string { return enumString(superstructureGoalNames, g) }

// Climbing reports whether the goal belongs to the climb sequence. While a
// climbing goal is desired the climber may stay extended.
func (g SuperstructureGoal) Climbing() bool {
	switch g {
	case SuperstructureResetClimb,
		SuperstructurePreparePrepareTrapClimb,
		SuperstructurePrepareClimb,
		SuperstructurePostPrepareTrapClimb,
		SuperstructureClimb,
		SuperstructureTrap,
		SuperstructureUntrap:
		return true
	default:
		return false
	}
}

func (g SuperstructureGoal) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *SuperstructureGoal) UnmarshalText(b []byte) error {
	v, err := ParseSuperstructureGoal(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// ParseSuperstructureGoal converts a goal name such as "AMP" into a SuperstructureGoal.
func ParseSuperstructureGoal(s string) (SuperstructureGoal, error) {
	return parseEnum[SuperstructureGoal]("superstructure goal", superstructureGoalNames, s)
}

// AllSuperstructureGoals lists every superstructure goal in declaration order.
func AllSuperstructureGoals() []SuperstructureGoal {
	return allEnum[SuperstructureGoal](superstructureGoalNames)
}

// GamepieceState is where the note currently sits inside the robot.
type GamepieceState uint8

const (
	GamepieceNone GamepieceState = iota
	GamepieceShooterStaged
	GamepieceBackpackStaged
)

var gamepieceStateNames = []string{
	"NONE",
	"SHOOTER_STAGED",
	"BACKPACK_STAGED",
}

func (s GamepieceState) String() string { return enumString(gamepieceStateNames, s) }

func (s GamepieceState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *GamepieceState) UnmarshalText(b []byte) error {
	v, err := parseEnum[GamepieceState]("gamepiece state", gamepieceStateNames, string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// GamepieceFromSensors derives the state from the two staging sensors.
// The shooter sensor wins when both report a note.
func GamepieceFromSensors(in SensorInputs) GamepieceState {
	switch {
	case in.ShooterStaged:
		return GamepieceShooterStaged
	case in.BackpackStaged:
		return GamepieceBackpackStaged
	default:
		return GamepieceNone
	}
}

// SensorInputs is one cycle's worth of roller staging sensor readings.
type SensorInputs struct {
	ShooterStaged  bool `json:"shooter_staged" yaml:"shooter_staged"`
	BackpackStaged bool `json:"backpack_staged" yaml:"backpack_staged"`
}
