package domain

// ArmGoal selects an arm setpoint.
type ArmGoal uint8

const (
	ArmStow ArmGoal = iota
	ArmUnjamIntake
	ArmStationIntake
	ArmAim
	ArmSuperPoop
	ArmAmp
	ArmSubwoofer
	ArmPodium
	ArmResetClimb
	ArmPreparePrepareTrapClimb
	ArmPrepareClimb
	ArmClimb
	ArmUntrap
	ArmCustom
)

var armGoalNames = []string{
	"STOW",
	"UNJAM_INTAKE",
	"STATION_INTAKE",
	"AIM",
	"SUPER_POOP",
	"AMP",
	"SUBWOOFER",
	"PODIUM",
	"RESET_CLIMB",
	"PREPARE_PREPARE_TRAP_CLIMB",
	"PREPARE_CLIMB",
	"CLIMB",
	"UNTRAP",
	"CUSTOM",
}

func (g ArmGoal) String() string               { return enumString(armGoalNames, g) }
func (g ArmGoal) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *ArmGoal) UnmarshalText(b []byte) error {
	return unmarshalEnum(g, "arm goal", armGoalNames, b)
}

// ParseArmGoal converts a name into an ArmGoal.
func ParseArmGoal(s string) (ArmGoal, error) { return parseEnum[ArmGoal]("arm goal", armGoalNames, s) }

// AllArmGoals lists every arm goal in declaration order.
func AllArmGoals() []ArmGoal { return allEnum[ArmGoal](armGoalNames) }

// ClimberGoal drives the climbing winch.
type ClimberGoal uint8

const (
	// ClimberIdle retracts under low power and then rests.
	ClimberIdle ClimberGoal = iota
	// ClimberStop applies no output at all.
	ClimberStop
	ClimberExtend
	ClimberRetract
)

var climberGoalNames = []string{"IDLE", "STOP", "EXTEND", "RETRACT"}

func (g ClimberGoal) String() string               { return enumString(climberGoalNames, g) }
func (g ClimberGoal) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *ClimberGoal) UnmarshalText(b []byte) error {
	return unmarshalEnum(g, "climber goal", climberGoalNames, b)
}

// ParseClimberGoal converts a name into a ClimberGoal.
func ParseClimberGoal(s string) (ClimberGoal, error) {
	return parseEnum[ClimberGoal]("climber goal", climberGoalNames, s)
}

// BackpackActuatorGoal positions the backpack.
type BackpackActuatorGoal uint8

const (
	BackpackActuatorRetract BackpackActuatorGoal = iota
	BackpackActuatorExtend
)

var backpackActuatorGoalNames = []string{"RETRACT", "EXTEND"}

func (g BackpackActuatorGoal) String() string { return enumString(backpackActuatorGoalNames, g) }
func (g BackpackActuatorGoal) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *BackpackActuatorGoal) UnmarshalText(b []byte) error {
	return unmarshalEnum(g, "backpack actuator goal", backpackActuatorGoalNames, b)
}

// ParseBackpackActuatorGoal converts a name into a BackpackActuatorGoal.
func ParseBackpackActuatorGoal(s string) (BackpackActuatorGoal, error) {
	return parseEnum[BackpackActuatorGoal]("backpack actuator goal", backpackActuatorGoalNames, s)
}

// IntakeGoal drives the floor intake rollers.
type IntakeGoal uint8

const (
	IntakeIdling IntakeGoal = iota
	IntakeFloorIntaking
	IntakeEjecting
)

var intakeGoalNames = []string{"IDLING", "FLOOR_INTAKING", "EJECTING"}

func (g IntakeGoal) String() string               { return enumString(intakeGoalNames, g) }
func (g IntakeGoal) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *IntakeGoal) UnmarshalText(b []byte) error {
	return unmarshalEnum(g, "intake goal", intakeGoalNames, b)
}

// ParseIntakeGoal converts a name into an IntakeGoal.
func ParseIntakeGoal(s string) (IntakeGoal, error) {
	return parseEnum[IntakeGoal]("intake goal", intakeGoalNames, s)
}

// IndexerGoal drives the indexer rollers.
type IndexerGoal uint8

const (
	IndexerIdling IndexerGoal = iota
	IndexerFloorIntaking
	IndexerStationIntaking
	IndexerShooting
	IndexerEjecting
)

var indexerGoalNames = []string{"IDLING", "FLOOR_INTAKING", "STATION_INTAKING", "SHOOTING", "EJECTING"}

func (g IndexerGoal) String() string               { return enumString(indexerGoalNames, g) }
func (g IndexerGoal) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *IndexerGoal) UnmarshalText(b []byte) error {
	return unmarshalEnum(g, "indexer goal", indexerGoalNames, b)
}

// ParseIndexerGoal converts a name into an IndexerGoal.
func ParseIndexerGoal(s string) (IndexerGoal, error) {
	return parseEnum[IndexerGoal]("indexer goal", indexerGoalNames, s)
}

// FeederGoal drives the feeder rollers.
type FeederGoal uint8

const (
	FeederIdling FeederGoal = iota
	FeederFloorIntaking
	FeederShooting
	FeederEjecting
	FeederShuffling
)

var feederGoalNames = []string{"IDLING", "FLOOR_INTAKING", "SHOOTING", "EJECTING", "SHUFFLING"}

func (g FeederGoal) String() string               { return enumString(feederGoalNames, g) }
func (g FeederGoal) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *FeederGoal) UnmarshalText(b []byte) error {
	return unmarshalEnum(g, "feeder goal", feederGoalNames, b)
}

// ParseFeederGoal converts a name into a FeederGoal.
func ParseFeederGoal(s string) (FeederGoal, error) {
	return parseEnum[FeederGoal]("feeder goal", feederGoalNames, s)
}

// BackpackGoal drives the backpack rollers.
type BackpackGoal uint8

const (
	BackpackIdling BackpackGoal = iota
	BackpackAmpScoring
	BackpackEjecting
	BackpackTrapScoring
	BackpackTrapJackhammerOut
	BackpackTrapJackhammerIn
)

var backpackGoalNames = []string{
	"IDLING",
	"AMP_SCORING",
	"EJECTING",
	"TRAP_SCORING",
	"TRAP_JACKHAMMER_OUT",
	"TRAP_JACKHAMMER_IN",
}

func (g BackpackGoal) String() string               { return enumString(backpackGoalNames, g) }
func (g BackpackGoal) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *BackpackGoal) UnmarshalText(b []byte) error {
	return unmarshalEnum(g, "backpack goal", backpackGoalNames, b)
}

// ParseBackpackGoal converts a name into a BackpackGoal.
func ParseBackpackGoal(s string) (BackpackGoal, error) {
	return parseEnum[BackpackGoal]("backpack goal", backpackGoalNames, s)
}

// ProfileConstraints bound the arm's motion profile, in degrees per second and
// degrees per second squared.
type ProfileConstraints struct {
	MaxVelocity     float64 `json:"max_velocity" yaml:"max_velocity"`
	MaxAcceleration float64 `json:"max_acceleration" yaml:"max_acceleration"`
}
