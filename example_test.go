package robocoord_test

import (
	"fmt"
	"log"

	"github.com/mechadv/robocoord"
	"github.com/mechadv/robocoord/pkg/config"
	"github.com/mechadv/robocoord/pkg/domain"
)

// ExampleNewSim drives the superstructure to AMP and back on simulated
// mechanisms.
func ExampleNewSim() {
	sim, err := robocoord.NewSim(config.Default())
	if err != nil {
		log.Fatal(err)
	}
	sim.Mode.SetEnabled(true)

	// The hold keeps AMP desired until it is released.
	hold := sim.Superstructure().Hold(domain.SuperstructureAmp)
	for !sim.Tick().Superstructure.AtGoal {
	}
	fmt.Println(sim.Superstructure().CurrentGoal(), sim.Snapshot().Superstructure.Arm)

	hold.Release()
	fmt.Println(sim.Tick().Superstructure.CurrentGoal)

	// Output:
	// AMP AMP
	// STOW
}

// ExampleRobot_Rollers shows the intake reversing once a note is staged.
func ExampleRobot_Rollers() {
	sim, err := robocoord.NewSim(config.Default())
	if err != nil {
		log.Fatal(err)
	}
	sim.Mode.SetEnabled(true)

	hold := sim.Rollers().Hold(domain.RollersFloorIntake)
	defer hold.Release()

	snap := sim.Tick()
	fmt.Println(snap.Rollers.GamepieceState, snap.Rollers.Intake)

	sim.Sensors.Set(domain.SensorInputs{ShooterStaged: true})
	snap = sim.Tick()
	fmt.Println(snap.Rollers.GamepieceState, snap.Rollers.Intake)

	// Output:
	// NONE FLOOR_INTAKING
	// SHOOTER_STAGED EJECTING
}
