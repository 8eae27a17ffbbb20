/*
Package robocoord coordinates a competition robot's note-handling rollers and its
superstructure (arm, climber, backpack actuator) as two goal-dispatch state
machines driven by a fixed-period control loop.

# Concept

Callers never drive mechanisms directly. They take a hold on a coordinator's
desired goal; every control cycle the coordinator resolves the goal it will
actually execute (disabled robots idle, an extended climber outside a climb is
forced back to RESET_CLIMB) and translates it into exactly one sub-goal per
mechanism.

	PUT goal ──► Hold ──► desired ──► current ──► dispatch ──► SetGoal ×N ──► Periodic ×N

The hold is scoped: releasing it, or acquiring a newer one, reverts the
coordinator to its default goal (IDLE for rollers, STOW for the
superstructure).

# Usage

	sim, err := robocoord.NewSim(config.Default())
	if err != nil {
		log.Fatal(err)
	}
	sim.Mode.SetEnabled(true)

	h := sim.Rollers().Hold(domain.RollersFloorIntake)
	for i := 0; i < 50; i++ {
		sim.Tick()
	}
	h.Release()

# Observability

Both coordinators fire domain.LifecycleHooks on goal changes, game-piece state
changes, and safety override engagement. pkg/observability turns these into
Prometheus metrics and slog records; pkg/runner publishes each cycle's
domain.Snapshot to Redis or any other ports.Publisher outside the control
cycle.
*/
package robocoord
