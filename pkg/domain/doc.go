/*
Package domain contains the core vocabulary shared by the robot coordinators.

It defines the goal enumerations each coordinator dispatches on, the sub-goals
handed to individual mechanisms, the derived game-piece state, and the observable
snapshots published once per control cycle. This package is kept pure and free of
I/O, following the same hexagonal split as the rest of the module.

# Key Entities

  - RollersGoal / SuperstructureGoal: operator intents arbitrated by a coordinator.
  - Mechanism goals (ArmGoal, ClimberGoal, IntakeGoal, ...): sub-goals for leaf mechanisms.
  - GamepieceState: where the note currently sits, derived from two staging sensors.
  - Slot and Hold: the scoped "hold a goal until released" primitive.
  - Snapshot: the read-only view refreshed every cycle.
*/
package domain
