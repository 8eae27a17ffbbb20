/*
Package ports defines the driven ports (interfaces) the coordinators talk to.

These interfaces decouple the goal-arbitration logic from hardware drivers,
sensor layers and telemetry backends, so the same coordinators run against real
mechanisms, the simulated ones in package mechanism, or test fakes.

# Key Interfaces

  - Arm, Climber, BackpackActuator: superstructure leaf mechanisms.
  - Intake, Indexer, Feeder, Backpack: roller leaf mechanisms.
  - Sensors and RobotMode: per-cycle inputs.
  - Indicators: LED-style outputs for the driver.
  - Publisher: telemetry sink fed by the runner outside the control cycle.
*/
package ports
