package domain

// Coordinator names used in events, metrics labels and telemetry keys.
const (
	CoordinatorRollers        = "rollers"
	CoordinatorSuperstructure = "superstructure"
)
