package domain

import "errors"

// ErrUnknownGoal is returned when a goal or state name cannot be parsed.
var ErrUnknownGoal = errors.New("unknown goal")

// ErrMissingDependency is returned when a coordinator is built without one of
// its collaborators.
var ErrMissingDependency = errors.New("missing dependency")
