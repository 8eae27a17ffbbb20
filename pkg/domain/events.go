package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventGoalChange      EventType = "goal_change"
	EventGamepieceChange EventType = "gamepiece_change"
	EventSafetyOverride  EventType = "safety_override"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Type        EventType     `json:"type"`
	Coordinator string        `json:"coordinator"`
	Cycle       uint64        `json:"cycle"`
	At          time.Duration `json:"at"`
}

// GoalEvent reports a change of a coordinator's current goal. From and To are
// goal names so both coordinators share one event shape.
type GoalEvent struct {
	EventBase
	From    string `json:"from"`
	To      string `json:"to"`
	Desired string `json:"desired"`
}

// GamepieceEvent reports a transition of the derived gamepiece state.
type GamepieceEvent struct {
	EventBase
	From GamepieceState `json:"from"`
	To   GamepieceState `json:"to"`
}

// LifecycleHooks defines callbacks for coordinator observability. Hooks run
// synchronously inside the control cycle and must not block.
type LifecycleHooks struct {
	OnGoalChange      func(*GoalEvent)
	OnGamepieceChange func(*GamepieceEvent)
	OnSafetyOverride  func(*GoalEvent)
}

// MergeHooks fans each callback out to every non-nil hook in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range hooks {
		h := h
		if h.OnGoalChange != nil {
			prev := merged.OnGoalChange
			merged.OnGoalChange = func(e *GoalEvent) {
				if prev != nil {
					prev(e)
				}
				h.OnGoalChange(e)
			}
		}
		if h.OnGamepieceChange != nil {
			prev := merged.OnGamepieceChange
			merged.OnGamepieceChange = func(e *GamepieceEvent) {
				if prev != nil {
					prev(e)
				}
				h.OnGamepieceChange(e)
			}
		}
		if h.OnSafetyOverride != nil {
			prev := merged.OnSafetyOverride
			merged.OnSafetyOverride = func(e *GoalEvent) {
				if prev != nil {
					prev(e)
				}
				h.OnSafetyOverride(e)
			}
		}
	}
	return merged
}
