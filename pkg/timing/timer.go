package timing

import "time"

// Timer measures time since its last reset. It starts running on creation.
// A Timer is owned by a single goroutine.
type Timer struct {
	clock Clock
	start time.Duration
}

// NewTimer creates a running timer.
func NewTimer(clock Clock) *Timer {
	return &Timer{clock: clock, start: clock.Now()}
}

// Reset sets the elapsed time back to zero.
func (t *Timer) Reset() {
	t.start = t.clock.Now()
}

// Elapsed returns the time since the last reset.
func (t *Timer) Elapsed() time.Duration {
	return t.clock.Now() - t.start
}

// HasElapsed reports whether at least d has passed since the last reset.
func (t *Timer) HasElapsed(d time.Duration) bool {
	return t.Elapsed() >= d
}

// RestartIfElapsed resets the timer when d has passed and reports whether it did.
func (t *Timer) RestartIfElapsed(d time.Duration) bool {
	if t.HasElapsed(d) {
		t.Reset()
		return true
	}
	return false
}

// EdgeTimer tracks a value and how long it has held. The timer resets on the
// update where the value changes, and only then.
type EdgeTimer[T comparable] struct {
	timer *Timer
	value T
}

// NewEdgeTimer creates an edge timer holding initial.
func NewEdgeTimer[T comparable](clock Clock, initial T) *EdgeTimer[T] {
	return &EdgeTimer[T]{timer: NewTimer(clock), value: initial}
}

// Update records v and reports whether it differs from the previous value.
func (e *EdgeTimer[T]) Update(v T) (previous T, changed bool) {
	previous = e.value
	if v == e.value {
		return previous, false
	}
	e.value = v
	e.timer.Reset()
	return previous, true
}

// Value returns the last recorded value.
func (e *EdgeTimer[T]) Value() T {
	return e.value
}

// Age returns how long the current value has held.
func (e *EdgeTimer[T]) Age() time.Duration {
	return e.timer.Elapsed()
}

// Stable reports whether the current value has held for at least d.
func (e *EdgeTimer[T]) Stable(d time.Duration) bool {
	return e.timer.HasElapsed(d)
}
