package domain

import (
	"sync"
	"sync/atomic"
)

// HoldOption configures a Hold at acquisition time.
type HoldOption func(*holdOptions)

type holdOptions struct {
	done      func() bool
	onRelease func()
}

// Until attaches a completion condition. The owning coordinator releases the
// hold on the first cycle where done reports true.
func Until(done func() bool) HoldOption {
	return func(o *holdOptions) {
		o.done = done
	}
}

// OnRelease runs fn exactly once when the hold ends, whether it was released
// explicitly, superseded by a newer hold, or cleared by the coordinator.
func OnRelease(fn func()) HoldOption {
	return func(o *holdOptions) {
		o.onRelease = fn
	}
}

// Hold is a scoped claim on a coordinator's desired goal. The goal stays desired
// until the hold is released or another hold supersedes it.
type Hold[G comparable] struct {
	goal G
	slot *Slot[G]
	opts holdOptions
	once sync.Once
}

// Goal returns the held goal.
func (h *Hold[G]) Goal() G {
	return h.goal
}

// Active reports whether this hold still owns its slot.
func (h *Hold[G]) Active() bool {
	return h.slot.cur.Load() == h
}

// Done reports whether the hold's completion condition, if any, is met.
func (h *Hold[G]) Done() bool {
	return h.opts.done != nil && h.opts.done()
}

// Release returns the slot to its default goal if this hold still owns it.
// It is idempotent and safe to defer.
func (h *Hold[G]) Release() {
	if h == nil {
		return
	}
	h.slot.cur.CompareAndSwap(h, h.slot.idle)
	h.finish()
}

func (h *Hold[G]) finish() {
	h.once.Do(func() {
		if h.opts.onRelease != nil {
			h.opts.onRelease()
		}
	})
}

// Slot stores a coordinator's desired goal. Writes are single pointer swaps, so
// holds may be taken and released from any goroutine between control cycles.
type Slot[G comparable] struct {
	idle *Hold[G]
	cur  atomic.Pointer[Hold[G]]
}

// NewSlot creates a slot that falls back to def when nothing holds it.
func NewSlot[G comparable](def G) *Slot[G] {
	s := &Slot[G]{}
	s.idle = &Hold[G]{goal: def, slot: s}
	s.cur.Store(s.idle)
	return s
}

// Default returns the goal used when no hold is active.
func (s *Slot[G]) Default() G {
	return s.idle.goal
}

// Goal returns the currently desired goal.
func (s *Slot[G]) Goal() G {
	return s.cur.Load().goal
}

// Current returns the active hold. When nothing holds the slot the returned
// hold carries the default goal and releasing it is a no-op.
func (s *Slot[G]) Current() *Hold[G] {
	return s.cur.Load()
}

// Held reports whether a caller currently holds the slot.
func (s *Slot[G]) Held() bool {
	return s.cur.Load() != s.idle
}

// Acquire makes goal the desired goal until the returned hold is released.
// A hold it supersedes is finished first.
func (s *Slot[G]) Acquire(goal G, opts ...HoldOption) *Hold[G] {
	h := &Hold[G]{goal: goal, slot: s}
	for _, opt := range opts {
		opt(&h.opts)
	}
	if prev := s.cur.Swap(h); prev != s.idle {
		prev.finish()
	}
	return h
}

// Reset drops any active hold and returns to the default goal.
func (s *Slot[G]) Reset() {
	if prev := s.cur.Swap(s.idle); prev != s.idle {
		prev.finish()
	}
}
