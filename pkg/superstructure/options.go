package superstructure

import (
	"log/slog"
	"time"

	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/timing"
)

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock used by the goal timer.
func WithClock(clock timing.Clock) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Coordinator) {
		c.hooks = hooks
	}
}

// WithUntrapExtendTime sets how long UNTRAP keeps the backpack extended.
func WithUntrapExtendTime(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.untrapExtendTime = d
		}
	}
}

// WithMaxProfileConstraints sets the arm limits restored when a constrained
// hold ends.
func WithMaxProfileConstraints(pc domain.ProfileConstraints) Option {
	return func(c *Coordinator) {
		if pc.MaxVelocity > 0 && pc.MaxAcceleration > 0 {
			c.maxConstraints = pc
		}
	}
}
