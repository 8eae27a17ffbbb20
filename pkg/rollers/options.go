package rollers

import (
	"log/slog"
	"time"

	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/ports"
	"github.com/mechadv/robocoord/pkg/timing"
)

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock used by the coordinator's timers.
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

// WithIndicators routes the has-note and intaking flags to driver feedback.
func WithIndicators(ind ports.Indicators) Option {
	return func(c *Coordinator) {
		c.indicators = ind
	}
}

// WithJackhammerHalfPeriod sets how long each jackhammer phase lasts.
func WithJackhammerHalfPeriod(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.jackhammerHalfPeriod = d
		}
	}
}

// WithStationDebounce sets how long a staged note must persist before station
// intaking stops.
func WithStationDebounce(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.stationDebounce = d
		}
	}
}
