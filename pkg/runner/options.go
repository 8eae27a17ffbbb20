package runner

import (
	"log/slog"
	"time"

	"github.com/mechadv/robocoord/pkg/ports"
)

// DefaultPeriod is the control cycle length used when none is configured.
const DefaultPeriod = 20 * time.Millisecond

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithPeriod sets the control cycle length.
func WithPeriod(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.Period = d
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithPublishers adds telemetry sinks called after every cycle.
func WithPublishers(pubs ...ports.Publisher) Option {
	return func(r *Runner) {
		r.Publishers = append(r.Publishers, pubs...)
	}
}

// WithPublishTimeout bounds each publish call. Zero means one period.
func WithPublishTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.PublishTimeout = d
	}
}

// WithBeforeCycle registers a hook run ahead of every cycle, for example a
// scripted operator.
func WithBeforeCycle(h CycleHook) Option {
	return func(r *Runner) {
		r.BeforeCycle = append(r.BeforeCycle, h)
	}
}

// WithObserver registers a callback receiving each finished cycle.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.Observers = append(r.Observers, o)
	}
}
