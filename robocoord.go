package robocoord

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/mechadv/robocoord/internal/logging"
	"github.com/mechadv/robocoord/pkg/config"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/ports"
	"github.com/mechadv/robocoord/pkg/rollers"
	"github.com/mechadv/robocoord/pkg/superstructure"
	"github.com/mechadv/robocoord/pkg/timing"
)

// Version is the release of the coordination library and CLI.
const Version = "0.3.0"

// Mechanisms groups every leaf mechanism on the robot.
type Mechanisms struct {
	Rollers        rollers.Mechanisms
	Superstructure superstructure.Mechanisms
}

// Robot is the high-level entry point. It owns both coordinators and runs them
// in a fixed order every cycle.
type Robot struct {
	rollers        *rollers.Coordinator
	superstructure *superstructure.Coordinator

	cfg        config.Config
	clock      timing.Clock
	hooks      domain.LifecycleHooks
	indicators ports.Indicators
	logger     *slog.Logger

	cycle    uint64
	snapshot atomic.Pointer[domain.Snapshot]
}

// Option defines a functional option for configuring the Robot.
type Option func(*Robot)

// WithConfig replaces the default tunables.
func WithConfig(cfg config.Config) Option {
	return func(r *Robot) {
		r.cfg = cfg
	}
}

// WithClock sets the clock shared by both coordinators.
func WithClock(clock timing.Clock) Option {
	return func(r *Robot) {
		r.clock = clock
	}
}

// WithLifecycleHooks registers observability hooks on both coordinators.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Robot) {
		r.hooks = hooks
	}
}

// WithIndicators sets the driver feedback outputs.
func WithIndicators(ind ports.Indicators) Option {
	return func(r *Robot) {
		r.indicators = ind
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Robot) {
		r.logger = logger
	}
}

// New wires both coordinators.
func New(mech Mechanisms, sensors ports.Sensors, mode ports.RobotMode, opts ...Option) (*Robot, error) {
	r := &Robot{
		cfg:    config.Default(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = timing.NewMonotonicClock()
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rollerOpts := []rollers.Option{
		rollers.WithClock(r.clock),
		rollers.WithLogger(r.logger),
		rollers.WithLifecycleHooks(r.hooks),
		rollers.WithJackhammerHalfPeriod(r.cfg.Rollers.JackhammerHalfPeriod),
		rollers.WithStationDebounce(r.cfg.Rollers.StationDebounce),
	}
	if r.indicators != nil {
		rollerOpts = append(rollerOpts, rollers.WithIndicators(r.indicators))
	}
	rc, err := rollers.New(mech.Rollers, sensors, mode, rollerOpts...)
	if err != nil {
		return nil, err
	}

	sc, err := superstructure.New(mech.Superstructure, mode,
		superstructure.WithClock(r.clock),
		superstructure.WithLogger(r.logger),
		superstructure.WithLifecycleHooks(r.hooks),
		superstructure.WithUntrapExtendTime(r.cfg.Superstructure.UntrapExtendTime),
		superstructure.WithMaxProfileConstraints(r.cfg.Superstructure.MaxConstraints),
	)
	if err != nil {
		return nil, err
	}

	r.rollers = rc
	r.superstructure = sc
	r.snapshot.Store(&domain.Snapshot{})
	return r, nil
}

// Rollers returns the rollers coordinator.
func (r *Robot) Rollers() *rollers.Coordinator {
	return r.rollers
}

// Superstructure returns the superstructure coordinator.
func (r *Robot) Superstructure() *superstructure.Coordinator {
	return r.superstructure
}

// Config returns the tunables the robot was built with.
func (r *Robot) Config() config.Config {
	return r.cfg
}

// Tick runs one control cycle of both coordinators and returns the combined
// snapshot. It must be called from a single goroutine.
func (r *Robot) Tick() domain.Snapshot {
	r.cycle++
	r.rollers.Tick()
	r.superstructure.Tick()

	snap := &domain.Snapshot{
		Cycle:          r.cycle,
		Time:           r.clock.Now(),
		Rollers:        r.rollers.Snapshot(),
		Superstructure: r.superstructure.Snapshot(),
	}
	r.snapshot.Store(snap)
	return *snap
}

// Snapshot returns the outputs of the last cycle. Safe from any goroutine.
func (r *Robot) Snapshot() domain.Snapshot {
	return *r.snapshot.Load()
}
