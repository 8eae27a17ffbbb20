package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mechadv/robocoord/internal/logging"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/ports"
)

// Controller runs one control cycle and reports its outputs.
type Controller interface {
	Tick() domain.Snapshot
}

// CycleHook runs before the given cycle number (1-based) starts.
type CycleHook func(ctx context.Context, cycle uint64) error

// Observer receives every finished cycle together with the wall time it took.
type Observer func(snap domain.Snapshot, took time.Duration)

// ErrStop may be returned by a CycleHook to end Run cleanly.
var ErrStop = errors.New("runner: stop requested")

// Runner drives a Controller at a fixed period.
type Runner struct {
	Controller Controller
	Period     time.Duration

	// Publishers receive every snapshot. A failing publisher is logged and
	// never stops the loop.
	Publishers     []ports.Publisher
	PublishTimeout time.Duration

	BeforeCycle []CycleHook
	Observers   []Observer

	// Logger is used for internal logging. If nil, a no-op logger is used.
	Logger *slog.Logger

	cycles        uint64
	overruns      uint64
	publishErrors uint64
}

// NewRunner creates a runner for ctrl.
func NewRunner(ctrl Controller, opts ...Option) *Runner {
	r := &Runner{
		Controller: ctrl,
		Period:     DefaultPeriod,
		Logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Cycles returns how many cycles have run.
func (r *Runner) Cycles() uint64 { return r.cycles }

// Overruns counts cycles that took longer than the period.
func (r *Runner) Overruns() uint64 { return r.overruns }

// PublishErrors counts failed publish calls.
func (r *Runner) PublishErrors() uint64 { return r.publishErrors }

// Step runs a single cycle without waiting: hooks, the controller, observers,
// then publishers.
func (r *Runner) Step(ctx context.Context) (domain.Snapshot, error) {
	next := r.cycles + 1
	for _, h := range r.BeforeCycle {
		if err := h(ctx, next); err != nil {
			return domain.Snapshot{}, err
		}
	}

	start := time.Now()
	snap := r.Controller.Tick()
	took := time.Since(start)
	r.cycles = next

	if took > r.Period {
		r.overruns++
		r.Logger.Debug("cycle overran period", "cycle", snap.Cycle, "took", took, "period", r.Period)
	}
	for _, o := range r.Observers {
		o(snap, took)
	}
	r.publish(ctx, snap)
	return snap, nil
}

// RunCycles runs n cycles back to back, as fast as possible.
func (r *Runner) RunCycles(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.Step(ctx); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Run steps the controller once per period until ctx is cancelled or a hook
// returns ErrStop. Cancellation is a clean exit.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Period)
	defer ticker.Stop()

	r.Logger.Info("control loop started", "period", r.Period)
	defer func() {
		r.Logger.Info("control loop stopped",
			"cycles", r.cycles,
			"overruns", r.overruns,
			"publish_errors", r.publishErrors,
		)
	}()

	for {
		if _, err := r.Step(ctx); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) publish(ctx context.Context, snap domain.Snapshot) {
	if len(r.Publishers) == 0 {
		return
	}
	timeout := r.PublishTimeout
	if timeout <= 0 {
		timeout = r.Period
	}

	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for _, p := range r.Publishers {
		if err := p.Publish(pctx, snap); err != nil {
			r.publishErrors++
			r.Logger.Warn("publish failed", "cycle", snap.Cycle, "error", err)
		}
	}
}
