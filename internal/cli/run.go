package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mechadv/robocoord"
	"github.com/mechadv/robocoord/internal/presentation/tui"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/observability"
	"github.com/mechadv/robocoord/pkg/runner"
	"github.com/mechadv/robocoord/pkg/script"
)

// ErrScriptFailed is returned when a script expectation does not hold.
var ErrScriptFailed = errors.New("script failed")

// DefaultRunDuration bounds a run without a script or explicit duration.
const DefaultRunDuration = 5 * time.Second

// RunOptions configures the run command.
type RunOptions struct {
	Options

	// Script is an optional scenario file.
	Script string
	// Duration caps the simulated time. Zero means the script length, or
	// DefaultRunDuration without a script.
	Duration time.Duration
	// RealTime paces cycles at the configured period instead of running them
	// back to back.
	RealTime bool
	// Quiet suppresses status lines.
	Quiet bool
	// Report renders the final snapshot as markdown.
	Report bool
}

// Run drives a simulated robot, optionally following a script, and prints a
// status line whenever the observable state changes.
func Run(ctx context.Context, opts RunOptions) error {
	cfg, err := LoadConfig(opts.Options)
	if err != nil {
		return err
	}
	logger, err := createLogger(opts.Options, cfg)
	if err != nil {
		return err
	}

	var sc *script.Script
	if opts.Script != "" {
		if sc, err = script.Load(opts.Script); err != nil {
			return err
		}
	}

	sim, err := robocoord.NewSim(cfg,
		robocoord.WithLogger(logger),
		robocoord.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
	if err != nil {
		return err
	}

	duration := opts.Duration
	if duration <= 0 {
		duration = DefaultRunDuration
		if sc != nil {
			duration = sc.Duration()
		}
	}
	// One extra cycle so steps at exactly duration are applied.
	cycles := int(duration/cfg.Period) + 1

	out := opts.stdout()
	status := tui.NewOutput(out)
	var last domain.Snapshot
	ropts := []runner.Option{
		runner.WithPeriod(cfg.Period),
		runner.WithLogger(logger),
		runner.WithObserver(func(snap domain.Snapshot, _ time.Duration) {
			if !opts.Quiet && (snap.Cycle == 1 || changed(last, snap)) {
				fmt.Fprintln(out, tui.StatusLine(status, snap))
			}
			last = snap
		}),
	}

	var player *script.Player
	if sc != nil {
		player = script.NewPlayer(sc, script.Target{
			Rollers:        sim.Rollers(),
			Superstructure: sim.Superstructure(),
			Sensors:        sim.Sensors,
			Mode:           sim.Mode,
		}, logger)
		defer player.ReleaseAll()
		ropts = append(ropts, runner.WithBeforeCycle(scriptHook(sim, player)))
		logger.Info("script loaded", "name", sc.Name, "steps", len(sc.Steps), "duration", sc.Duration())
	} else {
		sim.Mode.SetEnabled(true)
	}

	r := runner.NewRunner(sim, ropts...)
	if opts.RealTime {
		rctx, cancel := context.WithTimeout(ctx, duration+cfg.Period)
		defer cancel()
		err = r.Run(rctx)
	} else {
		err = r.RunCycles(ctx, cycles)
	}
	if errors.Is(err, script.ErrExpectation) {
		return fmt.Errorf("%w: %w", ErrScriptFailed, err)
	}
	if err != nil && !isInterrupted(err) {
		return err
	}

	if player != nil && !player.Done() {
		logger.Warn("script did not finish", "applied_until", sim.Clock.Now())
	}
	printSystemMessage(out, "%d cycles, %s simulated", r.Cycles(), sim.Clock.Now())

	if opts.Report {
		render, err := tui.NewRenderer(out)
		if err != nil {
			return err
		}
		md, err := render(tui.SnapshotMarkdown(sim.Snapshot()))
		if err != nil {
			return err
		}
		fmt.Fprint(out, md)
	}
	return nil
}

// scriptHook applies due script steps before each cycle and stops the runner
// when the script asks for it.
func scriptHook(sim *robocoord.Sim, player *script.Player) runner.CycleHook {
	return func(_ context.Context, _ uint64) error {
		if err := player.Advance(sim.Clock.Now(), sim.Snapshot()); err != nil {
			return err
		}
		if player.Stopped() {
			return runner.ErrStop
		}
		return nil
	}
}

// changed compares two snapshots without their counters and ages.
func changed(prev, next domain.Snapshot) bool {
	prev.Cycle, next.Cycle = 0, 0
	prev.Time, next.Time = 0, 0
	prev.Rollers.Cycle, next.Rollers.Cycle = 0, 0
	prev.Rollers.StateAge, next.Rollers.StateAge = 0, 0
	prev.Superstructure.Cycle, next.Superstructure.Cycle = 0, 0
	prev.Superstructure.GoalAge, next.Superstructure.GoalAge = 0, 0
	return prev != next
}
