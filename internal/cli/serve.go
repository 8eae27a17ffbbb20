package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mechadv/robocoord"
	"github.com/mechadv/robocoord/internal/presentation/tui"
	api "github.com/mechadv/robocoord/pkg/adapters/http"
	"github.com/mechadv/robocoord/pkg/adapters/memory"
	"github.com/mechadv/robocoord/pkg/adapters/redis"
	"github.com/mechadv/robocoord/pkg/config"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/observability"
	"github.com/mechadv/robocoord/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
)

const (
	shutdownTimeout = 5 * time.Second
	leaseTTL        = 3 * time.Second
	// historyWindow is how much recent state GET /history keeps.
	historyWindow = 10 * time.Second
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	Options

	// Addr overrides http.addr from the config.
	Addr string
	// RedisAddr overrides redis.addr from the config.
	RedisAddr string
	// Banner prints the startup banner.
	Banner bool
}

// stack is everything serve wires together, split out so tests can drive it
// without a listener.
type stack struct {
	sim      *robocoord.Sim
	server   *api.Server
	handler  http.Handler
	runner   *runner.Runner
	registry *prometheus.Registry
	metrics  *observability.Metrics

	redis *backend.Client
	lease *redis.Lease
}

func newStack(ctx context.Context, cfg config.Config, logger *slog.Logger, version string) (*stack, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	sim, err := robocoord.NewSim(cfg,
		robocoord.WithLogger(logger),
		robocoord.WithLifecycleHooks(domain.MergeHooks(
			metrics.Hooks(),
			observability.LoggingHooks(logger),
		)),
	)
	if err != nil {
		return nil, err
	}

	streams := api.NewStreamManager(logger)
	history := memory.NewStore(int(historyWindow / cfg.Period))
	server := api.NewServer(sim, sim.Rollers(), sim.Superstructure(),
		api.WithLogger(logger),
		api.WithStreams(streams),
		api.WithHistory(history),
		api.WithVersion(version),
	)

	s := &stack{
		sim:      sim,
		server:   server,
		handler:  server.Routes(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
		registry: reg,
		metrics:  metrics,
	}

	publishers := []runner.Option{runner.WithPublishers(history, streams)}
	if cfg.Redis.Addr != "" {
		s.redis = backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})
		prefix := redisPrefix(cfg)

		// One controller per prefix: a second instance waits here.
		lctx, cancel := context.WithTimeout(ctx, 2*leaseTTL)
		lease, err := redis.NewLocker(s.redis, prefix).Lock(lctx, "controller", leaseTTL)
		cancel()
		if err != nil {
			s.redis.Close()
			return nil, fmt.Errorf("another controller owns %s: %w", prefix, err)
		}
		s.lease = lease

		pub := redis.NewFromClient(s.redis, redis.WithPrefix(prefix), redis.WithTTL(cfg.Redis.TTL))
		publishers = append(publishers, runner.WithPublishers(pub))
		logger.Info("publishing to redis", "addr", cfg.Redis.Addr, "prefix", prefix)
	}

	s.runner = runner.NewRunner(sim, append(publishers,
		runner.WithPeriod(cfg.Period),
		runner.WithLogger(logger),
		runner.WithObserver(metrics.ObserveCycle),
	)...)
	return s, nil
}

func (s *stack) close(ctx context.Context) {
	s.server.ReleaseAll()
	if s.lease != nil {
		s.lease.Release(ctx)
	}
	if s.redis != nil {
		s.redis.Close()
	}
}

// Serve runs the simulated robot in real time behind the HTTP API until ctx is
// cancelled.
func Serve(ctx context.Context, opts ServeOptions) error {
	if opts.Addr != "" {
		opts.Sets = append(opts.Sets, "http.addr="+opts.Addr)
	}
	if opts.RedisAddr != "" {
		opts.Sets = append(opts.Sets, "redis.addr="+opts.RedisAddr)
	}
	cfg, err := LoadConfig(opts.Options)
	if err != nil {
		return err
	}
	logger, err := createLogger(opts.Options, cfg)
	if err != nil {
		return err
	}
	if opts.Banner {
		tui.PrintBanner(opts.stdout(), robocoord.Version)
	}

	s, err := newStack(ctx, cfg, logger, robocoord.Version)
	if err != nil {
		return err
	}
	defer s.close(context.Background())

	// The robot is enabled as soon as it is served; clients drive the goals.
	s.sim.Mode.SetEnabled(true)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errs := make(chan error, 3)

	if s.lease != nil {
		go func() {
			if err := s.lease.KeepAlive(ctx); err != nil {
				errs <- fmt.Errorf("controller lease: %w", err)
			}
		}()
	}
	ran := make(chan struct{})
	go func() {
		defer close(ran)
		errs <- s.runner.Run(ctx)
	}()

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: s.handler}
	go func() {
		printSystemMessage(opts.stdout(), "serving on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errs:
	}
	cancel()
	<-ran

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	if serr := srv.Shutdown(sctx); serr != nil {
		logger.Warn("graceful shutdown did not complete", "err", serr)
		srv.Close()
	}
	printSystemMessage(opts.stdout(), "stopped after %d cycles", s.runner.Cycles())
	return err
}
