package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mechadv/robocoord/internal/presentation/tui"
	"github.com/mechadv/robocoord/pkg/adapters/redis"
	"github.com/mechadv/robocoord/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// WatchOptions configures the watch command.
type WatchOptions struct {
	Options

	// RedisAddr overrides redis.addr from the config.
	RedisAddr string
	// Changes prints only snapshots that differ from the previous one.
	Changes bool
}

// Watch prints a status line for every snapshot a serving controller publishes
// to Redis, until ctx is cancelled.
func Watch(ctx context.Context, opts WatchOptions) error {
	if opts.RedisAddr != "" {
		opts.Sets = append(opts.Sets, "redis.addr="+opts.RedisAddr)
	}
	cfg, err := LoadConfig(opts.Options)
	if err != nil {
		return err
	}
	if cfg.Redis.Addr == "" {
		return errors.New("watch needs a redis address (--redis or redis.addr)")
	}
	logger, err := createLogger(opts.Options, cfg)
	if err != nil {
		return err
	}

	client := backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})
	pub := redis.NewFromClient(client, redis.WithPrefix(redisPrefix(cfg)))
	defer pub.Close()

	out := opts.stdout()
	status := tui.NewOutput(out)

	if snap, err := pub.Latest(ctx); err == nil {
		fmt.Fprintln(out, tui.StatusLine(status, snap))
	} else if !errors.Is(err, redis.ErrNoSnapshot) {
		return err
	}

	snaps, err := pub.Subscribe(ctx)
	if err != nil {
		return err
	}
	logger.Info("watching", "addr", cfg.Redis.Addr, "channel", pub.Channel())

	var (
		lastSnap domain.Snapshot
		printed  bool
	)
	for snap := range snaps {
		if opts.Changes && printed && !changed(lastSnap, snap) {
			lastSnap = snap
			continue
		}
		fmt.Fprintln(out, tui.StatusLine(status, snap))
		lastSnap, printed = snap, true
	}
	return nil
}
