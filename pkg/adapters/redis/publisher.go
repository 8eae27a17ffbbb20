// Package redis publishes coordinator snapshots to Redis: the latest snapshot as
// JSON, a flat hash for dashboards, and a pub/sub channel for live viewers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mechadv/robocoord/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// ErrNoSnapshot is returned by Latest before anything was published.
var ErrNoSnapshot = errors.New("no snapshot published")

// DefaultPrefix namespaces every key the publisher writes.
const DefaultPrefix = "robocoord:"

// Publisher implements ports.Publisher using Redis.
type Publisher struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Publisher)

// WithTTL sets the expiration of the stored snapshot and hash, so stale
// telemetry disappears when the robot stops publishing.
func WithTTL(ttl time.Duration) Option {
	return func(p *Publisher) {
		p.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// New creates a publisher with its own client.
func New(address, password string, db int, opts ...Option) *Publisher {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a publisher from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SnapshotKey holds the latest snapshot as JSON.
func (p *Publisher) SnapshotKey() string { return p.prefix + "snapshot" }

// StateKey holds a flat hash of the headline fields.
func (p *Publisher) StateKey() string { return p.prefix + "state" }

// Channel carries every snapshot as JSON.
func (p *Publisher) Channel() string { return p.prefix + "snapshots" }

// Publish writes the snapshot in one pipeline.
func (p *Publisher) Publish(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Set(ctx, p.SnapshotKey(), data, p.ttl)
	pipe.HSet(ctx, p.StateKey(), stateFields(snap))
	if p.ttl > 0 {
		pipe.Expire(ctx, p.StateKey(), p.ttl)
	}
	pipe.Publish(ctx, p.Channel(), data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Latest reads back the stored snapshot.
func (p *Publisher) Latest(ctx context.Context) (domain.Snapshot, error) {
	val, err := p.client.Get(ctx, p.SnapshotKey()).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Snapshot{}, ErrNoSnapshot
		}
		return domain.Snapshot{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Subscribe streams published snapshots until ctx is cancelled. Messages that
// fail to decode are skipped.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan domain.Snapshot, error) {
	sub := p.client.Subscribe(ctx, p.Channel())
	// Wait for the subscription to be confirmed so no message is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan domain.Snapshot)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var snap domain.Snapshot
				if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
					continue
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}

func stateFields(snap domain.Snapshot) map[string]any {
	r, s := snap.Rollers, snap.Superstructure
	return map[string]any{
		"cycle":                  strconv.FormatUint(snap.Cycle, 10),
		"time_ms":                strconv.FormatInt(snap.Time.Milliseconds(), 10),
		"rollers_goal":           r.Goal.String(),
		"gamepiece_state":        r.GamepieceState.String(),
		"has_note":               strconv.FormatBool(r.HasNote),
		"superstructure_desired": s.DesiredGoal.String(),
		"superstructure_current": s.CurrentGoal.String(),
		"safety_override":        strconv.FormatBool(s.SafetyOverride),
		"at_goal":                strconv.FormatBool(s.AtGoal),
	}
}
