package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mechadv/robocoord/internal/logging"
	"github.com/mechadv/robocoord/internal/testutils"
	"github.com/mechadv/robocoord/pkg/adapters/redis"
	"github.com/mechadv/robocoord/pkg/config"
	"github.com/mechadv/robocoord/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reading test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestParseSets(t *testing.T) {
	got, err := ParseSets([]string{"period=10ms", " http.addr = :9000 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"period": "10ms", "http.addr": ":9000"}, got)

	_, err = ParseSets([]string{"novalue"})
	assert.ErrorContains(t, err, "expected key=value")
	_, err = ParseSets([]string{"=x"})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := testutils.WriteFile(t, "robocoord.yaml", "period: 10ms\nlog_level: warn\n")

	cfg, err := LoadConfig(Options{
		ConfigPath: path,
		LogLevel:   "debug",
		Sets:       []string{"rollers.station_debounce=80ms"},
	})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, cfg.Period)
	assert.Equal(t, "debug", cfg.LogLevel, "flag wins over the file")
	assert.Equal(t, 80*time.Millisecond, cfg.Rollers.StationDebounce)

	_, err = LoadConfig(Options{Sets: []string{"period=0s"}})
	assert.Error(t, err)
	_, err = LoadConfig(Options{Sets: []string{"nope=1"}})
	assert.ErrorContains(t, err, "unknown config keys")
}

func TestRedisPrefix(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "robocoord:", redisPrefix(cfg))
	cfg.Redis.Prefix = "team:"
	assert.Equal(t, "team:", redisPrefix(cfg))
}

const passingScript = `
name: amp
steps:
  - at: 0s
    mode: {enabled: true}
    superstructure: AMP
  - at: 2s
    expect: {superstructure_goal: AMP, at_goal: true}
    stop: true
`

func TestRun_Script(t *testing.T) {
	var out, errOut bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Options: Options{Out: &out, Err: &errOut},
		Script:  testutils.WriteFile(t, "amp.yaml", passingScript),
		Report:  true,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "#1 0.000s")
	assert.Contains(t, text, "super=AMP ")
	assert.Contains(t, text, "at-goal")
	assert.Contains(t, text, ">>> 100 cycles, 2s simulated")
	assert.Contains(t, text, "Cycle 100")
	assert.Contains(t, errOut.String(), "script loaded")
}

func TestRun_FailingScript(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Options: Options{Out: &out, Err: &bytes.Buffer{}},
		Script: testutils.WriteFile(t, "bad.yaml", `
steps:
  - at: 100ms
    expect: {rollers_goal: AMP_SCORE}
`),
	})
	assert.ErrorIs(t, err, ErrScriptFailed)
}

func TestRun_WithoutScript(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Options:  Options{Out: &out, Err: &bytes.Buffer{}},
		Duration: 200 * time.Millisecond,
		Quiet:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, ">>> 11 cycles, 220ms simulated\n", out.String())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, RunOptions{Options: Options{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}, Quiet: true})
	assert.NoError(t, err)
}

func TestChanged(t *testing.T) {
	a := domain.Snapshot{Cycle: 1, Time: time.Millisecond}
	b := domain.Snapshot{Cycle: 2, Time: 2 * time.Millisecond}
	b.Superstructure.GoalAge = time.Second
	assert.False(t, changed(a, b))

	b.Rollers.Goal = domain.RollersAmpScore
	assert.True(t, changed(a, b))
}

func TestGoals(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Goals(Options{Out: &out}))
	assert.Contains(t, out.String(), "FLOOR_INTAKE")
	assert.Contains(t, out.String(), "DIAGNOSTIC_ARM")
}

func TestStack_HTTPAndRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.Addr = mr.Addr()
	ctx := context.Background()

	s, err := newStack(ctx, cfg, logging.NewNop(), "test")
	require.NoError(t, err)
	assert.True(t, mr.Exists("robocoord:lock:controller"))

	s.sim.Mode.SetEnabled(true)
	req := httptest.NewRequest(http.MethodPut, "/superstructure/goal", strings.NewReader(`{"goal":"AMP"}`))
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	snap, err := s.runner.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SuperstructureAmp, snap.Superstructure.DesiredGoal)
	assert.True(t, mr.Exists("robocoord:snapshot"), "runner publishes to redis")
	assert.Zero(t, s.runner.PublishErrors())

	w = httptest.NewRecorder()
	s.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"desired_goal":"AMP"`)

	w = httptest.NewRecorder()
	s.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "robocoord_cycles_total 1")
	assert.Contains(t, w.Body.String(), "go_goroutines")

	// A second controller on the same prefix cannot start.
	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = newStack(short, cfg, logging.NewNop(), "test")
	assert.ErrorContains(t, err, "another controller owns robocoord:")

	s.close(ctx)
	assert.False(t, mr.Exists("robocoord:lock:controller"))
	assert.Equal(t, domain.SuperstructureStow, s.sim.Superstructure().DesiredGoal(), "holds released on close")
}

func TestWatch(t *testing.T) {
	mr := miniredis.RunT(t)
	pub := redis.NewFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	defer pub.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, pub.Publish(ctx, domain.Snapshot{Cycle: 7}))

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, WatchOptions{
			Options:   Options{Out: &out, Err: &bytes.Buffer{}},
			RedisAddr: mr.Addr(),
		})
	}()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "#7 ") }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		// Keep publishing until the subscription is live.
		_ = pub.Publish(ctx, domain.Snapshot{Cycle: 8, Superstructure: domain.SuperstructureSnapshot{SafetyOverride: true}})
		return strings.Contains(out.String(), "#8 ")
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "OVERRIDE")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_NeedsRedis(t *testing.T) {
	err := Watch(context.Background(), WatchOptions{Options: Options{Out: &bytes.Buffer{}}})
	assert.ErrorContains(t, err, "needs a redis address")
}
