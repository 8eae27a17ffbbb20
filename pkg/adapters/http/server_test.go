package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mechadv/robocoord"
	"github.com/mechadv/robocoord/internal/testutils"
	api "github.com/mechadv/robocoord/pkg/adapters/http"
	"github.com/mechadv/robocoord/pkg/adapters/memory"
	"github.com/mechadv/robocoord/pkg/domain"
	"github.com/mechadv/robocoord/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Publisher = (*api.StreamManager)(nil)

type fixture struct {
	sim     *robocoord.Sim
	server  *api.Server
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sim := testutils.NewSim(t)

	server := api.NewServer(sim, sim.Rollers(), sim.Superstructure(), api.WithVersion("1.2.3"))
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("robocoord_cycles_total 0\n"))
	})
	return &fixture{sim: sim, server: server, handler: server.Routes(metrics)}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(http.MethodGet, "/info", "")
	assert.JSONEq(t, `{"app":"robocoord","version":"1.2.3"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetGoals(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/goals", "")
	require.Equal(t, http.StatusOK, w.Code)

	var goals map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &goals))
	assert.Len(t, goals["rollers"], len(domain.AllRollersGoals()))
	assert.Contains(t, goals["superstructure"], "PREPARE_PREPARE_TRAP_CLIMB")
}

func TestRollersGoal_HoldAndRelease(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/rollers/goal", `{"goal":"floor-intake"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"coordinator":"rollers","goal":"FLOOR_INTAKE","held":true}`, w.Body.String())

	f.sim.Tick()
	w = f.do(http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, domain.RollersFloorIntake, snap.Rollers.Goal)
	assert.Equal(t, domain.IntakeFloorIntaking, snap.Rollers.Intake)

	w = f.do(http.MethodDelete, "/rollers/goal", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	f.sim.Tick()
	assert.Equal(t, domain.RollersIdle, f.sim.Rollers().Goal())
}

func TestRollersGoal_BadRequests(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/rollers/goal", `{"goal":"WARP"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown goal")

	w = f.do(http.MethodPut, "/rollers/goal", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestShuffle(t *testing.T) {
	f := newFixture(t)
	f.sim.Sensors.Set(domain.SensorInputs{ShooterStaged: true})
	f.sim.Tick()

	w := f.do(http.MethodPost, "/rollers/shuffle", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "SHUFFLE_BACKPACK")
}

func TestSuperstructureGoal_Constraints(t *testing.T) {
	f := newFixture(t)
	max := f.sim.Arm.Constraints()

	w := f.do(http.MethodPut, "/superstructure/goal",
		`{"goal":"PREPARE_CLIMB","constraints":{"max_velocity":90,"max_acceleration":180}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ProfileConstraints{MaxVelocity: 90, MaxAcceleration: 180}, f.sim.Arm.Constraints())

	f.sim.Tick()
	assert.Equal(t, domain.SuperstructurePrepareClimb, f.sim.Superstructure().CurrentGoal())

	w = f.do(http.MethodDelete, "/superstructure/goal", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, max, f.sim.Arm.Constraints())
}

func TestSuperstructureGoal_Compensation(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/superstructure/goal", `{"goal":"AMP","compensation":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/superstructure/goal", `{"goal":"AIM","compensation":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	f.sim.Tick()
	assert.Equal(t, domain.SuperstructureAim, f.sim.Superstructure().CurrentGoal())

	w = f.do(http.MethodPut, "/superstructure/goal", `{"goal":"AIM","constraints":{"max_velocity":0,"max_acceleration":1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReleaseAll(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodPut, "/rollers/goal", `{"goal":"AMP_SCORE"}`)
	f.do(http.MethodPut, "/superstructure/goal", `{"goal":"AMP"}`)

	f.server.ReleaseAll()
	f.sim.Tick()
	assert.Equal(t, domain.RollersIdle, f.sim.Rollers().Goal())
	assert.Equal(t, domain.SuperstructureStow, f.sim.Superstructure().CurrentGoal())
}

func TestGetHistory(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/history", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	store := memory.NewStore(0)
	handler := api.NewServer(f.sim, f.sim.Rollers(), f.sim.Superstructure(), api.WithHistory(store)).Routes(nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Publish(context.Background(), f.sim.Tick()))
	}

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	var snaps []domain.Snapshot
	w = get("/history?last=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snaps))
	require.Len(t, snaps, 2)
	assert.Equal(t, uint64(2), snaps[0].Cycle)
	assert.Equal(t, uint64(3), snaps[1].Cycle)

	assert.Equal(t, http.StatusBadRequest, get("/history?last=x").Code)
	assert.Equal(t, http.StatusNotFound, get("/metrics").Code, "no metrics handler mounted")
}

func TestMetricsMounted(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "robocoord_cycles_total")
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.handler.ServeHTTP(w, req)
	}()

	require.Eventually(t, func() bool { return f.server.Streams.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	snap := f.sim.Tick()
	require.NoError(t, f.server.Streams.Publish(context.Background(), snap))

	// Give the handler a moment to flush before disconnecting.
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	assert.Contains(t, body, "event: ping")
	assert.Contains(t, body, `data: {"cycle":1`)
	assert.Zero(t, f.server.Streams.Subscribers())
}

func TestStreamManager_DropsForSlowClients(t *testing.T) {
	sm := api.NewStreamManager(nil)
	ch, cancel := sm.Subscribe()
	defer cancel()

	for i := 0; i < 20; i++ {
		sm.Broadcast("x")
	}
	assert.Len(t, ch, 10)
}
