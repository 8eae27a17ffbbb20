// Package http exposes the coordinators to operators and dashboards: snapshot
// reads, goal holds, a server-sent event stream and optional Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/mechadv/robocoord/internal/logging"
	"github.com/mechadv/robocoord/pkg/domain"
)

// SnapshotSource returns the outputs of the last control cycle.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

// History lists recent snapshots, oldest first.
type History interface {
	List() []domain.Snapshot
}

// Rollers is the subset of the rollers coordinator the API drives.
type Rollers interface {
	Hold(goal domain.RollersGoal) *domain.Hold[domain.RollersGoal]
	Shuffle() *domain.Hold[domain.RollersGoal]
}

// Superstructure is the subset of the superstructure coordinator the API drives.
type Superstructure interface {
	Hold(goal domain.SuperstructureGoal) *domain.Hold[domain.SuperstructureGoal]
	HoldWithConstraints(goal domain.SuperstructureGoal, pc domain.ProfileConstraints) *domain.Hold[domain.SuperstructureGoal]
	AimWithCompensation(degrees float64) *domain.Hold[domain.SuperstructureGoal]
}

// Server serves the operator API. Holds taken over HTTP are owned by the
// server: a new PUT supersedes the previous one and DELETE releases it.
type Server struct {
	Snapshots      SnapshotSource
	Rollers        Rollers
	Superstructure Superstructure
	Streams        *StreamManager
	// History backs GET /history. Without it the route answers 404.
	History History
	Logger  *slog.Logger
	Version string

	mu                 sync.Mutex
	rollersHold        *domain.Hold[domain.RollersGoal]
	superstructureHold *domain.Hold[domain.SuperstructureGoal]
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithStreams shares a StreamManager, typically one the runner publishes to.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithHistory serves recent snapshots at GET /history.
func WithHistory(h History) Option {
	return func(s *Server) {
		s.History = h
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewServer creates a server for the given coordinators.
func NewServer(snaps SnapshotSource, rollers Rollers, sup Superstructure, opts ...Option) *Server {
	s := &Server{
		Snapshots:      snaps,
		Rollers:        rollers,
		Superstructure: sup,
		Logger:         logging.NewNop(),
		Version:        "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}
	return s
}

// Routes builds the router. metrics, when non-nil, is mounted at /metrics.
func (s *Server) Routes(metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/state", s.GetState)
	r.Get("/goals", s.GetGoals)
	r.Get("/history", s.GetHistory)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/rollers", func(r chi.Router) {
		r.Put("/goal", s.PutRollersGoal)
		r.Delete("/goal", s.DeleteRollersGoal)
		r.Post("/shuffle", s.PostShuffle)
	})
	r.Route("/superstructure", func(r chi.Router) {
		r.Put("/goal", s.PutSuperstructureGoal)
		r.Delete("/goal", s.DeleteSuperstructureGoal)
	})

	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	return enableCORS(r)
}

// ReleaseAll drops every hold taken over HTTP.
func (s *Server) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollersHold.Release()
	s.rollersHold = nil
	s.superstructureHold.Release()
	s.superstructureHold = nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GoalRequest is the body of PUT /rollers/goal and PUT /superstructure/goal.
type GoalRequest struct {
	Goal string `json:"goal"`
	// Constraints limit the arm profile for the lifetime of the hold.
	Constraints *domain.ProfileConstraints `json:"constraints,omitempty"`
	// Compensation offsets the AIM setpoint, in degrees.
	Compensation *float64 `json:"compensation,omitempty"`
}

// HoldResponse reports the goal now held by the server.
type HoldResponse struct {
	Coordinator string `json:"coordinator"`
	Goal        string `json:"goal"`
	Held        bool   `json:"held"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "robocoord",
		"version": s.Version,
	})
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Snapshots.Snapshot())
}

// GetHistory handles GET /history. An optional ?last=N keeps the newest N.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		s.writeError(w, http.StatusNotFound, errors.New("history is not recorded"))
		return
	}
	snaps := s.History.List()
	if v := r.URL.Query().Get("last"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid last %q", v))
			return
		}
		if n < len(snaps) {
			snaps = snaps[len(snaps)-n:]
		}
	}
	s.writeJSON(w, http.StatusOK, snaps)
}

// GetGoals handles GET /goals.
func (s *Server) GetGoals(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		domain.CoordinatorRollers:        domain.AllRollersGoals(),
		domain.CoordinatorSuperstructure: domain.AllSuperstructureGoals(),
	})
}

// PutRollersGoal handles PUT /rollers/goal.
func (s *Server) PutRollersGoal(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGoal(w, r)
	if !ok {
		return
	}
	goal, err := domain.ParseRollersGoal(req.Goal)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	h := s.Rollers.Hold(goal)
	s.mu.Lock()
	s.rollersHold = h
	s.mu.Unlock()

	s.Logger.Info("rollers hold", "goal", goal, "remote", r.RemoteAddr)
	s.writeJSON(w, http.StatusOK, HoldResponse{Coordinator: domain.CoordinatorRollers, Goal: goal.String(), Held: true})
}

// DeleteRollersGoal handles DELETE /rollers/goal.
func (s *Server) DeleteRollersGoal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.rollersHold.Release()
	s.rollersHold = nil
	s.mu.Unlock()

	s.Logger.Info("rollers release", "remote", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}

// PostShuffle handles POST /rollers/shuffle.
func (s *Server) PostShuffle(w http.ResponseWriter, r *http.Request) {
	h := s.Rollers.Shuffle()
	s.mu.Lock()
	s.rollersHold = h
	s.mu.Unlock()

	s.writeJSON(w, http.StatusAccepted, HoldResponse{Coordinator: domain.CoordinatorRollers, Goal: h.Goal().String(), Held: true})
}

// PutSuperstructureGoal handles PUT /superstructure/goal.
func (s *Server) PutSuperstructureGoal(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGoal(w, r)
	if !ok {
		return
	}
	goal, err := domain.ParseSuperstructureGoal(req.Goal)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var h *domain.Hold[domain.SuperstructureGoal]
	switch {
	case req.Compensation != nil:
		if goal != domain.SuperstructureAim {
			s.writeError(w, http.StatusBadRequest, errors.New("compensation only applies to AIM"))
			return
		}
		h = s.Superstructure.AimWithCompensation(*req.Compensation)
	case req.Constraints != nil:
		if req.Constraints.MaxVelocity <= 0 || req.Constraints.MaxAcceleration <= 0 {
			s.writeError(w, http.StatusBadRequest, errors.New("constraints must be positive"))
			return
		}
		h = s.Superstructure.HoldWithConstraints(goal, *req.Constraints)
	default:
		h = s.Superstructure.Hold(goal)
	}

	s.mu.Lock()
	s.superstructureHold = h
	s.mu.Unlock()

	s.Logger.Info("superstructure hold", "goal", goal, "remote", r.RemoteAddr)
	s.writeJSON(w, http.StatusOK, HoldResponse{Coordinator: domain.CoordinatorSuperstructure, Goal: goal.String(), Held: true})
}

// DeleteSuperstructureGoal handles DELETE /superstructure/goal.
func (s *Server) DeleteSuperstructureGoal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.superstructureHold.Release()
	s.superstructureHold = nil
	s.mu.Unlock()

	s.Logger.Info("superstructure release", "remote", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles GET /events (SSE). Each event carries one snapshot.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) decodeGoal(w http.ResponseWriter, r *http.Request) (GoalRequest, bool) {
	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return req, false
	}
	return req, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.Logger.Warn("request rejected", "status", status, "error", err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// StreamManager fans snapshots out to SSE clients. It implements
// ports.Publisher so the runner can feed it.
type StreamManager struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[chan string]struct{}
}

// NewStreamManager creates an empty stream manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		logger:      logger,
		subscribers: make(map[chan string]struct{}),
	}
}

// Subscribe registers a client. The returned func unregisters it.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of connected clients.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends msg to every client, dropping it for clients whose buffer
// is full.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			sm.logger.Debug("SSE client buffer full, dropping message")
		}
	}
}

// Publish implements ports.Publisher.
func (sm *StreamManager) Publish(_ context.Context, snap domain.Snapshot) error {
	if sm.Subscribers() == 0 {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	sm.Broadcast(string(data))
	return nil
}
