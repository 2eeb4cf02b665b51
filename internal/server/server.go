// Package server exposes placement solving as an asynchronous HTTP job API.
package server

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargeplan/chargeplan/internal/config"
	errs "github.com/chargeplan/chargeplan/internal/errors"
	"github.com/chargeplan/chargeplan/internal/logging"
	"github.com/chargeplan/chargeplan/internal/pipeline"
	"github.com/chargeplan/chargeplan/internal/placement"
	"github.com/chargeplan/chargeplan/internal/placement/qubo"
	"github.com/chargeplan/chargeplan/internal/placement/scenario"
)

// Logger defines the logging interface used by the server.
// This allows us to be flexible with our logging implementation.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Placement job states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// PlacementState tracks one placement job from submission to its terminal
// state. Access goes through the server's mutex.
type PlacementState struct {
	ID          string
	Status      string
	StartTime   time.Time
	EndTime     *time.Time
	LastUpdated time.Time

	Scenario *placement.Scenario
	Outcome  *pipeline.Outcome
	Err      string

	CancelFunc context.CancelFunc
}

// Server manages placement jobs: submit a scenario, poll its status, cancel
// it. Each job runs the pipeline once in its own goroutine.
type Server struct {
	cfg    *config.Config
	logger Logger
	zlog   *zap.Logger
	solver pipeline.QUBOSolver

	placements   map[string]*PlacementState
	placementsMu sync.RWMutex
}

// NewServer creates a server that solves jobs through solv. When logger is
// the package's own *logging.Logger, the numeric components log through it
// as well.
func NewServer(cfg *config.Config, logger Logger, solv pipeline.QUBOSolver) *Server {
	zlog := zap.NewNop()
	if base, ok := logger.(*logging.Logger); ok {
		zlog = logging.NewZapLogger(base)
	}
	return &Server{
		cfg:        cfg,
		logger:     logger,
		zlog:       zlog,
		solver:     solv,
		placements: make(map[string]*PlacementState),
	}
}

// RegisterRoutes mounts the placement API.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/placements", s.handleCreate)
		r.Get("/placements/{id}", s.handleStatus)
		r.Delete("/placements/{id}", s.handleCancel)
	})
}

// placementRequest is the body of POST /api/v1/placements.
type placementRequest struct {
	// Scenario lists the sites explicitly. When absent, Grid is used.
	Scenario *placement.Scenario `json:"scenario,omitempty"`

	// Grid generates a random scenario; absent fields of an absent Grid
	// fall back to the service configuration.
	Grid *scenario.GridConfig `json:"grid,omitempty"`

	// Seed fixes grid generation. Zero draws from the clock.
	Seed int64 `json:"seed,omitempty"`

	// Weights for the objective. Absent weights are derived from the
	// candidate count.
	Weights *placement.Weights `json:"weights,omitempty"`

	// Strategy is iterative, vectorized or verify. Empty falls back to the
	// configured service default.
	Strategy string `json:"strategy,omitempty"`
}

// placementResult is the result block of a completed job.
type placementResult struct {
	Sites      []placement.Site               `json:"sites"`
	Indices    []int                          `json:"indices"`
	Violation  *placement.ConstraintViolation `json:"violation,omitempty"`
	Energy     float64                        `json:"energy"`
	SolverTime float64                        `json:"solver_time_seconds"`
	Dimension  int                            `json:"dimension"`
	Strategy   string                         `json:"strategy"`
}

// placementStatus is the body of GET /api/v1/placements/{id}.
type placementStatus struct {
	ID          string           `json:"placement_id"`
	Status      string           `json:"status"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     *time.Time       `json:"end_time,omitempty"`
	LastUpdated time.Time        `json:"last_updated"`
	Error       string           `json:"error,omitempty"`
	Result      *placementResult `json:"result,omitempty"`
}

// handleCreate accepts a placement job and starts it.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req placementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	scn, err := s.resolveScenario(&req)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	weights := placement.DefaultWeights(len(scn.Candidates))
	if req.Weights != nil {
		weights = *req.Weights
	}

	strategyName := req.Strategy
	if strategyName == "" {
		strategyName = s.cfg.Placement.Strategy
	}
	strategy, err := qubo.ParseStrategy(strategyName)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	builder := qubo.NewBuilder(weights, s.zlog)
	if err := builder.Validate(scn); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	runner := pipeline.NewRunner(builder, s.solver, strategy, s.zlog)

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	state := &PlacementState{
		ID:          id,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
		Scenario:    scn,
		CancelFunc:  cancel,
	}

	s.placementsMu.Lock()
	s.placements[id] = state
	s.placementsMu.Unlock()

	placementsStarted.Inc()
	s.logger.Info("Placement job accepted", map[string]interface{}{
		"placement_id": id,
		"candidates":   len(scn.Candidates),
		"new_stations": scn.NewStations,
		"strategy":     string(strategy),
	})

	go s.runPlacement(ctx, runner, state)

	s.respondJSON(w, http.StatusAccepted, map[string]string{
		"placement_id": id,
		"status":       StatusPending,
	})
}

// resolveScenario picks the explicit scenario or generates one from the grid
// config, falling back to the service defaults.
func (s *Server) resolveScenario(req *placementRequest) (*placement.Scenario, error) {
	if req.Scenario != nil {
		return req.Scenario, nil
	}

	cfg := scenario.GridConfig{
		Width:         s.cfg.Placement.GridWidth,
		Height:        s.cfg.Placement.GridHeight,
		POICount:      s.cfg.Placement.POICount,
		ExistingCount: s.cfg.Placement.ExistingCount,
		NewStations:   s.cfg.Placement.NewStations,
	}
	if req.Grid != nil {
		cfg = *req.Grid
	}

	var rng *rand.Rand
	if req.Seed != 0 {
		rng = rand.New(rand.NewSource(req.Seed))
	}
	return scenario.Generate(cfg, rng)
}

// handleStatus reports the state of one placement job.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.placementsMu.RLock()
	state, exists := s.placements[id]
	if !exists {
		s.placementsMu.RUnlock()
		s.respondError(w, http.StatusNotFound, "placement not found")
		return
	}

	status := placementStatus{
		ID:          state.ID,
		Status:      state.Status,
		StartTime:   state.StartTime,
		EndTime:     state.EndTime,
		LastUpdated: state.LastUpdated,
		Error:       state.Err,
	}
	if o := state.Outcome; o != nil {
		status.Result = &placementResult{
			Sites:      o.Placement.Sites,
			Indices:    o.Placement.Indices,
			Violation:  o.Placement.Violation,
			Energy:     o.Energy,
			SolverTime: o.Runtime.Seconds(),
			Dimension:  o.Dimension,
			Strategy:   string(o.Strategy),
		}
	}
	s.placementsMu.RUnlock()

	s.respondJSON(w, http.StatusOK, status)
}

// handleCancel cancels a pending or running placement job.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.placementsMu.Lock()
	state, exists := s.placements[id]
	if !exists {
		s.placementsMu.Unlock()
		s.respondError(w, http.StatusNotFound, "placement not found")
		return
	}

	switch state.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		status := state.Status
		s.placementsMu.Unlock()
		s.respondError(w, http.StatusConflict, "cannot cancel placement with status: "+status)
		return
	}

	if state.CancelFunc != nil {
		state.CancelFunc()
	}
	state.Status = StatusCancelled
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now
	s.placementsMu.Unlock()

	s.logger.Info("Placement cancelled", map[string]interface{}{
		"placement_id": id,
	})

	s.respondJSON(w, http.StatusOK, map[string]string{
		"placement_id": id,
		"status":       StatusCancelled,
	})
}

// runPlacement executes one job in its own goroutine.
func (s *Server) runPlacement(ctx context.Context, runner *pipeline.Runner, state *PlacementState) {
	defer func() {
		if rec := recover(); rec != nil {
			perr := errs.Errorf("placement job panicked: %v", rec)
			s.logger.Error("Placement job panicked", map[string]interface{}{
				"placement_id": state.ID,
				"error":        perr.Error(),
				"stack":        strings.Join(perr.StackTrace(), "\n"),
			})
			s.finishPlacement(state, nil, perr)
		}
	}()

	s.placementsMu.Lock()
	if state.Status == StatusCancelled {
		s.placementsMu.Unlock()
		return
	}
	state.Status = StatusRunning
	state.LastUpdated = time.Now()
	s.placementsMu.Unlock()

	outcome, err := runner.Run(ctx, state.Scenario)
	s.finishPlacement(state, outcome, err)
}

// finishPlacement records a job's terminal state. A job the client already
// cancelled stays cancelled regardless of how the run ended.
func (s *Server) finishPlacement(state *PlacementState, outcome *pipeline.Outcome, err error) {
	s.placementsMu.Lock()
	defer s.placementsMu.Unlock()

	if state.Status == StatusCancelled {
		return
	}

	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	if err != nil {
		state.Status = StatusFailed
		state.Err = err.Error()
		placementsFailed.Inc()
		s.logger.Error("Placement failed", map[string]interface{}{
			"placement_id": state.ID,
			"error":        err.Error(),
		})
		return
	}

	state.Status = StatusCompleted
	state.Outcome = outcome
	placementsCompleted.Inc()
	quboBuildDuration.Observe(outcome.BuildTime.Seconds())
	solveDuration.Observe(outcome.Runtime.Seconds())
	quboDimension.Set(float64(outcome.Dimension))

	s.logger.Info("Placement completed", map[string]interface{}{
		"placement_id": state.ID,
		"new_sites":    len(outcome.Placement.Sites),
		"energy":       outcome.Energy,
	})
}

// respondJSON writes v as a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// respondError writes a JSON error body.
func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.logger.Error("Request error", map[string]interface{}{
		"status":  code,
		"message": message,
	})
	s.respondJSON(w, code, map[string]string{"error": message})
}

// Close cancels every live placement job.
func (s *Server) Close() error {
	s.placementsMu.Lock()
	defer s.placementsMu.Unlock()

	for _, state := range s.placements {
		if state.CancelFunc != nil {
			state.CancelFunc()
		}
	}
	return nil
}
