package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/mkoda/bifrost/internal/evaluator"
	"github.com/mkoda/bifrost/internal/optimizer"
	"github.com/mkoda/bifrost/internal/oracle"
	"github.com/mkoda/bifrost/internal/skillcost"
	"github.com/mkoda/bifrost/internal/store"
	"github.com/mkoda/bifrost/internal/types"
)

// EvaluateResponse represents the response for /api/evaluate
type EvaluateResponse struct {
	Evaluations map[types.Stat]evaluator.Evaluation `json:"evaluations"`
	Decision    evaluator.Decision                  `json:"decision"`
}

// CompareRequest represents the request body for /api/compare
type CompareRequest struct {
	CourseID     string                  `json:"course_id"`
	Race         types.RaceConditions    `json:"race"`
	Options      types.SimulationOptions `json:"options"`
	SkillIDs     []string                `json:"skill_ids"`
	SampleTarget int                     `json:"sample_target,omitempty"`
}

// CompareResponse represents the response for /api/compare
type CompareResponse struct {
	Summary *types.RateSummary `json:"summary"`
	Metrics types.RaceMetrics  `json:"metrics"`
	Mean    float64            `json:"mean"`
	Samples int                `json:"samples"`
}

// OptimizeRequest represents the request body for /api/optimize
type OptimizeRequest struct {
	CourseID string                  `json:"course_id"`
	Race     types.RaceConditions    `json:"race"`
	Options  types.SimulationOptions `json:"options"`
	Targets  *types.Targets          `json:"targets,omitempty"`
}

// handleGetSettings returns the active settings document
func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.currentSettings())
}

// handleSaveSettings validates, persists and activates a settings document
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	settings.Calculator = settings.Calculator.Normalize()
	if err := settings.Calculator.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid calculator settings: "+err.Error())
		return
	}
	if err := settings.Targets.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid targets: "+err.Error())
		return
	}

	doc, err := json.Marshal(settings)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to encode settings")
		return
	}
	if err := s.store.SaveSettings(r.Context(), doc); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to persist settings: "+err.Error())
		return
	}

	s.settingsMu.Lock()
	s.settings = settings
	s.settingsMu.Unlock()

	s.jsonResponse(w, http.StatusOK, settings)
}

// handleIngestState accepts a new game snapshot from the capture layer
func (s *Server) handleIngestState(w http.ResponseWriter, r *http.Request) {
	var snap types.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.state.Set(&snap)
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// handleGetState returns the latest ingested snapshot
func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	snap := s.state.Current()
	if snap == nil {
		s.errorResponse(w, http.StatusNotFound, "No snapshot ingested yet")
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// handleResetState clears the snapshot at a career reset
func (s *Server) handleResetState(w http.ResponseWriter, _ *http.Request) {
	s.state.Set(nil)
	s.oracle.Supersede()
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleEvents streams snapshot updates over SSE
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	updates, unsubscribe := s.state.Subscribe()
	defer unsubscribe()

	if snap := s.state.Current(); snap != nil {
		sse.WriteEvent("state", snap) //nolint:errcheck
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if snap == nil {
				sse.WriteEvent("reset", map[string]string{"status": "reset"}) //nolint:errcheck
				continue
			}
			if err := sse.WriteEvent("state", snap); err != nil {
				return
			}
		}
	}
}

// handleEvaluate scores the current snapshot's training actions
func (s *Server) handleEvaluate(w http.ResponseWriter, _ *http.Request) {
	snap := s.state.Current()
	if snap == nil {
		s.errorResponse(w, http.StatusConflict, "No snapshot ingested yet")
		return
	}

	cfg := s.currentSettings().Calculator
	evals := evaluator.EvaluateAll(snap, cfg)
	decision := evaluator.Decide(evals, snap, cfg)

	s.jsonResponse(w, http.StatusOK, EvaluateResponse{
		Evaluations: evals,
		Decision:    decision,
	})
}

// handleCompare runs a single with-skills vs without comparison for the
// current trainee
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	snap := s.state.Current()
	if snap == nil {
		s.errorResponse(w, http.StatusConflict, "No snapshot ingested yet")
		return
	}
	crs, err := s.resolveCourse(r, req.CourseID)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	if crs == nil {
		s.errorResponse(w, http.StatusBadRequest, "Unknown course: "+req.CourseID)
		return
	}

	base := optimizer.BuildCompetitor(snap, crs)
	// The merged trial set is normalized so a requested gold skill replaces
	// its owned white counterpart instead of riding alongside it.
	costs := skillcost.Resolve(snap.AvailableSkills, snap.SkillHints)
	merged := append(append([]string(nil), base.SkillIDs...), req.SkillIDs...)
	trial := base.WithSkills(costs.NormalizeSelection(merged))

	sampleTarget := req.SampleTarget
	if sampleTarget <= 0 {
		sampleTarget = 500
	}

	s.oracle.Supersede()
	result, outcome := s.oracle.Compare(r.Context(), oracle.CompareRequest{
		Course:       crs,
		Race:         req.Race,
		Options:      req.Options,
		Trial:        trial,
		Base:         base,
		SampleTarget: sampleTarget,
	})
	if result == nil {
		s.errorResponse(w, http.StatusGatewayTimeout, "Simulation unavailable: "+outcome.String())
		return
	}

	s.jsonResponse(w, http.StatusOK, CompareResponse{
		Summary: oracle.Summarize(result.Samples),
		Metrics: result.Metrics,
		Mean:    oracle.Advantage(result.Samples),
		Samples: len(result.Samples),
	})
}

// newSession builds an optimization session for the current snapshot.
// Returns an HTTP status and message on failure.
func (s *Server) newSession(r *http.Request, req OptimizeRequest) (*optimizer.Session, int, string) {
	snap := s.state.Current()
	if snap == nil {
		return nil, http.StatusConflict, "No snapshot ingested yet"
	}
	crs, err := s.resolveCourse(r, req.CourseID)
	if err != nil {
		return nil, http.StatusBadGateway, err.Error()
	}
	if crs == nil {
		return nil, http.StatusBadRequest, "Unknown course: " + req.CourseID
	}

	targets := s.currentSettings().Targets
	if req.Targets != nil {
		if err := req.Targets.Validate(); err != nil {
			return nil, http.StatusBadRequest, "Invalid targets: " + err.Error()
		}
		targets = *req.Targets
	}

	sess := optimizer.NewSession(snap, crs, req.Race, targets)
	sess.Options = req.Options
	return sess, 0, ""
}

// runOptimization executes the session and records the run.
func (s *Server) runOptimization(r *http.Request, req OptimizeRequest, sess *optimizer.Session) (*optimizer.Result, error) {
	s.optimizeMu.Lock()
	defer s.optimizeMu.Unlock()

	result, err := s.optimizer.Optimize(r.Context(), sess)
	if err != nil {
		return nil, err
	}

	run := store.Run{
		ID:        result.SessionID,
		CreatedAt: time.Now().UTC(),
		CourseID:  req.CourseID,
		Budget:    sess.Budget,
		Status:    result.Status,
		Builds:    result.Builds,
	}
	if serr := s.store.InsertRun(r.Context(), run); serr != nil {
		log.Printf("Failed to record optimization run %s: %v", run.ID, serr)
	}
	return result, nil
}

// handleOptimize runs a skill-build search and returns the result as JSON
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	sess, status, message := s.newSession(r, req)
	if sess == nil {
		s.errorResponse(w, status, message)
		return
	}

	result, err := s.runOptimization(r, req, sess)
	if err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleOptimizeStream runs a skill-build search, streaming progress over SSE
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	sess, status, message := s.newSession(r, req)
	if sess == nil {
		s.errorResponse(w, status, message)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	sess.OnProgress = sse.WriteProgress

	result, err := s.runOptimization(r, req, sess)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	sse.WriteEvent("result", result) //nolint:errcheck
}

// handleListRuns returns recent optimization runs with their builds
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit: "+raw)
			return
		}
		limit = parsed
	}
	runs, err := s.store.RecentRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list runs: "+err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	s.jsonResponse(w, http.StatusOK, runs)
}

// handleCourseSet resolves a course descriptor
func (s *Server) handleCourseSet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	crs, err := s.resolveCourse(r, id)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	if crs == nil {
		s.errorResponse(w, http.StatusNotFound, "Unknown course: "+id)
		return
	}
	s.jsonResponse(w, http.StatusOK, crs)
}

// resolveCourse looks the course up via the configured provider; a nil
// provider means no course metadata is available.
func (s *Server) resolveCourse(r *http.Request, id string) (*types.Course, error) {
	if s.courses == nil {
		return nil, nil
	}
	return s.courses.Course(r.Context(), id)
}
