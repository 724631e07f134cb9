package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// ReadyResponse reports readiness with per-dependency results
// @Description Readiness response
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks,omitempty"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// StartJobRequest carries the embedding provider credential
// @Description Embedding job start request
type StartJobRequest struct {
	APIKey string `json:"api_key" example:"AIza..."`
}

// StartJobResponse reports whether a run was launched
// @Description Embedding job start response
type StartJobResponse struct {
	Started bool               `json:"started"`
	Job     domain.JobSnapshot `json:"job"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings the configured backing services (database, lock backend)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := ReadyResponse{Status: "ready"}
	status := http.StatusOK
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// Catalog endpoints

// handleListDimensions godoc
// @Summary      List feature dimensions
// @Description  Returns the evaluation dimensions in feature order
// @Tags         Catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Dimension
// @Failure      401  {object}  ErrorResponse
// @Router       /dimensions [get]
func (s *Server) handleListDimensions(w http.ResponseWriter, r *http.Request) {
	dims := s.recommender.Dimensions()
	if dims == nil {
		dims = []domain.Dimension{}
	}
	writeJSON(w, http.StatusOK, dims)
}

// Embedding job endpoints

// handleGetJob godoc
// @Summary      Get embedding job state
// @Description  Returns a snapshot of the background embedding job
// @Tags         Embeddings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.JobSnapshot
// @Failure      401  {object}  ErrorResponse
// @Router       /embeddings/job [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobs.Snapshot())
}

// handleStartJob godoc
// @Summary      Start embedding job
// @Description  Launches the embedding job with the given provider key. A no-op while running or after success.
// @Tags         Embeddings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      StartJobRequest  true  "Provider credential"
// @Success      202      {object}  StartJobResponse  "Run launched"
// @Success      200      {object}  StartJobResponse  "Already running or completed"
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      403      {object}  ErrorResponse
// @Router       /embeddings/job [post]
func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	var req StartJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	started := s.jobs.Start(s.quotes, req.APIKey)
	status := http.StatusOK
	if started {
		status = http.StatusAccepted
	}
	writeJSON(w, status, StartJobResponse{Started: started, Job: s.jobs.Snapshot()})
}

// handleResetJob godoc
// @Summary      Reset failed embedding job
// @Description  Moves a failed job back to idle so it can be started again
// @Tags         Embeddings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.JobSnapshot
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse  "Job is not failed"
// @Router       /embeddings/job/reset [post]
func (s *Server) handleResetJob(w http.ResponseWriter, r *http.Request) {
	if err := s.jobs.Reset(); err != nil {
		if errors.Is(err, domain.ErrJobNotFailed) {
			writeError(w, http.StatusConflict, "job is not in failed state")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to reset job")
		return
	}
	writeJSON(w, http.StatusOK, s.jobs.Snapshot())
}

// Recommendation endpoints

// handleRecommend godoc
// @Summary      Recommend games
// @Description  Ranks games against a preference vector (or slider values) and attaches supporting quotes when embeddings are ready
// @Tags         Recommendations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.RecommendRequest  true  "Preferences"
// @Success      200      {object}  domain.Recommendation
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /recommendations [post]
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req domain.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.recommender.Recommend(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleGetEvidence godoc
// @Summary      Get evidence for a game
// @Description  Returns the quote of a game closest to the query for one dimension
// @Tags         Recommendations
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "Game ID"
// @Param        dimension  query     string  true  "Dimension code"  example(D03)
// @Success      200        {object}  domain.Evidence
// @Failure      400        {object}  ErrorResponse
// @Failure      401        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse  "Unknown game or dimension, or no quotes"
// @Failure      503        {object}  ErrorResponse  "Embeddings not ready"
// @Router       /games/{id}/evidence [get]
func (s *Server) handleGetEvidence(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	dimension := r.URL.Query().Get("dimension")
	if dimension == "" {
		writeError(w, http.StatusBadRequest, "dimension is required")
		return
	}

	evidence, err := s.recommender.FindEvidence(r.Context(), gameID, dimension)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrServiceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "embeddings are not ready")
		default:
			writeError(w, http.StatusInternalServerError, "evidence lookup failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, evidence)
}

// writeJSON encodes before writing the header so an unencodable value
// becomes a 500 instead of a 200 with an empty body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error encoding %T response: %v", data, err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: "internal server error"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
