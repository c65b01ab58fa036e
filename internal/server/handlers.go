package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/54b3r/edurec-go/internal/catalog"
	"github.com/54b3r/edurec-go/internal/domain"
	"github.com/54b3r/edurec-go/internal/logging"
	"github.com/54b3r/edurec-go/internal/pipeline"
)

// handleRecommend handles POST /api/recommend. The body is a learner profile;
// the response is the ranked list plus the pipeline log.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, r, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}
	var profile domain.UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	s.recommend(w, r, &profile)
}

// handleUserRecommend handles POST /api/users/{id}/recommend for a stored
// persona.
func (s *Server) handleUserRecommend(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.lookupUser(w, r)
	if !ok {
		return
	}
	s.recommend(w, r, &profile)
}

// recommend runs the pipeline and maps its errors to HTTP statuses:
// validation → 400, embedding failure → 500 with the pipeline log.
func (s *Server) recommend(w http.ResponseWriter, r *http.Request, profile *domain.UserProfile) {
	log := logging.FromContext(r.Context())

	resp, err := s.recommender.Recommend(r.Context(), profile)
	if err != nil {
		var ve *domain.ValidationError
		var pe *pipeline.Error
		switch {
		case errors.As(err, &ve):
			s.metrics.recommendationsTotal.WithLabelValues("invalid", "").Inc()
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: ve.Error(), Fields: ve.Fields})
		case errors.As(err, &pe):
			s.metrics.recommendationsTotal.WithLabelValues("error", "").Inc()
			log.Error("recommendation failed", slog.String("step", pe.Step), slog.Any("error", pe.Err))
			writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: pe.Error(), PipelineLog: pe.Log})
		default:
			s.metrics.recommendationsTotal.WithLabelValues("error", "").Inc()
			log.Error("recommendation failed", slog.Any("error", err))
			writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	s.metrics.recommendationsTotal.WithLabelValues(string(resp.Method), string(resp.Outcome)).Inc()
	writeJSON(w, r, http.StatusOK, resp)
}

// handleContent handles GET /api/content.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListContent(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("list content failed", slog.Any("error", err))
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "failed to load catalogue"})
		return
	}
	writeJSON(w, r, http.StatusOK, contentResponse{Count: len(items), Items: items})
}

// handleUsers handles GET /api/users.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("list users failed", slog.Any("error", err))
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "failed to load users"})
		return
	}
	writeJSON(w, r, http.StatusOK, usersResponse{Count: len(users), Users: users})
}

// handleUser handles GET /api/users/{id}.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.lookupUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

// lookupUser resolves the {id} path value, writing 404 or 500 on failure.
func (s *Server) lookupUser(w http.ResponseWriter, r *http.Request) (domain.UserProfile, bool) {
	id := r.PathValue("id")
	profile, err := s.store.User(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrUserNotFound):
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "user " + id + " not found"})
		return domain.UserProfile{}, false
	case err != nil:
		logging.FromContext(r.Context()).Error("user lookup failed", slog.String("user_id", id), slog.Any("error", err))
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "failed to load user"})
		return domain.UserProfile{}, false
	}
	return profile, true
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("response encode error", slog.Any("error", err))
	}
}
