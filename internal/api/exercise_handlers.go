package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lexigo/reviewd/internal/errors"
	"github.com/lexigo/reviewd/internal/logger"
)

type submitRequest struct {
	UserAnswer *string `json:"userAnswer"`
}

func (s *Server) handleGenerateExercises(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	exercises, err := s.Exercises.Generate(r.Context(), uid, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, exercises)
}

func (s *Server) handleSubmitExercise(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		handleError(w, r, errors.NewBadRequestError("missing exercise id"))
		return
	}

	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.UserAnswer == nil {
		handleError(w, r, errors.NewValidationError("userAnswer", "is required"))
		return
	}

	log.Debug("submitting exercise %s", id)
	result, err := s.Exercises.Submit(r.Context(), uid, id, *req.UserAnswer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
