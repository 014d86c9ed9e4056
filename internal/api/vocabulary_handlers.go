package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lexigo/reviewd/internal/errors"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
)

type reviewRequest struct {
	Quality *int `json:"quality"`
}

func (s *Server) handleListVocabulary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := models.VocabularyFilter{
		UserID:     uid,
		Difficulty: q.Get("difficulty"),
		Query:      strings.TrimSpace(q.Get("q")),
		OrderBy:    q.Get("orderBy"),
		OrderDir:   q.Get("orderDir"),
	}
	if filter.Limit, err = intQuery(r, "limit", 0); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Offset, err = intQuery(r, "offset", 0); err != nil {
		handleError(w, r, err)
		return
	}
	if raw := q.Get("due"); raw != "" {
		due, err := strconv.ParseBool(raw)
		if err != nil {
			handleError(w, r, errors.NewBadRequestError("invalid due: "+raw))
			return
		}
		if due {
			now := time.Now()
			filter.DueBefore = &now
		}
	}

	page, err := s.Vocabulary.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleCreateVocabulary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var in models.VocabularyInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	item, err := s.Vocabulary.Create(r.Context(), uid, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, item)
}

func (s *Server) handleGetVocabulary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	id, err := int64Param(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	item, err := s.Vocabulary.Get(r.Context(), uid, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleUpdateVocabulary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	id, err := int64Param(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var in models.VocabularyInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	item, err := s.Vocabulary.Update(r.Context(), uid, id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleDeleteVocabulary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	id, err := int64Param(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Vocabulary.Delete(r.Context(), uid, id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReviewVocabulary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	id, err := int64Param(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Quality == nil {
		handleError(w, r, errors.NewValidationError("quality", "is required"))
		return
	}

	logger.FromContext(r.Context()).Debug("reviewing vocabulary %d with quality %d", id, *req.Quality)
	item, err := s.Vocabulary.Review(r.Context(), uid, id, *req.Quality)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleImportVocabulary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		log.Warn("invalid import upload: %v", err)
		handleError(w, r, errors.NewBadRequestError("expected a multipart upload no larger than "+strconv.FormatInt(limit>>20, 10)+" MB"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, errors.NewValidationError("file", "is required"))
		return
	}
	defer file.Close()

	job, err := s.Imports.Import(r.Context(), uid, header.Filename, file)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/vocabulary/import/"+job.ID)
	writeJSON(w, r, http.StatusAccepted, job)
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	job, err := s.Imports.Status(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, job)
}
