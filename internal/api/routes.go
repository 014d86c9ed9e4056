package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lexigo/reviewd/internal/metrics"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(metrics.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNoRoute)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errMethodNotAllowed)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		if s.RequestTimeout > 0 {
			r.Use(timeoutMiddleware(s.RequestTimeout))
		}

		r.Get("/exercises/generate", s.handleGenerateExercises)
		r.Post("/exercises/{id}/submit", s.handleSubmitExercise)

		r.Post("/check-in/daily", s.handleDailyCheckIn)
		r.Get("/check-in/status", s.handleCheckInStatus)

		r.Get("/dashboard/summary", s.handleDashboardSummary)

		r.Route("/vocabulary", func(r chi.Router) {
			r.Get("/", s.handleListVocabulary)
			r.Post("/", s.handleCreateVocabulary)
			r.Post("/import", s.handleImportVocabulary)
			r.Get("/import/{id}", s.handleImportStatus)
			r.Post("/review/{id}", s.handleReviewVocabulary)
			r.Get("/{id}", s.handleGetVocabulary)
			r.Put("/{id}", s.handleUpdateVocabulary)
			r.Delete("/{id}", s.handleDeleteVocabulary)
		})

		r.Get("/users/profile", s.handleUserProfile)
	})
	return r
}
