package api

import "net/http"

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	summary, err := s.Dashboard.Summary(r.Context(), uid)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	profile, err := s.Users.Profile(r.Context(), uid)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}
