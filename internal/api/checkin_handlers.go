package api

import "net/http"

func (s *Server) handleDailyCheckIn(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	res, err := s.CheckIns.CheckIn(r.Context(), uid)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleCheckInStatus(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	status, err := s.CheckIns.Status(r.Context(), uid)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}
