package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/lexigo/reviewd/internal/logger"
)

// readyCheckTimeout bounds each dependency probe.
const readyCheckTimeout = 2 * time.Second

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady returns a readiness probe. It reports 503 when any dependency check fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	names := make([]string, 0, len(s.ReadyChecks))
	for name := range s.ReadyChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		err := s.ReadyChecks[name](ctx)
		cancel()
		if err != nil {
			log.Warn("readiness check failed - %s: %v", name, err)
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}
	writeJSON(w, r, status, map[string]any{"status": state, "checks": checks})
}
