package handler

import (
	"context"
	"net/http"
	"time"
)

// GetHealth handles GET /healthz.
// It returns 200 {"status":"ok"} when the server and its database are
// reachable, and 503 {"status":"unavailable"} when the database ping fails.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.log.WarnContext(r.Context(), "health check failed", "error", err)
			writeBody(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeBody(w, http.StatusOK, map[string]string{"status": "ok"})
}
