package web

import "net/http"

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Statistics(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to compute statistics")
		s.logger.Error("statistics failed", "error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}
