package api

import (
	"encoding/json"
	"net/http"
)

// handleBatch runs the batch driver over the configured directories and
// returns its report. Only one batch runs at a time.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		jsonError(w, "batch processing is not configured", http.StatusServiceUnavailable)
		return
	}
	if !s.batchMu.TryLock() {
		jsonError(w, "a batch is already running", http.StatusConflict)
		return
	}
	defer s.batchMu.Unlock()

	rep, err := s.runner.Run(r.Context())
	if err != nil {
		s.log.Error("batch failed", "error", err)
		jsonError(w, "batch failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"run_id":    rep.RunID,
		"started":   rep.Started,
		"finished":  rep.Finished,
		"failed":    rep.Failed(),
		"documents": rep.Documents,
	})
}
