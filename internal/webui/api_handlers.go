package webui

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ben-bakker/searchai/internal/search"
)

// handleSearch handles POST /api/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	if s.config.MaxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBytes)
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		s.logf(r, "Rejecting malformed search body: %v", err)
		s.writeError(w, http.StatusBadRequest, msgInvalidQuery)
		return
	}

	var query string
	if len(req.Query) == 0 || json.Unmarshal(req.Query, &query) != nil {
		s.writeError(w, http.StatusBadRequest, msgInvalidQuery)
		return
	}

	resp, err := s.searcher.Search(r.Context(), query, req.Options)
	if err != nil {
		if search.IsInvalidInput(err) {
			s.writeError(w, http.StatusBadRequest, msgInvalidQuery)
			return
		}
		s.logf(r, "Search failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
