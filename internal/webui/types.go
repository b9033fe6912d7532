package webui

import (
	"encoding/json"

	"github.com/ben-bakker/searchai/internal/types"
)

// Error messages returned to clients. Upstream details are only logged.
const (
	msgInvalidQuery     = "Invalid query. Please provide a non-empty search query."
	msgMethodNotAllowed = "Method not allowed"
	msgInternalError    = "Internal server error"
	msgBodyTooLarge     = "Request body too large"
)

// SearchRequest is the body of POST /api/search. Query stays raw so that a
// non-string value can be rejected instead of coerced.
type SearchRequest struct {
	Query   json.RawMessage              `json:"query"`
	Options *types.SearchOptionsOverride `json:"options"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status string `json:"status"`
}
