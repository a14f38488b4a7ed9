package handlers

import (
	"encoding/json"
	"net/http"

	"docsrag/internal/contextutil"
	"docsrag/internal/query"
)

// DefaultLimit is used when a request does not set one.
const DefaultLimit = 5

// QueryHandler handles similarity search requests.
type QueryHandler struct {
	service query.Service
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(service query.Service) *QueryHandler {
	return &QueryHandler{service: service}
}

// QueryRequest is the request payload for a similarity search.
//
// swagger:model QueryRequest
type QueryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// QueryResponse is the response payload for a similarity search.
//
// swagger:model QueryResponse
type QueryResponse struct {
	Results []ResultResponse `json:"results"`
}

// ServeHTTP handles HTTP requests for similarity search.
//
// swagger:route POST /api/query query
//
// # Search the ingested documentation
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Results ordered by descending score
//	  schema:
//	    "$ref": "#/definitions/QueryResponse"
//	'400':
//	  description: Empty query or non-positive limit
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Vector store failure
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid query request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}

	results, err := h.service.Search(ctx, req.Query, req.Limit)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(ctx, "query failed", "error", err)
		}
		writeError(w, status, err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, QueryResponse{Results: toResults(results)}); err != nil {
		logger.ErrorContext(ctx, "failed to encode query response", "error", err)
	}
}
