package handlers

import (
	"encoding/json"
	"net/http"

	"docsrag/internal/contextutil"
	"docsrag/internal/query"
)

// AskHandler handles generative question answering over the collection.
type AskHandler struct {
	service query.Service
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(service query.Service) *AskHandler {
	return &AskHandler{service: service}
}

// AskRequest represents the HTTP request payload for a generative query.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
	Task     string `json:"task,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// AskResponse represents the HTTP response payload for a generative query.
//
// swagger:model AskResponse
type AskResponse struct {
	Answer  string           `json:"answer"`
	Sources []ResultResponse `json:"sources"`
}

// ServeHTTP handles HTTP requests for generative queries.
// Returns 501 when neither the store nor a completion model can generate.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}

	gen, err := h.service.Ask(ctx, req.Question, req.Task, req.Limit)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(ctx, "ask failed", "error", err)
		}
		writeError(w, status, err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, AskResponse{Answer: gen.Answer, Sources: toResults(gen.Sources)}); err != nil {
		logger.ErrorContext(ctx, "failed to encode ask response", "error", err)
	}
}
