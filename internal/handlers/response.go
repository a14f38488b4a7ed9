package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"docsrag/internal/query"
	"docsrag/internal/vectorstore"
)

// ErrorResponse is the body of every non-2xx API response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ResultResponse is one search hit.
//
// swagger:model ResultResponse
type ResultResponse struct {
	Score   float32 `json:"score"`
	Source  string  `json:"source"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
}

func toResults(results []vectorstore.SearchResult) []ResultResponse {
	out := make([]ResultResponse, len(results))
	for i, r := range results {
		out[i] = ResultResponse{
			Score:   r.Score,
			Source:  r.Source,
			Title:   r.Title,
			Content: r.Content,
		}
	}
	return out
}

// statusFor maps query errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, vectorstore.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, vectorstore.ErrCollectionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	_ = writeJSON(w, statusCode, ErrorResponse{Error: message})
}
