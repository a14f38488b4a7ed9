package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"docsrag/internal/contextutil"
	"docsrag/internal/vectorstore"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	store              vectorstore.Store
	collectionName     string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store vectorstore.Store, collectionName string) *HealthHandler {
	return &HealthHandler{
		store:              store,
		collectionName:     collectionName,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Returns 200 OK when the collection exists, 503 Service Unavailable otherwise.
//
// swagger:route GET /api/health healthCheck
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Collection is queryable
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: Store unreachable or collection missing
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if h.checkCollection(checkCtx, logger) {
		checks["vector_store"] = "ok"
		if count, err := h.store.Count(checkCtx, h.collectionName); err == nil {
			checks["objects"] = strconv.Itoa(count)
		}
		checks["schema"] = h.checkSchema(checkCtx, logger)
		if checks["schema"] == "mismatch" {
			issues = append(issues, "schema_mismatch")
		}
	} else {
		checks["vector_store"] = "error"
		issues = append(issues, "collection_unavailable")
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}

	if err := writeJSON(w, httpStatus, response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}

// checkCollection checks that the store answers and the collection exists.
func (h *HealthHandler) checkCollection(ctx context.Context, logger *slog.Logger) bool {
	exists, err := h.store.CollectionExists(ctx, h.collectionName)
	if err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return false
	}
	if !exists {
		logger.WarnContext(ctx, "vector store collection does not exist", "collection", h.collectionName)
		return false
	}
	return true
}

// checkSchema compares the collection fields against the chunk layout.
// Backends that cannot report a schema yield "unknown".
func (h *HealthHandler) checkSchema(ctx context.Context, logger *slog.Logger) string {
	schema, err := h.store.Schema(ctx, h.collectionName)
	if errors.Is(err, vectorstore.ErrUnsupported) {
		return "unknown"
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to read collection schema", "error", err)
		return "unknown"
	}

	got := schema.PropertyNames()
	want := vectorstore.DefaultSchema(h.collectionName, "", "").PropertyNames()
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		logger.WarnContext(ctx, "collection schema does not match", "fields", got)
		return "mismatch"
	}
	return "ok"
}
