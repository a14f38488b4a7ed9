package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docsrag/internal/handlers"
	"docsrag/internal/query"
	"docsrag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Store      vectorstore.Store
	Query      query.Service
	Collection string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.Store, deps.Collection))
		r.Method(http.MethodPost, "/query", handlers.NewQueryHandler(deps.Query))
		r.Method(http.MethodPost, "/ask", handlers.NewAskHandler(deps.Query))
	})

	return r
}
