package main

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/spf13/cobra"

	"docsrag/internal/http"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API over HTTP",
	Long: `Start an HTTP server on API_PORT with:

  GET  /api/health   collection status
  POST /api/query    {"query": "...", "limit": 5}
  POST /api/ask      {"question": "...", "task": "...", "limit": 5}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, store, err := openQueryClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(ctx, store)

	router := http.NewRouter(&http.Deps{
		Store:      store,
		Query:      client,
		Collection: cfg.CollectionName,
	})

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr, "collection", cfg.CollectionName)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			slog.Error("API server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
