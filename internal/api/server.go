package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chatapi "github.com/seonho-lab/incident-rag/internal/api/chat"
	documentapi "github.com/seonho-lab/incident-rag/internal/api/document"
	"github.com/seonho-lab/incident-rag/internal/api/middleware"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(documentHandler *documentapi.Handler, chatHandler *chatapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)   // Recover from panics
	r.Use(chimiddleware.RequestID)   // Add request ID
	r.Use(middleware.Logger(logger)) // Log requests
	// Ingestion is synchronous and includes two model calls plus an upload,
	// so the timeout is generous.
	r.Use(chimiddleware.Timeout(120 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Register routes
	documentapi.RegisterRoutes(r, documentHandler)
	chatapi.RegisterRoutes(r, chatHandler)

	return r
}
