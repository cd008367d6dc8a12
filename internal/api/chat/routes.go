package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/chat", h.Query)
	r.Route("/chat/{session_id}/messages", func(r chi.Router) {
		r.Get("/", h.GetMessages)
		r.Delete("/", h.DeleteMessages)
	})
}
