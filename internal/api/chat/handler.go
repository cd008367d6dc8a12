// Package chat exposes the query and chat history endpoints.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/entity"
	"github.com/seonho-lab/incident-rag/internal/pkg/logger"
)

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// QueryRequest is the body of POST /chat.
type QueryRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// MessagesResponse wraps a session's chat history.
type MessagesResponse struct {
	SessionID string                `json:"session_id"`
	Messages  []*entity.ChatMessage `json:"messages"`
}

// Query handles POST /chat - Answer a user query from past incidents
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Query")

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		h.respondError(ctx, w, http.StatusBadRequest, "query is required",
			fmt.Errorf("query must not be empty"))
		return
	}

	if _, err := uuid.Parse(req.SessionID); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid session_id", err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", req.SessionID))
	ctxzap.Info(ctx, "answering query", zap.Int("query_length", len(req.Query)))

	answer := h.usecase.AnswerQuery(ctx, req.SessionID, req.Query)

	h.respondJSON(w, http.StatusOK, answer)
}

// GetMessages handles GET /chat/{session_id}/messages - Get session history
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	ctx = logger.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.String("action", "GetMessages"),
	)

	messages, err := h.usecase.SessionMessages(ctx, sessionID)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidSessionID) {
			h.respondError(ctx, w, http.StatusBadRequest, "invalid session_id", err)
			return
		}
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to fetch messages", err)
		return
	}

	if messages == nil {
		messages = []*entity.ChatMessage{}
	}

	h.respondJSON(w, http.StatusOK, MessagesResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}

// DeleteMessages handles DELETE /chat/{session_id}/messages - Reset session
func (h *Handler) DeleteMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	ctx = logger.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.String("action", "DeleteMessages"),
	)

	if err := h.usecase.ResetSession(ctx, sessionID); err != nil {
		if errors.Is(err, entity.ErrInvalidSessionID) {
			h.respondError(ctx, w, http.StatusBadRequest, "invalid session_id", err)
			return
		}
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to reset session", err)
		return
	}

	ctxzap.Info(ctx, "session history deleted")

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	h.respondJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
