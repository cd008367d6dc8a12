package chat

import (
	"context"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

// ChatUsecase answers queries and manages per-session chat history.
type ChatUsecase interface {
	AnswerQuery(ctx context.Context, sessionID, query string) *entity.ChatAnswer
	SessionMessages(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error)
	ResetSession(ctx context.Context, sessionID string) error
}
