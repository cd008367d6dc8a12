// Package repository persists chat history in PostgreSQL.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

// ChatMessageRepository defines the interface for chat history persistence
type ChatMessageRepository interface {
	CreateMessage(ctx context.Context, sessionID, role, content string) (*entity.ChatMessage, error)
	GetSessionMessages(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error)
	DeleteSessionMessages(ctx context.Context, sessionID string) error
}

var _ ChatMessageRepository = &ChatMessagePostgres{}

// ChatMessagePostgres implements ChatMessageRepository using PostgreSQL
type ChatMessagePostgres struct {
	db *pgxpool.Pool
}

func NewChatMessagePostgres(db *pgxpool.Pool) *ChatMessagePostgres {
	return &ChatMessagePostgres{db: db}
}

func (r *ChatMessagePostgres) CreateMessage(
	ctx context.Context,
	sessionID string,
	role string,
	content string,
) (*entity.ChatMessage, error) {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidSessionID, err)
	}

	if role != entity.ChatRoleUser && role != entity.ChatRoleAssistant {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidChatRole, role)
	}

	const query = `
		INSERT INTO chat_messages (session_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, session_id, role, content, created_at`

	msg := &entity.ChatMessage{}
	err = r.db.QueryRow(ctx, query, sessID, role, content).Scan(
		&msg.ID,
		&msg.SessionID,
		&msg.Role,
		&msg.Content,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create chat message: %w", err)
	}

	return msg, nil
}

func (r *ChatMessagePostgres) GetSessionMessages(
	ctx context.Context,
	sessionID string,
) ([]*entity.ChatMessage, error) {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidSessionID, err)
	}

	const query = `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, sessID)
	if err != nil {
		return nil, fmt.Errorf("get session messages: %w", err)
	}
	defer rows.Close()

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.ChatMessage, error) {
		msg := &entity.ChatMessage{}
		err := row.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt)
		return msg, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan session messages: %w", err)
	}

	return messages, nil
}

func (r *ChatMessagePostgres) DeleteSessionMessages(ctx context.Context, sessionID string) error {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidSessionID, err)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, sessID); err != nil {
		return fmt.Errorf("delete session messages: %w", err)
	}

	return nil
}
