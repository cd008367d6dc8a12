package chat

import (
	"context"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

// LLMConnector provides query embedding and answer synthesis.
type LLMConnector interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentIndex retrieves similar incident records.
type DocumentIndex interface {
	Search(ctx context.Context, queryText string, queryVector []float32, topK int) ([]*entity.Document, error)
}

// BlobStorage signs report download URLs.
type BlobStorage interface {
	SignedURL(ctx context.Context, ref string) string
}
