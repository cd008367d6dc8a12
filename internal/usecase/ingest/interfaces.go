package ingest

import (
	"context"
	"io"
	"time"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

// LLMConnector provides incident analysis and embedding generation.
type LLMConnector interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentIndex stores searchable incident records.
type DocumentIndex interface {
	UpsertByTitle(ctx context.Context, doc *entity.Document) error
}

// BlobStorage keeps the original report files.
type BlobStorage interface {
	Store(ctx context.Context, r io.Reader, size int64, title string, uploadedAt time.Time) (string, error)
}

// TextExtractor turns a report file into plain text.
type TextExtractor interface {
	Extract(path string, fileType entity.FileType) string
}
