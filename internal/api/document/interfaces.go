package document

import (
	"context"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

// IngestUsecase runs the document ingestion pipeline.
type IngestUsecase interface {
	IngestDocument(ctx context.Context, filePath, title string, fileType entity.FileType) bool
}
