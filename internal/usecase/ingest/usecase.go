// Package ingest runs the document ingestion pipeline: extract text, analyze
// the incident, embed, store the original file and index the record.
package ingest

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/entity"
	"github.com/seonho-lab/incident-rag/internal/pkg/classifier"
	"github.com/seonho-lab/incident-rag/internal/pkg/logger"
)

// kst is the timezone stamped on every ingested document.
var kst = time.FixedZone("KST", 9*60*60)

// Usecase orchestrates document ingestion.
type Usecase struct {
	llm       LLMConnector
	index     DocumentIndex
	storage   BlobStorage
	extractor TextExtractor
	logger    *zap.Logger
}

func NewUsecase(
	llm LLMConnector,
	index DocumentIndex,
	storage BlobStorage,
	extractor TextExtractor,
	log *zap.Logger,
) *Usecase {
	return &Usecase{
		llm:       llm,
		index:     index,
		storage:   storage,
		extractor: extractor,
		logger:    log,
	}
}

// IngestDocument runs the full pipeline for one report file and reports
// overall success. The pipeline is synchronous and never retries; the first
// unrecoverable stage failure aborts the ingest and returns false. Analysis
// failures are recoverable (the sentinel analysis is used instead), empty
// extraction, embedding failures and storage failures are not.
func (u *Usecase) IngestDocument(ctx context.Context, filePath, title string, fileType entity.FileType) bool {
	ctx = logger.WithAction(ctx, "ingest_document")
	ctx = logger.AddFields(ctx,
		zap.String("title", title),
		zap.String("file_type", string(fileType)),
	)

	content := u.extractor.Extract(filePath, fileType)
	if content == "" {
		ctxzap.Warn(ctx, "no text extracted from report file, aborting ingest")
		return false
	}

	analysis := u.analyzeReport(ctx, content)

	embeddingInput := title + "\n" + content + "\n" + analysis.DocumentSummary
	vector, err := u.llm.Embed(ctx, embeddingInput)
	if err != nil || len(vector) == 0 {
		ctxzap.Warn(ctx, "embedding generation failed, aborting ingest", zap.Error(err))
		return false
	}

	uploadedAt := time.Now().In(kst)

	file, err := os.Open(filePath)
	if err != nil {
		ctxzap.Warn(ctx, "could not open report file for upload, aborting ingest", zap.Error(err))
		return false
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		ctxzap.Warn(ctx, "could not stat report file, aborting ingest", zap.Error(err))
		return false
	}

	blobRef, err := u.storage.Store(ctx, file, info.Size(), title, uploadedAt)
	if err != nil {
		ctxzap.Warn(ctx, "report file upload failed, aborting ingest", zap.Error(err))
		return false
	}

	doc := &entity.Document{
		ID:               uuid.NewString(),
		Title:            title,
		Content:          content,
		Summary:          analysis.DocumentSummary,
		RootCause:        analysis.SymptomsAndCauses,
		EmergencyActions: analysis.EmergencyActions,
		IncidentType:     classifier.Classify(content),
		ContentVector:    vector,
		FilePath:         blobRef,
		UploadDate:       uploadedAt,
	}

	if err := u.index.UpsertByTitle(ctx, doc); err != nil {
		ctxzap.Warn(ctx, "document indexing failed, aborting ingest", zap.Error(err))
		return false
	}

	ctxzap.Info(ctx, "document ingested",
		zap.String("document_id", doc.ID),
		zap.String("incident_type", string(doc.IncidentType)),
		zap.Int("content_length", len(content)),
	)

	return true
}
