package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/entity"
	"github.com/seonho-lab/incident-rag/internal/integration/openai"
	"github.com/seonho-lab/incident-rag/internal/integration/qdrant"
	"github.com/seonho-lab/incident-rag/internal/integration/storage"
	"github.com/seonho-lab/incident-rag/internal/pkg/extractor"
)

type pipeline struct {
	usecase *Usecase
	llm     *openai.MockConnector
	index   *qdrant.MockIndex
	storage *storage.MockStorage
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	log := zap.NewNop()
	llm := openai.NewMockConnector(64, log)
	index := qdrant.NewMockIndex(log)
	store := storage.NewMockStorage(log)

	return &pipeline{
		usecase: NewUsecase(llm, index, store, extractor.New(log), log),
		llm:     llm,
		index:   index,
		storage: store,
	}
}

func writeReport(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestIngestDocument(t *testing.T) {
	p := newPipeline(t)

	path := writeReport(t, "report.txt", "database connection timeout으로 주문 처리 지연 발생")

	ok := p.usecase.IngestDocument(context.Background(), path, "주문 서비스 장애", entity.FileTypeText)
	require.True(t, ok)

	docs := p.index.Documents()
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "주문 서비스 장애", doc.Title)
	assert.Equal(t, entity.IncidentTypeDatabase, doc.IncidentType)
	assert.NotEmpty(t, doc.ID)
	assert.NotEmpty(t, doc.Summary)
	assert.NotEmpty(t, doc.RootCause)
	assert.NotEmpty(t, doc.EmergencyActions)
	assert.NotEmpty(t, doc.ContentVector)
	assert.NotEmpty(t, doc.FilePath)
	assert.False(t, doc.UploadDate.IsZero())

	stored, found := p.storage.Object(doc.FilePath)
	require.True(t, found)
	assert.NotEmpty(t, stored)
}

func TestIngestDocumentReplacesSameTitle(t *testing.T) {
	p := newPipeline(t)

	first := writeReport(t, "v1.txt", "네트워크 스위치 장애 1차 보고")
	second := writeReport(t, "v2.txt", "네트워크 스위치 장애 최종 보고")

	require.True(t, p.usecase.IngestDocument(context.Background(), first, "스위치 장애", entity.FileTypeText))
	firstID := p.index.Documents()[0].ID

	require.True(t, p.usecase.IngestDocument(context.Background(), second, "스위치 장애", entity.FileTypeText))

	docs := p.index.Documents()
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "최종")
	assert.NotEqual(t, firstID, docs[0].ID)
}

func TestIngestDocumentEmptyFile(t *testing.T) {
	p := newPipeline(t)

	path := writeReport(t, "empty.txt", "")

	ok := p.usecase.IngestDocument(context.Background(), path, "빈 보고서", entity.FileTypeText)
	assert.False(t, ok)
	assert.Empty(t, p.index.Documents())
	assert.Zero(t, p.storage.ObjectCount())
}

func TestIngestDocumentEmbeddingFailure(t *testing.T) {
	p := newPipeline(t)
	p.llm.FailEmbeddings = true

	path := writeReport(t, "report.txt", "서버 장애 보고")

	ok := p.usecase.IngestDocument(context.Background(), path, "서버 장애", entity.FileTypeText)
	assert.False(t, ok)
	assert.Empty(t, p.index.Documents())
	assert.Zero(t, p.storage.ObjectCount())
}

func TestIngestDocumentAnalysisFailureStillIngests(t *testing.T) {
	p := newPipeline(t)
	p.llm.FailCompletions = true

	path := writeReport(t, "report.txt", "방화벽 오작동 보고")

	ok := p.usecase.IngestDocument(context.Background(), path, "방화벽 장애", entity.FileTypeText)
	require.True(t, ok)

	docs := p.index.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "분석 실패", docs[0].Summary)
	assert.Equal(t, "분석 실패", docs[0].RootCause)
	assert.Contains(t, docs[0].Content, "방화벽")
}

func TestIngestDocumentMissingFile(t *testing.T) {
	p := newPipeline(t)

	ok := p.usecase.IngestDocument(context.Background(), filepath.Join(t.TempDir(), "gone.txt"), "없는 파일", entity.FileTypeText)
	assert.False(t, ok)
	assert.Empty(t, p.index.Documents())
}
