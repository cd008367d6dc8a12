package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestExtractText(t *testing.T) {
	e := New(zap.NewNop())

	content := "장애 보고서\ndatabase connection timeout\n조치 완료"
	path := writeFile(t, "report.txt", content)

	assert.Equal(t, content, e.Extract(path, entity.FileTypeText))
}

func TestExtractMarkdown(t *testing.T) {
	e := New(zap.NewNop())

	content := "# 장애 요약\n\n- 원인: 네트워크 단절\n- 조치: 회선 이중화"
	path := writeFile(t, "report.md", content)

	assert.Equal(t, content, e.Extract(path, entity.FileTypeMarkdown))
}

func TestExtractPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.AddPage()
	doc.SetFont("Arial", "", 12)
	doc.Cell(40, 10, "Incident report: database connection timeout")
	require.NoError(t, doc.OutputFileAndClose(path))

	e := New(zap.NewNop())

	text := e.Extract(path, entity.FileTypePDF)
	assert.Contains(t, text, "database")
}

func TestExtractEmptyFile(t *testing.T) {
	e := New(zap.NewNop())

	path := writeFile(t, "empty.txt", "")

	assert.Equal(t, "", e.Extract(path, entity.FileTypeText))
}

func TestExtractMissingFile(t *testing.T) {
	e := New(zap.NewNop())

	assert.Equal(t, "", e.Extract(filepath.Join(t.TempDir(), "missing.txt"), entity.FileTypeText))
}

func TestExtractUnsupportedType(t *testing.T) {
	e := New(zap.NewNop())

	path := writeFile(t, "report.csv", "a,b,c")

	assert.Equal(t, "", e.Extract(path, entity.FileType("csv")))
}

func TestExtractCorruptPDF(t *testing.T) {
	e := New(zap.NewNop())

	path := writeFile(t, "broken.pdf", "this is not a pdf")

	assert.Equal(t, "", e.Extract(path, entity.FileTypePDF))
}
