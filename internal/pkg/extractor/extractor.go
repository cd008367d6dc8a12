// Package extractor converts uploaded report files into plain text.
package extractor

import (
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/unidoc/unioffice/document"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

// Extractor dispatches on the declared file type. Extraction never fails
// loudly: unsupported types and I/O errors yield an empty string, which the
// ingestion pipeline treats as "no content".
type Extractor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the plain text of the file at path, or "" on any failure.
func (e *Extractor) Extract(path string, fileType entity.FileType) string {
	var (
		text string
		err  error
	)

	switch fileType {
	case entity.FileTypeDOCX:
		text, err = extractDOCX(path)
	case entity.FileTypePDF:
		text, err = extractPDF(path)
	case entity.FileTypeText, entity.FileTypeMarkdown:
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	default:
		e.logger.Warn("unsupported file type", zap.String("file_type", string(fileType)))
		return ""
	}

	if err != nil {
		e.logger.Warn("text extraction failed",
			zap.String("path", path),
			zap.String("file_type", string(fileType)),
			zap.Error(err),
		)
		return ""
	}

	return text
}

// extractDOCX concatenates paragraph text in document order.
func extractDOCX(path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var parts []string
	for _, paragraph := range doc.Paragraphs() {
		var sb strings.Builder
		for _, run := range paragraph.Runs() {
			sb.WriteString(run.Text())
		}
		parts = append(parts, sb.String())
	}

	return strings.Join(parts, "\n"), nil
}

// extractPDF concatenates per-page text in page order.
func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}

	return strings.Join(parts, "\n"), nil
}
