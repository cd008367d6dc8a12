package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seonho-lab/incident-rag/internal/config"
	"github.com/seonho-lab/incident-rag/internal/entity"
)

func newTestValidator() *Validator {
	return NewValidator(config.FileUploadConfig{
		MaxFileSize:   1024,
		MaxUploadSize: 4096,
		MaxTitleLen:   50,
	})
}

func TestValidateIngest(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateIngest("서버 장애 보고서", entity.FileTypeDOCX, 512))
	assert.NoError(t, v.ValidateIngest("report", entity.FileTypePDF, 1024))
}

func TestValidateIngestRejections(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name     string
		title    string
		fileType entity.FileType
		size     int64
	}{
		{"empty title", "", entity.FileTypeText, 100},
		{"whitespace title", "   ", entity.FileTypeText, 100},
		{"title too long", strings.Repeat("a", 51), entity.FileTypeText, 100},
		{"unsupported type", "report", entity.FileType("exe"), 100},
		{"empty file", "report", entity.FileTypeText, 0},
		{"file too large", "report", entity.FileTypeText, 2048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, v.ValidateIngest(tt.title, tt.fileType, tt.size))
		})
	}
}
