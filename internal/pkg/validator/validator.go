package validator

import (
	"fmt"
	"strings"

	"github.com/seonho-lab/incident-rag/internal/config"
	"github.com/seonho-lab/incident-rag/internal/entity"
)

var supportedFileTypes = map[entity.FileType]struct{}{
	entity.FileTypeDOCX:     {},
	entity.FileTypePDF:      {},
	entity.FileTypeText:     {},
	entity.FileTypeMarkdown: {},
}

// Validator checks ingest requests before any pipeline work starts.
type Validator struct {
	cfg config.FileUploadConfig
}

func NewValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateIngest validates the title, declared file type and size of an
// uploaded report.
func (v *Validator) ValidateIngest(title string, fileType entity.FileType, size int64) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}

	if len(title) > v.cfg.MaxTitleLen {
		return fmt.Errorf("title exceeds %d characters", v.cfg.MaxTitleLen)
	}

	if _, ok := supportedFileTypes[fileType]; !ok {
		return fmt.Errorf("unsupported file type %q", fileType)
	}

	if size <= 0 {
		return fmt.Errorf("file is empty")
	}

	if size > v.cfg.MaxFileSize {
		return fmt.Errorf("file exceeds %d bytes", v.cfg.MaxFileSize)
	}

	return nil
}
