// Package document exposes the report upload endpoint.
package document

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/config"
	"github.com/seonho-lab/incident-rag/internal/entity"
	"github.com/seonho-lab/incident-rag/internal/pkg/logger"
	"github.com/seonho-lab/incident-rag/internal/pkg/validator"
)

type Handler struct {
	usecase   IngestUsecase
	validator *validator.Validator
	uploadCfg config.FileUploadConfig
}

func NewHandler(
	usecase IngestUsecase,
	validator *validator.Validator,
	uploadCfg config.FileUploadConfig,
) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
		uploadCfg: uploadCfg,
	}
}

// IngestResponse reports whether the whole pipeline completed.
type IngestResponse struct {
	Success bool `json:"success"`
}

// Ingest handles POST /documents - Upload and ingest one incident report
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ingest")

	if err := r.ParseMultipartForm(h.uploadCfg.MaxUploadSize); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "failed to parse form", err)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	fileType := entity.FileType(strings.ToLower(strings.TrimSpace(r.FormValue("file_type"))))

	file, header, err := r.FormFile("file")
	if err != nil {
		ctxzap.Error(ctx, "missing report file", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "file is required", err)
		return
	}
	defer file.Close()

	// Fall back to the upload's extension when file_type is omitted.
	if fileType == "" {
		fileType = entity.FileType(strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), "."))
	}

	if err := h.validator.ValidateIngest(title, fileType, header.Size); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctx = logger.AddFields(ctx,
		zap.String("title", title),
		zap.String("file_type", string(fileType)),
		zap.Int64("size_bytes", header.Size),
	)

	// The extractors and the uploader both need a file on disk.
	tmpPath, err := h.spoolUpload(file, fileType)
	if err != nil {
		ctxzap.Error(ctx, "failed to spool upload to disk", zap.Error(err))
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to store upload", err)
		return
	}
	defer os.Remove(tmpPath)

	ctxzap.Info(ctx, "ingesting report")

	ok := h.usecase.IngestDocument(ctx, tmpPath, title, fileType)

	h.respondJSON(w, http.StatusOK, IngestResponse{Success: ok})
}

func (h *Handler) spoolUpload(file io.Reader, fileType entity.FileType) (string, error) {
	tmp, err := os.CreateTemp("", "incident-report-*."+string(fileType))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	h.respondJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
