// Command seed-data ingests every supported report file in a directory.
// It shares the -env flag with the server binary.
package main

import (
	"context"
	"flag"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/builder"
	"github.com/seonho-lab/incident-rag/internal/entity"
)

var supportedExtensions = map[string]entity.FileType{
	".docx": entity.FileTypeDOCX,
	".pdf":  entity.FileTypePDF,
	".txt":  entity.FileTypeText,
	".md":   entity.FileTypeMarkdown,
}

func main() {
	dir := flag.String("dir", "./sample-data", "Directory with report files to ingest")

	ingestUC, logger, cleanup, err := builder.BuildIngestor()
	if err != nil {
		log.Fatal("Failed to build ingestor:", err)
	}
	defer cleanup()

	ctx := context.Background()

	var ingested, failed, skipped int

	err = filepath.WalkDir(*dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		fileType, ok := supportedExtensions[ext]
		if !ok {
			skipped++
			return nil
		}

		title := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))

		logger.Info("Seeding report", zap.String("path", path), zap.String("title", title))

		if ingestUC.IngestDocument(ctx, path, title, fileType) {
			ingested++
		} else {
			failed++
			logger.Warn("Report not ingested", zap.String("path", path))
		}

		return nil
	})
	if err != nil {
		logger.Fatal("Seeding walk failed", zap.String("dir", *dir), zap.Error(err))
	}

	logger.Info("Seeding finished",
		zap.Int("ingested", ingested),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
	)
}
