// Package builder wires configuration, collaborators, use cases and the HTTP
// server into a runnable application.
package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/api"
	chatapi "github.com/seonho-lab/incident-rag/internal/api/chat"
	documentapi "github.com/seonho-lab/incident-rag/internal/api/document"
	"github.com/seonho-lab/incident-rag/internal/config"
	"github.com/seonho-lab/incident-rag/internal/entity"
	"github.com/seonho-lab/incident-rag/internal/integration/openai"
	"github.com/seonho-lab/incident-rag/internal/integration/qdrant"
	"github.com/seonho-lab/incident-rag/internal/integration/storage"
	"github.com/seonho-lab/incident-rag/internal/pkg/extractor"
	"github.com/seonho-lab/incident-rag/internal/pkg/validator"
	"github.com/seonho-lab/incident-rag/internal/repository"
	"github.com/seonho-lab/incident-rag/internal/usecase/chat"
	"github.com/seonho-lab/incident-rag/internal/usecase/ingest"
	pkghttp "github.com/seonho-lab/incident-rag/pkg/http"
)

// llmConnector is the combined surface of the chat/embedding collaborator.
type llmConnector interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// documentIndex is the combined surface of the search index collaborator.
type documentIndex interface {
	EnsureCollection(ctx context.Context) error
	UpsertByTitle(ctx context.Context, doc *entity.Document) error
	Search(ctx context.Context, queryText string, queryVector []float32, topK int) ([]*entity.Document, error)
}

// blobStorage is the combined surface of the object store collaborator.
type blobStorage interface {
	EnsureBucket(ctx context.Context) error
	ingest.BlobStorage
	chat.BlobStorage
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	chatMessageRepo := repository.NewChatMessagePostgres(db)
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	llmConn, index, blobStore, closers, err := setupConnectors(ctx, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Initialize extractors and validators
	textExtractor := extractor.New(logger)
	fileValidator := validator.NewValidator(cfg.FileUploadCfg)
	logger.Info("Extractors and validators initialized")

	// Initialize use cases
	ingestUC := ingest.NewUsecase(llmConn, index, blobStore, textExtractor, logger)
	chatUC := chat.NewUsecase(llmConn, index, blobStore, chatMessageRepo, logger)
	logger.Info("Use cases initialized")

	// Setup API handlers
	documentHandler := documentapi.NewHandler(ingestUC, fileValidator, cfg.FileUploadCfg)
	chatHandler := chatapi.NewHandler(chatUC)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(documentHandler, chatHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
		// Report ingestion is synchronous; write timeout must cover it.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 125 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:  server,
		db:      db,
		logger:  logger,
		closers: closers,
	}, nil
}

// BuildIngestor builds only the ingestion pipeline, for the seeding command.
// The returned cleanup releases the index connection.
func BuildIngestor() (*ingest.Usecase, *zap.Logger, func(), error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	llmConn, index, blobStore, closers, err := setupConnectors(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	textExtractor := extractor.New(logger)
	ingestUC := ingest.NewUsecase(llmConn, index, blobStore, textExtractor, logger)

	cleanup := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Warn("Connection close error", zap.Error(err))
			}
		}
	}

	return ingestUC, logger, cleanup, nil
}

// setupConnectors builds either the real collaborators or their in-process
// mocks and bootstraps the collection and bucket. Bootstrap is the only
// retried operation in the application.
func setupConnectors(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
) (llmConnector, documentIndex, blobStorage, []func() error, error) {
	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")

		return openai.NewMockConnector(cfg.QdrantCfg.VectorDim, logger),
			qdrant.NewMockIndex(logger),
			storage.NewMockStorage(logger),
			nil, nil
	}

	logger.Info("Using real connectors for external services")

	httpClient := pkghttp.NewClient(
		pkghttp.WithConnClientTimeout(cfg.HTTPCfg.ConnTimeout),
		pkghttp.WithRequestTimeout(cfg.HTTPCfg.RequestTimeout),
		pkghttp.WithClientKeepAlive(cfg.HTTPCfg.KeepAlive),
		pkghttp.WithIdleConnTimeout(cfg.HTTPCfg.IdleConnTimeout),
		pkghttp.WithResponseHeaderTimeout(cfg.HTTPCfg.ResponseHeaderTimeout),
		pkghttp.WithRequestLogging(),
	)

	llmConn := openai.NewConnector(cfg.OpenAICfg, httpClient, logger)

	index, err := qdrant.NewIndex(cfg.QdrantCfg, logger)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("setup document index: %w", err)
	}

	blobStore, err := storage.NewConnector(cfg.StorageCfg, httpClient.Transport, logger)
	if err != nil {
		index.Close()
		return nil, nil, nil, nil, fmt.Errorf("setup blob storage: %w", err)
	}

	bootstrapOpts := append(cfg.BootstrapRetry.ToRetryOptions(), retry.Context(ctx))

	err = retry.Do(func() error {
		return index.EnsureCollection(ctx)
	}, bootstrapOpts...)
	if err != nil {
		index.Close()
		return nil, nil, nil, nil, fmt.Errorf("bootstrap collection: %w", err)
	}

	err = retry.Do(func() error {
		return blobStore.EnsureBucket(ctx)
	}, bootstrapOpts...)
	if err != nil {
		index.Close()
		return nil, nil, nil, nil, fmt.Errorf("bootstrap bucket: %w", err)
	}

	logger.Info("Collection and bucket bootstrapped")

	return llmConn, index, blobStore, []func() error{index.Close}, nil
}
