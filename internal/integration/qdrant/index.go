// Package qdrant implements the document index on a Qdrant collection:
// hybrid text+vector retrieval plus replace-by-title ingestion.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/config"
	"github.com/seonho-lab/incident-rag/internal/entity"
)

const (
	fieldTitle            = "title"
	fieldContent          = "content"
	fieldSummary          = "summary"
	fieldIncidentType     = "incident_type"
	fieldRootCause        = "root_cause"
	fieldEmergencyActions = "emergency_actions"
	fieldFilePath         = "file_path"
	fieldUploadDate       = "upload_date"
)

// scrollPageSize bounds the title scan during replace-by-title. The corpus
// is expected to stay small; pagination is intentionally absent.
const scrollPageSize = 256

// Index stores one point per ingested document in a Qdrant collection.
type Index struct {
	config config.QdrantConfig
	client *qdrant.Client
	logger *zap.Logger
}

func NewIndex(cfg config.QdrantConfig, logger *zap.Logger) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &Index{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

// Close releases the underlying gRPC connection.
func (i *Index) Close() error {
	return i.client.Close()
}

// EnsureCollection declares the collection schema once at startup: cosine
// vectors of the configured dimension, a keyword index on title for the
// replace-by-title scan and full-text indexes for the lexical search leg.
// The dimension is never migrated afterwards.
func (i *Index) EnsureCollection(ctx context.Context) error {
	exists, err := i.client.CollectionExists(ctx, i.config.Collection)
	if err != nil {
		return fmt.Errorf("check collection existence: %w", err)
	}

	if exists {
		return nil
	}

	err = i.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: i.config.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(i.config.VectorDim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	fieldIndexes := []struct {
		field     string
		fieldType qdrant.FieldType
	}{
		{fieldTitle, qdrant.FieldType_FieldTypeKeyword},
		{fieldContent, qdrant.FieldType_FieldTypeText},
	}

	for _, fi := range fieldIndexes {
		_, err = i.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: i.config.Collection,
			FieldName:      fi.field,
			FieldType:      fi.fieldType.Enum(),
		})
		if err != nil {
			return fmt.Errorf("create field index %q: %w", fi.field, err)
		}
	}

	i.logger.Info("qdrant collection created",
		zap.String("collection", i.config.Collection),
		zap.Int("vector_dim", i.config.VectorDim),
	)

	return nil
}

// UpsertByTitle removes every record sharing the document's title, then
// inserts the new record. The delete and insert are not atomic: a crash in
// between leaves the title absent until the ingest is retried.
func (i *Index) UpsertByTitle(ctx context.Context, doc *entity.Document) error {
	existing, err := i.pointIDsByTitle(ctx, doc.Title)
	if err != nil {
		return fmt.Errorf("scan existing title %q: %w", doc.Title, err)
	}

	if len(existing) > 0 {
		_, err = i.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: i.config.Collection,
			Points:         qdrant.NewPointsSelector(existing...),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("delete existing title %q: %w", doc.Title, err)
		}

		ctxzap.Info(ctx, "replaced existing documents for title",
			zap.String("title", doc.Title),
			zap.Int("deleted_count", len(existing)),
		)
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(doc.ID),
		Vectors: qdrant.NewVectors(doc.ContentVector...),
		Payload: qdrant.NewValueMap(map[string]any{
			fieldTitle:            doc.Title,
			fieldContent:          doc.Content,
			fieldSummary:          doc.Summary,
			fieldIncidentType:     string(doc.IncidentType),
			fieldRootCause:        doc.RootCause,
			fieldEmergencyActions: doc.EmergencyActions,
			fieldFilePath:         doc.FilePath,
			fieldUploadDate:       doc.UploadDate.Format(time.RFC3339),
		}),
	}

	_, err = i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: i.config.Collection,
		Points:         []*qdrant.PointStruct{point},
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("upsert document %q: %w", doc.ID, err)
	}

	return nil
}

// Search runs a hybrid query: a dense nearest-neighbor leg and a dense leg
// restricted to full-text matches on title/content, fused with reciprocal
// rank fusion. Results keep Qdrant's ranking; no re-ranking happens here.
func (i *Index) Search(ctx context.Context, queryText string, queryVector []float32, topK int) ([]*entity.Document, error) {
	if topK <= 0 {
		topK = 3
	}

	prefetchLimit := uint64(topK * 4)

	points, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.config.Collection,
		Prefetch: []*qdrant.PrefetchQuery{
			{
				Query: qdrant.NewQueryDense(queryVector),
				Limit: qdrant.PtrOf(prefetchLimit),
			},
			{
				Query: qdrant.NewQueryDense(queryVector),
				Filter: &qdrant.Filter{
					Should: []*qdrant.Condition{
						qdrant.NewMatchText(fieldContent, queryText),
					},
				},
				Limit: qdrant.PtrOf(prefetchLimit),
			},
		},
		Query:       qdrant.NewQueryFusion(qdrant.Fusion_RRF),
		Limit:       qdrant.PtrOf(uint64(topK)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	docs := make([]*entity.Document, 0, len(points))
	for _, point := range points {
		docs = append(docs, pointToDocument(point))
	}

	return docs, nil
}

// pointIDsByTitle is the filtered scan backing replace-by-title.
func (i *Index) pointIDsByTitle(ctx context.Context, title string) ([]*qdrant.PointId, error) {
	points, err := i.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: i.config.Collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(fieldTitle, title),
			},
		},
		Limit:       qdrant.PtrOf(uint32(scrollPageSize)),
		WithPayload: qdrant.NewWithPayload(false),
	})
	if err != nil {
		return nil, err
	}

	ids := make([]*qdrant.PointId, 0, len(points))
	for _, point := range points {
		ids = append(ids, point.Id)
	}

	return ids, nil
}

func pointToDocument(point *qdrant.ScoredPoint) *entity.Document {
	doc := &entity.Document{
		ID:    point.Id.GetUuid(),
		Score: point.Score,
	}

	payload := point.Payload
	if payload == nil {
		return doc
	}

	doc.Title = payloadString(payload, fieldTitle)
	doc.Content = payloadString(payload, fieldContent)
	doc.Summary = payloadString(payload, fieldSummary)
	doc.IncidentType = entity.IncidentType(payloadString(payload, fieldIncidentType))
	doc.RootCause = payloadString(payload, fieldRootCause)
	doc.EmergencyActions = payloadString(payload, fieldEmergencyActions)
	doc.FilePath = payloadString(payload, fieldFilePath)

	if raw := payloadString(payload, fieldUploadDate); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			doc.UploadDate = t
		}
	}

	return doc
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
