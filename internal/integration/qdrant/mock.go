package qdrant

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

// MockIndex is an in-memory document index with cosine ranking. It mirrors
// the real index's replace-by-title semantics and is used when mocks are
// enabled and by pipeline tests.
type MockIndex struct {
	mu     sync.Mutex
	docs   []*entity.Document
	logger *zap.Logger
}

func NewMockIndex(logger *zap.Logger) *MockIndex {
	return &MockIndex{logger: logger}
}

func (m *MockIndex) EnsureCollection(ctx context.Context) error {
	return nil
}

func (m *MockIndex) UpsertByTitle(ctx context.Context, doc *entity.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.docs[:0]
	for _, d := range m.docs {
		if d.Title != doc.Title {
			kept = append(kept, d)
		}
	}
	m.docs = kept

	clone := *doc
	m.docs = append(m.docs, &clone)

	return nil
}

func (m *MockIndex) Search(ctx context.Context, queryText string, queryVector []float32, topK int) ([]*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if topK <= 0 {
		topK = 3
	}

	lowerQuery := strings.ToLower(queryText)

	results := make([]*entity.Document, 0, len(m.docs))
	for _, d := range m.docs {
		clone := *d
		clone.Score = cosine(queryVector, d.ContentVector)
		// Crude lexical leg: substring hits nudge the score the way the
		// fused ranking would.
		if lowerQuery != "" && strings.Contains(strings.ToLower(d.Content), lowerQuery) {
			clone.Score += 0.1
		}
		results = append(results, &clone)
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// Documents returns a snapshot of all stored records, insertion-ordered.
func (m *MockIndex) Documents() []*entity.Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*entity.Document, 0, len(m.docs))
	for _, d := range m.docs {
		clone := *d
		out = append(out, &clone)
	}
	return out
}

func cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
