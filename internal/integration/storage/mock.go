package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockStorage keeps uploaded files in memory and hands out fake signed URLs.
type MockStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	logger  *zap.Logger
}

func NewMockStorage(logger *zap.Logger) *MockStorage {
	return &MockStorage{
		objects: make(map[string][]byte),
		logger:  logger,
	}
}

func (m *MockStorage) EnsureBucket(ctx context.Context) error {
	return nil
}

func (m *MockStorage) Store(ctx context.Context, r io.Reader, size int64, title string, uploadedAt time.Time) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	objectName := objectNameFor(title, uploadedAt)
	ref := makeReference("http", "mock-storage", "incident-reports", objectName)

	m.mu.Lock()
	m.objects[ref] = data
	m.mu.Unlock()

	ctxzap.Info(ctx, "[MOCK] report file stored",
		zap.String("object", objectName),
		zap.Int("size", len(data)),
	)

	return ref, nil
}

func (m *MockStorage) SignedURL(ctx context.Context, ref string) string {
	if ref == "" {
		return ref
	}
	return ref + "?signature=mock-signature"
}

// Object returns the stored bytes for a reference, for test assertions.
func (m *MockStorage) Object(ref string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[ref]
	return data, ok
}

// ObjectCount reports how many files have been stored.
func (m *MockStorage) ObjectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.objects)
}
