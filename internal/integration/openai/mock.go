package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

// MockConnector is an in-process stand-in for the chat/embedding service.
// Embeddings are deterministic token-hash vectors so that equal texts embed
// identically and overlapping texts stay close under cosine similarity.
type MockConnector struct {
	dimension int
	logger    *zap.Logger

	// Failure switches for pipeline tests.
	FailCompletions bool
	FailEmbeddings  bool
}

func NewMockConnector(dimension int, logger *zap.Logger) *MockConnector {
	if dimension <= 0 {
		dimension = 64
	}
	return &MockConnector{
		dimension: dimension,
		logger:    logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error) {
	if m.FailCompletions {
		return "", fmt.Errorf("mock completion failure")
	}

	ctxzap.Info(ctx, "[MOCK] chat completion", zap.Int("prompt_length", len(userPrompt)))

	// Analysis prompts ask for the structured payload; answer prompts get a
	// short canned advisory.
	if strings.Contains(userPrompt, "incident_symptoms_and_causes") {
		payload, _ := json.Marshal(entity.IncidentAnalysis{
			SymptomsAndCauses: "Mock root cause analysis.",
			EmergencyActions:  "Mock emergency actions.",
			DocumentSummary:   "Mock document summary.",
			ImageDescriptions: "n/a",
		})
		return "Here is the analysis:\n```json\n" + string(payload) + "\n```", nil
	}

	return "Based on the retrieved incidents, check the affected component and apply the documented emergency actions.", nil
}

func (m *MockConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.FailEmbeddings {
		return nil, fmt.Errorf("mock embedding failure")
	}

	vector := make([]float32, m.dimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[int(h.Sum32())%m.dimension]++
	}

	// L2 normalize so cosine similarity behaves like the real service.
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}

	return vector, nil
}
