package openai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/config"
)

// Connector talks to an OpenAI-compatible API for both chat completion and
// embedding generation. One configured client is shared by all operations.
type Connector struct {
	config config.OpenAIConfig
	client *openai.Client
	logger *zap.Logger
}

func NewConnector(
	cfg config.OpenAIConfig,
	httpClient *http.Client,
	logger *zap.Logger,
) *Connector {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = httpClient

	return &Connector{
		config: cfg,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}
}

// Complete sends one system+user prompt pair and returns the model's text.
func (c *Connector) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error) {
	ctxzap.Debug(ctx, "requesting chat completion",
		zap.String("model", c.config.ChatModel),
		zap.Int("prompt_length", len(userPrompt)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choice list")
	}

	ctxzap.Debug(ctx, "chat completion received",
		zap.Int("result_length", len(resp.Choices[0].Message.Content)),
	)

	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for the given text.
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.config.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("create embeddings: no vector returned")
	}

	return resp.Data[0].Embedding, nil
}
