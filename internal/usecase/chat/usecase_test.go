package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/entity"
	"github.com/seonho-lab/incident-rag/internal/integration/openai"
	"github.com/seonho-lab/incident-rag/internal/integration/qdrant"
	"github.com/seonho-lab/incident-rag/internal/integration/storage"
)

// memoryMessages is an in-memory ChatMessageRepository for tests.
type memoryMessages struct {
	mu       sync.Mutex
	messages map[string][]*entity.ChatMessage
	failing  bool
}

func newMemoryMessages() *memoryMessages {
	return &memoryMessages{messages: make(map[string][]*entity.ChatMessage)}
}

func (m *memoryMessages) CreateMessage(ctx context.Context, sessionID, role, content string) (*entity.ChatMessage, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidSessionID, err)
	}
	if m.failing {
		return nil, fmt.Errorf("storage unavailable")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msg := &entity.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}
	m.messages[sessionID] = append(m.messages[sessionID], msg)

	return msg, nil
}

func (m *memoryMessages) GetSessionMessages(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidSessionID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.messages[sessionID], nil
}

func (m *memoryMessages) DeleteSessionMessages(ctx context.Context, sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidSessionID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.messages, sessionID)
	return nil
}

type chatFixture struct {
	usecase  *Usecase
	llm      *openai.MockConnector
	index    *qdrant.MockIndex
	storage  *storage.MockStorage
	messages *memoryMessages
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	log := zap.NewNop()
	llm := openai.NewMockConnector(64, log)
	index := qdrant.NewMockIndex(log)
	store := storage.NewMockStorage(log)
	messages := newMemoryMessages()

	return &chatFixture{
		usecase:  NewUsecase(llm, index, store, messages, log),
		llm:      llm,
		index:    index,
		storage:  store,
		messages: messages,
	}
}

func (f *chatFixture) indexDocument(t *testing.T, title, content string) {
	t.Helper()

	vector, err := f.llm.Embed(context.Background(), content)
	require.NoError(t, err)

	err = f.index.UpsertByTitle(context.Background(), &entity.Document{
		ID:               uuid.NewString(),
		Title:            title,
		Content:          content,
		Summary:          "요약: " + title,
		RootCause:        "원인: " + title,
		EmergencyActions: "조치: " + title,
		IncidentType:     entity.IncidentTypeDatabase,
		ContentVector:    vector,
		FilePath:         "http://mock-storage/incident-reports/20250101_000000_" + title,
	})
	require.NoError(t, err)
}

func TestAnswerQueryNoSimilarCases(t *testing.T) {
	f := newChatFixture(t)
	sessionID := uuid.NewString()

	answer := f.usecase.AnswerQuery(context.Background(), sessionID, "database 장애 대응 방법")

	assert.Equal(t, noSimilarCasesAnswer, answer.Answer)
	assert.Empty(t, answer.RelatedDocuments)

	// Both sides of the exchange land in the history regardless.
	history, err := f.usecase.SessionMessages(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.ChatRoleUser, history[0].Role)
	assert.Equal(t, entity.ChatRoleAssistant, history[1].Role)
}

func TestAnswerQueryWithRetrievedCases(t *testing.T) {
	f := newChatFixture(t)

	f.indexDocument(t, "주문 DB 장애", "database connection failure로 주문 실패")
	f.indexDocument(t, "배송 지연", "외부 배송사 API 응답 지연")

	answer := f.usecase.AnswerQuery(context.Background(), uuid.NewString(), "database connection failure")

	assert.NotEqual(t, noSimilarCasesAnswer, answer.Answer)
	assert.NotEqual(t, genericErrorAnswer, answer.Answer)
	require.NotEmpty(t, answer.RelatedDocuments)

	// The case sharing the query's terms ranks first.
	assert.Equal(t, "주문 DB 장애", answer.RelatedDocuments[0].Title)
}

func TestAnswerQuerySignsDownloadURLs(t *testing.T) {
	f := newChatFixture(t)

	f.indexDocument(t, "결제 장애", "database 결제 트랜잭션 실패")

	answer := f.usecase.AnswerQuery(context.Background(), uuid.NewString(), "결제 database 실패")

	require.NotEmpty(t, answer.RelatedDocuments)
	assert.Contains(t, answer.RelatedDocuments[0].FilePath, "signature=")
}

func TestAnswerQueryRelatedDocumentLimit(t *testing.T) {
	f := newChatFixture(t)

	for i := 0; i < 5; i++ {
		f.indexDocument(t, fmt.Sprintf("database 장애 %d", i), fmt.Sprintf("database 오류 사례 %d", i))
	}

	answer := f.usecase.AnswerQuery(context.Background(), uuid.NewString(), "database 오류")

	assert.LessOrEqual(t, len(answer.RelatedDocuments), relatedDocumentLimit)
}

func TestAnswerQuerySynthesisFailure(t *testing.T) {
	f := newChatFixture(t)
	f.llm.FailCompletions = true

	f.indexDocument(t, "네트워크 장애", "network 단절 사례")

	answer := f.usecase.AnswerQuery(context.Background(), uuid.NewString(), "network 단절")

	assert.Equal(t, genericErrorAnswer, answer.Answer)
	assert.Empty(t, answer.RelatedDocuments)
}

func TestAnswerQueryEmbeddingFailure(t *testing.T) {
	f := newChatFixture(t)

	f.indexDocument(t, "시스템 장애", "서버 다운 사례")

	// Flip after indexing so only the query embedding fails.
	f.llm.FailEmbeddings = true

	answer := f.usecase.AnswerQuery(context.Background(), uuid.NewString(), "서버 다운")

	assert.Equal(t, noSimilarCasesAnswer, answer.Answer)
	assert.Empty(t, answer.RelatedDocuments)
}

func TestAnswerQueryHistoryFailureIsBestEffort(t *testing.T) {
	f := newChatFixture(t)
	f.messages.failing = true

	f.indexDocument(t, "DB 장애", "database 오류")

	answer := f.usecase.AnswerQuery(context.Background(), uuid.NewString(), "database 오류")

	assert.NotEqual(t, genericErrorAnswer, answer.Answer)
	assert.NotEmpty(t, answer.RelatedDocuments)
}

func TestResetSession(t *testing.T) {
	f := newChatFixture(t)
	sessionID := uuid.NewString()

	f.usecase.AnswerQuery(context.Background(), sessionID, "첫 질문")

	require.NoError(t, f.usecase.ResetSession(context.Background(), sessionID))

	history, err := f.usecase.SessionMessages(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
