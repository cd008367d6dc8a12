// Package chat answers user queries from past incident reports: retrieve
// similar cases, synthesize an advisory answer and keep per-session history.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/entity"
	"github.com/seonho-lab/incident-rag/internal/pkg/logger"
	"github.com/seonho-lab/incident-rag/internal/repository"
)

const (
	relatedDocumentLimit = 3

	answerTemperature = 0.2
	answerMaxTokens   = 1000

	noSimilarCasesAnswer = "관련된 장애 사례를 찾을 수 없습니다."
	genericErrorAnswer   = "답변 생성 중 오류가 발생했습니다."
)

const answerSystemPrompt = "당신은 IT 장애 대응 전문가입니다. 과거 장애 사례를 바탕으로 정확하고 실용적인 조언을 제공합니다."

const answerPromptTemplate = `당신은 IT 시스템 장애 대응 전문가입니다. 아래 정보를 바탕으로 정확하고 실행 가능한 대응 방안을 제시해주세요.

## 사용자 질의
{query}

## 관련 장애 사례 분석
{context}

## 중요한 답변 규칙
- **context에 장애 사례가 포함되어 있으면 반드시 해당 사례들을 분석하여 답변하세요**
- **context가 완전히 비어있는 경우에만 "유사한 장애 사례를 찾을 수 없습니다"라고 답변하세요**
- **[장애 요약], [장애 원인], [대응 방법], [장애보고서] 등의 항목명은 반드시 그 다음 줄에 내용을 작성하세요**
- **검색된 사례 개수만큼 순서대로 모두 출력하세요**

## 답변 지침
- 구조화된 정보(incident_type, summary, root_cause, emergency_actions)를 최대한 활용하세요
- 장애 유형별 특화된 대응법을 고려하세요
- 근본 원인과 긴급 대응 조치를 명확히 구분하세요
- 유사도가 높은 사례 순으로 우선순위를 매기세요
- summary, root_cause, emergency_actions는 사람이 읽기 쉽게 포매팅하여 작성하세요
- 장애보고서는 [다운로드 링크](file_path)로 링크 형태로 작성하세요`

// Usecase answers queries against the incident index. Chat history writes
// are best effort: a failed save is logged, never surfaced to the caller.
type Usecase struct {
	llm      LLMConnector
	index    DocumentIndex
	storage  BlobStorage
	messages repository.ChatMessageRepository
	logger   *zap.Logger
}

func NewUsecase(
	llm LLMConnector,
	index DocumentIndex,
	storage BlobStorage,
	messages repository.ChatMessageRepository,
	log *zap.Logger,
) *Usecase {
	return &Usecase{
		llm:      llm,
		index:    index,
		storage:  storage,
		messages: messages,
		logger:   log,
	}
}

// AnswerQuery retrieves similar incidents, synthesizes an answer and records
// both sides of the exchange in the session history. It always returns a
// usable answer; retrieval and synthesis failures map to fallback texts.
func (u *Usecase) AnswerQuery(ctx context.Context, sessionID, query string) *entity.ChatAnswer {
	ctx = logger.WithAction(ctx, "answer_query")
	ctx = logger.AddFields(ctx, zap.String("session_id", sessionID))

	u.saveMessage(ctx, sessionID, entity.ChatRoleUser, query)

	answer := u.answer(ctx, query)

	u.saveMessage(ctx, sessionID, entity.ChatRoleAssistant, answer.Answer)

	return answer
}

func (u *Usecase) answer(ctx context.Context, query string) *entity.ChatAnswer {
	vector, err := u.llm.Embed(ctx, query)
	if err != nil || len(vector) == 0 {
		ctxzap.Warn(ctx, "query embedding failed", zap.Error(err))
		return &entity.ChatAnswer{
			Answer:           noSimilarCasesAnswer,
			RelatedDocuments: []entity.RelatedDocument{},
		}
	}

	docs, err := u.index.Search(ctx, query, vector, relatedDocumentLimit)
	if err != nil {
		ctxzap.Warn(ctx, "similar case search failed", zap.Error(err))
		return &entity.ChatAnswer{
			Answer:           noSimilarCasesAnswer,
			RelatedDocuments: []entity.RelatedDocument{},
		}
	}

	if len(docs) == 0 {
		return &entity.ChatAnswer{
			Answer:           noSimilarCasesAnswer,
			RelatedDocuments: []entity.RelatedDocument{},
		}
	}

	// Swap unsigned storage references for signed download URLs before the
	// documents reach the prompt or the response.
	related := make([]entity.RelatedDocument, 0, len(docs))
	for _, doc := range docs {
		related = append(related, entity.RelatedDocument{
			Title:            doc.Title,
			IncidentType:     doc.IncidentType,
			Summary:          doc.Summary,
			RootCause:        doc.RootCause,
			EmergencyActions: doc.EmergencyActions,
			FilePath:         u.storage.SignedURL(ctx, doc.FilePath),
			UploadDate:       doc.UploadDate,
		})
	}

	prompt := strings.NewReplacer(
		"{query}", query,
		"{context}", buildContext(related),
	).Replace(answerPromptTemplate)

	answerText, err := u.llm.Complete(ctx, answerSystemPrompt, prompt, answerTemperature, answerMaxTokens)
	if err != nil {
		ctxzap.Warn(ctx, "answer synthesis failed", zap.Error(err))
		return &entity.ChatAnswer{
			Answer:           genericErrorAnswer,
			RelatedDocuments: []entity.RelatedDocument{},
		}
	}

	ctxzap.Info(ctx, "query answered",
		zap.Int("related_count", len(related)),
		zap.Int("answer_length", len(answerText)),
	)

	return &entity.ChatAnswer{
		Answer:           answerText,
		RelatedDocuments: related,
	}
}

// SessionMessages returns the session's chat history, oldest first.
func (u *Usecase) SessionMessages(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error) {
	return u.messages.GetSessionMessages(ctx, sessionID)
}

// ResetSession deletes the session's chat history.
func (u *Usecase) ResetSession(ctx context.Context, sessionID string) error {
	return u.messages.DeleteSessionMessages(ctx, sessionID)
}

func (u *Usecase) saveMessage(ctx context.Context, sessionID, role, content string) {
	if _, err := u.messages.CreateMessage(ctx, sessionID, role, content); err != nil {
		ctxzap.Warn(ctx, "could not save chat message",
			zap.String("role", role),
			zap.Error(err),
		)
	}
}

// buildContext renders retrieved cases as the numbered block the answer
// prompt consumes, most similar first.
func buildContext(docs []entity.RelatedDocument) string {
	var b strings.Builder

	for i, doc := range docs {
		fmt.Fprintf(&b, "사례 %d: %s\n", i+1, doc.Title)
		fmt.Fprintf(&b, "- 원인: %s\n", doc.RootCause)
		fmt.Fprintf(&b, "- 대응방안: %s\n", doc.EmergencyActions)
		fmt.Fprintf(&b, "- 요약: %s\n", doc.Summary)
		fmt.Fprintf(&b, "- 장애보고서: %s\n\n", doc.FilePath)
	}

	return strings.TrimRight(b.String(), "\n")
}
