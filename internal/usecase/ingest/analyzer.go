package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

const (
	analysisTemperature = 0.3
	analysisMaxTokens   = 2000

	// analysisFailed marks every field of an analysis that could not be
	// produced; the document is still ingested.
	analysisFailed = "분석 실패"
)

const analysisSystemPrompt = "당신은 장애보고서 분석 전문가입니다. 정확하고 구조화된 분석을 제공합니다."

const analysisPromptTemplate = `다음 장애보고서를 분석하여 아래 4가지 항목으로 요약해주세요:

1. 장애 현상과 원인
2. 긴급조치 방안
3. 문서 전체 요약
4. 이미지 및 차트 설명 (문서에 포함된 이미지나 차트가 있다면)

장애보고서 내용:
%s

출력 형식:
` + "```json" + `
{
    "incident_symptoms_and_causes": "장애 현상과 근본 원인에 대한 상세 설명",
    "emergency_actions": "긴급조치 방안과 대응 절차",
    "document_summary": "전체 문서의 핵심 내용 요약",
    "image_descriptions": "이미지나 차트에 대한 설명 (없으면 '해당없음')"
}
` + "```"

// analyzeReport asks the model for the structured four-field summary. Any
// failure, transport or parse, degrades to the sentinel analysis so that
// ingestion continues with the original text intact.
func (u *Usecase) analyzeReport(ctx context.Context, content string) *entity.IncidentAnalysis {
	prompt := fmt.Sprintf(analysisPromptTemplate, content)

	raw, err := u.llm.Complete(ctx, analysisSystemPrompt, prompt, analysisTemperature, analysisMaxTokens)
	if err != nil {
		ctxzap.Warn(ctx, "incident analysis request failed, using fallback analysis", zap.Error(err))
		return failedAnalysis()
	}

	analysis, ok := parseAnalysis(raw)
	if !ok {
		ctxzap.Warn(ctx, "incident analysis response unparseable, using fallback analysis",
			zap.Int("response_length", len(raw)),
		)
		return failedAnalysis()
	}

	return analysis
}

// parseAnalysis tolerates prose and code fences around the JSON payload:
// a strict parse is tried first, then the substring between the first "{"
// and the last "}".
func parseAnalysis(raw string) (*entity.IncidentAnalysis, bool) {
	if a, ok := unmarshalAnalysis(raw); ok {
		return a, true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	return unmarshalAnalysis(raw[start : end+1])
}

func unmarshalAnalysis(s string) (*entity.IncidentAnalysis, bool) {
	var a entity.IncidentAnalysis
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return nil, false
	}

	// All four fields are required; a payload with the wrong shape is as
	// useless as no payload.
	if a.SymptomsAndCauses == "" || a.EmergencyActions == "" || a.DocumentSummary == "" || a.ImageDescriptions == "" {
		return nil, false
	}

	return &a, true
}

func failedAnalysis() *entity.IncidentAnalysis {
	return &entity.IncidentAnalysis{
		SymptomsAndCauses: analysisFailed,
		EmergencyActions:  analysisFailed,
		DocumentSummary:   analysisFailed,
		ImageDescriptions: analysisFailed,
	}
}
