package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisCleanJSON(t *testing.T) {
	raw := `{
		"incident_symptoms_and_causes": "웹방화벽 과부하",
		"emergency_actions": "보안정책 비활성화 후 Scale-up",
		"document_summary": "프로모션 트래픽으로 인한 장애",
		"image_descriptions": "해당없음"
	}`

	analysis, ok := parseAnalysis(raw)
	require.True(t, ok)
	assert.Equal(t, "웹방화벽 과부하", analysis.SymptomsAndCauses)
	assert.Equal(t, "보안정책 비활성화 후 Scale-up", analysis.EmergencyActions)
	assert.Equal(t, "프로모션 트래픽으로 인한 장애", analysis.DocumentSummary)
	assert.Equal(t, "해당없음", analysis.ImageDescriptions)
}

func TestParseAnalysisFencedJSON(t *testing.T) {
	raw := "분석 결과입니다:\n```json\n" +
		`{"incident_symptoms_and_causes": "a", "emergency_actions": "b", "document_summary": "c", "image_descriptions": "d"}` +
		"\n```\n추가 설명이 이어집니다."

	analysis, ok := parseAnalysis(raw)
	require.True(t, ok)
	assert.Equal(t, "a", analysis.SymptomsAndCauses)
	assert.Equal(t, "d", analysis.ImageDescriptions)
}

func TestParseAnalysisGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose only", "죄송합니다, 분석할 수 없습니다."},
		{"broken json", `{"incident_symptoms_and_causes": "a",`},
		{"empty string", ""},
		{"missing fields", `{"incident_symptoms_and_causes": "a"}`},
		{"empty field", `{"incident_symptoms_and_causes": "", "emergency_actions": "b", "document_summary": "c", "image_descriptions": "d"}`},
		{"wrong shape", `["a", "b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseAnalysis(tt.raw)
			assert.False(t, ok)
		})
	}
}

func TestFailedAnalysisSentinel(t *testing.T) {
	analysis := failedAnalysis()

	assert.Equal(t, analysisFailed, analysis.SymptomsAndCauses)
	assert.Equal(t, analysisFailed, analysis.EmergencyActions)
	assert.Equal(t, analysisFailed, analysis.DocumentSummary)
	assert.Equal(t, analysisFailed, analysis.ImageDescriptions)
}
