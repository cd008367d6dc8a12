package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    entity.IncidentType
	}{
		{
			name:    "korean network keyword",
			content: "금일 새벽 네트워크 스위치 장애로 서비스 접속 불가",
			want:    entity.IncidentTypeNetwork,
		},
		{
			name:    "english database keyword",
			content: "database connection timeout observed on primary",
			want:    entity.IncidentTypeDatabase,
		},
		{
			name:    "db abbreviation",
			content: "DB 커넥션 풀 고갈",
			want:    entity.IncidentTypeDatabase,
		},
		{
			name:    "server keyword",
			content: "서버 CPU 사용률 100% 지속",
			want:    entity.IncidentTypeSystem,
		},
		{
			name:    "firewall keyword",
			content: "방화벽 정책 오적용으로 인한 차단",
			want:    entity.IncidentTypeSecurity,
		},
		{
			name:    "application keyword",
			content: "모바일 앱 로그인 오류 발생",
			want:    entity.IncidentTypeApplication,
		},
		{
			name:    "no keyword",
			content: "원인 불명 현상 보고",
			want:    entity.IncidentTypeOther,
		},
		{
			name:    "empty content",
			content: "",
			want:    entity.IncidentTypeOther,
		},
		{
			name:    "uppercase keyword",
			content: "NETWORK LINK DOWN",
			want:    entity.IncidentTypeNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.content))
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	// Network outranks database when both keyword sets hit.
	got := Classify("네트워크 단절로 database replication 지연")
	assert.Equal(t, entity.IncidentTypeNetwork, got)

	// Database outranks system.
	got = Classify("database 장애로 서버 재기동")
	assert.Equal(t, entity.IncidentTypeDatabase, got)
}

func TestClassifyDeterministic(t *testing.T) {
	content := "서버 및 애플리케이션 점검 보고"

	first := Classify(content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(content))
	}
}
