package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	bucket, object, err := parseReference("https://storage.example.com/incident-reports/20250101_090000_report.docx")
	require.NoError(t, err)
	assert.Equal(t, "incident-reports", bucket)
	assert.Equal(t, "20250101_090000_report.docx", object)
}

func TestParseReferenceRoundTrip(t *testing.T) {
	titles := []string{
		"simple-report",
		"report with spaces",
		"서버 장애 보고서",
		"report/with/slashes",
	}

	uploadedAt := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			objectName := objectNameFor(title, uploadedAt)
			ref := makeReference("https", "storage.example.com", "incident-reports", objectName)

			bucket, object, err := parseReference(ref)
			require.NoError(t, err)
			assert.Equal(t, "incident-reports", bucket)
			assert.Equal(t, objectName, object)
		})
	}
}

func TestParseReferenceInvalid(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"no object", "https://storage.example.com/incident-reports"},
		{"no bucket", "https://storage.example.com/"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseReference(tt.ref)
			assert.Error(t, err)
		})
	}
}

func TestObjectNameFor(t *testing.T) {
	uploadedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, "20250102_030405_report", objectNameFor("report", uploadedAt))
}
