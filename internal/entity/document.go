package entity

import "time"

// IncidentType is the closed set of incident categories. It is derived
// locally from report content by keyword matching, never by a model call.
type IncidentType string

const (
	IncidentTypeNetwork     IncidentType = "network"
	IncidentTypeDatabase    IncidentType = "database"
	IncidentTypeSystem      IncidentType = "system"
	IncidentTypeSecurity    IncidentType = "security"
	IncidentTypeApplication IncidentType = "application"
	IncidentTypeOther       IncidentType = "other"
)

// FileType is the declared type of an uploaded report file.
type FileType string

const (
	FileTypeDOCX     FileType = "docx"
	FileTypePDF      FileType = "pdf"
	FileTypeText     FileType = "txt"
	FileTypeMarkdown FileType = "md"
)

// Document is one ingested incident report as stored in the search index.
//
// Title acts as a natural key: re-ingesting a title removes the previous
// records before the new one is inserted. ID is generated once at ingestion
// and never reused. FilePath is the stable, unsigned storage reference;
// signed download URLs are derived on read and never persisted.
type Document struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Content          string       `json:"content"`
	Summary          string       `json:"summary"`
	RootCause        string       `json:"root_cause"`
	EmergencyActions string       `json:"emergency_actions"`
	IncidentType     IncidentType `json:"incident_type"`
	ContentVector    []float32    `json:"content_vector,omitempty"`
	FilePath         string       `json:"file_path"`
	UploadDate       time.Time    `json:"upload_date"`

	// Score is the index relevance for search results; zero otherwise.
	Score float32 `json:"score,omitempty"`
}

// IncidentAnalysis is the fixed-shape structured summary produced by the
// text-generation collaborator for one report.
type IncidentAnalysis struct {
	SymptomsAndCauses string `json:"incident_symptoms_and_causes"`
	EmergencyActions  string `json:"emergency_actions"`
	DocumentSummary   string `json:"document_summary"`
	ImageDescriptions string `json:"image_descriptions"`
}
