package entity

import "time"

// RelatedDocument is one retrieved incident returned alongside an answer.
// FilePath carries the time-boxed signed download URL when signing
// succeeded, otherwise the unsigned storage reference.
type RelatedDocument struct {
	Title            string       `json:"title"`
	IncidentType     IncidentType `json:"incident_type"`
	Summary          string       `json:"summary"`
	RootCause        string       `json:"root_cause"`
	EmergencyActions string       `json:"emergency_actions"`
	FilePath         string       `json:"file_path"`
	UploadDate       time.Time    `json:"upload_date"`
}

// ChatAnswer is the synthesized response to one user query. RelatedDocuments
// is ordered most-similar first, exactly as ranked by the index.
type ChatAnswer struct {
	Answer           string            `json:"answer"`
	RelatedDocuments []RelatedDocument `json:"related_documents"`
}

// ChatMessage is one persisted turn of a conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)
