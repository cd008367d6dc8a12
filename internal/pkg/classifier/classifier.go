// Package classifier derives the incident category of a report from its
// text. Classification is purely local keyword matching: no model call, same
// input always yields the same category.
package classifier

import (
	"strings"

	"github.com/seonho-lab/incident-rag/internal/entity"
)

type rule struct {
	incidentType entity.IncidentType
	keywords     []string
}

// rules are checked in order; the first category with a keyword hit wins.
// Keyword sets carry both Korean and English terms because reports arrive in
// either language.
var rules = []rule{
	{entity.IncidentTypeNetwork, []string{"네트워크", "network", "통신"}},
	{entity.IncidentTypeDatabase, []string{"데이터베이스", "database", "db"}},
	{entity.IncidentTypeSystem, []string{"서버", "server", "시스템", "system"}},
	{entity.IncidentTypeSecurity, []string{"방화벽", "firewall", "보안", "security"}},
	{entity.IncidentTypeApplication, []string{"앱", "app", "애플리케이션", "application"}},
}

// Classify returns the incident category for the given report text.
// Text with no keyword hit classifies as "other"; the result is never empty.
func Classify(content string) entity.IncidentType {
	lower := strings.ToLower(content)

	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(lower, keyword) {
				return r.incidentType
			}
		}
	}

	return entity.IncidentTypeOther
}
