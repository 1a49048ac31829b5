package services

import (
	"strings"
	"time"

	types "github.com/yungbote/bmu-faultfinder/internal/domain"
)

const noChecks = "—"

// FormatSummary renders the copy/export text for a job. It reads nothing but
// the job itself.
func FormatSummary(job *types.Job) string {
	if job == nil {
		return ""
	}
	equipment := job.BmuID
	if equipment == "" {
		equipment = job.ModelID
	}
	checks := noChecks
	if len(job.Checks) > 0 {
		checks = strings.Join(job.Checks, "; ")
	}
	stamp := ""
	if !job.CreatedAt.IsZero() {
		stamp = job.CreatedAt.UTC().Format(time.RFC3339)
	}

	var b strings.Builder
	b.WriteString("Site: " + job.Site + "\n")
	b.WriteString("BMU: " + equipment + "\n")
	b.WriteString("Reported: " + job.Reported + "\n")
	b.WriteString("Checks: " + checks + "\n")
	b.WriteString("Diagnosis: " + job.Diagnosis + "\n")
	b.WriteString("Parts: " + job.Parts + "\n")
	b.WriteString("Timestamp: " + stamp)
	return b.String()
}
