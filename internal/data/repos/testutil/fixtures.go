package testutil

import (
	"fmt"
	"time"

	"gorm.io/datatypes"

	types "github.com/yungbote/bmu-faultfinder/internal/domain"
)

// NewJob builds a fully populated job with a deterministic id.
func NewJob(n int, createdAt time.Time) *types.Job {
	return &types.Job{
		ID:        fmt.Sprintf("job-test-%04d", n),
		Site:      "Harbor Tower",
		BmuID:     fmt.Sprintf("BMU-%02d", n),
		ModelID:   "alimak-a1",
		Date:      createdAt.Format("2006-01-02"),
		Reported:  "Trolley not travelling",
		Checks:    datatypes.JSONSlice[string]{"24V present", "Limit switch open"},
		Diagnosis: "Forward travel limit switch stuck open",
		Parts:     "ALM-TRL-LIM-01",
		CreatedAt: createdAt.UTC(),
	}
}
