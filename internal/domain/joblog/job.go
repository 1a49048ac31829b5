package joblog

import (
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/bmu-faultfinder/internal/domain/catalog"
)

// Job is one committed diagnostic session. Rows are append-only.
type Job struct {
	ID        string                      `gorm:"column:id;primaryKey;size:64" json:"id"`
	Site      string                      `gorm:"column:site" json:"site"`
	BmuID     string                      `gorm:"column:bmu_id" json:"bmuId"`
	ModelID   string                      `gorm:"column:model_id;index" json:"modelId"`
	Date      string                      `gorm:"column:date" json:"date"`
	Reported  string                      `gorm:"column:reported" json:"reported"`
	Checks    datatypes.JSONSlice[string] `gorm:"column:checks" json:"checks"`
	Diagnosis string                      `gorm:"column:diagnosis" json:"diagnosis"`
	Parts     string                      `gorm:"column:parts" json:"parts"`
	CreatedAt time.Time                   `gorm:"column:created_at;not null;index" json:"createdAt"`

	// Model is attached from the catalog on read; it is not persisted.
	Model *catalog.Model `gorm:"-" json:"model"`
}

func (Job) TableName() string { return "job_log" }

// Input is the save payload. Every field is optional; a malformed body
// decodes to the zero Input. Id and createdAt are always server assigned.
type Input struct {
	Site      string   `json:"site"`
	BmuID     string   `json:"bmuId"`
	ModelID   string   `json:"modelId"`
	Date      string   `json:"date"`
	Reported  string   `json:"reported"`
	Checks    []string `json:"checks"`
	Diagnosis string   `json:"diagnosis"`
	Parts     string   `json:"parts"`
}

// Clone returns a deep copy so callers can attach read-side fields.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	if j.Checks != nil {
		out.Checks = append(datatypes.JSONSlice[string]{}, j.Checks...)
	}
	return &out
}
