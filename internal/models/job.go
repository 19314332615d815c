package models

import (
	"encoding/json"
	"time"
)

// Job statuses
const (
	JobStatusCompleted = "completed"
	JobStatusError     = "error"
)

// MergeJob records one run of the merge pipeline
type MergeJob struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	OutputPath     string    `json:"output_path"`
	InputsJSON     string    `gorm:"type:text" json:"inputs_json"`
	InputCount     int       `json:"input_count"`
	PageCount      int       `json:"page_count"`
	Compressed     bool      `json:"compressed"`
	MergedSize     int64     `json:"merged_size"`
	OutputSize     int64     `json:"output_size"`
	DurationMillis int64     `json:"duration_ms"`
	Status         string    `gorm:"index" json:"status"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// Inputs returns the input descriptors recorded for the job
func (j *MergeJob) Inputs() []string {
	var inputs []string
	if j.InputsJSON == "" {
		return inputs
	}
	if err := json.Unmarshal([]byte(j.InputsJSON), &inputs); err != nil {
		return nil
	}
	return inputs
}

// SetInputs stores the input descriptors of the job
func (j *MergeJob) SetInputs(inputs []string) error {
	data, err := json.Marshal(inputs)
	if err != nil {
		return err
	}
	j.InputsJSON = string(data)
	j.InputCount = len(inputs)
	return nil
}

// DataSaved returns the bytes removed by compression
func (j *MergeJob) DataSaved() int64 {
	if !j.Compressed {
		return 0
	}
	return j.MergedSize - j.OutputSize
}
