package models

import (
	"time"

	"github.com/google/uuid"
)

// RunMeta contains metadata about a batch validation run
type RunMeta struct {
	ID          string       `json:"id"`
	InputFile   string       `json:"input_file"`
	Profile     string       `json:"profile"`
	Workers     int          `json:"workers"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Status      RunStatus    `json:"status"`
	Summary     BatchSummary `json:"summary"`
	ReportPaths []string     `json:"report_paths,omitempty"`
}

// NewRun creates a new run record with initialized metadata
func NewRun(inputFile, profile string, workers int) *RunMeta {
	return &RunMeta{
		ID:          uuid.New().String(),
		InputFile:   inputFile,
		Profile:     profile,
		Workers:     workers,
		StartedAt:   time.Now(),
		Status:      StatusRunning,
		ReportPaths: []string{},
	}
}
