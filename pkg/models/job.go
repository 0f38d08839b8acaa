package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// PipelineResult carries the output file paths of a completed pipeline run.
type PipelineResult struct {
	TranscriptPath      string `json:"transcript_path"`
	SummaryPath         string `json:"summary_path"`
	RecommendationsPath string `json:"recommendations_path,omitempty"`
}

// PipelineJob tracks one background ingestion run. The API returns the
// pipeline id on POST /api/v1/pipelines; the client polls
// GET /api/v1/pipelines/{pipelineID} until status is completed or failed.
// Terminal entries stay in the table until explicitly removed.
type PipelineJob struct {
	ID           uuid.UUID       `json:"id"`
	PipelineID   string          `json:"pipeline_id"`
	Status       string          `json:"status"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	Result       *PipelineResult `json:"result,omitempty"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
