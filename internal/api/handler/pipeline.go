package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kiranshivaraju/podscribe/internal/api/response"
	"github.com/kiranshivaraju/podscribe/internal/pipeline"
	"github.com/kiranshivaraju/podscribe/pkg/models"
)

// PipelineTracker defines the interface the pipeline handlers depend on.
type PipelineTracker interface {
	Submit(ctx context.Context, id pipeline.ID) (models.PipelineJob, bool)
	Status(ctx context.Context, pipelineID string) (models.PipelineJob, error)
	Remove(ctx context.Context, pipelineID string) int
	ArtifactPath(pipelineID string, kind models.ArtifactType) (string, error)
}

type submitPipelineResponse struct {
	Job            models.PipelineJob `json:"job"`
	AlreadyRunning bool               `json:"already_running"`
	StatusURL      string             `json:"status_url"`
}

// NewSubmitPipelineHandler returns an http.HandlerFunc for POST /api/v1/pipelines.
// A fresh submission answers 202; a duplicate of a queued or processing run
// answers 200 with the existing job.
func NewSubmitPipelineHandler(tracker PipelineTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SourceRef   string `json:"source_ref"`
			StartOffset int    `json:"start_offset"`
			Duration    int    `json:"duration"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		req.SourceRef = strings.TrimSpace(req.SourceRef)
		if req.SourceRef == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "source_ref is required", nil)
			return
		}
		if req.StartOffset < 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "start_offset must not be negative", nil)
			return
		}
		if req.Duration <= 0 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "duration must be positive", nil)
			return
		}

		id := pipeline.ID{SourceRef: req.SourceRef, StartOffset: req.StartOffset, Duration: req.Duration}
		job, alreadyRunning := tracker.Submit(r.Context(), id)

		body := submitPipelineResponse{
			Job:            job,
			AlreadyRunning: alreadyRunning,
			StatusURL:      fmt.Sprintf("/api/v1/pipelines/%s", job.PipelineID),
		}
		if alreadyRunning {
			response.JSON(w, body)
			return
		}
		response.Accepted(w, body)
	}
}

// NewPipelineStatusHandler returns an http.HandlerFunc for GET /api/v1/pipelines/{pipelineID}.
func NewPipelineStatusHandler(tracker PipelineTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid := chi.URLParam(r, "pipelineID")

		job, err := tracker.Status(r.Context(), pid)
		if err != nil {
			if errors.Is(err, pipeline.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "PIPELINE_NOT_FOUND",
					"No pipeline run found for this id", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, job)
	}
}

// NewRemovePipelineHandler returns an http.HandlerFunc for DELETE /api/v1/pipelines/{pipelineID}.
func NewRemovePipelineHandler(tracker PipelineTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid := chi.URLParam(r, "pipelineID")

		removed := tracker.Remove(r.Context(), pid)
		response.JSON(w, map[string]any{
			"pipeline_id":   pid,
			"removed_files": removed,
		})
	}
}

// NewPipelineArtifactHandler returns an http.HandlerFunc serving one of a
// run's persisted output files as JSON.
func NewPipelineArtifactHandler(tracker PipelineTracker, kind models.ArtifactType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid := chi.URLParam(r, "pipelineID")

		path, err := tracker.ArtifactPath(pid, kind)
		if err != nil {
			response.Error(w, http.StatusNotFound, "ARTIFACT_NOT_FOUND",
				fmt.Sprintf("No %s found for this pipeline", kind), nil)
			return
		}

		data, err := os.ReadFile(path)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "ARTIFACT_UNREADABLE",
				"The artifact file could not be read", nil)
			return
		}

		response.JSON(w, json.RawMessage(data))
	}
}
