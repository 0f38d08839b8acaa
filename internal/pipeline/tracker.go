package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/podscribe/internal/cache"
	"github.com/kiranshivaraju/podscribe/internal/config"
	"github.com/kiranshivaraju/podscribe/pkg/models"
)

const statusTTL = 30 * time.Minute

// Tracker owns the in-memory job table and starts pipeline runs. Status is
// mirrored into redis best-effort; the table plus the persisted outputs are
// authoritative.
type Tracker struct {
	runner  Runner
	cache   cache.Cache
	storage config.StorageConfig

	mu   sync.Mutex
	jobs map[string]*models.PipelineJob
}

func NewTracker(runner Runner, c cache.Cache, storage config.StorageConfig) *Tracker {
	return &Tracker{
		runner:  runner,
		cache:   c,
		storage: storage,
		jobs:    make(map[string]*models.PipelineJob),
	}
}

// Submit registers a run for the id and starts it in the background.
// If a queued or processing job already holds the id, that job is returned
// with alreadyRunning=true and no second execution starts. The check and
// the insert share one critical section, so concurrent submits of the same
// id race safely.
func (t *Tracker) Submit(ctx context.Context, id ID) (models.PipelineJob, bool) {
	pid := id.String()

	t.mu.Lock()
	if existing, ok := t.jobs[pid]; ok &&
		(existing.Status == models.JobStatusQueued || existing.Status == models.JobStatusProcessing) {
		job := *existing
		t.mu.Unlock()
		return job, true
	}

	now := time.Now().UTC()
	job := &models.PipelineJob{
		ID:         uuid.New(),
		PipelineID: pid,
		Status:     models.JobStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	t.jobs[pid] = job
	snapshot := *job
	t.mu.Unlock()

	_ = t.cache.SetPipelineStatus(ctx, pid, models.JobStatusQueued, statusTTL)

	go t.run(id)

	return snapshot, false
}

// run executes the pipeline in a goroutine. It recovers from panics and
// always leaves the job completed or failed.
func (t *Tracker) run(id ID) {
	ctx := context.Background()
	pid := id.String()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in pipeline run", "pipeline_id", pid, "error", r)
			t.fail(ctx, pid, fmt.Sprintf("panic: %v", r))
		}
	}()

	t.transition(ctx, pid, models.JobStatusProcessing, func(job *models.PipelineJob) {
		now := time.Now().UTC()
		job.StartedAt = &now
	})

	slog.Info("pipeline started", "pipeline_id", pid)

	result, err := t.runner.Run(ctx, id)
	if err != nil {
		slog.Error("pipeline failed", "pipeline_id", pid, "error", err)
		t.fail(ctx, pid, err.Error())
		return
	}

	t.transition(ctx, pid, models.JobStatusCompleted, func(job *models.PipelineJob) {
		now := time.Now().UTC()
		job.CompletedAt = &now
		job.Result = &result
	})

	slog.Info("pipeline completed", "pipeline_id", pid)
}

func (t *Tracker) fail(ctx context.Context, pid, msg string) {
	t.transition(ctx, pid, models.JobStatusFailed, func(job *models.PipelineJob) {
		now := time.Now().UTC()
		job.CompletedAt = &now
		job.ErrorMessage = &msg
	})
}

func (t *Tracker) transition(ctx context.Context, pid, status string, mutate func(*models.PipelineJob)) {
	t.mu.Lock()
	if job, ok := t.jobs[pid]; ok {
		job.Status = status
		job.UpdatedAt = time.Now().UTC()
		if mutate != nil {
			mutate(job)
		}
	}
	t.mu.Unlock()

	_ = t.cache.SetPipelineStatus(ctx, pid, status, statusTTL)
}

// Status reports the job for a pipeline id. When no in-memory record exists
// (for example after a restart) but the run's outputs are on disk, a
// completed view is synthesized from them.
func (t *Tracker) Status(ctx context.Context, pid string) (models.PipelineJob, error) {
	t.mu.Lock()
	if job, ok := t.jobs[pid]; ok {
		snapshot := *job
		t.mu.Unlock()
		return snapshot, nil
	}
	t.mu.Unlock()

	if result, ok := t.persistedResult(pid); ok {
		return models.PipelineJob{
			PipelineID: pid,
			Status:     models.JobStatusCompleted,
			Result:     &result,
		}, nil
	}

	return models.PipelineJob{}, ErrNotFound
}

// persistedResult reconstructs a result from output files on disk. The
// transcript and summary are required; recommendations are included when
// present.
func (t *Tracker) persistedResult(pid string) (models.PipelineResult, bool) {
	transcript := filepath.Join(t.storage.TranscriptsDir, pid+"_transcript.json")
	summary := filepath.Join(t.storage.SummariesDir, pid+"_summary.json")
	if !fileExists(transcript) || !fileExists(summary) {
		return models.PipelineResult{}, false
	}

	result := models.PipelineResult{TranscriptPath: transcript, SummaryPath: summary}
	if recs := filepath.Join(t.storage.RecommendationsDir, pid+"_recommendations.json"); fileExists(recs) {
		result.RecommendationsPath = recs
	}
	return result, true
}

// ArtifactPath returns the on-disk path of one pipeline output, or
// ErrNotFound when it does not exist.
func (t *Tracker) ArtifactPath(pid string, kind models.ArtifactType) (string, error) {
	var path string
	switch kind {
	case models.ArtifactTranscript:
		path = filepath.Join(t.storage.TranscriptsDir, pid+"_transcript.json")
	case models.ArtifactSummary:
		path = filepath.Join(t.storage.SummariesDir, pid+"_summary.json")
	case models.ArtifactRecommendations:
		path = filepath.Join(t.storage.RecommendationsDir, pid+"_recommendations.json")
	default:
		return "", ErrNotFound
	}
	if !fileExists(path) {
		return "", ErrNotFound
	}
	return path, nil
}

// Remove drops the in-memory record and deletes the run's output files,
// returning how many files were removed. Removing an unknown id is not an
// error; the count is simply zero.
func (t *Tracker) Remove(ctx context.Context, pid string) int {
	t.mu.Lock()
	delete(t.jobs, pid)
	t.mu.Unlock()

	_ = t.cache.Delete(ctx, cache.PipelineStatusKey(pid))

	removed := 0
	outputs := []string{
		filepath.Join(t.storage.TranscriptsDir, pid+"_transcript.json"),
		filepath.Join(t.storage.SummariesDir, pid+"_summary.json"),
		filepath.Join(t.storage.RecommendationsDir, pid+"_recommendations.json"),
	}
	for _, path := range outputs {
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
