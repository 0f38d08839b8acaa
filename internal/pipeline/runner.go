package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kiranshivaraju/podscribe/internal/config"
	"github.com/kiranshivaraju/podscribe/pkg/models"
)

// Runner executes the ingestion stages for one pipeline id.
type Runner interface {
	Run(ctx context.Context, id ID) (models.PipelineResult, error)
}

// Transcriber generates a transcript artifact from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (string, error)
}

// Summarizer generates a summary artifact from a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcriptPath, outputDir string) (string, error)
}

// Recommender generates a recommendations artifact from a transcript and summary.
type Recommender interface {
	Recommend(ctx context.Context, transcriptPath, summaryPath, outputDir string) (string, error)
}

// StageRunner is the production Runner: transcribe, then summarize, then
// recommend. Every stage output is named after the pipeline id, so a later
// Status call can find the artifacts without any job record.
type StageRunner struct {
	transcriber Transcriber
	summarizer  Summarizer
	recommender Recommender
	storage     config.StorageConfig
}

func NewStageRunner(transcriber Transcriber, summarizer Summarizer, recommender Recommender, storage config.StorageConfig) *StageRunner {
	return &StageRunner{
		transcriber: transcriber,
		summarizer:  summarizer,
		recommender: recommender,
		storage:     storage,
	}
}

// Run executes the stages in order and fails on the first stage error.
// The source audio must already sit in the downloads directory as
// `{pipelineID}.mp3`.
func (r *StageRunner) Run(ctx context.Context, id ID) (models.PipelineResult, error) {
	source := filepath.Join(r.storage.DownloadsDir, id.String()+".mp3")
	if _, err := os.Stat(source); err != nil {
		return models.PipelineResult{}, fmt.Errorf("source stage: audio %s: %w", source, err)
	}

	transcriptPath, err := r.transcriber.Transcribe(ctx, source, r.storage.TranscriptsDir)
	if err != nil {
		return models.PipelineResult{}, fmt.Errorf("transcription stage: %w", err)
	}

	summaryPath, err := r.summarizer.Summarize(ctx, transcriptPath, r.storage.SummariesDir)
	if err != nil {
		return models.PipelineResult{}, fmt.Errorf("summarization stage: %w", err)
	}

	recsPath, err := r.recommender.Recommend(ctx, transcriptPath, summaryPath, r.storage.RecommendationsDir)
	if err != nil {
		return models.PipelineResult{}, fmt.Errorf("recommendation stage: %w", err)
	}

	return models.PipelineResult{
		TranscriptPath:      transcriptPath,
		SummaryPath:         summaryPath,
		RecommendationsPath: recsPath,
	}, nil
}

var _ Runner = (*StageRunner)(nil)
