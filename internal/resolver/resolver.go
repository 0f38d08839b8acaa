// Package resolver maps an intent to the artifacts it needs and generates
// the ones that are missing. Generation is ordered (a summary needs a
// transcript) and a failed type does not stop the remaining ones.
package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kiranshivaraju/podscribe/internal/catalog"
	"github.com/kiranshivaraju/podscribe/internal/config"
	"github.com/kiranshivaraju/podscribe/pkg/models"
)

// requiredTypes maps each intent to the artifact types it needs, in
// generation order. Transcript always precedes summary.
var requiredTypes = map[models.Intent][]models.ArtifactType{
	models.IntentAskQuestion: {models.ArtifactTranscript, models.ArtifactSummary},
	models.IntentSummarize:   {models.ArtifactTranscript},
	models.IntentPlayAudio:   {models.ArtifactAudio},
}

// RequiredTypes returns the artifact types an intent depends on, in order.
func RequiredTypes(intent models.Intent) []models.ArtifactType {
	return requiredTypes[intent]
}

// Kind classifies the outcome of a Resolve call.
type Kind string

const (
	// KindReady means every required artifact already existed.
	KindReady Kind = "ready"
	// KindResolved means missing artifacts were generated successfully.
	KindResolved Kind = "resolved"
	// KindPartialFailure means at least one generation failed; Paths still
	// carries everything that exists.
	KindPartialFailure Kind = "partial_failure"
	// KindNotFound means the content id is unknown to the index.
	KindNotFound Kind = "not_found"
)

// Result is the outcome of resolving one intent against one content id.
type Result struct {
	Kind    Kind
	Paths   map[models.ArtifactType]string
	Actions []string
	Errors  map[models.ArtifactType]error
}

// Transcriber generates a transcript artifact from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (string, error)
}

// Summarizer generates a summary artifact from a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcriptPath, outputDir string) (string, error)
}

// Resolver checks artifact availability for an intent and fills the gaps.
type Resolver struct {
	index       *catalog.Index
	transcriber Transcriber
	summarizer  Summarizer
	storage     config.StorageConfig
}

func New(index *catalog.Index, transcriber Transcriber, summarizer Summarizer, storage config.StorageConfig) *Resolver {
	return &Resolver{
		index:       index,
		transcriber: transcriber,
		summarizer:  summarizer,
		storage:     storage,
	}
}

// Resolve returns the artifact paths required by intent for the given
// content id, generating missing transcripts and summaries on the way.
// Audio is never generated. Each missing artifact gets exactly one
// generation attempt; failures are recorded per type and the remaining
// types are still tried.
func (r *Resolver) Resolve(ctx context.Context, intent models.Intent, id string) Result {
	entry, err := r.index.Lookup(id)
	if err != nil {
		return Result{Kind: KindNotFound}
	}

	result := Result{
		Paths:  make(map[models.ArtifactType]string),
		Errors: make(map[models.ArtifactType]error),
	}

	generated := false
	for _, t := range requiredTypes[intent] {
		switch t {
		case models.ArtifactAudio:
			if entry.Audio.Exists {
				result.Paths[t] = entry.Audio.Path
			} else {
				result.Errors[t] = fmt.Errorf("no audio file for content %s", id)
			}

		case models.ArtifactTranscript:
			if entry.Transcript.Exists {
				result.Paths[t] = entry.Transcript.Path
				continue
			}
			if !entry.Audio.Exists {
				result.Errors[t] = fmt.Errorf("no audio file to transcribe for content %s", id)
				continue
			}
			generated = true
			path, err := r.transcriber.Transcribe(ctx, entry.Audio.Path, r.storage.TranscriptsDir)
			if err != nil {
				slog.Warn("transcript generation failed", "content_id", id, "error", err)
				result.Errors[t] = err
				continue
			}
			result.Paths[t] = path
			result.Actions = append(result.Actions, fmt.Sprintf("generated transcript for %s", id))

		case models.ArtifactSummary:
			if entry.Summary.Exists {
				result.Paths[t] = entry.Summary.Path
				continue
			}
			// A transcript generated earlier in this same call counts.
			transcriptPath, ok := result.Paths[models.ArtifactTranscript]
			if !ok {
				result.Errors[t] = fmt.Errorf("no transcript to summarize for content %s", id)
				continue
			}
			generated = true
			path, err := r.summarizer.Summarize(ctx, transcriptPath, r.storage.SummariesDir)
			if err != nil {
				slog.Warn("summary generation failed", "content_id", id, "error", err)
				result.Errors[t] = err
				continue
			}
			result.Paths[t] = path
			result.Actions = append(result.Actions, fmt.Sprintf("generated summary for %s", id))
		}
	}

	if generated {
		r.index.Invalidate()
	}

	switch {
	case len(result.Errors) > 0:
		result.Kind = KindPartialFailure
	case generated:
		result.Kind = KindResolved
	default:
		result.Kind = KindReady
	}
	return result
}
