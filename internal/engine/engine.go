// Package engine orchestrates chat requests: classify the message, find the
// target content, resolve the artifacts the intent needs, then route to the
// right generator. A request with no identifiable target gets the available
// content back as suggestions, never a bare failure.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kiranshivaraju/podscribe/internal/ai"
	"github.com/kiranshivaraju/podscribe/internal/catalog"
	"github.com/kiranshivaraju/podscribe/internal/config"
	"github.com/kiranshivaraju/podscribe/internal/intent"
	"github.com/kiranshivaraju/podscribe/internal/resolver"
	"github.com/kiranshivaraju/podscribe/pkg/models"
)

// TextProvider is the slice of the text service the engine routes to.
type TextProvider interface {
	Answer(ctx context.Context, question, transcriptPath, summaryPath string) (string, error)
	Summarize(ctx context.Context, transcriptPath, outputDir string) (string, error)
	LocateSegment(ctx context.Context, transcriptPath, userMessage string) (models.PlaybackSegment, error)
}

// Reply is the engine's answer to one chat message.
type Reply struct {
	Intent      models.Intent           `json:"intent"`
	ContentID   string                  `json:"content_id,omitempty"`
	Message     string                  `json:"message"`
	AudioPath   string                  `json:"audio_path,omitempty"`
	Segment     *models.PlaybackSegment `json:"segment,omitempty"`
	Summary     *models.Summary         `json:"summary,omitempty"`
	Suggestions *catalog.Snapshot       `json:"suggestions,omitempty"`
	Actions     []string                `json:"actions,omitempty"`
	Errors      map[string]string       `json:"errors,omitempty"`
}

// Engine wires the classifier, index, resolver, and text provider together.
type Engine struct {
	index    *catalog.Index
	resolver *resolver.Resolver
	text     TextProvider
	storage  config.StorageConfig
}

func New(index *catalog.Index, res *resolver.Resolver, text TextProvider, storage config.StorageConfig) *Engine {
	return &Engine{
		index:    index,
		resolver: res,
		text:     text,
		storage:  storage,
	}
}

// ProcessRequest handles one chat message. An explicit content id takes
// precedence over anything extracted from the message text.
func (e *Engine) ProcessRequest(ctx context.Context, message, explicitID string) (Reply, error) {
	msgIntent := intent.Classify(message)

	id := explicitID
	if id == "" {
		id = e.index.ResolveQuery(message)
	}
	if id == "" {
		return e.suggest(msgIntent, "I couldn't tell which content you mean. Here's what's available."), nil
	}

	result := e.resolver.Resolve(ctx, msgIntent, id)
	if result.Kind == resolver.KindNotFound {
		return e.suggest(msgIntent, fmt.Sprintf("Content %s isn't in the library. Here's what's available.", id)), nil
	}

	reply := Reply{
		Intent:    msgIntent,
		ContentID: id,
		Actions:   result.Actions,
	}
	for t, err := range result.Errors {
		if reply.Errors == nil {
			reply.Errors = make(map[string]string)
		}
		reply.Errors[string(t)] = err.Error()
	}

	switch msgIntent {
	case models.IntentAskQuestion:
		return e.answer(ctx, message, result, reply)
	case models.IntentSummarize:
		return e.summarize(ctx, id, result, reply)
	default:
		return e.play(ctx, message, id, result, reply)
	}
}

// ListAvailableContent returns the index snapshot grouped by status.
func (e *Engine) ListAvailableContent() catalog.Snapshot {
	return e.index.Snapshot()
}

func (e *Engine) suggest(msgIntent models.Intent, message string) Reply {
	snap := e.index.Snapshot()
	return Reply{
		Intent:      msgIntent,
		Message:     message,
		Suggestions: &snap,
	}
}

func (e *Engine) answer(ctx context.Context, message string, result resolver.Result, reply Reply) (Reply, error) {
	transcriptPath, ok := result.Paths[models.ArtifactTranscript]
	if !ok {
		reply.Message = "I couldn't prepare a transcript for this content, so I can't answer yet."
		return reply, nil
	}

	answer, err := e.text.Answer(ctx, message, transcriptPath, result.Paths[models.ArtifactSummary])
	if err != nil {
		return Reply{}, err
	}
	reply.Message = answer
	return reply, nil
}

func (e *Engine) summarize(ctx context.Context, id string, result resolver.Result, reply Reply) (Reply, error) {
	transcriptPath, ok := result.Paths[models.ArtifactTranscript]
	if !ok {
		reply.Message = "I couldn't prepare a transcript for this content, so I can't summarize it yet."
		return reply, nil
	}

	entry, err := e.index.Lookup(id)
	if err != nil {
		return Reply{}, err
	}

	summaryPath := entry.Summary.Path
	if !entry.Summary.Exists {
		summaryPath, err = e.text.Summarize(ctx, transcriptPath, e.storage.SummariesDir)
		if err != nil {
			return Reply{}, err
		}
		e.index.Invalidate()
		reply.Actions = append(reply.Actions, fmt.Sprintf("generated summary for %s", id))
	}

	sum, err := ai.ReadSummary(summaryPath)
	if err != nil {
		return Reply{}, err
	}
	reply.Summary = &sum
	reply.Message = sum.Summary
	return reply, nil
}

func (e *Engine) play(ctx context.Context, message, id string, result resolver.Result, reply Reply) (Reply, error) {
	audioPath, ok := result.Paths[models.ArtifactAudio]
	if !ok {
		reply.Message = "There's no audio file for this content."
		return reply, nil
	}
	reply.AudioPath = audioPath
	reply.Message = fmt.Sprintf("Playing content %s.", id)

	// Segment location needs a transcript and a working model; playback
	// itself needs neither, so both are optional here.
	entry, err := e.index.Lookup(id)
	if err != nil || !entry.Transcript.Exists {
		return reply, nil
	}
	seg, err := e.text.LocateSegment(ctx, entry.Transcript.Path, message)
	if err != nil {
		slog.Warn("segment location failed, playing from start", "content_id", id, "error", err)
		return reply, nil
	}
	reply.Segment = &seg
	reply.Message = seg.Message
	return reply, nil
}
