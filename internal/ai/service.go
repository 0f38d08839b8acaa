package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kiranshivaraju/podscribe/internal/ai/anthropic"
	"github.com/kiranshivaraju/podscribe/internal/ai/ollama"
	"github.com/kiranshivaraju/podscribe/internal/ai/openai"
	"github.com/kiranshivaraju/podscribe/internal/ai/vllm"
	"github.com/kiranshivaraju/podscribe/pkg/models"
)

// Prompt input is capped so a three-hour transcript cannot blow the context
// window of smaller local models.
const maxPromptBytes = 48_000

// TextService implements the text-generation collaborators (summaries,
// answers, playback segments, recommendations) on top of a ChatModel.
// Model output is requested in JSON mode and decoded into typed payloads;
// nothing downstream re-parses strings.
type TextService struct {
	model   models.ChatModel
	timeout time.Duration
}

// NewTextService creates a TextService. The timeout bounds each model call.
func NewTextService(model models.ChatModel, timeout time.Duration) *TextService {
	return &TextService{model: model, timeout: timeout}
}

// Name returns the identifier of the underlying model backend.
func (s *TextService) Name() string { return s.model.Name() }

type summaryPayload struct {
	Summary    string   `json:"summary"`
	Topics     []string `json:"topics"`
	KeyMoments []string `json:"key_moments"`
}

// Summarize generates a summary artifact from a transcript and writes it
// next to the other summaries as `{stem}_summary.json`, returning its path.
func (s *TextService) Summarize(ctx context.Context, transcriptPath, outputDir string) (string, error) {
	tr, err := ReadTranscript(transcriptPath)
	if err != nil {
		return "", err
	}

	req := models.ChatRequest{
		System: "You are an expert podcast analyst. Respond with a JSON object " +
			`containing "summary" (a comprehensive summary), "topics" (main topics ` +
			`as strings), and "key_moments" (notable moments as strings).`,
		User:      "Summarize this transcript:\n\n" + truncateString(tr.FullText, maxPromptBytes),
		ForceJSON: true,
	}

	raw, err := s.complete(ctx, req)
	if err != nil {
		return "", err
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", fmt.Errorf("%w: decoding summary payload: %v", ErrInvalidResponse, err)
	}
	if payload.Summary == "" {
		return "", fmt.Errorf("%w: empty summary", ErrInvalidResponse)
	}

	artifact := models.Summary{
		SourceTranscript: transcriptPath,
		Summary:          payload.Summary,
		Topics:           payload.Topics,
		KeyMoments:       payload.KeyMoments,
		Model:            s.model.Name(),
		Provider:         s.model.Name(),
		ProcessedAt:      time.Now().UTC(),
	}

	name := artifactStem(transcriptPath, "_transcript") + "_summary.json"
	return WriteArtifact(outputDir, name, artifact)
}

// Answer responds to a question using the transcript and, when available,
// the summary as context.
func (s *TextService) Answer(ctx context.Context, question, transcriptPath, summaryPath string) (string, error) {
	tr, err := ReadTranscript(transcriptPath)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Answer the question using only the material below.\n\n")
	if summaryPath != "" {
		if sum, err := ReadSummary(summaryPath); err == nil {
			b.WriteString("SUMMARY:\n" + sum.Summary + "\n\n")
		}
	}
	b.WriteString("TRANSCRIPT:\n" + truncateString(tr.FullText, maxPromptBytes) + "\n\n")
	b.WriteString("QUESTION: " + question)

	answer, err := s.complete(ctx, models.ChatRequest{
		System: "You are a helpful assistant answering questions about podcast episodes. " +
			"Base every answer on the provided material; say so when it does not contain the answer.",
		User: b.String(),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("%w: empty answer", ErrInvalidResponse)
	}
	return answer, nil
}

// LocateSegment finds the playback window matching a free-text request.
// The model picks from the transcript's timed segments and returns a typed
// result; invalid windows are rejected rather than passed through.
func (s *TextService) LocateSegment(ctx context.Context, transcriptPath, userMessage string) (models.PlaybackSegment, error) {
	tr, err := ReadTranscript(transcriptPath)
	if err != nil {
		return models.PlaybackSegment{}, err
	}

	segments, err := json.Marshal(tr.Segments)
	if err != nil {
		return models.PlaybackSegment{}, fmt.Errorf("encoding segments: %w", err)
	}

	req := models.ChatRequest{
		System: "You locate playback windows in podcast transcripts. Find all segments " +
			"matching the user request and respond with a JSON object containing " +
			`"message" (a short description), "start_s" (earliest matching start, seconds), ` +
			`and "end_s" (latest matching end, seconds).`,
		User: "Request: " + userMessage + "\n\nTimed segments:\n" +
			truncateString(string(segments), maxPromptBytes),
		ForceJSON: true,
	}

	raw, err := s.complete(ctx, req)
	if err != nil {
		return models.PlaybackSegment{}, err
	}

	var seg models.PlaybackSegment
	if err := json.Unmarshal([]byte(raw), &seg); err != nil {
		return models.PlaybackSegment{}, fmt.Errorf("%w: decoding segment payload: %v", ErrInvalidResponse, err)
	}
	if seg.StartSeconds < 0 || seg.EndSeconds < seg.StartSeconds {
		return models.PlaybackSegment{}, fmt.Errorf("%w: segment window [%f, %f]",
			ErrInvalidResponse, seg.StartSeconds, seg.EndSeconds)
	}
	return seg, nil
}

type recommendationArtifact struct {
	SourceTranscript string                 `json:"source_transcript"`
	Recommendations  models.Recommendations `json:"recommendations"`
	Model            string                 `json:"model"`
	ProcessedAt      time.Time              `json:"processed_at"`
}

// Recommend generates content recommendations from a transcript and summary
// and writes `{stem}_recommendations.json`, returning its path.
func (s *TextService) Recommend(ctx context.Context, transcriptPath, summaryPath, outputDir string) (string, error) {
	tr, err := ReadTranscript(transcriptPath)
	if err != nil {
		return "", err
	}

	material := truncateString(tr.FullText, maxPromptBytes)
	if summaryPath != "" {
		if sum, err := ReadSummary(summaryPath); err == nil && sum.Summary != "" {
			material = sum.Summary
		}
	}

	req := models.ChatRequest{
		System: "You are a content analyst recommending related listening. Respond with a " +
			`JSON object containing "themes" (strings), "suggestions" (strings describing ` +
			`related content to seek out), and "reasoning" (a short explanation).`,
		User:      "Recommend related content based on this episode:\n\n" + material,
		ForceJSON: true,
	}

	raw, err := s.complete(ctx, req)
	if err != nil {
		return "", err
	}

	var recs models.Recommendations
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return "", fmt.Errorf("%w: decoding recommendations payload: %v", ErrInvalidResponse, err)
	}

	artifact := recommendationArtifact{
		SourceTranscript: transcriptPath,
		Recommendations:  recs,
		Model:            s.model.Name(),
		ProcessedAt:      time.Now().UTC(),
	}

	name := artifactStem(transcriptPath, "_transcript") + "_recommendations.json"
	return WriteArtifact(outputDir, name, artifact)
}

// complete runs one model call under the service timeout and folds context
// expiry into the timeout sentinel.
func (s *TextService) complete(ctx context.Context, req models.ChatRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.model.Complete(callCtx, req)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return "", fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
		case isProviderUnreachable(err):
			return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return "", err
	}
	return out, nil
}

// isProviderUnreachable reports whether err is a backend connection failure,
// regardless of which provider raised it.
func isProviderUnreachable(err error) bool {
	return errors.Is(err, openai.ErrUnavailable) ||
		errors.Is(err, ollama.ErrUnavailable) ||
		errors.Is(err, vllm.ErrUnavailable) ||
		errors.Is(err, anthropic.ErrUnavailable)
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
