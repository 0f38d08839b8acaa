package models

import (
	"context"
	"time"
)

// SpeechProvider converts audio files into transcript artifacts.
// Never call specific speech backends directly — always inject this interface.
type SpeechProvider interface {
	// Transcribe writes `{stem}_transcript.json` into outputDir and returns
	// its path. On failure no partial file is left behind.
	Transcribe(ctx context.Context, audioPath, outputDir string) (string, error)
	// Name returns the provider identifier (e.g., "openai").
	Name() string
}

// ChatModel is the low-level text-generation interface implemented by each
// LLM backend. Domain operations (summaries, answers, segment location) are
// built on top of it by the ai package; handlers never re-parse model output
// with pattern matching — JSON mode plus typed decoding is the contract.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
	Name() string
}

// ChatRequest is a single completion request.
type ChatRequest struct {
	System string
	User   string
	// ForceJSON asks the backend for a JSON-object response so the caller
	// can decode it into a typed payload.
	ForceJSON bool
}

// PlaybackSegment is the typed result of locating a playback window in a
// transcript from a free-text request.
type PlaybackSegment struct {
	Message      string  `json:"message"`
	StartSeconds float64 `json:"start_s"`
	EndSeconds   float64 `json:"end_s"`
}

// Recommendations is the typed result of content-recommendation generation.
type Recommendations struct {
	Themes      []string `json:"themes"`
	Suggestions []string `json:"suggestions"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

// Transcript is the on-disk transcript artifact schema.
type Transcript struct {
	Metadata TranscriptMetadata  `json:"metadata"`
	FullText string              `json:"full_text"`
	Segments []TranscriptSegment `json:"segments"`
}

type TranscriptMetadata struct {
	AudioFile       string    `json:"audio_file"`
	Language        string    `json:"language,omitempty"`
	DurationSeconds float64   `json:"duration,omitempty"`
	Model           string    `json:"model,omitempty"`
	Provider        string    `json:"provider,omitempty"`
	ProcessedAt     time.Time `json:"processed_at"`
}

type TranscriptSegment struct {
	Index        int     `json:"segment_index"`
	StartSeconds float64 `json:"start_s"`
	EndSeconds   float64 `json:"end_s"`
	Text         string  `json:"text"`
}

// Summary is the on-disk summary artifact schema.
type Summary struct {
	SourceTranscript string    `json:"source_transcript"`
	Summary          string    `json:"summary"`
	Topics           []string  `json:"topics,omitempty"`
	KeyMoments       []string  `json:"key_moments,omitempty"`
	Model            string    `json:"model,omitempty"`
	Provider         string    `json:"provider,omitempty"`
	ProcessedAt      time.Time `json:"processed_at"`
}
