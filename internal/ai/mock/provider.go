package mock

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kiranshivaraju/podscribe/pkg/models"
)

// MockChatModel satisfies models.ChatModel for testing.
type MockChatModel struct {
	Name_        string
	CompleteFunc func(ctx context.Context, req models.ChatRequest) (string, error)
}

func (m *MockChatModel) Name() string { return m.Name_ }

func (m *MockChatModel) Complete(ctx context.Context, req models.ChatRequest) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// NewChatModel returns a MockChatModel with sensible default responses.
// JSON-mode requests get a payload that decodes into any of the service's
// typed outputs; plain requests get canned prose.
func NewChatModel() *MockChatModel {
	return &MockChatModel{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, req models.ChatRequest) (string, error) {
			if req.ForceJSON {
				return `{
					"summary": "Mock summary of the episode for testing",
					"topics": ["testing"],
					"key_moments": ["the part where tests pass"],
					"message": "Playing the requested segment",
					"start_s": 0,
					"end_s": 30,
					"themes": ["testing"],
					"suggestions": ["listen to more episodes"],
					"reasoning": "mock reasoning"
				}`, nil
			}
			return "Mock answer: this episode covers the requested topic.", nil
		},
	}
}

// NewFailingChatModel returns a MockChatModel that always returns the given error.
func NewFailingChatModel(err error) *MockChatModel {
	return &MockChatModel{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _ models.ChatRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutChatModel returns a MockChatModel that blocks until context is cancelled.
func NewTimeoutChatModel() *MockChatModel {
	return &MockChatModel{
		Name_: "mock-timeout",
		CompleteFunc: func(ctx context.Context, _ models.ChatRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// MockSpeechProvider satisfies models.SpeechProvider for testing.
type MockSpeechProvider struct {
	Name_          string
	TranscribeFunc func(ctx context.Context, audioPath, outputDir string) (string, error)
}

func (m *MockSpeechProvider) Name() string { return m.Name_ }

func (m *MockSpeechProvider) Transcribe(ctx context.Context, audioPath, outputDir string) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath, outputDir)
	}
	return "", nil
}

// NewSpeechProvider returns a MockSpeechProvider that writes a minimal but
// valid transcript artifact, so downstream stages can run against it.
func NewSpeechProvider() *MockSpeechProvider {
	return &MockSpeechProvider{
		Name_: "mock",
		TranscribeFunc: func(_ context.Context, audioPath, outputDir string) (string, error) {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return "", err
			}
			transcript := models.Transcript{
				Metadata: models.TranscriptMetadata{
					AudioFile:   audioPath,
					Language:    "en",
					Model:       "mock-v1",
					Provider:    "mock",
					ProcessedAt: time.Now().UTC(),
				},
				FullText: "Mock transcript of the audio file.",
				Segments: []models.TranscriptSegment{
					{Index: 0, StartSeconds: 0, EndSeconds: 5, Text: "Mock transcript of the audio file."},
				},
			}
			stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
			path := filepath.Join(outputDir, stem+"_transcript.json")
			data, err := json.MarshalIndent(transcript, "", "  ")
			if err != nil {
				return "", err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return "", err
			}
			return path, nil
		},
	}
}

// NewFailingSpeechProvider returns a MockSpeechProvider that always returns the given error.
func NewFailingSpeechProvider(err error) *MockSpeechProvider {
	return &MockSpeechProvider{
		Name_: "mock-failing",
		TranscribeFunc: func(_ context.Context, _, _ string) (string, error) {
			return "", err
		},
	}
}

// Compile-time checks.
var (
	_ models.ChatModel      = (*MockChatModel)(nil)
	_ models.SpeechProvider = (*MockSpeechProvider)(nil)
)
