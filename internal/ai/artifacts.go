package ai

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiranshivaraju/podscribe/pkg/models"
)

// ReadTranscript loads and decodes a transcript artifact.
func ReadTranscript(path string) (models.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("%w: %v", ErrArtifactUnreadable, err)
	}
	var tr models.Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return models.Transcript{}, fmt.Errorf("%w: decoding transcript %s: %v", ErrArtifactUnreadable, path, err)
	}
	return tr, nil
}

// ReadSummary loads and decodes a summary artifact.
func ReadSummary(path string) (models.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Summary{}, fmt.Errorf("%w: %v", ErrArtifactUnreadable, err)
	}
	var sum models.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return models.Summary{}, fmt.Errorf("%w: decoding summary %s: %v", ErrArtifactUnreadable, path, err)
	}
	return sum, nil
}

// WriteArtifact marshals v and writes it under dir, creating the directory
// if needed. Generation happens before any write, so a failed generation
// leaves no partial file behind.
func WriteArtifact(dir, name string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding artifact: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}

// artifactStem strips the .json extension and a trailing artifact suffix
// from a filename, leaving the content or pipeline stem:
// "audio_7_transcript.json" -> "audio_7".
func artifactStem(path, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimSuffix(base, suffix)
}
