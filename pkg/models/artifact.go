// Package models contains shared data models used across the PodScribe codebase.
package models

// ArtifactType identifies one kind of file associated with a content item.
type ArtifactType string

const (
	ArtifactAudio      ArtifactType = "audio"
	ArtifactTranscript ArtifactType = "transcript"
	ArtifactSummary    ArtifactType = "summary"
	// ArtifactRecommendations only exists as a pipeline output; the catalog
	// does not index it.
	ArtifactRecommendations ArtifactType = "recommendations"
)

// ArtifactRecord is the materialized view of one artifact on disk.
// It is never persisted independently; the filesystem is the source of truth.
type ArtifactRecord struct {
	Exists    bool   `json:"exists"`
	Path      string `json:"path,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// ContentStatus classifies a content item by which artifacts exist.
type ContentStatus string

const (
	StatusComplete       ContentStatus = "complete"
	StatusTranscribed    ContentStatus = "transcribed"
	StatusAudioOnly      ContentStatus = "audio_only"
	StatusTranscriptOnly ContentStatus = "transcript_only"
	StatusNotFound       ContentStatus = "not_found"
)

// DeriveStatus maps the three existence flags to a ContentStatus.
// Pure function, total over all eight combinations. All-false means the id
// was never seen in a scan and callers represent it as a missing entry.
func DeriveStatus(audio, transcript, summary bool) ContentStatus {
	switch {
	case audio && transcript && summary:
		return StatusComplete
	case audio && transcript:
		return StatusTranscribed
	case audio:
		return StatusAudioOnly
	case transcript:
		return StatusTranscriptOnly
	default:
		return StatusNotFound
	}
}
