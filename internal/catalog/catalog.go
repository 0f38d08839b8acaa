// Package catalog maintains the artifact index: a cached view of which
// audio, transcript, and summary files exist per content id. The filesystem
// naming conventions are the sole source of truth; the index is rebuilt
// wholesale on a TTL and never patched entry by entry.
package catalog

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/kiranshivaraju/podscribe/internal/config"
	"github.com/kiranshivaraju/podscribe/pkg/models"
)

var ErrNotFound = errors.New("content not found")

var (
	audioPattern      = regexp.MustCompile(`^audio_(\d+)\.(?i:mp3|wav|m4a|flac|ogg)$`)
	transcriptPattern = regexp.MustCompile(`^audio_(\d+)_transcript\.json$`)
	summaryPattern    = regexp.MustCompile(`^audio_(\d+)_summary\.json$`)
)

// Entry is the indexed view of one content item.
type Entry struct {
	ContentID  string                `json:"content_id"`
	Audio      models.ArtifactRecord `json:"audio"`
	Transcript models.ArtifactRecord `json:"transcript"`
	Summary    models.ArtifactRecord `json:"summary"`
	Status     models.ContentStatus  `json:"status"`
}

// Snapshot groups indexed entries by status for the available-content listing.
type Snapshot struct {
	Complete       []Entry `json:"complete"`
	Transcribed    []Entry `json:"transcribed"`
	AudioOnly      []Entry `json:"audio_only"`
	TranscriptOnly []Entry `json:"transcript_only"`
	Total          int     `json:"total"`
}

// Index is the process-wide artifact index. Reads trigger a lazy rebuild
// once the cached mapping is older than the TTL; a failed rescan keeps
// serving the last known good mapping.
type Index struct {
	audioDir       string
	transcriptsDir string
	summariesDir   string
	ttl            time.Duration

	now func() time.Time

	mu       sync.RWMutex
	entries  map[string]Entry
	lastScan time.Time
}

// New creates an Index over the configured storage directories. The first
// read performs the initial scan.
func New(cfg config.StorageConfig) *Index {
	return &Index{
		audioDir:       cfg.AudioDir,
		transcriptsDir: cfg.TranscriptsDir,
		summariesDir:   cfg.SummariesDir,
		ttl:            cfg.IndexTTL,
		now:            time.Now,
	}
}

// Lookup returns the entry for a content id, refreshing the index first if
// it is stale. Returns ErrNotFound for ids absent from every scan.
func (ix *Index) Lookup(id string) (Entry, error) {
	ix.refreshIfStale()

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// Paths returns the on-disk paths for the requested artifact types of a
// content id, omitting types that do not exist.
func (ix *Index) Paths(id string, types ...models.ArtifactType) map[models.ArtifactType]string {
	e, err := ix.Lookup(id)
	if err != nil {
		return map[models.ArtifactType]string{}
	}

	paths := make(map[models.ArtifactType]string, len(types))
	for _, t := range types {
		switch {
		case t == models.ArtifactAudio && e.Audio.Exists:
			paths[t] = e.Audio.Path
		case t == models.ArtifactTranscript && e.Transcript.Exists:
			paths[t] = e.Transcript.Path
		case t == models.ArtifactSummary && e.Summary.Exists:
			paths[t] = e.Summary.Path
		}
	}
	return paths
}

// Snapshot returns all indexed entries grouped by status.
func (ix *Index) Snapshot() Snapshot {
	ix.refreshIfStale()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var snap Snapshot
	for _, e := range ix.entries {
		switch e.Status {
		case models.StatusComplete:
			snap.Complete = append(snap.Complete, e)
		case models.StatusTranscribed:
			snap.Transcribed = append(snap.Transcribed, e)
		case models.StatusAudioOnly:
			snap.AudioOnly = append(snap.AudioOnly, e)
		case models.StatusTranscriptOnly:
			snap.TranscriptOnly = append(snap.TranscriptOnly, e)
		}
		snap.Total++
	}
	return snap
}

// Invalidate forces a rebuild on the next read. Callers invoke it after
// writing new artifacts so subsequent lookups see them immediately.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.lastScan = time.Time{}
}

func (ix *Index) refreshIfStale() {
	ix.mu.RLock()
	stale := ix.entries == nil || ix.now().Sub(ix.lastScan) > ix.ttl
	ix.mu.RUnlock()
	if !stale {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	// Another reader may have rebuilt while we waited for the lock.
	if ix.entries != nil && ix.now().Sub(ix.lastScan) <= ix.ttl {
		return
	}

	entries, err := ix.scan()
	if err != nil {
		// Serve the stale mapping; bump lastScan so we do not rescan on
		// every read while storage is unreachable.
		slog.Warn("artifact scan failed, serving stale index", "error", err)
		if ix.entries == nil {
			ix.entries = map[string]Entry{}
		}
		ix.lastScan = ix.now()
		return
	}

	ix.entries = entries
	ix.lastScan = ix.now()
}

// scan rebuilds the full mapping from the three storage directories.
// A missing directory is treated as empty; any other read error aborts the
// scan so the caller keeps the previous mapping.
func (ix *Index) scan() (map[string]Entry, error) {
	audio, err := scanDir(ix.audioDir, audioPattern)
	if err != nil {
		return nil, err
	}
	transcripts, err := scanDir(ix.transcriptsDir, transcriptPattern)
	if err != nil {
		return nil, err
	}
	summaries, err := scanDir(ix.summariesDir, summaryPattern)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]Entry)
	for id := range audio {
		entries[id] = Entry{ContentID: id}
	}
	for id := range transcripts {
		entries[id] = Entry{ContentID: id}
	}
	for id := range summaries {
		entries[id] = Entry{ContentID: id}
	}

	for id, e := range entries {
		e.Audio = audio[id]
		e.Transcript = transcripts[id]
		e.Summary = summaries[id]
		e.Status = models.DeriveStatus(e.Audio.Exists, e.Transcript.Exists, e.Summary.Exists)
		entries[id] = e
	}
	return entries, nil
}

func scanDir(dir string, pattern *regexp.Regexp) (map[string]models.ArtifactRecord, error) {
	records := make(map[string]models.ArtifactRecord)

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, err
	}

	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		records[m[1]] = models.ArtifactRecord{
			Exists:    true,
			Path:      filepath.Join(dir, de.Name()),
			SizeBytes: info.Size(),
		}
	}
	return records, nil
}
