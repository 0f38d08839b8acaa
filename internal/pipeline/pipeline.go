// Package pipeline runs background ingestion jobs (transcribe, summarize,
// recommend) over downloaded audio and tracks their status. Jobs are keyed
// by a composite pipeline id so the same segment is never processed twice
// concurrently.
package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrNotFound means no job record or persisted output exists for the id.
var ErrNotFound = errors.New("pipeline not found")

// ID identifies one ingestion run: a source reference plus the segment
// window in seconds. Its string form is the filename stem of every output
// artifact the run produces.
type ID struct {
	SourceRef   string
	StartOffset int
	Duration    int
}

func (id ID) String() string {
	return fmt.Sprintf("%s_%d_%d", id.SourceRef, id.StartOffset, id.Duration)
}

// SourceRef may itself contain underscores, so parsing anchors on the two
// trailing integer fields.
var idPattern = regexp.MustCompile(`^(.+)_(\d+)_(\d+)$`)

// ParseID reconstructs an ID from its string form.
func ParseID(s string) (ID, error) {
	m := idPattern.FindStringSubmatch(s)
	if m == nil {
		return ID{}, fmt.Errorf("malformed pipeline id %q", s)
	}
	start, err := strconv.Atoi(m[2])
	if err != nil {
		return ID{}, fmt.Errorf("malformed pipeline id %q: %v", s, err)
	}
	duration, err := strconv.Atoi(m[3])
	if err != nil {
		return ID{}, fmt.Errorf("malformed pipeline id %q: %v", s, err)
	}
	return ID{SourceRef: m[1], StartOffset: start, Duration: duration}, nil
}
