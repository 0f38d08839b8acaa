package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kiranshivaraju/podscribe/internal/ai/anthropic"
	"github.com/kiranshivaraju/podscribe/internal/ai/ollama"
	"github.com/kiranshivaraju/podscribe/internal/ai/openai"
	"github.com/kiranshivaraju/podscribe/internal/ai/vllm"
	"github.com/kiranshivaraju/podscribe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatStub is a scriptable ChatModel for exercising the service.
type chatStub struct {
	name     string
	response string
	err      error
	lastReq  models.ChatRequest
	calls    int
}

func (c *chatStub) Name() string { return c.name }

func (c *chatStub) Complete(ctx context.Context, req models.ChatRequest) (string, error) {
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func writeTranscriptFixture(t *testing.T, dir, stem string) string {
	t.Helper()
	tr := models.Transcript{
		Metadata: models.TranscriptMetadata{AudioFile: stem + ".mp3", ProcessedAt: time.Now().UTC()},
		FullText: "Hosts discuss distributed systems and the history of consensus protocols.",
		Segments: []models.TranscriptSegment{
			{Index: 0, StartSeconds: 0, EndSeconds: 30, Text: "Intro and housekeeping."},
			{Index: 1, StartSeconds: 30, EndSeconds: 120, Text: "Deep dive into consensus protocols."},
		},
	}
	data, err := json.MarshalIndent(tr, "", "  ")
	require.NoError(t, err)
	path := filepath.Join(dir, stem+"_transcript.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeSummaryFixture(t *testing.T, dir, stem string) string {
	t.Helper()
	sum := models.Summary{
		SourceTranscript: stem + "_transcript.json",
		Summary:          "An episode about consensus protocols.",
		ProcessedAt:      time.Now().UTC(),
	}
	data, err := json.MarshalIndent(sum, "", "  ")
	require.NoError(t, err)
	path := filepath.Join(dir, stem+"_summary.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// --- Summarize ---

func TestSummarize_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	stub := &chatStub{
		name:     "stub",
		response: `{"summary": "A show about consensus.", "topics": ["consensus", "raft"], "key_moments": ["the paxos anecdote"]}`,
	}
	svc := NewTextService(stub, time.Second)

	outDir := filepath.Join(dir, "summaries")
	path, err := svc.Summarize(context.Background(), transcriptPath, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "audio_7_summary.json"), path)

	sum, err := ReadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, "A show about consensus.", sum.Summary)
	assert.Equal(t, []string{"consensus", "raft"}, sum.Topics)
	assert.Equal(t, transcriptPath, sum.SourceTranscript)
	assert.Equal(t, "stub", sum.Provider)

	assert.True(t, stub.lastReq.ForceJSON)
	assert.Contains(t, stub.lastReq.User, "consensus protocols")
}

func TestSummarize_EmptySummaryRejected(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	stub := &chatStub{name: "stub", response: `{"summary": ""}`}
	svc := NewTextService(stub, time.Second)

	_, err := svc.Summarize(context.Background(), transcriptPath, dir)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestSummarize_MalformedJSONRejected(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	stub := &chatStub{name: "stub", response: "Here is your summary: the episode was great."}
	svc := NewTextService(stub, time.Second)

	_, err := svc.Summarize(context.Background(), transcriptPath, dir)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestSummarize_MissingTranscript(t *testing.T) {
	svc := NewTextService(&chatStub{name: "stub"}, time.Second)

	_, err := svc.Summarize(context.Background(), filepath.Join(t.TempDir(), "nope.json"), t.TempDir())
	assert.ErrorIs(t, err, ErrArtifactUnreadable)
}

func TestSummarize_NoFileOnModelError(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	stub := &chatStub{name: "stub", err: ErrProviderUnavailable}
	svc := NewTextService(stub, time.Second)

	outDir := filepath.Join(dir, "summaries")
	_, err := svc.Summarize(context.Background(), transcriptPath, outDir)
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	_, statErr := os.Stat(filepath.Join(outDir, "audio_7_summary.json"))
	assert.True(t, os.IsNotExist(statErr))
}

// --- Answer ---

func TestAnswer_UsesTranscriptAndSummary(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")
	summaryPath := writeSummaryFixture(t, dir, "audio_7")

	stub := &chatStub{name: "stub", response: "They discuss consensus protocols."}
	svc := NewTextService(stub, time.Second)

	answer, err := svc.Answer(context.Background(), "What do they discuss?", transcriptPath, summaryPath)
	require.NoError(t, err)
	assert.Equal(t, "They discuss consensus protocols.", answer)

	assert.False(t, stub.lastReq.ForceJSON)
	assert.Contains(t, stub.lastReq.User, "SUMMARY:")
	assert.Contains(t, stub.lastReq.User, "QUESTION: What do they discuss?")
}

func TestAnswer_WorksWithoutSummary(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	stub := &chatStub{name: "stub", response: "An episode about distributed systems."}
	svc := NewTextService(stub, time.Second)

	answer, err := svc.Answer(context.Background(), "What is this?", transcriptPath, "")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.NotContains(t, stub.lastReq.User, "SUMMARY:")
}

func TestAnswer_EmptyAnswerRejected(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	stub := &chatStub{name: "stub", response: "   "}
	svc := NewTextService(stub, time.Second)

	_, err := svc.Answer(context.Background(), "What?", transcriptPath, "")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

// --- LocateSegment ---

func TestLocateSegment_ReturnsWindow(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	stub := &chatStub{
		name:     "stub",
		response: `{"message": "Playing the consensus deep dive", "start_s": 30, "end_s": 120}`,
	}
	svc := NewTextService(stub, time.Second)

	seg, err := svc.LocateSegment(context.Background(), transcriptPath, "play the part about consensus")
	require.NoError(t, err)
	assert.Equal(t, 30.0, seg.StartSeconds)
	assert.Equal(t, 120.0, seg.EndSeconds)
	assert.NotEmpty(t, seg.Message)

	assert.True(t, stub.lastReq.ForceJSON)
	assert.Contains(t, stub.lastReq.User, "start_s")
}

func TestLocateSegment_RejectsInvertedWindow(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	stub := &chatStub{name: "stub", response: `{"message": "bad", "start_s": 100, "end_s": 20}`}
	svc := NewTextService(stub, time.Second)

	_, err := svc.LocateSegment(context.Background(), transcriptPath, "play it")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestLocateSegment_RejectsNegativeStart(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	stub := &chatStub{name: "stub", response: `{"message": "bad", "start_s": -5, "end_s": 20}`}
	svc := NewTextService(stub, time.Second)

	_, err := svc.LocateSegment(context.Background(), transcriptPath, "play it")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

// --- Recommend ---

func TestRecommend_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")
	summaryPath := writeSummaryFixture(t, dir, "audio_7")

	stub := &chatStub{
		name:     "stub",
		response: `{"themes": ["distributed systems"], "suggestions": ["an episode on CRDTs"], "reasoning": "same area"}`,
	}
	svc := NewTextService(stub, time.Second)

	outDir := filepath.Join(dir, "recommendations")
	path, err := svc.Recommend(context.Background(), transcriptPath, summaryPath, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "audio_7_recommendations.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var artifact struct {
		SourceTranscript string                 `json:"source_transcript"`
		Recommendations  models.Recommendations `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(data, &artifact))
	assert.Equal(t, transcriptPath, artifact.SourceTranscript)
	assert.Equal(t, []string{"distributed systems"}, artifact.Recommendations.Themes)

	// Summary is preferred over the full transcript as prompt material.
	assert.Contains(t, stub.lastReq.User, "An episode about consensus protocols.")
}

// --- Timeout ---

func TestComplete_MapsDeadlineToTimeout(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	blocked := &blockingStub{}
	svc := NewTextService(blocked, 20*time.Millisecond)

	_, err := svc.Answer(context.Background(), "What?", transcriptPath, "")
	assert.ErrorIs(t, err, ErrInferenceTimeout)
}

func TestComplete_MapsBackendOutageToProviderUnavailable(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	backendErrs := []error{
		fmt.Errorf("%w: dial tcp: connection refused", openai.ErrUnavailable),
		fmt.Errorf("%w: dial tcp: connection refused", ollama.ErrUnavailable),
		fmt.Errorf("%w: dial tcp: connection refused", vllm.ErrUnavailable),
		fmt.Errorf("%w: dial tcp: connection refused", anthropic.ErrUnavailable),
	}
	for _, backendErr := range backendErrs {
		stub := &chatStub{name: "stub", err: backendErr}
		svc := NewTextService(stub, time.Second)

		_, err := svc.Answer(context.Background(), "What?", transcriptPath, "")
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	}
}

func TestComplete_UnclassifiedModelErrorPassesThrough(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := writeTranscriptFixture(t, dir, "audio_7")

	apiErr := fmt.Errorf("%w: status 500", openai.ErrAPIError)
	svc := NewTextService(&chatStub{name: "stub", err: apiErr}, time.Second)

	_, err := svc.Answer(context.Background(), "What?", transcriptPath, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorIs(t, err, openai.ErrAPIError)
}

type blockingStub struct{}

func (b *blockingStub) Name() string { return "blocking" }

func (b *blockingStub) Complete(ctx context.Context, _ models.ChatRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// --- truncateString ---

func TestTruncateString_RuneSafe(t *testing.T) {
	s := strings.Repeat("é", 100) // 2 bytes per rune
	out := truncateString(s, 31)
	assert.LessOrEqual(t, len(out), 31)
	assert.True(t, strings.HasSuffix(out, "é"))

	assert.Equal(t, "short", truncateString("short", 100))
}

// --- artifactStem ---

func TestArtifactStem(t *testing.T) {
	assert.Equal(t, "audio_7", artifactStem("/x/audio_7_transcript.json", "_transcript"))
	assert.Equal(t, "vid_10_60", artifactStem("vid_10_60_transcript.json", "_transcript"))
	assert.Equal(t, "audio_7", artifactStem("audio_7.json", "_transcript"))
}

// Guard against silent interface drift.
var _ models.ChatModel = (*chatStub)(nil)

func TestReadTranscript_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := ReadTranscript(path)
	assert.ErrorIs(t, err, ErrArtifactUnreadable)
	assert.True(t, errors.Is(err, ErrArtifactUnreadable))
}
