// Package intent classifies free-text messages into a fixed set of intents.
// The keyword policy is deliberately simple: deterministic, total, and
// testable — not NLU. A message matching several marker sets takes the
// first set in priority order.
package intent

import (
	"strings"

	"github.com/kiranshivaraju/podscribe/pkg/models"
)

// Marker sets in priority order. Question markers win over summary markers,
// which win over playback markers: "what does the audio say?" is a
// question, not a playback request.
var (
	questionMarkers = []string{"what", "how", "why", "when", "where", "who", "?"}
	summaryMarkers  = []string{"summarize", "summary", "overview", "recap"}
	playbackMarkers = []string{"play", "listen", "audio", "sound"}
)

// Classify maps a message to an intent. Case-insensitive, always resolves;
// a message matching nothing defaults to AskQuestion.
func Classify(message string) models.Intent {
	m := strings.ToLower(message)

	if containsAny(m, questionMarkers) {
		return models.IntentAskQuestion
	}
	if containsAny(m, summaryMarkers) {
		return models.IntentSummarize
	}
	if containsAny(m, playbackMarkers) {
		return models.IntentPlayAudio
	}
	return models.IntentAskQuestion
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
