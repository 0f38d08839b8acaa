package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveQuery(t *testing.T) {
	ix := New(testStorage(t))

	tests := []struct {
		query string
		want  string
	}{
		{"audio_7", "7"},
		{"audio 7", "7"},
		{"audio7", "7"},
		{"AUDIO_7", "7"},
		{"podcast7", "7"},
		{"podcast 12", "12"},
		{"episode 3", "3"},
		{"play episode_5 please", "5"},
		{"7", "7"},
		{"  7  ", "7"},
		{"seventh", "7"},
		{"7th", "7"},
		{"play the first episode", "1"},
		{"summarize the tenth one", "10"},
		{"what is this about", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ix.ResolveQuery(tt.query))
		})
	}
}

// Label references beat bare integers and ordinals when several patterns
// could match; the ordering is part of the contract.
func TestResolveQuery_PrefixPreference(t *testing.T) {
	ix := New(testStorage(t))

	assert.Equal(t, "2", ix.ResolveQuery("play episode 2 first"))
	assert.Equal(t, "4", ix.ResolveQuery("audio 4 or the ninth one"))
}
