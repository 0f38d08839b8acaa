package catalog

import (
	"regexp"
	"strings"
)

// Candidate patterns are tried in order; the first match wins. This is a
// prefix-preference algorithm, not best-match, so keep the ordering
// deliberate: explicit labels beat bare integers beat ordinals.
var (
	labelPattern   = regexp.MustCompile(`(?:audio|podcast|episode)[_\s]*(\d+)`)
	bareIntPattern = regexp.MustCompile(`^(\d+)$`)
)

var ordinalPatterns = []struct {
	re   *regexp.Regexp
	rank string
}{
	{regexp.MustCompile(`\b(?:first|1st)\b`), "1"},
	{regexp.MustCompile(`\b(?:second|2nd)\b`), "2"},
	{regexp.MustCompile(`\b(?:third|3rd)\b`), "3"},
	{regexp.MustCompile(`\b(?:fourth|4th)\b`), "4"},
	{regexp.MustCompile(`\b(?:fifth|5th)\b`), "5"},
	{regexp.MustCompile(`\b(?:sixth|6th)\b`), "6"},
	{regexp.MustCompile(`\b(?:seventh|7th)\b`), "7"},
	{regexp.MustCompile(`\b(?:eighth|8th)\b`), "8"},
	{regexp.MustCompile(`\b(?:ninth|9th)\b`), "9"},
	{regexp.MustCompile(`\b(?:tenth|10th)\b`), "10"},
}

// ResolveQuery extracts a content id from free text. It accepts labelled
// references ("audio_7", "podcast 7", "episode7"), a bare integer ("7"),
// and ordinal words or abbreviations ("seventh", "7th"). Returns "" when
// nothing matches.
func (ix *Index) ResolveQuery(freeText string) string {
	q := strings.ToLower(strings.TrimSpace(freeText))

	if m := labelPattern.FindStringSubmatch(q); m != nil {
		return m[1]
	}
	if m := bareIntPattern.FindStringSubmatch(q); m != nil {
		return m[1]
	}
	for _, p := range ordinalPatterns {
		if p.re.MatchString(q) {
			return p.rank
		}
	}
	return ""
}
