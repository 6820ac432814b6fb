package subtitles

import (
	"regexp"
	"strings"

	"magf/internal/magf"
)

var adPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)opensubtitles`),
	regexp.MustCompile(`(?i)subtitles? by`),
	regexp.MustCompile(`(?i)synced? and corrected`),
	regexp.MustCompile(`(?i)advertise (your|yours?) product`),
	regexp.MustCompile(`(?i)http(s)?://`),
	regexp.MustCompile(`(?i)\bwww\.`),
}

// CleanStats reports the effects of Clean.
type CleanStats struct {
	RemovedCues int
}

// Clean drops advertisement cues and trims trailing whitespace from the rest.
// The input slice is not modified.
func Clean(cues []magf.Cue) ([]magf.Cue, CleanStats) {
	if cues == nil {
		return nil, CleanStats{}
	}
	cleaned := make([]magf.Cue, 0, len(cues))
	var stats CleanStats
	for _, cue := range cues {
		if isAdvertisement(cue.Text) {
			stats.RemovedCues++
			continue
		}
		cue.Text = normalizeLines(cue.Text)
		cleaned = append(cleaned, cue)
	}
	return cleaned, stats
}

func isAdvertisement(text string) bool {
	payload := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if payload == "" {
		return false
	}
	for _, pattern := range adPatterns {
		if pattern.MatchString(payload) {
			return true
		}
	}
	return false
}

func normalizeLines(text string) string {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.Join(lines, "\n")
}
