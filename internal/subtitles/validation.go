package subtitles

import (
	"fmt"
	"strings"

	"magf/internal/magf"
)

// Issue codes reported by Validate.
const (
	IssueEmptyText      = "empty_text"
	IssueInvertedWindow = "inverted_window"
	IssueNegativeStart  = "negative_start"
	IssueBeyondDuration = "beyond_duration"
	IssueUnordered      = "unordered"
)

// Validate checks cues against a clip duration in seconds and returns one
// "code: detail" string per problem. A duration <= 0 skips the range check.
// Only inverted windows and negative starts stop a container from encoding;
// the rest are advisory.
func Validate(cues []magf.Cue, duration float64) []string {
	var issues []string
	for i, cue := range cues {
		n := i + 1
		if strings.TrimSpace(cue.Text) == "" {
			issues = append(issues, fmt.Sprintf("%s: cue %d", IssueEmptyText, n))
		}
		if cue.Start < 0 {
			issues = append(issues, fmt.Sprintf("%s: cue %d starts at %.3fs", IssueNegativeStart, n, cue.Start))
		}
		if cue.End < cue.Start {
			issues = append(issues, fmt.Sprintf("%s: cue %d ends at %.3fs before it starts at %.3fs", IssueInvertedWindow, n, cue.End, cue.Start))
		}
		if duration > 0 && cue.Start > duration {
			issues = append(issues, fmt.Sprintf("%s: cue %d starts at %.3fs after the %.3fs clip", IssueBeyondDuration, n, cue.Start, duration))
		}
		if i > 0 && cue.Start < cues[i-1].Start {
			issues = append(issues, fmt.Sprintf("%s: cue %d starts before cue %d", IssueUnordered, n, i))
		}
	}
	return issues
}
