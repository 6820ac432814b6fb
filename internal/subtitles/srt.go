package subtitles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"magf/internal/magf"
)

// ErrMalformed reports subtitle input that cannot be parsed.
var ErrMalformed = errors.New("malformed subtitles")

// ParseSRT reads SubRip cues. Blocks are separated by blank lines, the numeric
// index line is optional, and multi-line text is joined with "\n".
func ParseSRT(r io.Reader) ([]magf.Cue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	content := strings.TrimPrefix(string(data), "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	cues := []magf.Cue{}
	var (
		block     []string
		blockLine int
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		cue, err := parseBlock(block)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrMalformed, blockLine, err)
		}
		cues = append(cues, cue)
		block = block[:0]
		return nil
	}

	for i, text := range strings.Split(content, "\n") {
		if strings.TrimSpace(text) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if len(block) == 0 {
			blockLine = i + 1
		}
		block = append(block, text)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cues, nil
}

func parseBlock(lines []string) (magf.Cue, error) {
	start := 0
	if isNumeric(lines[0]) && len(lines) > 1 && strings.Contains(lines[1], "-->") {
		start = 1
	}
	timing := lines[start]
	parts := strings.Split(timing, "-->")
	if len(parts) != 2 {
		return magf.Cue{}, fmt.Errorf("expected timing line, got %q", timing)
	}
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return magf.Cue{}, fmt.Errorf("missing end timestamp in %q", timing)
	}
	from, err := parseSRTTimestamp(parts[0])
	if err != nil {
		return magf.Cue{}, err
	}
	to, err := parseSRTTimestamp(endFields[0])
	if err != nil {
		return magf.Cue{}, err
	}

	text := make([]string, 0, len(lines)-start-1)
	for _, l := range lines[start+1:] {
		text = append(text, strings.TrimRight(l, " \t"))
	}
	return magf.Cue{
		Start: from,
		End:   to,
		Text:  norm.NFC.String(strings.Join(text, "\n")),
	}, nil
}

// parseSRTTimestamp accepts HH:MM:SS,mmm and HH:MM:SS.mmm.
func parseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 || millis < 0 || millis > 999 {
		return 0, fmt.Errorf("timestamp out of range %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

func formatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	msTotal := int(seconds*1000 + 0.5)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteSRT writes cues as numbered SubRip blocks.
func WriteSRT(w io.Writer, cues []magf.Cue) error {
	bw := bufio.NewWriter(w)
	for i, cue := range cues {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "%d\n%s --> %s\n", i+1, formatSRTTimestamp(cue.Start), formatSRTTimestamp(cue.End))
		bw.WriteString(cue.Text)
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func isNumeric(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	_, err := strconv.Atoi(value)
	return err == nil
}
