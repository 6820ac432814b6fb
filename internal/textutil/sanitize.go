package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fallbackToken is returned by Token when nothing usable remains.
const fallbackToken = "container"

// FileName makes a catalog entry name safe to use as a file base name.
// Path separators, colons and asterisks become dashes; quotes, wildcards and
// redirection characters are dropped, as are control characters. Runs of
// whitespace collapse to a single space.
func FileName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*':
			return '-'
		case '?', '"', '<', '>', '|':
			return -1
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	return strings.Join(strings.Fields(mapped), " ")
}

// Token folds name to lowercase ASCII for use in download file names.
// Accents are stripped, letters and digits are kept along with '-' and '_',
// and any other run of characters becomes one underscore.
func Token(name string) string {
	folded, _, err := transform.String(accentFolder(), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return fallbackToken
	}
	return out
}

// accentFolder decomposes, drops combining marks and recomposes. A new chain
// is built per call because transform.Chain is stateful.
func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
