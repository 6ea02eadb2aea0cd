package series

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
)

var (
	labelRe     = regexp.MustCompile(`^([A-Za-z0-9_][A-Za-z0-9_\s.\-]*[A-Za-z0-9_])\s*([=:]|\|?=)\s*(.+)`)
	junkPunctRe = regexp.MustCompile(`^[|_\-.=+/]{3,}$`)
	alnumRe     = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// ParseLabel splits a series label of the form "name <op> value", where op is
// '=', ':' or '|='. A purely numeric left-hand side or an empty value leaves
// the parameter nil and keeps the whole text as the value. Surrounding
// whitespace is dropped first.
func ParseLabel(text string) diagram.SeriesLabel {
	text = strings.TrimSpace(text)
	if m := labelRe.FindStringSubmatch(text); m != nil {
		param := strings.TrimSpace(m[1])
		value := strings.TrimSpace(m[3])
		if !isNumeric(param) && value != "" {
			return diagram.SeriesLabel{RawText: text, ParsedParameter: &param, ParsedValue: &value}
		}
	}
	whole := text
	return diagram.SeriesLabel{RawText: text, ParsedValue: &whole}
}

// isNumeric reports whether s is a run of digits with at most one decimal point.
func isNumeric(s string) bool {
	s = strings.Replace(s, ".", "", 1)
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}

// IsJunk reports whether text is OCR noise that cannot label a curve: blank,
// a run of rule characters like "----" or "|||", one symbol repeated three
// or more times, or two characters or fewer with nothing alphanumeric.
func IsJunk(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return true
	}
	if junkPunctRe.MatchString(text) || isRepeatedSymbol(text) {
		return true
	}
	return utf8.RuneCountInString(text) <= 2 && !alnumRe.MatchString(text)
}

// isRepeatedSymbol matches a single non-word, non-space rune repeated 3+ times.
func isRepeatedSymbol(s string) bool {
	first, _ := utf8.DecodeRuneInString(s)
	if unicode.IsSpace(first) || first == '_' || unicode.IsLetter(first) || unicode.IsDigit(first) {
		return false
	}
	n := 0
	for _, r := range s {
		if r != first {
			return false
		}
		n++
	}
	return n >= 3
}
