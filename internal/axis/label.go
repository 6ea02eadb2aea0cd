package axis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ironsheep/chart-digitizer-mcp/internal/diagram"
	"github.com/ironsheep/chart-digitizer-mcp/internal/geometry"
)

var (
	parenRe  = regexp.MustCompile(`\(([^)]+)\)`)
	symbolRe = regexp.MustCompile(`^[A-Za-z]+[A-Za-z0-9_]*$`)
)

// maxSymbolLen is the longest token still read as a quantity symbol.
const maxSymbolLen = 5

// ParseTitle joins title fragments (already ordered along the axis) and splits
// the result into quantity, symbol and unit:
//
//	"Drain-Source Voltage, VDS (V)" -> quantity "Drain-Source Voltage",
//	                                   symbol "VDS", unit "V"
func ParseTitle(parts []diagram.OCRFragment) diagram.AxisLabel {
	texts := make([]string, 0, len(parts))
	boxes := make([]*geometry.Box, 0, len(parts))
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
		boxes = append(boxes, p.BBox)
	}
	raw := strings.Join(texts, " ")

	quantity, symbol, unit := splitTitle(raw)
	return diagram.AxisLabel{
		RawText:        raw,
		ParsedQuantity: quantity,
		ParsedSymbol:   symbol,
		ParsedUnit:     unit,
		TextBBox:       geometry.Union(boxes...),
	}
}

func splitTitle(raw string) (quantity, symbol, unit string) {
	rest := raw

	if group, inner, ok := unitGroup(raw); ok {
		candidate := strings.TrimSpace(inner)
		if !(len(strings.Fields(candidate)) > 1 && hasLower(candidate)) {
			unit = candidate
			rest = strings.TrimSpace(strings.ReplaceAll(raw, group, ""))
		}
	}

	quantity = rest
	var parts []string
	for _, p := range strings.Split(rest, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 1 {
		last := parts[len(parts)-1]
		if isSymbol(last) {
			symbol = last
			quantity = strings.TrimSpace(strings.Join(parts[:len(parts)-1], ","))
		}
	}

	if symbol == "" && isSymbol(quantity) {
		symbol, quantity = quantity, ""
	}

	if symbol != "" && strings.Contains(quantity, symbol) {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(symbol) + `\b`)
		quantity = strings.TrimSpace(re.ReplaceAllString(quantity, ""))
		quantity = strings.TrimSpace(strings.TrimRight(quantity, ","))
	}

	return strings.TrimSpace(quantity), strings.TrimSpace(symbol), strings.TrimSpace(unit)
}

// unitGroup finds the first parenthesized group that is not immediately
// followed by more words, e.g. the "(V)" in "Voltage (V)" but not the "(max)"
// in "I (max) rating".
func unitGroup(s string) (group, inner string, ok bool) {
	for _, loc := range parenRe.FindAllStringSubmatchIndex(s, -1) {
		after := strings.TrimLeftFunc(s[loc[1]:], unicode.IsSpace)
		if r, _ := utf8.DecodeRuneInString(after); after != "" && isWordRune(r) {
			continue
		}
		return s[loc[0]:loc[1]], s[loc[2]:loc[3]], true
	}
	return "", "", false
}

func isSymbol(s string) bool {
	return len(s) <= maxSymbolLen && symbolRe.MatchString(s)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func hasLower(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}
