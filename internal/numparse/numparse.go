// Package numparse reads numeric values out of OCR'd axis tick labels.
//
// Formats are tried in order:
//
//  1. Plain decimal: "2.0", "-40", "3.2e-3"
//  2. Metric prefix suffix: "1.5k", "20m", "100n", "4.7µ"
//  3. Scientific notation: "1.5 x10^3", "2*10^-4", "5e3"
//  4. Power notation: "10^-3", "10⁻³"
//
// Unicode minus signs (−, ⁻) are normalized to ASCII before any format is
// tried, and compatibility characters such as full-width digits are folded
// with NFKC. Every format must match the whole token.
package numparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	plainRe = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)(e[-+]?\d+)?$`)
	sciRe   = regexp.MustCompile(`^([-+]?\d*\.?\d+)\s*(?:e|x10\^|\*10\^)\s*([-+]?\d+)$`)
	powRe   = regexp.MustCompile(`^([-+]?\d*\.?\d+)\^([-+]?\d+)$`)
)

// metricMultipliers maps a trailing metric prefix to its scale factor.
// "m" is handled separately because it collides with unit suffixes.
var metricMultipliers = map[rune]float64{
	'k': 1e3,
	'g': 1e9,
	'µ': 1e-6, // micro sign
	'μ': 1e-6, // greek mu
	'u': 1e-6,
	'n': 1e-9,
	'p': 1e-12,
}

// milliBlockers are substrings that mean a trailing "m" is a unit, not milli.
var milliBlockers = []string{"µm", "μm", "nm", "pm", "em"}

var minusReplacer = strings.NewReplacer(
	"−", "-", // minus sign
	"⁻", "-", // superscript minus
	"₋", "-", // subscript minus
	"⁺", "+", // superscript plus
	"×", "x",
)

var superscripts = map[rune]rune{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9',
	'⁻': '-', '⁺': '+',
}

// Parse returns the numeric value of text and true, or 0 and false when the
// text is not a number in any supported format.
func Parse(text string) (float64, bool) {
	s := normalize(text)
	if s == "" {
		return 0, false
	}

	if v, ok := parsePlain(s); ok {
		return v, true
	}
	if v, ok := parseMetric(s); ok {
		return v, true
	}
	if m := sciRe.FindStringSubmatch(s); m != nil {
		base, err1 := strconv.ParseFloat(m[1], 64)
		exp, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			return finite(base * math.Pow10(exp))
		}
	}
	if m := powRe.FindStringSubmatch(s); m != nil {
		base, err1 := strconv.ParseFloat(m[1], 64)
		exp, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			return finite(math.Pow(base, float64(exp)))
		}
	}
	return 0, false
}

// normalize trims, lowercases and rewrites unicode signs and superscript
// exponents into the ASCII forms the format patterns expect.
func normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = superscriptExponent(s)
	s = minusReplacer.Replace(s)
	// NFKC folds full-width digits; it would also turn the micro sign into
	// greek mu, which the multiplier table accepts.
	s = norm.NFKC.String(s)
	return strings.TrimSpace(s)
}

// superscriptExponent rewrites a trailing run of superscript characters
// ("10⁻³") into caret notation ("10^-3").
func superscriptExponent(s string) string {
	end := len(s)
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if _, ok := superscripts[r]; !ok {
			break
		}
		start -= size
	}
	if start == end || start == 0 {
		return s
	}

	var exp strings.Builder
	hasDigit := false
	for _, r := range s[start:] {
		d := superscripts[r]
		if d >= '0' && d <= '9' {
			hasDigit = true
		}
		exp.WriteRune(d)
	}
	if !hasDigit {
		return s
	}
	return s[:start] + "^" + exp.String()
}

func parsePlain(s string) (float64, bool) {
	if !plainRe.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(v)
}

func parseMetric(s string) (float64, bool) {
	last, size := utf8.DecodeLastRuneInString(s)
	if utf8.RuneCountInString(s) < 2 {
		return 0, false
	}
	prefix := strings.TrimSpace(s[:len(s)-size])

	if last == 'm' {
		for _, blocker := range milliBlockers {
			if strings.Contains(s, blocker) {
				return 0, false
			}
		}
		if v, ok := parsePlain(prefix); ok {
			return v * 1e-3, true
		}
		return 0, false
	}

	mult, ok := metricMultipliers[last]
	if !ok {
		return 0, false
	}
	if v, ok := parsePlain(prefix); ok {
		return v * mult, true
	}
	return 0, false
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
