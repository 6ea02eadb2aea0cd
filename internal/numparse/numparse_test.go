package numparse

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"plain decimal", "2.0", 2.0},
		{"integer", "250", 250},
		{"negative", "-40", -40},
		{"unicode minus", "−40", -40},
		{"leading dot", ".5", 0.5},
		{"surrounding spaces", "  12.0 ", 12},
		{"exponent form", "3.2e-3", 0.0032},
		{"kilo", "1.5k", 1500},
		{"upper case kilo", "10K", 10000},
		{"milli", "20m", 0.02},
		{"giga", "2g", 2e9},
		{"micro sign", "4.7µ", 4.7e-6},
		{"micro u", "3u", 3e-6},
		{"nano", "100n", 100e-9},
		{"pico", "5p", 5e-12},
		{"times ten", "1.5x10^3", 1500},
		{"star ten", "2*10^-4", 2e-4},
		{"multiplication sign", "3×10^2", 300},
		{"spaced e", "5 e 3", 5000},
		{"caret power", "10^-3", 0.001},
		{"superscript power", "10⁻³", 0.001},
		{"superscript positive power", "10²", 100},
		{"full width digits", "１２", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.text)
			if !ok {
				t.Fatalf("Parse(%q) failed", tt.text)
			}
			if math.Abs(got-tt.want) > math.Abs(tt.want)*1e-9 {
				t.Errorf("Parse(%q) = %g, want %g", tt.text, got, tt.want)
			}
		})
	}
}

func TestParse_NotANumber(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"abc",
		"k",
		"VGS = 15V",
		"Drain-Source Voltage, VDS (V)",
		"5nm",
		"12abc",
		"inf",
		"nan",
		"0x1p-2",
		"2e5abc",
	}

	for _, in := range inputs {
		if v, ok := Parse(in); ok {
			t.Errorf("Parse(%q) = %g, expected not-a-number", in, v)
		}
	}
}

func TestParse_MilliBlockedByUnitSuffix(t *testing.T) {
	for _, in := range []string{"5µm", "3pm", "2em"} {
		if v, ok := Parse(in); ok {
			t.Errorf("Parse(%q) = %g, want not-a-number", in, v)
		}
	}
}

func TestSuperscriptExponent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"10⁻³", "10^-3"},
		{"10³", "10^3"},
		{"⁻³", "⁻³"},   // no base
		{"10⁻", "10⁻"}, // no digits in the exponent
		{"100", "100"},
	}

	for _, tt := range tests {
		if got := superscriptExponent(tt.in); got != tt.want {
			t.Errorf("superscriptExponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
