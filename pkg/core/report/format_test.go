package report

import (
	"strings"
	"testing"

	"statement_analyzer/pkg/models"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0.00"},
		{999, "999.00"},
		{1000, "1,000.00"},
		{1234567.891, "1,234,567.89"},
		{-1234.5, "-1,234.50"},
		{100, "100.00"},
	}
	for _, tc := range tests {
		if got := FormatCurrency(tc.v); got != tc.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestFormatMagnitude(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{950, "950.0"},
		{1500, "1.5K"},
		{2300000, "2.3M"},
		{4100000000, "4.1B"},
		{-2500000, "-2.5M"},
	}
	for _, tc := range tests {
		if got := FormatMagnitude(tc.v); got != tc.want {
			t.Errorf("FormatMagnitude(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	tests := []struct {
		name  string
		value models.RatioValue
		unit  models.RatioUnit
		want  string
	}{
		{"plain ratio", models.Value(1.5), models.UnitRatio, "1.50"},
		{"percent", models.Value(41.6667), models.UnitPercent, "41.67%"},
		{"times", models.Value(3.2), models.UnitTimes, "3.20x"},
		{"days", models.Value(45.5), models.UnitDays, "45.50 days"},
		{"not available", models.NA, models.UnitPercent, "N/A"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatRatio(tc.value, tc.unit); got != tc.want {
				t.Errorf("FormatRatio = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"50% margin", `50\% margin`},
		{"R&D _costs_", `R\&D \_costs\_`},
		{"$1,000 #1", `\$1,000 \#1`},
		{"a\\b", `a\textbackslash{}b`},
		{"x^2 ~ y", `x\textasciicircum{}2 \textasciitilde{} y`},
		{"{group}", `\{group\}`},
		{"plain text", "plain text"},
	}
	for _, tc := range tests {
		if got := EscapeLaTeX(tc.in); got != tc.want {
			t.Errorf("EscapeLaTeX(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEscapeLaTeX_SinglePass(t *testing.T) {
	// The escape sequences the replacer emits contain characters it
	// also replaces; a second pass would corrupt them.
	out := EscapeLaTeX("100%")
	if strings.Contains(out, `\\%`) || out != `100\%` {
		t.Errorf("EscapeLaTeX(%q) = %q", "100%", out)
	}
}
