// Package ingest parses uploaded HTML statement exports into partial
// documents that feed the same merge pipeline as image extractions.
package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// ParseCellValue parses raw financial cell text.
// Handles:
//
//	"(1,234)" → -1234 (parentheses = negative)
//	"$1,234.56" → 1234.56
//	"—" or "-" → nil (blank)
//	"1,234" → 1234
func ParseCellValue(raw string) *float64 {
	raw = strings.TrimSpace(raw)

	if raw == "" || raw == "—" || raw == "-" || raw == "–" || raw == "N/A" {
		return nil
	}

	isNegative := strings.Contains(raw, "(") && strings.Contains(raw, ")")

	cleaned := nonNumeric.ReplaceAllString(raw, "")
	if cleaned == "" || cleaned == "." || cleaned == "-" {
		return nil
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	if isNegative && value > 0 {
		value = -value
	}
	return &value
}

var (
	nonNumeric  = regexp.MustCompile(`[^0-9.\-]`)
	yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// ParseColumnYear pulls a fiscal year out of a column header.
// Examples:
//
//	"December 31, 2024" → "2024"
//	"Year Ended December 31, 2023" → "2023"
//	"2024" → "2024"
func ParseColumnYear(label string) string {
	matches := yearPattern.FindAllString(label, -1)
	if len(matches) == 0 {
		return ""
	}
	// Last year found is usually the column's own year.
	return matches[len(matches)-1]
}

// DetectScale returns the multiplier implied by table captions like
// "(in millions)" or "($ in thousands)". Unknown captions scale by 1.
func DetectScale(text string) float64 {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "million") {
		return 1e6
	}
	if strings.Contains(lower, "thousand") {
		return 1e3
	}
	return 1
}
