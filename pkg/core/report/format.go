// Package report turns a computed analysis into the render-ready
// structure handed to the typesetting backend. Formatting never
// alters stored numbers, only their display.
package report

import (
	"fmt"
	"math"
	"strings"

	"statement_analyzer/pkg/models"
)

// FormatCurrency renders v with thousand separators and two decimals.
func FormatCurrency(v float64) string {
	neg := v < 0
	s := fmt.Sprintf("%.2f", math.Abs(v))
	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	out := b.String() + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// FormatMagnitude abbreviates large numbers for summary display:
// 1500 -> "1.5K", 2300000 -> "2.3M", 4100000000 -> "4.1B".
func FormatMagnitude(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

// FormatRatio renders a computed ratio value with its unit suffix,
// rounded to two decimals. N/A passes through unchanged.
func FormatRatio(value models.RatioValue, unit models.RatioUnit) string {
	if value.NA {
		return "N/A"
	}
	switch unit {
	case models.UnitPercent:
		return fmt.Sprintf("%.2f%%", value.Number)
	case models.UnitTimes:
		return fmt.Sprintf("%.2fx", value.Number)
	case models.UnitDays:
		return fmt.Sprintf("%.2f days", value.Number)
	default:
		return fmt.Sprintf("%.2f", value.Number)
	}
}

// latexReplacer escapes every character LaTeX treats specially.
// Replacer works in a single pass, so emitted escapes are safe.
var latexReplacer = strings.NewReplacer(
	"\\", `\textbackslash{}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// EscapeLaTeX makes free text safe for interpolation into a LaTeX
// document.
func EscapeLaTeX(s string) string {
	return latexReplacer.Replace(s)
}
