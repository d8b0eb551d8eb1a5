package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"statement_analyzer/pkg/core/compare"
	"statement_analyzer/pkg/core/ratios"
	"statement_analyzer/pkg/models"
)

// Table is a render-ready grid: a header row plus body rows, every
// cell already formatted and escaped for the typesetting backend.
type Table struct {
	Title  string     `json:"title"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Report is the full render-ready structure.
type Report struct {
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Statements  []Table   `json:"statements"`
	RatioTables []Table   `json:"ratio_tables"`
	Comparison  *Table    `json:"comparison,omitempty"`
	Narrative   string    `json:"narrative,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// categoryOrder fixes the ratio table sequence in the report.
var categoryOrder = []models.RatioCategory{
	models.CategoryLiquidity,
	models.CategoryProfitability,
	models.CategorySolvency,
	models.CategoryEfficiency,
	models.CategoryCustom,
}

var categoryTitles = map[models.RatioCategory]string{
	models.CategoryLiquidity:     "Liquidity Ratios",
	models.CategoryProfitability: "Profitability Ratios",
	models.CategorySolvency:      "Solvency Ratios",
	models.CategoryEfficiency:    "Efficiency Ratios",
	models.CategoryCustom:        "Custom Ratios",
}

// Assemble converts a computed analysis into the render-ready report.
// All free text is LaTeX-escaped here, once, so the renderer can
// interpolate cells directly.
func Assemble(title string, analysis *ratios.Analysis) *Report {
	rpt := &Report{
		Title:       EscapeLaTeX(title),
		GeneratedAt: time.Now().UTC(),
		Warnings:    analysis.Warnings,
	}

	for i := range analysis.Statements.AllYears {
		year := &analysis.Statements.AllYears[i]
		rpt.Statements = append(rpt.Statements, statementTable(year, i))
	}

	for _, category := range categoryOrder {
		byName := analysis.Ratios[category]
		if len(byName) == 0 {
			continue
		}
		rpt.RatioTables = append(rpt.RatioTables, ratioTable(category, byName))
	}

	if analysis.Comparison != nil {
		t := comparisonTable(analysis.Comparison)
		rpt.Comparison = &t
	}
	return rpt
}

func statementTable(year *models.YearDocument, index int) Table {
	label := year.Year
	if label == "" {
		label = fmt.Sprintf("Year %d", index+1)
	}
	t := Table{
		Title:  "Statement of Financial Position — " + EscapeLaTeX(label),
		Header: []string{"Line Item", "Amount"},
	}

	sections := []struct {
		name    string
		section *models.FinancialSection
	}{
		{"Current Assets", &year.CurrentAssets},
		{"Non-Current Assets", &year.NonCurrentAssets},
		{"Current Liabilities", &year.CurrentLiabilities},
		{"Non-Current Liabilities", &year.NonCurrentLiabilities},
		{"Equity", &year.Equity},
	}
	for _, s := range sections {
		for _, key := range sortedKeys(s.section.Breakdown) {
			if v := s.section.Breakdown[key]; v != nil {
				t.Rows = append(t.Rows, []string{EscapeLaTeX(humanize(key)), FormatCurrency(*v)})
			}
		}
		if s.section.Total != nil {
			t.Rows = append(t.Rows, []string{"Total " + s.name, FormatCurrency(*s.section.Total)})
		}
	}

	totals := []struct {
		name  string
		value *float64
	}{
		{"Total Assets", year.Totals.TotalAssets},
		{"Total Liabilities", year.Totals.TotalLiabilities},
		{"Total Equity", year.Totals.TotalEquity},
	}
	for _, row := range totals {
		if row.value != nil {
			t.Rows = append(t.Rows, []string{row.name, FormatCurrency(*row.value)})
		}
	}

	for _, key := range sortedKeys(year.IncomeStatement) {
		if v := year.IncomeStatement[key]; v != nil {
			t.Rows = append(t.Rows, []string{EscapeLaTeX(humanize(key)), FormatCurrency(*v)})
		}
	}
	return t
}

func ratioTable(category models.RatioCategory, byName map[string]models.ComputedRatio) Table {
	t := Table{
		Title:  categoryTitles[category],
		Header: []string{"Ratio", "Value", "Notes"},
	}
	ids := make([]string, 0, len(byName))
	for id := range byName {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		r := byName[id]
		note := r.Note
		if note == "" && len(r.MissingFields) > 0 {
			note = "missing: " + strings.Join(r.MissingFields, ", ")
		}
		t.Rows = append(t.Rows, []string{
			EscapeLaTeX(humanize(id)),
			EscapeLaTeX(FormatRatio(r.Value, r.Unit)),
			EscapeLaTeX(note),
		})
	}
	return t
}

func comparisonTable(src *compare.Table) Table {
	t := Table{
		Title:  "Year-over-Year Comparison",
		Header: []string{"Metric"},
	}
	for _, y := range src.Years {
		t.Header = append(t.Header, EscapeLaTeX(y))
	}
	withOverall := len(src.Years) >= 2
	if withOverall {
		t.Header = append(t.Header, "Overall Change")
	}

	for _, row := range src.Rows {
		cells := []string{EscapeLaTeX(row.Label)}
		for _, v := range row.Values {
			if v == nil {
				cells = append(cells, "N/A")
			} else {
				cells = append(cells, FormatCurrency(*v))
			}
		}
		if withOverall {
			change := row.OverallChange
			if change != "N/A" {
				change += `\%`
			}
			cells = append(cells, change)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func sortedKeys(m map[string]*float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// humanize turns a snake_case field id into a display label.
func humanize(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
