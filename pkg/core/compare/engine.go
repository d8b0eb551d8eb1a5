// Package compare computes year-over-year and overall percentage
// changes for a fixed set of headline metrics across a multi-year
// document.
package compare

import (
	"fmt"

	"statement_analyzer/pkg/models"
)

// Metric names one comparable line of the statement and how to pull
// its value out of a YearDocument.
type Metric struct {
	Key     string
	Label   string
	resolve func(*models.YearDocument) *float64
}

// Metrics is the fixed comparison list, in display order.
var Metrics = []Metric{
	{"total_assets", "Total Assets", func(y *models.YearDocument) *float64 { return y.Totals.TotalAssets }},
	{"total_liabilities", "Total Liabilities", func(y *models.YearDocument) *float64 { return y.Totals.TotalLiabilities }},
	{"total_equity", "Total Equity", func(y *models.YearDocument) *float64 { return y.Totals.TotalEquity }},
	{"revenue", "Revenue", func(y *models.YearDocument) *float64 { return y.IncomeValue("revenue") }},
	{"net_income", "Net Income", func(y *models.YearDocument) *float64 { return y.IncomeValue("net_income") }},
	{"gross_profit", "Gross Profit", func(y *models.YearDocument) *float64 { return y.IncomeValue("gross_profit") }},
	{"current_assets", "Current Assets", func(y *models.YearDocument) *float64 { return y.CurrentAssets.Total }},
	{"current_liabilities", "Current Liabilities", func(y *models.YearDocument) *float64 { return y.CurrentLiabilities.Total }},
}

// Change returns the percentage change from older to newer, formatted
// to one decimal place. Either operand missing, or a zero baseline,
// yields "N/A".
func Change(newer, older *float64) string {
	if newer == nil || older == nil || *older == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", (*newer-*older)/(*older)*100)
}

// Row is one metric across all compared years. Values line up with
// Table.Years; nil means the year had no figure. OverallChange is
// empty when the table has fewer than two years.
type Row struct {
	Key           string     `json:"key"`
	Label         string     `json:"label"`
	Values        []*float64 `json:"values"`
	OverallChange string     `json:"overall_change,omitempty"`
}

// Table is the full comparison result: year labels in ascending
// chronological order plus one row per metric with data.
type Table struct {
	Years []string `json:"years"`
	Rows  []Row    `json:"rows"`
}

// Build computes the comparison table for the document's years, which
// are assumed already normalized to ascending chronological order.
// Metrics with no value in any year are omitted. The overall change
// compares only the endpoints, regardless of how many years sit in
// between, and is produced only when at least two years are present.
func Build(doc *models.MultiYearDocument) *Table {
	years := doc.AllYears
	table := &Table{}
	for i := range years {
		label := years[i].Year
		if label == "" {
			label = fmt.Sprintf("Year %d", i+1)
		}
		table.Years = append(table.Years, label)
	}

	for _, m := range Metrics {
		row := Row{Key: m.Key, Label: m.Label}
		any := false
		for i := range years {
			v := m.resolve(&years[i])
			if v != nil {
				any = true
			}
			row.Values = append(row.Values, v)
		}
		if !any {
			continue
		}
		if len(years) >= 2 {
			first := m.resolve(&years[0])
			last := m.resolve(&years[len(years)-1])
			row.OverallChange = Change(last, first)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// YearOverYear returns pairwise changes for a row's values, one entry
// per adjacent year pair.
func YearOverYear(values []*float64) []string {
	if len(values) < 2 {
		return nil
	}
	changes := make([]string, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		changes = append(changes, Change(values[i], values[i-1]))
	}
	return changes
}
