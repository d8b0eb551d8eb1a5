package ingest

import (
	"errors"
	"testing"

	"statement_analyzer/pkg/models"
)

func TestParseCellValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64 // nil means blank
	}{
		{"plain", "1234", models.Float(1234)},
		{"thousands separator", "1,234", models.Float(1234)},
		{"currency and decimals", "$1,234.56", models.Float(1234.56)},
		{"parentheses negative", "(1,234)", models.Float(-1234)},
		{"explicit minus", "-500", models.Float(-500)},
		{"em dash blank", "—", nil},
		{"hyphen blank", "-", nil},
		{"en dash blank", "–", nil},
		{"not applicable", "N/A", nil},
		{"empty", "   ", nil},
		{"pure text", "see note", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseCellValue(tc.raw)
			switch {
			case tc.want == nil && got != nil:
				t.Errorf("ParseCellValue(%q) = %v, want nil", tc.raw, *got)
			case tc.want != nil && got == nil:
				t.Errorf("ParseCellValue(%q) = nil, want %v", tc.raw, *tc.want)
			case tc.want != nil && *got != *tc.want:
				t.Errorf("ParseCellValue(%q) = %v, want %v", tc.raw, *got, *tc.want)
			}
		})
	}
}

func TestParseColumnYear(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"December 31, 2024", "2024"},
		{"Year Ended December 31, 2023", "2023"},
		{"2024", "2024"},
		{"FY2022", ""}, // no word boundary before the year
		{"Note 12", ""},
		{"Restated 2021 vs 2022", "2022"},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			if got := ParseColumnYear(tc.label); got != tc.want {
				t.Errorf("ParseColumnYear(%q) = %q, want %q", tc.label, got, tc.want)
			}
		})
	}
}

func TestDetectScale(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"(in millions)", 1e6},
		{"($ in thousands)", 1e3},
		{"Amounts in RMB million", 1e6},
		{"", 1},
		{"Consolidated Balance Sheet", 1},
	}
	for _, tc := range tests {
		if got := DetectScale(tc.text); got != tc.want {
			t.Errorf("DetectScale(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

const balanceSheetHTML = `
<html><body>
<table>
<caption>Consolidated Balance Sheet (in thousands)</caption>
<tr><th></th><th>2023</th><th>2022</th></tr>
<tr><td>Cash and cash equivalents</td><td>1,200</td><td>900</td></tr>
<tr><td>Inventories</td><td>300</td><td>(50)</td></tr>
<tr><td>Total current assets</td><td>2,000</td><td>1,500</td></tr>
<tr><td>Total assets</td><td>5,000</td><td>4,200</td></tr>
<tr><td>Total equity</td><td>2,500</td><td>—</td></tr>
<tr><td>Directors' remuneration</td><td>10</td><td>12</td></tr>
</table>
<table>
<tr><th></th><th>2023</th></tr>
<tr><td>Revenue</td><td>8,000</td></tr>
<tr><td>Cost of sales</td><td>(5,000)</td></tr>
<tr><td>Net profit</td><td>1,100</td></tr>
</table>
</body></html>`

func TestParseHTML(t *testing.T) {
	doc, err := ParseHTML(balanceSheetHTML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.AllYears) != 2 {
		t.Fatalf("years = %d, want 2", len(doc.AllYears))
	}
	// Normalized ascending: 2022 first.
	if doc.AllYears[0].Year != "2022" || doc.AllYears[1].Year != "2023" {
		t.Fatalf("year order = %q, %q", doc.AllYears[0].Year, doc.AllYears[1].Year)
	}
	y2023 := doc.AllYears[1]
	y2022 := doc.AllYears[0]

	// Caption says thousands, so 1,200 becomes 1,200,000.
	if v := y2023.CurrentAssets.BreakdownValue("cash"); v == nil || *v != 1200000 {
		t.Errorf("2023 cash = %v, want 1200000", v)
	}
	if v := y2022.CurrentAssets.BreakdownValue("inventories"); v == nil || *v != -50000 {
		t.Errorf("2022 inventories = %v, want -50000 (parentheses)", v)
	}
	if v := y2023.CurrentAssets.Total; v == nil || *v != 2000000 {
		t.Errorf("2023 total current assets = %v, want 2000000", v)
	}
	if v := y2023.Totals.TotalAssets; v == nil || *v != 5000000 {
		t.Errorf("2023 total assets = %v, want 5000000", v)
	}
	// "Total equity" fills both the totals block and the equity section.
	if v := y2023.Totals.TotalEquity; v == nil || *v != 2500000 {
		t.Errorf("2023 total equity = %v, want 2500000", v)
	}
	if v := y2023.Equity.Total; v == nil || *v != 2500000 {
		t.Errorf("2023 equity section total = %v, want 2500000", v)
	}
	// Dash cell stays absent.
	if v := y2022.Totals.TotalEquity; v != nil {
		t.Errorf("2022 total equity = %v, want nil", *v)
	}

	// Second table carries no scale caption.
	if v := y2023.IncomeValue("revenue"); v == nil || *v != 8000 {
		t.Errorf("2023 revenue = %v, want 8000", v)
	}
	if v := y2023.IncomeValue("cost_of_goods_sold"); v == nil || *v != -5000 {
		t.Errorf("2023 cost of sales = %v, want -5000", v)
	}
	if v := y2023.IncomeValue("net_income"); v == nil || *v != 1100 {
		t.Errorf("2023 net profit = %v, want 1100", v)
	}

	// Unrecognized rows never land anywhere.
	for key := range y2023.IncomeStatement {
		if key == "directors_remuneration" {
			t.Error("unclassified row leaked into income statement")
		}
	}
}

func TestParseHTML_NoTables(t *testing.T) {
	_, err := ParseHTML("<html><body><p>Annual report narrative only.</p></body></html>")
	var inputErr *models.InputError
	if !errors.As(err, &inputErr) {
		t.Errorf("error = %v, want InputError", err)
	}
}
