package models

import (
	"math"
	"testing"
)

func TestNormalize_LegacyPair(t *testing.T) {
	doc := &MultiYearDocument{
		CurrentYear: &YearDocument{
			Year:   "2023",
			Totals: Totals{TotalAssets: Float(1200)},
		},
		PreviousYear: &YearDocument{
			Year:   "2022",
			Totals: Totals{TotalAssets: Float(800)},
		},
	}
	doc.Normalize()

	if len(doc.AllYears) != 2 {
		t.Fatalf("years = %d, want 2", len(doc.AllYears))
	}
	if doc.AllYears[0].Year != "2022" || doc.AllYears[1].Year != "2023" {
		t.Errorf("order = %q, %q, want ascending", doc.AllYears[0].Year, doc.AllYears[1].Year)
	}
	if doc.CurrentYear.Year != "2023" || doc.PreviousYear.Year != "2022" {
		t.Errorf("pair = %q / %q", doc.CurrentYear.Year, doc.PreviousYear.Year)
	}
}

func TestNormalize_SortsYearsAscending(t *testing.T) {
	doc := &MultiYearDocument{AllYears: []YearDocument{
		{Year: "2023"},
		{Year: "2021"},
		{Year: "2022"},
	}}
	doc.Normalize()
	got := []string{doc.AllYears[0].Year, doc.AllYears[1].Year, doc.AllYears[2].Year}
	want := []string{"2021", "2022", "2023"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if doc.CurrentYear.Year != "2023" || doc.PreviousYear.Year != "2022" {
		t.Errorf("pair = %q / %q", doc.CurrentYear.Year, doc.PreviousYear.Year)
	}
}

func TestNormalize_UnlabeledKeepUploadOrder(t *testing.T) {
	older := YearDocument{Totals: Totals{TotalAssets: Float(1)}}
	newer := YearDocument{Totals: Totals{TotalAssets: Float(2)}}
	doc := &MultiYearDocument{AllYears: []YearDocument{older, newer}}
	doc.Normalize()
	if *doc.AllYears[0].Totals.TotalAssets != 1 || *doc.AllYears[1].Totals.TotalAssets != 2 {
		t.Error("unlabeled years reordered")
	}
	if *doc.CurrentYear.Totals.TotalAssets != 2 {
		t.Error("current year is not the last uploaded")
	}
}

func TestNormalize_CurrentOnlyPair(t *testing.T) {
	doc := &MultiYearDocument{
		CurrentYear: &YearDocument{Totals: Totals{TotalAssets: Float(500)}},
	}
	doc.Normalize()
	if len(doc.AllYears) != 1 {
		t.Fatalf("years = %d, want 1", len(doc.AllYears))
	}
	if doc.PreviousYear != nil {
		t.Error("previous year invented")
	}
}

func TestNormalize_EmptyPairIgnored(t *testing.T) {
	doc := &MultiYearDocument{CurrentYear: &YearDocument{Year: "2023"}}
	doc.Normalize()
	if len(doc.AllYears) != 0 {
		t.Errorf("years = %d, want 0 for a year with no figures", len(doc.AllYears))
	}
}

func TestSanitize(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	doc := &MultiYearDocument{AllYears: []YearDocument{{
		Year: "2023",
		CurrentAssets: FinancialSection{
			Total:     &inf,
			Breakdown: map[string]*float64{"cash": &nan, "inventories": Float(100)},
		},
		Totals:          Totals{TotalAssets: Float(1200), TotalEquity: &nan},
		IncomeStatement: map[string]*float64{"revenue": &inf},
	}}}
	doc.Sanitize()

	y := doc.AllYears[0]
	if y.CurrentAssets.Total != nil {
		t.Error("infinite section total not scrubbed")
	}
	if y.CurrentAssets.BreakdownValue("cash") != nil {
		t.Error("NaN breakdown not scrubbed")
	}
	if v := y.CurrentAssets.BreakdownValue("inventories"); v == nil || *v != 100 {
		t.Error("finite breakdown lost")
	}
	if y.Totals.TotalEquity != nil {
		t.Error("NaN total not scrubbed")
	}
	if v := y.Totals.TotalAssets; v == nil || *v != 1200 {
		t.Error("finite total lost")
	}
	if y.IncomeValue("revenue") != nil {
		t.Error("infinite income line not scrubbed")
	}
}

func TestHasData(t *testing.T) {
	tests := []struct {
		name string
		doc  YearDocument
		want bool
	}{
		{"empty", YearDocument{}, false},
		{"year label only", YearDocument{Year: "2023"}, false},
		{"nil leaves only", YearDocument{IncomeStatement: map[string]*float64{"revenue": nil}}, false},
		{"section total", YearDocument{CurrentAssets: FinancialSection{Total: Float(1)}}, true},
		{"breakdown entry", YearDocument{Equity: FinancialSection{Breakdown: map[string]*float64{"share_capital": Float(1)}}}, true},
		{"statement total", YearDocument{Totals: Totals{TotalLiabilities: Float(1)}}, true},
		{"income line", YearDocument{IncomeStatement: map[string]*float64{"revenue": Float(1)}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.doc.HasData(); got != tc.want {
				t.Errorf("HasData() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cash Burn Rate", "cash_burn_rate"},
		{"  EBITDA Margin % ", "ebitda_margin"},
		{"already_slugged", "already_slugged"},
		{"---", ""},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
