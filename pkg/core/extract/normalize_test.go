package extract

import (
	"testing"
)

func TestParseResponse_YearsArray(t *testing.T) {
	text := `{
		"years": [
			{"year": "2022", "totals": {"total_assets": 800}},
			{"year": "2023", "totals": {"total_assets": 1200}, "income_statement": {"revenue": 500, "interest_expense": null}}
		]
	}`
	doc, err := ParseResponse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.AllYears) != 2 {
		t.Fatalf("years = %d, want 2", len(doc.AllYears))
	}
	if doc.CurrentYear == nil || doc.CurrentYear.Year != "2023" {
		t.Fatalf("current year not derived: %+v", doc.CurrentYear)
	}
	if doc.PreviousYear == nil || doc.PreviousYear.Year != "2022" {
		t.Fatalf("previous year not derived: %+v", doc.PreviousYear)
	}
	if v := doc.CurrentYear.IncomeValue("revenue"); v == nil || *v != 500 {
		t.Errorf("revenue = %v, want 500", v)
	}
	if v := doc.CurrentYear.IncomeValue("interest_expense"); v != nil {
		t.Errorf("interest_expense = %v, want nil (null preserved)", *v)
	}
}

func TestParseResponse_LegacyPair(t *testing.T) {
	text := `{
		"current_year": {"year": "2023", "totals": {"total_assets": 1200}},
		"previous_year": {"year": "2022", "totals": {"total_assets": 800}}
	}`
	doc, err := ParseResponse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Legacy pair normalizes onto the years list, ascending.
	if len(doc.AllYears) != 2 {
		t.Fatalf("years = %d, want 2", len(doc.AllYears))
	}
	if doc.AllYears[0].Year != "2022" || doc.AllYears[1].Year != "2023" {
		t.Errorf("year order = %q, %q", doc.AllYears[0].Year, doc.AllYears[1].Year)
	}
}

func TestParseResponse_BareSingleYear(t *testing.T) {
	text := `{"year": 2023, "totals": {"total_assets": 1200}}`
	doc, err := ParseResponse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.AllYears) != 1 {
		t.Fatalf("years = %d, want 1", len(doc.AllYears))
	}
	// Numeric year labels are accepted.
	if doc.AllYears[0].Year != "2023" {
		t.Errorf("year = %q, want 2023", doc.AllYears[0].Year)
	}
}

func TestParseResponse_EmptyBareShape(t *testing.T) {
	if _, err := ParseResponse(`{}`); err == nil {
		t.Error("empty object accepted, want error")
	}
}

func TestParseResponse_RepairsSloppyJSON(t *testing.T) {
	// Model output wrapped in a code fence with a trailing comma.
	text := "```json\n{\"years\": [{\"year\": \"2023\", \"totals\": {\"total_assets\": 1200,}},]}\n```"
	doc, err := ParseResponse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.AllYears) != 1 || doc.AllYears[0].Year != "2023" {
		t.Fatalf("doc = %+v", doc.AllYears)
	}
	if v := doc.AllYears[0].Totals.TotalAssets; v == nil || *v != 1200 {
		t.Errorf("total_assets = %v, want 1200", v)
	}
}

func TestParseResponse_ScrubsNonFinite(t *testing.T) {
	// hjson fallback tolerates bare identifiers; whatever decodes to a
	// non-finite number must not survive sanitization.
	text := `{"years": [{"year": "2023", "totals": {"total_assets": 1200}, "income_statement": {"revenue": 1e999}}]}`
	doc, err := ParseResponse(text)
	if err != nil {
		// Acceptable outcome: the payload is rejected outright.
		return
	}
	if v := doc.AllYears[0].IncomeValue("revenue"); v != nil {
		t.Errorf("revenue = %v, want nil after scrubbing", *v)
	}
}
