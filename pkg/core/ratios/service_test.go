package ratios

import (
	"testing"

	"statement_analyzer/pkg/core/catalog"
	"statement_analyzer/pkg/models"
)

func testDoc() *models.MultiYearDocument {
	return &models.MultiYearDocument{AllYears: []models.YearDocument{
		{
			Year: "2022",
			CurrentAssets: models.FinancialSection{
				Total: models.Float(900),
				Breakdown: map[string]*float64{
					"cash":        models.Float(300),
					"inventories": models.Float(150),
				},
			},
			CurrentLiabilities: models.FinancialSection{Total: models.Float(450)},
			Totals: models.Totals{
				TotalAssets: models.Float(2000),
				TotalEquity: models.Float(800),
			},
			IncomeStatement: map[string]*float64{
				"revenue":    models.Float(1600),
				"net_income": models.Float(160),
			},
		},
		{
			Year: "2023",
			CurrentAssets: models.FinancialSection{
				Total: models.Float(1000),
				Breakdown: map[string]*float64{
					"cash":        models.Float(400),
					"inventories": models.Float(200),
				},
			},
			CurrentLiabilities: models.FinancialSection{Total: models.Float(500)},
			Totals: models.Totals{
				TotalAssets: models.Float(2400),
				TotalEquity: models.Float(1000),
			},
			IncomeStatement: map[string]*float64{
				"revenue":    models.Float(2000),
				"net_income": models.Float(240),
			},
		},
	}}
}

func newTestService(t *testing.T) (*Service, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore(catalog.NewMemoryBackend())
	return NewService(store), store
}

func TestCompute_Builtins(t *testing.T) {
	svc, _ := newTestService(t)
	analysis, err := svc.Compute(testDoc(), "u1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	liquidity := analysis.Ratios[models.CategoryLiquidity]
	if liquidity == nil {
		t.Fatal("liquidity category missing")
	}
	// current_ratio = 1000 / 500 = 2.
	cr, ok := liquidity["current_ratio"]
	if !ok {
		t.Fatal("current_ratio missing")
	}
	if cr.Value.NA || cr.Value.Number != 2 {
		t.Errorf("current_ratio = %v, want 2", cr.Value)
	}
	if cr.DataQuality != models.QualityComplete {
		t.Errorf("current_ratio quality = %q, want complete", cr.DataQuality)
	}

	// return_on_equity averages equity: 240 / ((1000+800)/2) = 26.67%.
	roe, ok := analysis.Ratios[models.CategoryProfitability]["return_on_equity"]
	if !ok {
		t.Fatal("return_on_equity missing")
	}
	want := 240.0 / 900.0 * 100
	if roe.Value.NA || absDiff(roe.Value.Number, want) > 1e-9 {
		t.Errorf("return_on_equity = %v, want %v", roe.Value, want)
	}

	if analysis.Comparison == nil {
		t.Error("comparison missing for two-year document")
	}
}

func TestCompute_CustomRatiosGatedByDevMode(t *testing.T) {
	svc, store := newTestService(t)
	if _, err := store.Add("u1", models.RatioDefinition{
		Name:     "Cash Ratio",
		Category: models.CategoryLiquidity,
		Formula:  "cash / current_liabilities",
		Unit:     models.UnitRatio,
	}); err != nil {
		t.Fatalf("add custom: %v", err)
	}

	off, err := svc.Compute(testDoc(), "u1", false)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if _, ok := off.Ratios[models.CategoryCustom]; ok {
		t.Error("custom ratios computed with dev mode off")
	}

	on, err := svc.Compute(testDoc(), "u1", true)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	cash, ok := on.Ratios[models.CategoryCustom]["cash_ratio"]
	if !ok {
		t.Fatal("cash_ratio missing with dev mode on")
	}
	// 400 / 500 = 0.8; custom ratios land under the custom category
	// regardless of their declared one.
	if cash.Value.NA || cash.Value.Number != 0.8 {
		t.Errorf("cash_ratio = %v, want 0.8", cash.Value)
	}
	if !cash.IsCustom {
		t.Error("IsCustom not propagated")
	}
}

func TestCompute_EmptyDocument(t *testing.T) {
	svc, _ := newTestService(t)
	analysis, err := svc.Compute(&models.MultiYearDocument{}, "u1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(analysis.Ratios) != 0 {
		t.Errorf("ratios computed for empty document: %v", analysis.Ratios)
	}
	if len(analysis.Warnings) == 0 {
		t.Error("no warning for empty document")
	}
}

func TestFingerprint(t *testing.T) {
	a := testDoc()
	b := testDoc()
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("identical documents fingerprint differently")
	}

	*b.AllYears[1].Totals.TotalAssets = 9999
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("changed document fingerprints the same")
	}
	if len(Fingerprint(a)) != 16 {
		t.Errorf("fingerprint length = %d, want 16 hex chars", len(Fingerprint(a)))
	}
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
