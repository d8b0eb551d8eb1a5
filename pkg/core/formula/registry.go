// Package formula parses and evaluates ratio formulas against a
// financial document. Formulas are plain infix arithmetic over
// registered variable names; resolution is exact-match against the
// fixed registry below, which makes "missing field" detection
// mechanical instead of ad hoc.
package formula

import (
	"sort"

	"statement_analyzer/pkg/models"
)

// Binding maps a formula identifier to one canonical path into a
// YearDocument. Averaged bindings substitute the two-period average
// of a point-in-time balance-sheet figure when a prior year exists.
type Binding struct {
	Path     string
	Averaged bool
	resolve  func(d *models.YearDocument) *float64
}

func section(pick func(d *models.YearDocument) *models.FinancialSection) func(*models.YearDocument) *float64 {
	return func(d *models.YearDocument) *float64 {
		if d == nil {
			return nil
		}
		return pick(d).Total
	}
}

func breakdown(pick func(d *models.YearDocument) *models.FinancialSection, key string) func(*models.YearDocument) *float64 {
	return func(d *models.YearDocument) *float64 {
		if d == nil {
			return nil
		}
		return pick(d).BreakdownValue(key)
	}
}

func income(key string) func(*models.YearDocument) *float64 {
	return func(d *models.YearDocument) *float64 {
		return d.IncomeValue(key)
	}
}

func totals(pick func(t *models.Totals) *float64) func(*models.YearDocument) *float64 {
	return func(d *models.YearDocument) *float64 {
		if d == nil {
			return nil
		}
		return pick(&d.Totals)
	}
}

var (
	curAssets  = func(d *models.YearDocument) *models.FinancialSection { return &d.CurrentAssets }
	nonAssets  = func(d *models.YearDocument) *models.FinancialSection { return &d.NonCurrentAssets }
	curLiabs   = func(d *models.YearDocument) *models.FinancialSection { return &d.CurrentLiabilities }
	nonLiabs   = func(d *models.YearDocument) *models.FinancialSection { return &d.NonCurrentLiabilities }
	equitySect = func(d *models.YearDocument) *models.FinancialSection { return &d.Equity }
)

// equityTotal prefers the equity section total and falls back to the
// reported statement total; extractions fill one or the other.
func equityTotal(d *models.YearDocument) *float64 {
	if d == nil {
		return nil
	}
	if d.Equity.Total != nil {
		return d.Equity.Total
	}
	return d.Totals.TotalEquity
}

// registry is the fixed variable table. Case-sensitive, exact match;
// no fuzzy resolution.
var registry = map[string]Binding{
	// Balance sheet sections
	"current_assets":          {Path: "current_assets.total", resolve: section(curAssets)},
	"non_current_assets":      {Path: "non_current_assets.total", resolve: section(nonAssets)},
	"current_liabilities":     {Path: "current_liabilities.total", resolve: section(curLiabs)},
	"non_current_liabilities": {Path: "non_current_liabilities.total", resolve: section(nonLiabs)},
	"total_equity":            {Path: "equity.total", resolve: equityTotal},

	// Section breakdowns
	"cash":                {Path: "current_assets.breakdown.cash", resolve: breakdown(curAssets, "cash")},
	"accounts_receivable": {Path: "current_assets.breakdown.accounts_receivable", resolve: breakdown(curAssets, "accounts_receivable")},
	"inventories":         {Path: "current_assets.breakdown.inventories", resolve: breakdown(curAssets, "inventories")},
	"fixed_assets":        {Path: "non_current_assets.breakdown.fixed_assets", resolve: breakdown(nonAssets, "fixed_assets")},
	"share_capital":       {Path: "equity.breakdown.share_capital", resolve: breakdown(equitySect, "share_capital")},
	"retained_earnings":   {Path: "equity.breakdown.retained_earnings", resolve: breakdown(equitySect, "retained_earnings")},

	// Reported totals
	"total_assets":      {Path: "totals.total_assets", resolve: totals(func(t *models.Totals) *float64 { return t.TotalAssets })},
	"total_liabilities": {Path: "totals.total_liabilities", resolve: totals(func(t *models.Totals) *float64 { return t.TotalLiabilities })},

	// Income statement
	"revenue":            {Path: "income_statement.revenue", resolve: income("revenue")},
	"cost_of_goods_sold": {Path: "income_statement.cost_of_goods_sold", resolve: income("cost_of_goods_sold")},
	"gross_profit":       {Path: "income_statement.gross_profit", resolve: income("gross_profit")},
	"operating_expenses": {Path: "income_statement.operating_expenses", resolve: income("operating_expenses")},
	"operating_income":   {Path: "income_statement.operating_income", resolve: income("operating_income")},
	"ebit":               {Path: "income_statement.ebit", resolve: income("ebit")},
	"interest_expense":   {Path: "income_statement.interest_expense", resolve: income("interest_expense")},
	"income_tax_expense": {Path: "income_statement.income_tax_expense", resolve: income("income_tax_expense")},
	"net_income":         {Path: "income_statement.net_income", resolve: income("net_income")},

	// Two-period averages for point-in-time balance-sheet figures
	"avg_total_assets":        {Path: "totals.total_assets", Averaged: true, resolve: totals(func(t *models.Totals) *float64 { return t.TotalAssets })},
	"avg_total_equity":        {Path: "equity.total", Averaged: true, resolve: equityTotal},
	"avg_fixed_assets":        {Path: "non_current_assets.breakdown.fixed_assets", Averaged: true, resolve: breakdown(nonAssets, "fixed_assets")},
	"avg_inventories":         {Path: "current_assets.breakdown.inventories", Averaged: true, resolve: breakdown(curAssets, "inventories")},
	"avg_accounts_receivable": {Path: "current_assets.breakdown.accounts_receivable", Averaged: true, resolve: breakdown(curAssets, "accounts_receivable")},
}

// Known reports whether name is a registered variable.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Variables returns all registered variable names, sorted.
func Variables() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolution is the outcome of resolving one variable.
type Resolution struct {
	Value float64
	OK    bool
	// Estimated is set when an averaged variable fell back to the
	// current value because no prior period was available.
	Estimated bool
}

// Resolve looks up name against current (and previous, for averaged
// bindings). A nil document or nil leaf resolves to !OK.
func Resolve(name string, current, previous *models.YearDocument) Resolution {
	b, ok := registry[name]
	if !ok {
		return Resolution{}
	}
	cur := b.resolve(current)
	if cur == nil {
		return Resolution{}
	}
	if !b.Averaged {
		return Resolution{Value: *cur, OK: true}
	}
	prev := b.resolve(previous)
	if prev == nil {
		return Resolution{Value: *cur, OK: true, Estimated: true}
	}
	return Resolution{Value: (*cur + *prev) / 2, OK: true}
}
