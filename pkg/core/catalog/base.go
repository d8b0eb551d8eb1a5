// Package catalog holds the immutable built-in ratio definitions and
// the mutable, user-scoped custom ratio store.
package catalog

import (
	"statement_analyzer/pkg/core/formula"
	"statement_analyzer/pkg/models"
)

// Base is the fixed set of 13 built-in ratios. These cannot be
// modified by users; custom ratios live in the Store.
var Base = []models.RatioDefinition{
	// LIQUIDITY
	{
		ID:             "current_ratio",
		Name:           "Current Ratio",
		Category:       models.CategoryLiquidity,
		Formula:        "current_assets / current_liabilities",
		Unit:           models.UnitRatio,
		Interpretation: "Measures ability to pay short-term obligations",
		IdealRange:     &models.IdealRange{Min: 1.5, Max: 3.0, Optimal: 2.0},
		HigherIsBetter: true,
	},
	{
		ID:             "quick_ratio",
		Name:           "Quick Ratio (Acid Test)",
		Category:       models.CategoryLiquidity,
		Formula:        "(current_assets - inventories) / current_liabilities",
		Unit:           models.UnitRatio,
		Interpretation: "Measures ability to pay short-term obligations without selling inventory",
		IdealRange:     &models.IdealRange{Min: 1.0, Max: 2.0, Optimal: 1.5},
		HigherIsBetter: true,
	},

	// PROFITABILITY
	{
		ID:             "gross_profit_margin",
		Name:           "Gross Profit Margin",
		Category:       models.CategoryProfitability,
		Formula:        "gross_profit / revenue",
		Unit:           models.UnitPercent,
		Interpretation: "Percentage of revenue remaining after deducting cost of goods sold",
		IdealRange:     &models.IdealRange{Min: 20, Max: 50, Optimal: 30},
		HigherIsBetter: true,
	},
	{
		ID:             "net_profit_margin",
		Name:           "Net Profit Margin",
		Category:       models.CategoryProfitability,
		Formula:        "net_income / revenue",
		Unit:           models.UnitPercent,
		Interpretation: "Percentage of revenue that translates to profit",
		IdealRange:     &models.IdealRange{Min: 5, Max: 20, Optimal: 10},
		HigherIsBetter: true,
	},
	{
		ID:             "return_on_equity",
		Name:           "Return on Equity (ROE)",
		Category:       models.CategoryProfitability,
		Formula:        "net_income / avg_total_equity",
		Unit:           models.UnitPercent,
		Interpretation: "How efficiently the company generates profit from shareholders' equity",
		IdealRange:     &models.IdealRange{Min: 10, Max: 25, Optimal: 15},
		HigherIsBetter: true,
	},
	{
		ID:             "return_on_assets",
		Name:           "Return on Assets (ROA)",
		Category:       models.CategoryProfitability,
		Formula:        "net_income / avg_total_assets",
		Unit:           models.UnitPercent,
		Interpretation: "How efficiently the company uses its assets to generate profit",
		IdealRange:     &models.IdealRange{Min: 5, Max: 20, Optimal: 10},
		HigherIsBetter: true,
	},

	// SOLVENCY
	{
		ID:             "debt_to_equity",
		Name:           "Debt to Equity Ratio",
		Category:       models.CategorySolvency,
		Formula:        "total_liabilities / total_equity",
		Unit:           models.UnitRatio,
		Interpretation: "Indicates the relative proportion of debt and equity used to finance assets",
		IdealRange:     &models.IdealRange{Min: 0, Max: 1.5, Optimal: 0.5},
		HigherIsBetter: false,
	},
	{
		ID:             "debt_ratio",
		Name:           "Debt Ratio",
		Category:       models.CategorySolvency,
		Formula:        "total_liabilities / total_assets",
		Unit:           models.UnitPercent,
		Interpretation: "Percentage of assets financed by debt",
		IdealRange:     &models.IdealRange{Min: 0, Max: 60, Optimal: 40},
		HigherIsBetter: false,
	},
	{
		ID:             "interest_coverage",
		Name:           "Interest Coverage Ratio",
		Category:       models.CategorySolvency,
		Formula:        "ebit / interest_expense",
		Unit:           models.UnitTimes,
		Interpretation: "Ability to pay interest on outstanding debt",
		IdealRange:     &models.IdealRange{Min: 2.5, Max: 10, Optimal: 5},
		HigherIsBetter: true,
	},

	// EFFICIENCY
	{
		ID:             "asset_turnover",
		Name:           "Asset Turnover Ratio",
		Category:       models.CategoryEfficiency,
		Formula:        "revenue / avg_total_assets",
		Unit:           models.UnitTimes,
		Interpretation: "How efficiently assets are used to generate revenue",
		IdealRange:     &models.IdealRange{Min: 0.5, Max: 2, Optimal: 1},
		HigherIsBetter: true,
	},
	{
		ID:             "fixed_asset_turnover",
		Name:           "Fixed Asset Turnover",
		Category:       models.CategoryEfficiency,
		Formula:        "revenue / avg_fixed_assets",
		Unit:           models.UnitTimes,
		Interpretation: "How efficiently fixed assets generate revenue",
		IdealRange:     &models.IdealRange{Min: 1, Max: 5, Optimal: 2},
		HigherIsBetter: true,
	},
	{
		ID:             "inventory_turnover",
		Name:           "Inventory Turnover Ratio",
		Category:       models.CategoryEfficiency,
		Formula:        "cost_of_goods_sold / avg_inventories",
		Unit:           models.UnitTimes,
		Interpretation: "How many times inventory is sold and replaced in a period",
		IdealRange:     &models.IdealRange{Min: 4, Max: 12, Optimal: 6},
		HigherIsBetter: true,
	},
	{
		ID:             "debtors_turnover",
		Name:           "Debtors Turnover Ratio",
		Category:       models.CategoryEfficiency,
		Formula:        "revenue / avg_accounts_receivable",
		Unit:           models.UnitTimes,
		Interpretation: "How quickly the company collects payments from customers",
		IdealRange:     &models.IdealRange{Min: 6, Max: 12, Optimal: 8},
		HigherIsBetter: true,
	},
}

// EvalOptions returns the evaluation options for a built-in ratio.
// Only the quick ratio carries an assumption: when inventory is not
// broken out, treat it as zero rather than dropping the ratio.
func EvalOptions(id string) formula.Options {
	if id == "quick_ratio" {
		return formula.Options{AssumeZero: []string{"inventories"}}
	}
	return formula.Options{}
}

// BaseByID returns the built-in definition for id, if any.
func BaseByID(id string) (models.RatioDefinition, bool) {
	for _, def := range Base {
		if def.ID == id {
			return def, true
		}
	}
	return models.RatioDefinition{}, false
}
