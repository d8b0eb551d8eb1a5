package ingest

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"statement_analyzer/pkg/models"
)

// rowTarget assigns a classified row's value into a year document.
type rowTarget struct {
	keywords []string
	assign   func(*models.YearDocument, *float64)
}

func sectionTotal(pick func(*models.YearDocument) *models.FinancialSection) func(*models.YearDocument, *float64) {
	return func(d *models.YearDocument, v *float64) {
		s := pick(d)
		if s.Total == nil {
			s.Total = v
		}
	}
}

func breakdown(pick func(*models.YearDocument) *models.FinancialSection, key string) func(*models.YearDocument, *float64) {
	return func(d *models.YearDocument, v *float64) {
		s := pick(d)
		if s.Breakdown == nil {
			s.Breakdown = make(map[string]*float64)
		}
		if s.Breakdown[key] == nil {
			s.Breakdown[key] = v
		}
	}
}

func income(key string) func(*models.YearDocument, *float64) {
	return func(d *models.YearDocument, v *float64) {
		if d.IncomeStatement == nil {
			d.IncomeStatement = make(map[string]*float64)
		}
		if d.IncomeStatement[key] == nil {
			d.IncomeStatement[key] = v
		}
	}
}

func currentAssets(d *models.YearDocument) *models.FinancialSection    { return &d.CurrentAssets }
func nonCurrentAssets(d *models.YearDocument) *models.FinancialSection { return &d.NonCurrentAssets }
func currentLiabilities(d *models.YearDocument) *models.FinancialSection {
	return &d.CurrentLiabilities
}
func nonCurrentLiabilities(d *models.YearDocument) *models.FinancialSection {
	return &d.NonCurrentLiabilities
}
func equity(d *models.YearDocument) *models.FinancialSection { return &d.Equity }

// rowTargets maps statement row labels onto the document model.
// Order matters: "total current assets" must match before the bare
// "current assets" breakdown entries ever could, so totals and the
// most specific labels come first.
var rowTargets = []rowTarget{
	{[]string{"total current assets"}, sectionTotal(currentAssets)},
	{[]string{"total non-current assets", "total noncurrent assets"}, sectionTotal(nonCurrentAssets)},
	{[]string{"total current liabilities"}, sectionTotal(currentLiabilities)},
	{[]string{"total non-current liabilities", "total noncurrent liabilities"}, sectionTotal(nonCurrentLiabilities)},
	{[]string{"total equity", "total shareholders' equity", "total stockholders' equity"}, func(d *models.YearDocument, v *float64) {
		if d.Totals.TotalEquity == nil {
			d.Totals.TotalEquity = v
		}
		if d.Equity.Total == nil {
			d.Equity.Total = v
		}
	}},
	{[]string{"total assets"}, func(d *models.YearDocument, v *float64) {
		if d.Totals.TotalAssets == nil {
			d.Totals.TotalAssets = v
		}
	}},
	{[]string{"total liabilities"}, func(d *models.YearDocument, v *float64) {
		if d.Totals.TotalLiabilities == nil {
			d.Totals.TotalLiabilities = v
		}
	}},

	{[]string{"cash and cash equivalents", "cash at bank", "cash"}, breakdown(currentAssets, "cash")},
	{[]string{"accounts receivable", "trade receivables", "trade debtors"}, breakdown(currentAssets, "accounts_receivable")},
	{[]string{"inventor"}, breakdown(currentAssets, "inventories")},
	{[]string{"property, plant and equipment", "fixed assets"}, breakdown(nonCurrentAssets, "fixed_assets")},
	{[]string{"accounts payable", "trade payables", "trade creditors"}, breakdown(currentLiabilities, "accounts_payable")},
	{[]string{"long-term debt", "long term borrowings"}, breakdown(nonCurrentLiabilities, "long_term_debt")},
	{[]string{"share capital", "common stock"}, breakdown(equity, "share_capital")},
	{[]string{"retained earnings", "accumulated profits"}, breakdown(equity, "retained_earnings")},

	{[]string{"cost of goods sold", "cost of sales", "cost of revenue"}, income("cost_of_goods_sold")},
	{[]string{"gross profit"}, income("gross_profit")},
	{[]string{"operating expenses"}, income("operating_expenses")},
	{[]string{"operating income", "operating profit"}, income("operating_income")},
	{[]string{"interest expense", "finance costs"}, income("interest_expense")},
	{[]string{"income tax", "tax expense", "taxation"}, income("income_tax_expense")},
	{[]string{"net income", "net profit", "profit for the year", "profit after tax"}, income("net_income")},
	{[]string{"ebit"}, income("ebit")},
	// Bare revenue last among income rows so "cost of revenue" wins first.
	{[]string{"revenue", "sales", "turnover"}, income("revenue")},
}

func classify(label string) *rowTarget {
	lower := strings.ToLower(strings.TrimSpace(label))
	if lower == "" {
		return nil
	}
	for i := range rowTargets {
		for _, kw := range rowTargets[i].keywords {
			if strings.Contains(lower, kw) {
				return &rowTargets[i]
			}
		}
	}
	return nil
}

// ParseHTML extracts statement figures from an HTML export. Tables
// are scanned for year-labelled columns; recognized rows land in one
// YearDocument per year. The result is a partial document intended
// for the merge engine, not a complete statement.
func ParseHTML(html string) (*models.MultiYearDocument, error) {
	q, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &models.InputError{Reason: "unreadable HTML document"}
	}

	byYear := make(map[string]*models.YearDocument)
	order := []string{}
	year := func(label string) *models.YearDocument {
		if d, ok := byYear[label]; ok {
			return d
		}
		d := &models.YearDocument{Year: label}
		byYear[label] = d
		order = append(order, label)
		return d
	}

	q.Find("table").Each(func(_ int, table *goquery.Selection) {
		scale := DetectScale(table.Find("caption").Text() + " " + headerText(table))

		// Column index -> year label, taken from the first row that
		// mentions any year.
		columnYears := map[int]string{}
		table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			cells := tr.Find("th, td")
			found := false
			cells.Each(func(i int, cell *goquery.Selection) {
				if y := ParseColumnYear(cell.Text()); y != "" {
					columnYears[i] = y
					found = true
				}
			})
			return !found
		})
		if len(columnYears) == 0 {
			return
		}

		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("th, td")
			if cells.Length() < 2 {
				return
			}
			target := classify(cells.First().Text())
			if target == nil {
				return
			}
			cells.Each(func(i int, cell *goquery.Selection) {
				label, ok := columnYears[i]
				if !ok {
					return
				}
				v := ParseCellValue(cell.Text())
				if v == nil {
					return
				}
				scaled := *v * scale
				target.assign(year(label), &scaled)
			})
		})
	})

	if len(byYear) == 0 {
		return nil, &models.InputError{Reason: "no statement tables recognized in HTML"}
	}

	doc := &models.MultiYearDocument{}
	for _, label := range order {
		doc.AllYears = append(doc.AllYears, *byYear[label])
	}
	doc.Normalize()
	doc.Sanitize()
	log.Printf("[Ingest] parsed HTML statement: %d year(s)", len(doc.AllYears))
	return doc, nil
}

func headerText(table *goquery.Selection) string {
	var sb strings.Builder
	table.Find("tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		sb.WriteString(cell.Text())
		sb.WriteString(" ")
	})
	return sb.String()
}
