// Package merge combines the extraction results of multiple uploaded
// files of the same statement into one reconciled document.
//
// Core policy: first-writer-wins. The first file in upload order is
// the primary; for every leaf field the first non-nil value found in
// upload order is kept. Conflicting non-nil values are never averaged
// or summed; the later value is skipped and logged as a Conflict so
// callers can surface the disagreement.
package merge

import (
	"fmt"

	"statement_analyzer/pkg/models"
)

// Conflict records a non-nil value that lost to an earlier one for the
// same field.
type Conflict struct {
	Year    string  `json:"year,omitempty"`
	Field   string  `json:"field"`
	Kept    float64 `json:"kept"`
	Ignored float64 `json:"ignored"`
	Source  int     `json:"source"` // upload index of the losing file
}

// Result is the merged document plus the conflict log.
type Result struct {
	Document  models.MultiYearDocument `json:"document"`
	Conflicts []Conflict               `json:"conflicts,omitempty"`
}

// Engine merges per-file extraction results. Pure function of its
// inputs; safe for concurrent use.
type Engine struct{}

// NewEngine creates a merge engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Merge reconciles docs in upload order into one MultiYearDocument.
// Each input is normalized onto its chronological year list first, so
// legacy current/previous payloads and all_years payloads merge
// through the same path.
func (e *Engine) Merge(docs []models.MultiYearDocument) (*Result, error) {
	if len(docs) == 0 {
		return nil, &models.InputError{Reason: "no files to merge"}
	}

	res := &Result{}
	// Normalize copies, never the caller's documents; the inputs stay
	// untouched.
	inputs := make([]models.MultiYearDocument, len(docs))
	for i := range docs {
		inputs[i] = cloneDocument(&docs[i])
		inputs[i].Normalize()
		inputs[i].Sanitize()
	}

	// The first file's year list is the backbone. Later files merge
	// into matching years by label, or by offset from the newest year
	// when labels are missing; unmatched labeled years are appended.
	merged := inputs[0].AllYears

	for src := 1; src < len(inputs); src++ {
		for yi := range inputs[src].AllYears {
			y := &inputs[src].AllYears[yi]
			ti := e.alignYear(merged, inputs[src].AllYears, yi)
			if ti < 0 {
				merged = append(merged, *y)
				continue
			}
			e.mergeYear(&merged[ti], y, src, res)
		}
	}

	res.Document.AllYears = merged
	res.Document.Normalize()
	return res, nil
}

// alignYear finds the index in merged that the yi-th year of a source
// list should merge into, or -1 to append. Labeled years match by
// label; unlabeled years pair up by distance from the newest year, so
// a bare current/previous pair lands on the backbone's last two slots.
func (e *Engine) alignYear(merged, source []models.YearDocument, yi int) int {
	label := source[yi].Year
	if label != "" {
		for i := range merged {
			if merged[i].Year == label {
				return i
			}
		}
		return -1
	}
	fromEnd := len(source) - 1 - yi
	ti := len(merged) - 1 - fromEnd
	if ti < 0 {
		return -1
	}
	return ti
}

func (e *Engine) mergeYear(dst, src *models.YearDocument, source int, res *Result) {
	if dst.Year == "" {
		dst.Year = src.Year
	}
	year := dst.Year

	e.mergeSection(&dst.CurrentAssets, &src.CurrentAssets, year, "current_assets", source, res)
	e.mergeSection(&dst.NonCurrentAssets, &src.NonCurrentAssets, year, "non_current_assets", source, res)
	e.mergeSection(&dst.CurrentLiabilities, &src.CurrentLiabilities, year, "current_liabilities", source, res)
	e.mergeSection(&dst.NonCurrentLiabilities, &src.NonCurrentLiabilities, year, "non_current_liabilities", source, res)
	e.mergeSection(&dst.Equity, &src.Equity, year, "equity", source, res)

	dst.Totals.TotalAssets = e.mergeLeaf(dst.Totals.TotalAssets, src.Totals.TotalAssets, year, "totals.total_assets", source, res)
	dst.Totals.TotalLiabilities = e.mergeLeaf(dst.Totals.TotalLiabilities, src.Totals.TotalLiabilities, year, "totals.total_liabilities", source, res)
	dst.Totals.TotalEquity = e.mergeLeaf(dst.Totals.TotalEquity, src.Totals.TotalEquity, year, "totals.total_equity", source, res)

	for k, v := range src.IncomeStatement {
		if dst.IncomeStatement == nil {
			dst.IncomeStatement = make(map[string]*float64)
		}
		dst.IncomeStatement[k] = e.mergeLeaf(dst.IncomeStatement[k], v, year, "income_statement."+k, source, res)
	}
}

func (e *Engine) mergeSection(dst, src *models.FinancialSection, year, name string, source int, res *Result) {
	dst.Total = e.mergeLeaf(dst.Total, src.Total, year, name+".total", source, res)
	for k, v := range src.Breakdown {
		if dst.Breakdown == nil {
			dst.Breakdown = make(map[string]*float64)
		}
		path := fmt.Sprintf("%s.breakdown.%s", name, k)
		dst.Breakdown[k] = e.mergeLeaf(dst.Breakdown[k], v, year, path, source, res)
	}
}

// cloneDocument copies a document's year list, pair slots, and maps so
// normalization and map-union writes never touch the source. Leaf
// pointers are shared; nothing downstream writes through them.
func cloneDocument(src *models.MultiYearDocument) models.MultiYearDocument {
	var out models.MultiYearDocument
	if src.AllYears != nil {
		out.AllYears = make([]models.YearDocument, len(src.AllYears))
		for i := range src.AllYears {
			out.AllYears[i] = cloneYear(&src.AllYears[i])
		}
	}
	if src.CurrentYear != nil {
		y := cloneYear(src.CurrentYear)
		out.CurrentYear = &y
	}
	if src.PreviousYear != nil {
		y := cloneYear(src.PreviousYear)
		out.PreviousYear = &y
	}
	return out
}

func cloneYear(src *models.YearDocument) models.YearDocument {
	out := *src
	out.CurrentAssets = cloneSection(&src.CurrentAssets)
	out.NonCurrentAssets = cloneSection(&src.NonCurrentAssets)
	out.CurrentLiabilities = cloneSection(&src.CurrentLiabilities)
	out.NonCurrentLiabilities = cloneSection(&src.NonCurrentLiabilities)
	out.Equity = cloneSection(&src.Equity)
	out.IncomeStatement = cloneLeaves(src.IncomeStatement)
	return out
}

func cloneSection(src *models.FinancialSection) models.FinancialSection {
	return models.FinancialSection{
		Total:     src.Total,
		Breakdown: cloneLeaves(src.Breakdown),
	}
}

func cloneLeaves(src map[string]*float64) map[string]*float64 {
	if src == nil {
		return nil
	}
	out := make(map[string]*float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// mergeLeaf applies first-non-nil-wins and logs skipped disagreements.
// All-nil stays nil; a missing value is never coerced to zero.
func (e *Engine) mergeLeaf(kept, incoming *float64, year, field string, source int, res *Result) *float64 {
	if incoming == nil {
		return kept
	}
	if kept == nil {
		return incoming
	}
	if *kept != *incoming {
		res.Conflicts = append(res.Conflicts, Conflict{
			Year:    year,
			Field:   field,
			Kept:    *kept,
			Ignored: *incoming,
			Source:  source,
		})
	}
	return kept
}
