// Package models defines the canonical schema for extracted financial
// statements and computed ratios. Every numeric leaf is a *float64:
// nil means the extractor could not read the value. NaN and Inf are
// scrubbed on ingest so downstream engines only ever see finite
// numbers or nil.
package models

import (
	"math"
	"sort"
)

// FinancialSection is one balance-sheet bucket (e.g. current assets).
// Total, when present, is treated as authoritative for display even if
// the breakdown does not sum to it; extraction is imperfect and the
// engines tolerate the inconsistency.
type FinancialSection struct {
	Total     *float64            `json:"total"`
	Breakdown map[string]*float64 `json:"breakdown,omitempty"`
}

// BreakdownValue returns the named breakdown entry or nil.
func (s *FinancialSection) BreakdownValue(key string) *float64 {
	if s == nil || s.Breakdown == nil {
		return nil
	}
	return s.Breakdown[key]
}

// Totals holds the reported statement totals.
type Totals struct {
	TotalAssets      *float64 `json:"total_assets"`
	TotalLiabilities *float64 `json:"total_liabilities"`
	TotalEquity      *float64 `json:"total_equity"`
}

// YearDocument is one fiscal year's full statement.
type YearDocument struct {
	Year                  string              `json:"year,omitempty"`
	CurrentAssets         FinancialSection    `json:"current_assets"`
	NonCurrentAssets      FinancialSection    `json:"non_current_assets"`
	CurrentLiabilities    FinancialSection    `json:"current_liabilities"`
	NonCurrentLiabilities FinancialSection    `json:"non_current_liabilities"`
	Equity                FinancialSection    `json:"equity"`
	Totals                Totals              `json:"totals"`
	IncomeStatement       map[string]*float64 `json:"income_statement,omitempty"`
}

// IncomeValue returns the named income-statement line or nil.
func (d *YearDocument) IncomeValue(key string) *float64 {
	if d == nil || d.IncomeStatement == nil {
		return nil
	}
	return d.IncomeStatement[key]
}

// HasData reports whether any numeric leaf besides the year label is set.
func (d *YearDocument) HasData() bool {
	if d == nil {
		return false
	}
	for _, s := range d.sections() {
		if s.Total != nil {
			return true
		}
		for _, v := range s.Breakdown {
			if v != nil {
				return true
			}
		}
	}
	if d.Totals.TotalAssets != nil || d.Totals.TotalLiabilities != nil || d.Totals.TotalEquity != nil {
		return true
	}
	for _, v := range d.IncomeStatement {
		if v != nil {
			return true
		}
	}
	return false
}

func (d *YearDocument) sections() []*FinancialSection {
	return []*FinancialSection{
		&d.CurrentAssets,
		&d.NonCurrentAssets,
		&d.CurrentLiabilities,
		&d.NonCurrentLiabilities,
		&d.Equity,
	}
}

// MultiYearDocument is the reconciled container for one analysis.
// AllYears, when populated, is the source of truth (ascending by year);
// CurrentYear/PreviousYear is the legacy two-slot representation that
// older extraction payloads still carry.
type MultiYearDocument struct {
	AllYears     []YearDocument `json:"all_years,omitempty"`
	CurrentYear  *YearDocument  `json:"current_year,omitempty"`
	PreviousYear *YearDocument  `json:"previous_year,omitempty"`
}

// Normalize unifies the two input shapes onto the chronological list.
// When AllYears is empty it is rebuilt from the legacy pair; the pair
// is then rederived from the list so both views agree. The list is
// sorted ascending by year label where labels are present.
func (m *MultiYearDocument) Normalize() {
	if m == nil {
		return
	}
	if len(m.AllYears) == 0 {
		if m.CurrentYear != nil && m.CurrentYear.HasData() {
			if m.PreviousYear != nil && m.PreviousYear.HasData() {
				m.AllYears = []YearDocument{*m.PreviousYear, *m.CurrentYear}
			} else {
				m.AllYears = []YearDocument{*m.CurrentYear}
			}
		}
	}
	sortYearsAscending(m.AllYears)
	if n := len(m.AllYears); n > 0 {
		m.CurrentYear = &m.AllYears[n-1]
		if n > 1 {
			m.PreviousYear = &m.AllYears[n-2]
		} else {
			m.PreviousYear = nil
		}
	}
}

func sortYearsAscending(years []YearDocument) {
	// Stable so unlabeled years keep their upload order.
	sort.SliceStable(years, func(i, j int) bool {
		a, b := years[i].Year, years[j].Year
		if a == "" || b == "" {
			return false
		}
		return a < b
	})
}

// Sanitize nils out every NaN or infinite leaf in place. JSON decoding
// cannot produce these, but extraction adapters that compute derived
// fields can.
func (m *MultiYearDocument) Sanitize() {
	if m == nil {
		return
	}
	for i := range m.AllYears {
		sanitizeYear(&m.AllYears[i])
	}
	if m.CurrentYear != nil {
		sanitizeYear(m.CurrentYear)
	}
	if m.PreviousYear != nil {
		sanitizeYear(m.PreviousYear)
	}
}

func sanitizeYear(d *YearDocument) {
	for _, s := range d.sections() {
		s.Total = finiteOrNil(s.Total)
		for k, v := range s.Breakdown {
			s.Breakdown[k] = finiteOrNil(v)
		}
	}
	d.Totals.TotalAssets = finiteOrNil(d.Totals.TotalAssets)
	d.Totals.TotalLiabilities = finiteOrNil(d.Totals.TotalLiabilities)
	d.Totals.TotalEquity = finiteOrNil(d.Totals.TotalEquity)
	for k, v := range d.IncomeStatement {
		d.IncomeStatement[k] = finiteOrNil(v)
	}
}

func finiteOrNil(v *float64) *float64 {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// Float returns a pointer to v. Convenience for building documents.
func Float(v float64) *float64 {
	return &v
}
