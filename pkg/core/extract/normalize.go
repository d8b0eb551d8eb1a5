package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"statement_analyzer/pkg/models"
)

// flexYear tolerates the year label arriving as a string, a number,
// or null.
type flexYear string

func (f *flexYear) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*f = flexYear(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexYear(n.String())
	return nil
}

// rawYear mirrors YearDocument with the lenient year label.
type rawYear struct {
	Year                  flexYear                `json:"year"`
	CurrentAssets         models.FinancialSection `json:"current_assets"`
	NonCurrentAssets      models.FinancialSection `json:"non_current_assets"`
	CurrentLiabilities    models.FinancialSection `json:"current_liabilities"`
	NonCurrentLiabilities models.FinancialSection `json:"non_current_liabilities"`
	Equity                models.FinancialSection `json:"equity"`
	Totals                models.Totals           `json:"totals"`
	IncomeStatement       map[string]*float64     `json:"income_statement"`
}

func (r *rawYear) toYearDocument() models.YearDocument {
	return models.YearDocument{
		Year:                  string(r.Year),
		CurrentAssets:         r.CurrentAssets,
		NonCurrentAssets:      r.NonCurrentAssets,
		CurrentLiabilities:    r.CurrentLiabilities,
		NonCurrentLiabilities: r.NonCurrentLiabilities,
		Equity:                r.Equity,
		Totals:                r.Totals,
		IncomeStatement:       r.IncomeStatement,
	}
}

// rawExtraction accepts the three shapes models actually return: the
// requested "years" array, the legacy current/previous pair, or a
// bare single-year document at the top level.
type rawExtraction struct {
	Years        []rawYear `json:"years"`
	CurrentYear  *rawYear  `json:"current_year"`
	PreviousYear *rawYear  `json:"previous_year"`

	// Bare single-year shape.
	rawYear
}

// normalizeResponse converts a decoded extraction payload into a
// normalized MultiYearDocument.
func normalizeResponse(raw *rawExtraction) (*models.MultiYearDocument, error) {
	doc := &models.MultiYearDocument{}

	switch {
	case len(raw.Years) > 0:
		for i := range raw.Years {
			doc.AllYears = append(doc.AllYears, raw.Years[i].toYearDocument())
		}
	case raw.CurrentYear != nil:
		current := raw.CurrentYear.toYearDocument()
		doc.CurrentYear = &current
		if raw.PreviousYear != nil {
			previous := raw.PreviousYear.toYearDocument()
			doc.PreviousYear = &previous
		}
	default:
		single := raw.rawYear.toYearDocument()
		if !single.HasData() {
			return nil, fmt.Errorf("extraction response contains no statement data")
		}
		doc.AllYears = []models.YearDocument{single}
	}

	doc.Normalize()
	doc.Sanitize()
	return doc, nil
}
