package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RatioCategory groups ratios for display and for the category-keyed
// result map handed to the UI and the report assembler.
type RatioCategory string

const (
	CategoryLiquidity     RatioCategory = "liquidity"
	CategoryProfitability RatioCategory = "profitability"
	CategorySolvency      RatioCategory = "solvency"
	CategoryEfficiency    RatioCategory = "efficiency"
	CategoryCustom        RatioCategory = "custom"
)

// ValidCategory reports whether c is one of the five known categories.
func ValidCategory(c RatioCategory) bool {
	switch c {
	case CategoryLiquidity, CategoryProfitability, CategorySolvency, CategoryEfficiency, CategoryCustom:
		return true
	}
	return false
}

// RatioUnit is the display unit of a ratio.
type RatioUnit string

const (
	UnitRatio   RatioUnit = "ratio"
	UnitPercent RatioUnit = "%"
	UnitDays    RatioUnit = "days"
	UnitTimes   RatioUnit = "times"
)

// DataQuality classifies how complete the inputs behind a computed
// ratio were.
type DataQuality string

const (
	QualityComplete  DataQuality = "complete"
	QualityPartial   DataQuality = "partial"
	QualityEstimated DataQuality = "estimated"
)

// IdealRange is the advisory band attached to built-in ratios.
type IdealRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Optimal float64 `json:"optimal"`
}

// RatioDefinition describes one ratio, built-in or user-authored.
// Identity key is ID; for custom ratios it is derived from the
// slugified name when not supplied.
type RatioDefinition struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Category       RatioCategory `json:"category"`
	Formula        string        `json:"formula"`
	Unit           RatioUnit     `json:"unit"`
	Interpretation string        `json:"interpretation,omitempty"`
	HigherIsBetter bool          `json:"higher_is_better"`
	IdealRange     *IdealRange   `json:"ideal_range,omitempty"`
	IsCustom       bool          `json:"is_custom"`
	CreatedAt      time.Time     `json:"created_at,omitempty"`
	ModifiedAt     time.Time     `json:"modified_at,omitempty"`
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a ratio name into its id form:
// "Cash Burn Rate" -> "cash_burn_rate".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugPattern.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// RatioValue is either a finite number or the literal "N/A". It
// marshals to a JSON number or string accordingly, matching the wire
// format the UI consumes.
type RatioValue struct {
	Number float64
	NA     bool
}

// Value builds a numeric RatioValue.
func Value(v float64) RatioValue { return RatioValue{Number: v} }

// NA is the not-available result value.
var NA = RatioValue{NA: true}

func (v RatioValue) MarshalJSON() ([]byte, error) {
	if v.NA {
		return json.Marshal("N/A")
	}
	return json.Marshal(v.Number)
}

func (v *RatioValue) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		v.Number = num
		v.NA = false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "N/A" {
			*v = NA
			return nil
		}
		return fmt.Errorf("invalid ratio value %q", s)
	}
	return fmt.Errorf("invalid ratio value: %s", string(data))
}

func (v RatioValue) String() string {
	if v.NA {
		return "N/A"
	}
	return fmt.Sprintf("%g", v.Number)
}

// ComputedRatio is the result of evaluating a RatioDefinition against
// a document. Pure derived data, recomputed on every change, never
// persisted.
type ComputedRatio struct {
	Value          RatioValue  `json:"value"`
	Unit           RatioUnit   `json:"unit,omitempty"`
	Formula        string      `json:"formula"`
	Interpretation string      `json:"interpretation,omitempty"`
	IsCustom       bool        `json:"is_custom,omitempty"`
	DataQuality    DataQuality `json:"data_quality"`
	MissingFields  []string    `json:"missing_fields,omitempty"`
	Note           string      `json:"note,omitempty"`
}

// RatioSet is the category-keyed result map: category -> ratio id ->
// computed result. This and the reconciled MultiYearDocument are the
// engine's only public output surfaces.
type RatioSet map[RatioCategory]map[string]ComputedRatio
