// Package ratios orchestrates the catalog and the formula evaluator:
// it runs every applicable ratio definition against a reconciled
// document and groups the results by category.
package ratios

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"

	"statement_analyzer/pkg/core/catalog"
	"statement_analyzer/pkg/core/compare"
	"statement_analyzer/pkg/core/formula"
	"statement_analyzer/pkg/models"
)

// Service computes ratio sets. Custom ratios are evaluated only when
// the caller has developer mode enabled; built-ins always run.
type Service struct {
	store *catalog.Store
}

// NewService creates a Service over the given custom ratio store.
func NewService(store *catalog.Store) *Service {
	return &Service{store: store}
}

// Analysis is the full computed result for one document. Fingerprint
// identifies the document the ratios were computed from so callers
// can discard results that arrive after the document has changed.
type Analysis struct {
	Fingerprint string                    `json:"fingerprint"`
	Statements  *models.MultiYearDocument `json:"statements"`
	Ratios      models.RatioSet           `json:"ratios"`
	Comparison  *compare.Table            `json:"comparison,omitempty"`
	Warnings    []string                  `json:"warnings,omitempty"`
}

// Fingerprint returns a stable identity for a document's contents.
func Fingerprint(doc *models.MultiYearDocument) string {
	raw, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(raw)
	return hex.EncodeToString(hash[:8])
}

// Compute normalizes the document, evaluates every applicable ratio
// against its latest year, and builds the comparison table when two
// or more years are present. Individual ratio failures degrade to
// "N/A" values; only a broken custom formula is reported as a
// warning, never as a hard error.
func (s *Service) Compute(doc *models.MultiYearDocument, userID string, devMode bool) (*Analysis, error) {
	doc.Normalize()
	doc.Sanitize()

	analysis := &Analysis{
		Fingerprint: Fingerprint(doc),
		Statements:  doc,
		Ratios:      make(models.RatioSet),
	}

	current := doc.CurrentYear
	previous := doc.PreviousYear
	if current == nil {
		analysis.Warnings = append(analysis.Warnings, "no statement data extracted")
		return analysis, nil
	}

	for _, def := range catalog.Base {
		computed, err := formula.Evaluate(def, current, previous, catalog.EvalOptions(def.ID))
		if err != nil {
			// Built-in formulas parse by construction; treat a
			// failure as a bug worth logging, not a dropped cell.
			log.Printf("[Ratios] builtin %s failed: %v", def.ID, err)
			continue
		}
		analysis.add(def, computed)
	}

	if devMode {
		customs, err := s.store.List(userID)
		if err != nil {
			analysis.Warnings = append(analysis.Warnings, "custom ratios unavailable: "+err.Error())
		}
		for _, def := range customs {
			computed, err := formula.Evaluate(def, current, previous, formula.Options{})
			if err != nil {
				analysis.Warnings = append(analysis.Warnings, def.ID+": "+err.Error())
				continue
			}
			analysis.add(def, computed)
		}
	}

	if len(doc.AllYears) >= 2 {
		analysis.Comparison = compare.Build(doc)
	}
	return analysis, nil
}

func (a *Analysis) add(def models.RatioDefinition, computed models.ComputedRatio) {
	category := def.Category
	if def.IsCustom {
		category = models.CategoryCustom
	}
	if a.Ratios[category] == nil {
		a.Ratios[category] = make(map[string]models.ComputedRatio)
	}
	a.Ratios[category][def.ID] = computed
}
