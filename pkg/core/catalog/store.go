package catalog

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"statement_analyzer/pkg/core/formula"
	"statement_analyzer/pkg/models"
)

// ImportMode controls how an imported definition set combines with
// the definitions already stored for a user.
type ImportMode string

const (
	// ImportReplace discards existing custom ratios before loading.
	ImportReplace ImportMode = "replace"
	// ImportMerge keeps existing ratios; colliding imports are skipped.
	ImportMerge ImportMode = "merge"
)

// Backend persists the custom ratio set of a single user. The store
// calls Save with the full set after every mutation, so backends only
// need whole-set semantics.
type Backend interface {
	Load(userID string) ([]models.RatioDefinition, error)
	Save(userID string, defs []models.RatioDefinition) error
}

// Store manages user-scoped custom ratio definitions on top of a
// Backend. All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	backend Backend
	cache   map[string][]models.RatioDefinition // userID -> defs
}

// NewStore creates a Store over the given backend.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		cache:   make(map[string][]models.RatioDefinition),
	}
}

// load returns the cached definition list for userID, reading through
// to the backend on first access. Caller must hold s.mu.
func (s *Store) load(userID string) ([]models.RatioDefinition, error) {
	if defs, ok := s.cache[userID]; ok {
		return defs, nil
	}
	defs, err := s.backend.Load(userID)
	if err != nil {
		return nil, err
	}
	s.cache[userID] = defs
	return defs, nil
}

func (s *Store) persist(userID string, defs []models.RatioDefinition) error {
	if err := s.backend.Save(userID, defs); err != nil {
		return err
	}
	s.cache[userID] = defs
	return nil
}

// Validate checks a definition's fields and formula without touching
// storage. It is used by Add, Update and Import, and exposed so the
// API layer can pre-validate.
func Validate(def models.RatioDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return &models.ValidationError{Field: "name", Reason: "name is required"}
	}
	if !models.ValidCategory(def.Category) {
		return &models.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", def.Category)}
	}
	if strings.TrimSpace(def.Formula) == "" {
		return &models.ValidationError{Field: "formula", Reason: "formula is required"}
	}
	if _, err := formula.Parse(def.Formula); err != nil {
		return err
	}
	return nil
}

// Add registers a new custom ratio for userID. The id is derived from
// the name when empty. Collisions with built-in or existing custom
// ids are rejected.
func (s *Store) Add(userID string, def models.RatioDefinition) (models.RatioDefinition, error) {
	if err := Validate(def); err != nil {
		return models.RatioDefinition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	defs, err := s.load(userID)
	if err != nil {
		return models.RatioDefinition{}, err
	}

	if def.ID == "" {
		def.ID = models.Slugify(def.Name)
	}
	if def.ID == "" {
		def.ID = "custom_" + uuid.New().String()[:8]
	}
	if _, ok := BaseByID(def.ID); ok {
		return models.RatioDefinition{}, &models.DuplicateIDError{ID: def.ID}
	}
	for _, existing := range defs {
		if existing.ID == def.ID {
			return models.RatioDefinition{}, &models.DuplicateIDError{ID: def.ID}
		}
	}

	now := time.Now().UTC()
	def.IsCustom = true
	def.CreatedAt = now
	def.ModifiedAt = now

	defs = append(defs, def)
	if err := s.persist(userID, defs); err != nil {
		return models.RatioDefinition{}, err
	}
	log.Printf("[Catalog] user=%s added custom ratio %s", userID, def.ID)
	return def, nil
}

// Update replaces the stored definition with the given id. The id
// itself is immutable; CreatedAt is preserved.
func (s *Store) Update(userID, id string, def models.RatioDefinition) (models.RatioDefinition, error) {
	def.ID = id
	if err := Validate(def); err != nil {
		return models.RatioDefinition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	defs, err := s.load(userID)
	if err != nil {
		return models.RatioDefinition{}, err
	}

	for i, existing := range defs {
		if existing.ID != id {
			continue
		}
		def.IsCustom = true
		def.CreatedAt = existing.CreatedAt
		def.ModifiedAt = time.Now().UTC()
		defs[i] = def
		if err := s.persist(userID, defs); err != nil {
			return models.RatioDefinition{}, err
		}
		return def, nil
	}
	return models.RatioDefinition{}, &models.ValidationError{Field: "id", Reason: fmt.Sprintf("custom ratio %q not found", id)}
}

// Delete removes the custom ratio with the given id.
func (s *Store) Delete(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defs, err := s.load(userID)
	if err != nil {
		return err
	}
	for i, existing := range defs {
		if existing.ID != id {
			continue
		}
		defs = append(defs[:i], defs[i+1:]...)
		return s.persist(userID, defs)
	}
	return &models.ValidationError{Field: "id", Reason: fmt.Sprintf("custom ratio %q not found", id)}
}

// Get returns the custom ratio with the given id.
func (s *Store) Get(userID, id string) (models.RatioDefinition, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defs, err := s.load(userID)
	if err != nil {
		return models.RatioDefinition{}, false, err
	}
	for _, def := range defs {
		if def.ID == id {
			return def, true, nil
		}
	}
	return models.RatioDefinition{}, false, nil
}

// List returns the user's custom ratios sorted by id.
func (s *Store) List(userID string) ([]models.RatioDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defs, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.RatioDefinition, len(defs))
	copy(out, defs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ImportResult summarises an Import call.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Import loads a definition set exported by Export. Invalid entries
// are skipped and reported, valid ones still land. Replace discards
// the stored set first; merge keeps it and skips any incoming id
// that already exists (existing wins). Imported counts only the
// definitions actually added.
func (s *Store) Import(userID string, defs []models.RatioDefinition, mode ImportMode) (ImportResult, error) {
	if mode != ImportReplace && mode != ImportMerge {
		return ImportResult{}, &models.ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown import mode %q", mode)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(userID)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	byID := make(map[string]models.RatioDefinition)
	if mode == ImportMerge {
		for _, def := range existing {
			byID[def.ID] = def
		}
	}

	now := time.Now().UTC()
	for _, def := range defs {
		if def.ID == "" {
			def.ID = models.Slugify(def.Name)
		}
		if err := Validate(def); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", def.ID, err))
			continue
		}
		if _, ok := BaseByID(def.ID); ok {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: conflicts with built-in ratio", def.ID))
			continue
		}
		if _, ok := byID[def.ID]; ok {
			result.Skipped++
			continue
		}
		// Exported definitions carry their timestamps; keep them so an
		// export/import cycle reproduces the stored set exactly. Only
		// definitions authored outside the app get stamped here.
		def.IsCustom = true
		if def.CreatedAt.IsZero() {
			def.CreatedAt = now
		}
		if def.ModifiedAt.IsZero() {
			def.ModifiedAt = now
		}
		byID[def.ID] = def
		result.Imported++
	}

	merged := make([]models.RatioDefinition, 0, len(byID))
	for _, def := range byID {
		merged = append(merged, def)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })

	if err := s.persist(userID, merged); err != nil {
		return ImportResult{}, err
	}
	log.Printf("[Catalog] user=%s imported %d custom ratios (mode=%s, skipped=%d)", userID, result.Imported, mode, result.Skipped)
	return result, nil
}

// Export returns the user's custom ratios for download. The slice is
// the same shape Import accepts.
func (s *Store) Export(userID string) ([]models.RatioDefinition, error) {
	return s.List(userID)
}
