package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"statement_analyzer/pkg/models"
)

// MemoryBackend keeps definition sets in process memory. Used in
// tests and as the fallback when no data directory is configured.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]models.RatioDefinition
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]models.RatioDefinition)}
}

func (b *MemoryBackend) Load(userID string) ([]models.RatioDefinition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defs := b.data[userID]
	out := make([]models.RatioDefinition, len(defs))
	copy(out, defs)
	return out, nil
}

func (b *MemoryBackend) Save(userID string, defs []models.RatioDefinition) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := make([]models.RatioDefinition, len(defs))
	copy(stored, defs)
	b.data[userID] = stored
	return nil
}

// FileBackend stores one JSON file per user under a data directory.
// File names are derived from the user id with unsafe characters
// stripped so a crafted id cannot escape the directory.
type FileBackend struct {
	dir string
}

var unsafeUserID = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// NewFileBackend creates the data directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ratios dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(userID string) string {
	safe := unsafeUserID.ReplaceAllString(userID, "_")
	if safe == "" {
		safe = "default"
	}
	return filepath.Join(b.dir, safe+".json")
}

func (b *FileBackend) Load(userID string) ([]models.RatioDefinition, error) {
	raw, err := os.ReadFile(b.path(userID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ratios file: %w", err)
	}

	var defs []models.RatioDefinition
	if err := json.Unmarshal(raw, &defs); err != nil {
		// A corrupt file should not take custom ratios offline for
		// good. Start fresh and keep the damaged file for inspection.
		log.Printf("[Catalog] corrupt ratios file for user=%s, starting empty: %v", userID, err)
		_ = os.Rename(b.path(userID), b.path(userID)+".corrupt")
		return nil, nil
	}
	return defs, nil
}

func (b *FileBackend) Save(userID string, defs []models.RatioDefinition) error {
	raw, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ratios: %w", err)
	}
	tmp := b.path(userID) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write ratios file: %w", err)
	}
	return os.Rename(tmp, b.path(userID))
}
