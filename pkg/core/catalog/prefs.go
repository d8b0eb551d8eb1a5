package catalog

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Prefs are the session-level settings that survive restarts: whether
// custom ratios are active (developer mode) and the default user id
// for unauthenticated requests.
type Prefs struct {
	DevMode bool   `json:"dev_mode"`
	UserID  string `json:"user_id"`
}

// PrefsStore reads and writes Prefs as a single JSON file. Missing or
// corrupt values fall back to safe defaults: dev mode off, a freshly
// generated user id.
type PrefsStore struct {
	mu   sync.Mutex
	path string
}

// NewPrefsStore creates a store under the given data directory.
func NewPrefsStore(dir string) *PrefsStore {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[Catalog] prefs dir unavailable: %v", err)
	}
	return &PrefsStore{path: filepath.Join(dir, "prefs.json")}
}

// Load returns the current prefs, repairing defaults as needed. A
// generated user id is written back so it stays stable.
func (s *PrefsStore) Load() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prefs Prefs
	raw, err := os.ReadFile(s.path)
	if err == nil {
		if jsonErr := json.Unmarshal(raw, &prefs); jsonErr != nil {
			log.Printf("[Catalog] corrupt prefs file, resetting: %v", jsonErr)
			prefs = Prefs{}
		}
	}
	if prefs.UserID == "" {
		prefs.UserID = uuid.New().String()
		s.write(prefs)
	}
	return prefs
}

// Save persists the prefs.
func (s *PrefsStore) Save(prefs Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(prefs)
}

func (s *PrefsStore) write(prefs Prefs) error {
	raw, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}
