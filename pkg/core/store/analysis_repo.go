package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"statement_analyzer/pkg/core/ratios"
)

// AnalysisRepo stores the latest computed analysis per user so a
// returning session can reload statements and ratios without
// re-extracting.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS analyses (
//   user_id TEXT PRIMARY KEY,
//   fingerprint TEXT NOT NULL,
//   analysis_json JSONB NOT NULL,
//   updated_at TIMESTAMPTZ
// );
type AnalysisRepo struct{}

// NewAnalysisRepo creates a new repository instance.
func NewAnalysisRepo() *AnalysisRepo {
	return &AnalysisRepo{}
}

// Save upserts the user's latest analysis, keyed by user id. The
// document fingerprint is stored alongside so Load can tell callers
// which document the ratios belong to.
func (r *AnalysisRepo) Save(ctx context.Context, userID string, analysis *ratios.Analysis) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO analyses (user_id, fingerprint, analysis_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			fingerprint = EXCLUDED.fingerprint,
			analysis_json = EXCLUDED.analysis_json,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = pool.Exec(ctx, query, userID, analysis.Fingerprint, jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Load retrieves the user's latest analysis, or nil when none exists.
func (r *AnalysisRepo) Load(ctx context.Context, userID string) (*ratios.Analysis, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	query := `SELECT analysis_json FROM analyses WHERE user_id = $1`
	err := pool.QueryRow(ctx, query, userID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	var analysis ratios.Analysis
	if err := json.Unmarshal(jsonData, &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &analysis, nil
}
