package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"statement_analyzer/pkg/models"
)

// RatiosRepo stores the full custom ratio set of each user as a
// single JSONB blob, upserted on every save. It satisfies the
// catalog.Backend interface.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS custom_ratios (
//   user_id TEXT PRIMARY KEY,
//   ratios JSONB NOT NULL,
//   updated_at TIMESTAMPTZ
// );
type RatiosRepo struct{}

// NewRatiosRepo creates a new repository instance.
func NewRatiosRepo() *RatiosRepo {
	return &RatiosRepo{}
}

// Load retrieves the user's custom ratio definitions. A missing row
// is an empty set, not an error.
func (r *RatiosRepo) Load(userID string) ([]models.RatioDefinition, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	query := `SELECT ratios FROM custom_ratios WHERE user_id = $1`
	err := pool.QueryRow(context.Background(), query, userID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load custom ratios: %w", err)
	}

	var defs []models.RatioDefinition
	if err := json.Unmarshal(jsonData, &defs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal custom ratios: %w", err)
	}
	return defs, nil
}

// Save upserts the user's full custom ratio set.
func (r *RatiosRepo) Save(userID string, defs []models.RatioDefinition) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(defs)
	if err != nil {
		return fmt.Errorf("failed to marshal custom ratios: %w", err)
	}

	query := `
		INSERT INTO custom_ratios (user_id, ratios, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET
			ratios = EXCLUDED.ratios,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = pool.Exec(context.Background(), query, userID, jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save custom ratios: %w", err)
	}
	return nil
}
