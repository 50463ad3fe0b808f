package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cocinafacil/tcf/internal/domain"
)

// The gamification engine persists its whole state as one document per
// user. DB implements domain.StateStore.

// LoadState returns the stored state for a user, or (nil, nil) if none
// exists yet. A document that no longer unmarshals is an error; the caller
// falls back to defaults.
func (d *DB) LoadState(userID string) (*domain.GamificationState, error) {
	var raw string
	err := d.db.QueryRow(
		`SELECT state FROM gamification_state WHERE user_id = ?`, userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	var state domain.GamificationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}

// SaveState replaces the stored state for a user.
func (d *DB) SaveState(userID string, state domain.GamificationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT INTO gamification_state (user_id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET state=excluded.state, updated_at=excluded.updated_at`,
		userID, string(raw), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
