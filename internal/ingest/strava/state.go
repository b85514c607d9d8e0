package strava

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB keeps the per-deployment sync state: OAuth tokens and the set of
// activity IDs already ingested, so webhook replays and manual re-syncs
// stay idempotent.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS oauth_tokens (
			name  TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS synced_activities (
			activity_id INTEGER PRIMARY KEY,
			synced_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state tables: %w", err)
	}

	return &StateDB{db: db}, nil
}

// AccessToken returns the stored access token.
func (s *StateDB) AccessToken() (string, error) {
	return s.token("access_token")
}

// RefreshToken returns the stored refresh token.
func (s *StateDB) RefreshToken() (string, error) {
	return s.token("refresh_token")
}

func (s *StateDB) token(name string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM oauth_tokens WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no %s stored, authorize first", name)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SaveTokens stores both tokens atomically.
func (s *StateDB) SaveTokens(access, refresh string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for name, value := range map[string]string{"access_token": access, "refresh_token": refresh} {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO oauth_tokens (name, value) VALUES (?, ?)`, name, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// IsSynced checks whether an activity has already been ingested.
func (s *StateDB) IsSynced(activityID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM synced_activities WHERE activity_id = ?`, activityID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkSynced records that an activity was ingested.
func (s *StateDB) MarkSynced(activityID int64) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO synced_activities (activity_id) VALUES (?)`, activityID)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
