// Package sqlitestore is the durable half of the persistence handoff: the
// predictor core exports a plain serializable state and this store keeps it
// in a local SQLite database. The core never touches storage itself.
package sqlitestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AGitCalledHangFeng/smart-form-predictor/pkg/predictor"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS predictor_state (
	profile_id TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store persists predictor state snapshots keyed by profile id, so one
// database can carry several user profiles.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, bootstrapping the schema.
// Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlitestore: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlitestore: create directory: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: bootstrap schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the state snapshot for a profile.
func (s *Store) Save(profileID string, state predictor.State) error {
	if profileID == "" {
		return errors.New("sqlitestore: profile id is required")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("sqlitestore: encode state: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO predictor_state (profile_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, profileID, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlitestore: save state: %w", err)
	}
	return nil
}

// Load returns the stored state for a profile. A profile never saved before
// returns an empty state and false, not an error.
func (s *Store) Load(profileID string) (predictor.State, bool, error) {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM predictor_state WHERE profile_id = ?`, profileID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return predictor.State{}, false, nil
	}
	if err != nil {
		return predictor.State{}, false, fmt.Errorf("sqlitestore: load state: %w", err)
	}

	var state predictor.State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return predictor.State{}, false, fmt.Errorf("sqlitestore: decode state: %w", err)
	}
	return state, true, nil
}

// Delete removes a profile's stored state. Deleting an absent profile is a
// no-op.
func (s *Store) Delete(profileID string) error {
	if _, err := s.db.Exec(`DELETE FROM predictor_state WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("sqlitestore: delete state: %w", err)
	}
	return nil
}

// Profiles lists the stored profile ids.
func (s *Store) Profiles() ([]string, error) {
	rows, err := s.db.Query(`SELECT profile_id FROM predictor_state ORDER BY profile_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: list profiles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan profile: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
