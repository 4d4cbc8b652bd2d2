package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const artifactSchema = `
CREATE TABLE IF NOT EXISTS artifacts (
	kind       TEXT NOT NULL,
	id         TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (kind, id)
);
`

// SQLiteStore keeps artifacts in a single SQLite database, one row per
// artifact, upserting on repeated saves of the same (kind, id).
type SQLiteStore struct {
	conn   *sql.DB
	dbPath string
}

// OpenSQLiteStore opens or creates artifacts.db under dir.
func OpenSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	dbPath := filepath.Join(dir, "artifacts.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(artifactSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize artifact schema: %w", err)
	}

	return &SQLiteStore{conn: conn, dbPath: dbPath}, nil
}

// Save upserts the artifact and returns a locator of the form
// <dbPath>#<kind>/<id>.
func (s *SQLiteStore) Save(kind, id string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s artifact: %w", kind, err)
	}
	_, err = s.conn.Exec(
		`INSERT INTO artifacts (kind, id, payload, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(kind, id) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		kind, id, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to store %s artifact: %w", kind, err)
	}
	return fmt.Sprintf("%s#%s/%s", s.dbPath, kind, id), nil
}

// Load reads an artifact's JSON payload back into out.
func (s *SQLiteStore) Load(kind, id string, out interface{}) error {
	var payload string
	err := s.conn.QueryRow(
		`SELECT payload FROM artifacts WHERE kind = ? AND id = ?`, kind, id,
	).Scan(&payload)
	if err != nil {
		return fmt.Errorf("failed to load %s artifact %s: %w", kind, id, err)
	}
	return json.Unmarshal([]byte(payload), out)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
