package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dukaforge/buckshift/pkg/types"
)

// DirName is the workspace-relative directory holding buckshift state.
const DirName = ".buckshift"

// dbFileName is the state database file inside DirName.
const dbFileName = "state.db"

// Store is the workspace state database. A Store is safe for concurrent use
// once attached; cfg snapshots are immutable after insertion.
type Store struct {
	mu       sync.RWMutex
	attached bool
	db       *sql.DB
}

// Baseline is the stored generated-region text and fingerprint for one file,
// used as the three-way-merge baseline by the sync engine.
type Baseline struct {
	Path        string
	Fingerprint string
	Content     string
}

// New creates a detached Store; call Attach before use.
func New() *Store {
	return &Store{}
}

// Attach opens (creating if needed) the state database under
// <workspaceRoot>/.buckshift and initializes the schema.
func (s *Store) Attach(workspaceRoot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return nil
	}

	dir := filepath.Join(workspaceRoot, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, dbFileName))
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("init schema: %w", err)
		}
	}

	s.db = db
	s.attached = true
	return nil
}

// Detach closes the database. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	s.attached = false
	return s.db.Close()
}

// GetSnapshot returns the cached cfg facts for (triple, rustcVersion).
// Returns ErrSnapshotMissing when no entry exists.
func (s *Store) GetSnapshot(triple, rustcVersion string) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrNotAttached
	}

	var facts string
	err := s.db.QueryRow(
		`SELECT facts FROM cfg_snapshots WHERE triple = ? AND rustc_version = ?`,
		triple, rustcVersion,
	).Scan(&facts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrSnapshotMissing
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	var decoded map[string][]string
	if err := json.Unmarshal([]byte(facts), &decoded); err != nil {
		return nil, fmt.Errorf("decode snapshot facts: %w", err)
	}
	return decoded, nil
}

// PutSnapshot stores cfg facts for (triple, rustcVersion). Entries are
// immutable once written; re-inserting the same key replaces the row with
// identical content, which keeps the write idempotent.
func (s *Store) PutSnapshot(triple, rustcVersion string, facts map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return types.ErrNotAttached
	}

	encoded, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("encode snapshot facts: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO cfg_snapshots (triple, rustc_version, facts, created_at)
         VALUES (?, ?, ?, ?)`,
		triple, rustcVersion, string(encoded), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetBaseline returns the stored baseline for path, or ErrBaselineMissing.
func (s *Store) GetBaseline(path string) (Baseline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return Baseline{}, types.ErrNotAttached
	}

	b := Baseline{Path: path}
	err := s.db.QueryRow(
		`SELECT fingerprint, content FROM baselines WHERE path = ?`, path,
	).Scan(&b.Fingerprint, &b.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return Baseline{}, types.ErrBaselineMissing
	}
	if err != nil {
		return Baseline{}, fmt.Errorf("query baseline: %w", err)
	}
	return b, nil
}

// PutBaseline stores or replaces the baseline for a file.
func (s *Store) PutBaseline(b Baseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return types.ErrNotAttached
	}

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO baselines (path, fingerprint, content, updated_at)
         VALUES (?, ?, ?, ?)`,
		b.Path, b.Fingerprint, b.Content, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert baseline: %w", err)
	}
	return nil
}

// DeleteBaseline removes the baseline for path. Missing rows are not an
// error.
func (s *Store) DeleteBaseline(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return types.ErrNotAttached
	}

	if _, err := s.db.Exec(`DELETE FROM baselines WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete baseline: %w", err)
	}
	return nil
}

// ListBaselinePaths returns every path with a stored baseline, sorted.
func (s *Store) ListBaselinePaths() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrNotAttached
	}

	rows, err := s.db.Query(`SELECT path FROM baselines ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list baselines: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan baseline path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
