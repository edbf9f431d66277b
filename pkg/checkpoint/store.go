// Package checkpoint persists population snapshots to SQLite so that long
// evolution runs can be resumed after interruption.
package checkpoint

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/evoforge/evonn-go/pkg/errors"
	"github.com/evoforge/evonn-go/pkg/logging"
	"github.com/evoforge/evonn-go/pkg/population"
)

// Store is a SQLite-backed checkpoint store. Snapshots are keyed by run ID
// and generation; saving the same pair twice overwrites the earlier payload.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a checkpoint store at the given database file. If path is
// ":memory:", the database lives in-memory and is lost on Close.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to open SQLite database"),
			errors.Fields{"path": path},
		)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, errors.WithFields(err, errors.Fields{"path": path})
	}
	return s, nil
}

func (s *Store) init() error {
	// Enable WAL mode for better concurrency
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to enable WAL mode")
	}

	query := `
    CREATE TABLE IF NOT EXISTS checkpoints (
        run_id TEXT NOT NULL,
        generation INTEGER NOT NULL,
        payload TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (run_id, generation)
    );

    CREATE INDEX IF NOT EXISTS idx_checkpoints_run_id
    ON checkpoints(run_id);
    `

	if _, err := s.db.Exec(query); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to initialize database"),
			errors.Fields{"query": query},
		)
	}
	return nil
}

// Save writes a snapshot, replacing any existing checkpoint for the same run
// and generation.
func (s *Store) Save(snap *population.Snapshot) error {
	payload, err := Marshal(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to begin transaction"),
			errors.Fields{"run_id": snap.ID},
		)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			logging.GetLogger().Error(context.Background(), "failed to rollback transaction: %v", err)
		}
	}()

	query := `
    INSERT INTO checkpoints (run_id, generation, payload)
    VALUES (?, ?, ?)
    ON CONFLICT(run_id, generation) DO UPDATE SET
        payload = excluded.payload,
        created_at = CURRENT_TIMESTAMP
    `

	_, err = tx.Exec(query, snap.ID, snap.Generation, string(payload))
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to store checkpoint"),
			errors.Fields{"run_id": snap.ID, "generation": snap.Generation},
		)
	}

	if err = tx.Commit(); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to commit transaction"),
			errors.Fields{"run_id": snap.ID, "generation": snap.Generation},
		)
	}

	return nil
}

// Load retrieves the checkpoint for a specific run and generation.
func (s *Store) Load(runID string, generation int) (*population.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	query := "SELECT payload FROM checkpoints WHERE run_id = ? AND generation = ?"

	err := s.db.QueryRow(query, runID, generation).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.WithFields(
			errors.New(errors.NotFound, "checkpoint not found"),
			errors.Fields{"run_id": runID, "generation": generation},
		)
	}
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to load checkpoint"),
			errors.Fields{"run_id": runID, "generation": generation},
		)
	}

	return Unmarshal([]byte(payload))
}

// Latest retrieves the highest-generation checkpoint for a run.
func (s *Store) Latest(runID string) (*population.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	query := `
    SELECT payload FROM checkpoints
    WHERE run_id = ?
    ORDER BY generation DESC
    LIMIT 1
    `

	err := s.db.QueryRow(query, runID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.WithFields(
			errors.New(errors.NotFound, "no checkpoints for run"),
			errors.Fields{"run_id": runID},
		)
	}
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to load checkpoint"),
			errors.Fields{"run_id": runID},
		)
	}

	return Unmarshal([]byte(payload))
}

// Generations lists the stored generations for a run in ascending order.
func (s *Store) Generations(runID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT generation FROM checkpoints WHERE run_id = ? ORDER BY generation ASC", runID)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to list checkpoints"),
			errors.Fields{"run_id": runID},
		)
	}
	defer rows.Close()

	var gens []int
	for rows.Next() {
		var g int
		if err := rows.Scan(&g); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "failed to scan generation")
		}
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to iterate checkpoints")
	}
	return gens, nil
}

// Prune deletes all checkpoints for a run older than the given generation.
func (s *Store) Prune(runID string, keepFrom int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"DELETE FROM checkpoints WHERE run_id = ? AND generation < ?", runID, keepFrom)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to prune checkpoints"),
			errors.Fields{"run_id": runID, "keep_from": keepFrom},
		)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.Unknown, "failed to close database")
	}
	return nil
}
