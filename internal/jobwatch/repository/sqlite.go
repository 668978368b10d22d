package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/armadaproject/jobwatch/internal/jobwatch/domain"
)

// SqliteStore keeps the monitored job sets in a single table of a local sqlite database.
type SqliteStore struct {
	db *sql.DB
	// SQLite only allows one write at a time; writes are serialized to avoid SQLITE_BUSY.
	lock sync.Mutex
}

func NewSqliteStore(path string) (*SqliteStore, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error expanding sqlite path %s", path)
	}

	dbDir := filepath.Dir(expanded)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		if errMkDir := os.MkdirAll(dbDir, 0o755); errMkDir != nil {
			return nil, fmt.Errorf("could not make directory at %s for sqlite db: %v", dbDir, errMkDir)
		}
	}

	db, err := sql.Open("sqlite", expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening sqlite db at %s", expanded)
	}
	store := &SqliteStore{db: db}
	if err := store.setup(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SqliteStore) setup() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return errors.WithStack(err)
	}
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS monitored_jobsets (
			Queue TEXT NOT NULL,
			JobSetId TEXT NOT NULL,
			AddedAt INT NOT NULL,
			Position INT NOT NULL,
			PRIMARY KEY(Queue, JobSetId))`)
	return errors.WithStack(err)
}

func (s *SqliteStore) Save(ctx context.Context, jobSets []domain.MonitoredJobSet) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM monitored_jobsets"); err != nil {
		return errors.WithStack(err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO monitored_jobsets VALUES (?, ?, ?, ?)")
	if err != nil {
		return errors.WithStack(err)
	}
	defer stmt.Close()

	for i, jobSet := range jobSets {
		if _, err := stmt.ExecContext(ctx, jobSet.Queue, jobSet.JobSetId, jobSet.AddedAt.UnixNano(), i); err != nil {
			return errors.Wrapf(err, "error saving job set %s", jobSet.Key())
		}
	}
	return errors.WithStack(tx.Commit())
}

func (s *SqliteStore) Load(ctx context.Context) ([]domain.MonitoredJobSet, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT Queue, JobSetId, AddedAt FROM monitored_jobsets ORDER BY Position")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	jobSets := []domain.MonitoredJobSet{}
	for rows.Next() {
		var jobSet domain.MonitoredJobSet
		var addedAt int64
		if err := rows.Scan(&jobSet.Queue, &jobSet.JobSetId, &addedAt); err != nil {
			return jobSets, errors.WithStack(err)
		}
		jobSet.AddedAt = time.Unix(0, addedAt).UTC()
		jobSets = append(jobSets, jobSet)
	}
	return jobSets, errors.WithStack(rows.Err())
}

func (s *SqliteStore) HealthCheck(ctx context.Context) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	row := s.db.QueryRowContext(ctx, "SELECT 1")
	var col int
	if err := row.Scan(&col); err != nil {
		return false, fmt.Errorf("SQL health check failed: %v", err)
	}
	return true, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
