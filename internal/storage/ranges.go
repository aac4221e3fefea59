package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"

	"raisetl/internal/errors"
	"raisetl/pkg/contracts/domain"
)

const (
	createRangesSQL = `CREATE TABLE ranges (
		grp       TEXT NOT NULL,
		target    TEXT NOT NULL,
		min_value REAL NOT NULL,
		max_value REAL NOT NULL,
		PRIMARY KEY (grp, target)
	)`

	upsertRangeSQL = `INSERT INTO ranges (grp, target, min_value, max_value) VALUES (?, ?, ?, ?)
		ON CONFLICT (grp, target) DO UPDATE SET
			min_value = min(min_value, excluded.min_value),
			max_value = max(max_value, excluded.max_value)`

	getRangeSQL = `SELECT min_value, max_value FROM ranges WHERE grp = ? AND target = ?`
)

// SQLiteRangeStore is a RangeStore backed by a SQLite file. Updates run in one
// transaction that Seal commits.
type SQLiteRangeStore struct {
	path   string
	logger *slog.Logger

	db     *sql.DB
	tx     *sql.Tx
	upsert *sql.Stmt
	get    *sql.Stmt

	updates int64
}

// OpenSQLiteRangeStore creates a fresh store at path, replacing any file left
// by a previous run.
func OpenSQLiteRangeStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteRangeStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to remove stale range store %s", path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open range store %s", path), err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteRangeStore{
		path:   path,
		logger: logger.With(slog.String("component", "range_store"), slog.String("path", path)),
		db:     db,
	}
	if err := s.init(ctx); err != nil {
		s.Close()
		return nil, err
	}

	s.logger.DebugContext(ctx, "Range store opened")
	return s, nil
}

func (s *SQLiteRangeStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createRangesSQL); err != nil {
		return errors.NewStorageError("failed to create ranges table", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin range transaction", err)
	}
	s.tx = tx
	upsert, err := tx.PrepareContext(ctx, upsertRangeSQL)
	if err != nil {
		return errors.NewStorageError("failed to prepare range update", err)
	}
	s.upsert = upsert
	return nil
}

// Update widens the range of (group, target) to include v.
func (s *SQLiteRangeStore) Update(ctx context.Context, group, target string, v float64) error {
	if s.upsert == nil {
		return errors.NewStorageError("range store is sealed", nil)
	}
	if _, err := s.upsert.ExecContext(ctx, group, target, v, v); err != nil {
		return errors.NewStorageError("failed to update range", err).
			WithContext("group", group).
			WithContext("target", target)
	}
	s.updates++
	return nil
}

// Seal commits every update and prepares the lookup statement.
func (s *SQLiteRangeStore) Seal(ctx context.Context) error {
	if s.tx == nil {
		return errors.NewStorageError("range store is already sealed", nil)
	}
	s.upsert.Close()
	s.upsert = nil

	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to commit ranges to %s", s.path), err)
	}

	get, err := s.db.PrepareContext(ctx, getRangeSQL)
	if err != nil {
		return errors.NewStorageError("failed to prepare range lookup", err)
	}
	s.get = get

	s.logger.InfoContext(ctx, "Ranges committed", slog.Int64("updates", s.updates))
	return nil
}

// Get returns the range of (group, target); ok is false when it was never updated.
func (s *SQLiteRangeStore) Get(ctx context.Context, group, target string) (domain.Range, bool, error) {
	if s.get == nil {
		return domain.Range{}, false, errors.NewStorageError("range store is not sealed", nil)
	}
	var r domain.Range
	err := s.get.QueryRowContext(ctx, group, target).Scan(&r.Min, &r.Max)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Range{}, false, nil
	}
	if err != nil {
		return domain.Range{}, false, errors.NewStorageError("failed to read range", err)
	}
	return r, true, nil
}

// Close rolls back an unsealed store and closes the database. The file is kept.
func (s *SQLiteRangeStore) Close() error {
	if s.upsert != nil {
		s.upsert.Close()
		s.upsert = nil
	}
	if s.tx != nil {
		s.tx.Rollback()
		s.tx = nil
	}
	if s.get != nil {
		s.get.Close()
		s.get = nil
	}
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to close range store %s", s.path), err)
	}
	return nil
}
