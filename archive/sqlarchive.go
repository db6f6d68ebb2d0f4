// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mau.fi/mediarc/archive/query"
	mrcLog "go.mau.fi/mediarc/util/log"
)

// SQLArchive implements Archive on top of a database/sql connection with a
// dialect-specific query adapter. All operations hold the store mutex, so
// the connection only ever sees one logical archive operation at a time.
type SQLArchive struct {
	db      *sql.DB
	dialect string
	query   query.Adapter
	log     mrcLog.Logger

	lock sync.Mutex
}

var _ Archive = (*SQLArchive)(nil)

// ErrUnknownDialect is returned by NewWithDB for dialects without a query adapter.
var ErrUnknownDialect = errors.New("unknown database dialect")

// NewWithDB wraps an existing database connection. The dialect must be one
// of "sqlite3", "postgres" or "mysql" (with the aliases query.NewByDialect
// accepts).
func NewWithDB(db *sql.DB, dialect string, log mrcLog.Logger) (*SQLArchive, error) {
	if log == nil {
		log = mrcLog.Noop
	}
	adapter := query.NewByDialect(dialect)
	if adapter == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownDialect, dialect)
	}
	return &SQLArchive{
		db:      db,
		dialect: dialect,
		query:   adapter,
		log:     log,
	}, nil
}

func (s *SQLArchive) Prepare(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, pragma := range s.query.Pragmas() {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, s.query.CreateTableArchive()); err != nil {
		return fmt.Errorf("failed to create archive table: %w", err)
	}
	if q := s.query.CreateIndexArchiveType(); q != "" {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create type index: %w", err)
		}
	}
	return nil
}

func (s *SQLArchive) CheckID(ctx context.Context, fileID int64) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	var msg string
	err := s.db.QueryRowContext(ctx, s.query.CheckID(), fileID).Scan(&msg)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to query file id: %w", err)
	}
	return msg, nil
}

func (s *SQLArchive) CheckAttributes(ctx context.Context, hash []byte, width, height *int, size *int64, duration *float64) (*Match, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	var match Match
	err := s.db.
		QueryRowContext(ctx, s.query.CheckAttributes(), hash, nullInt(width), nullInt(height), nullInt64(size), nullFloat(duration)).
		Scan(&match.Msg, &match.Hash, &match.Downloaded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to query attributes: %w", err)
	}
	return &match, nil
}

// Upsert evicts rows colliding on either file_id or hash and inserts the new
// pending record in the same transaction. The delete is a no-op when there
// is no conflict, which keeps the operation identical across dialects
// without sniffing driver-specific uniqueness errors.
func (s *SQLArchive) Upsert(ctx context.Context, rec *Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if _, err = tx.ExecContext(ctx, s.query.DeleteConflicting(), rec.FileID, rec.Hash); err != nil {
		return fmt.Errorf("failed to evict conflicting rows: %w", err)
	}
	_, err = tx.ExecContext(ctx, s.query.InsertRecord(),
		rec.FileID, rec.Hash, rec.Msg, rec.MsgID, rec.ChatID, nullString(rec.ChatUsername),
		nullInt(rec.Width), nullInt(rec.Height), nullInt64(rec.Size), nullFloat(rec.Duration), rec.Type)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

func (s *SQLArchive) MarkComplete(ctx context.Context, fileID int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	res, err := s.db.ExecContext(ctx, s.query.MarkComplete(), time.Now().UTC(), fileID)
	if err != nil {
		return fmt.Errorf("failed to mark complete: %w", err)
	}
	if affected, countErr := res.RowsAffected(); countErr == nil && affected == 0 {
		s.log.Debugf("MarkComplete(%d) matched no rows", fileID)
	}
	return nil
}

func (s *SQLArchive) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
