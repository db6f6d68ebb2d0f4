// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package archive contains the persistent deduplication record store
// consulted by the download pipeline.
package archive

import (
	"context"
	"time"
)

// Record is one row in the archive: a distinct piece of content that has
// been seen, pending or completed. FileID and Hash are both unique among
// all rows; inserting a colliding record evicts the old row.
type Record struct {
	FileID       int64
	Hash         []byte
	Msg          string // human-readable provenance (chat + message id)
	MsgID        int64
	ChatID       int64
	ChatUsername string // empty is stored as NULL
	Width        *int
	Height       *int
	Size         *int64
	Duration     *float64
	Type         string
}

// Match is a completed record returned by CheckAttributes.
type Match struct {
	Msg        string
	Hash       []byte
	Downloaded time.Time
}

// Archive is the storage contract shared by all backends. All backends must
// implement identical dedup semantics; picking sqlite, postgres or mysql is
// purely a deployment decision.
//
// Only completed records (MarkComplete called) are visible to CheckID and
// CheckAttributes. A pending record does not count as a duplicate because
// its transfer may still fail.
type Archive interface {
	// Prepare idempotently ensures the schema exists.
	Prepare(ctx context.Context) error
	// CheckID returns the provenance string of a completed record with
	// the given file ID, or "" if there is none.
	CheckID(ctx context.Context, fileID int64) (string, error)
	// CheckAttributes returns a completed record whose hash equals the
	// given hash, or whose (width, height, size, duration) tuple matches
	// exactly. Returns nil if there is no match.
	CheckAttributes(ctx context.Context, hash []byte, width, height *int, size *int64, duration *float64) (*Match, error)
	// Upsert inserts a new pending record, transactionally evicting any
	// row that collides on file ID or hash.
	Upsert(ctx context.Context, rec *Record) error
	// MarkComplete stamps the record with the current time. It is a
	// no-op if the row does not exist.
	MarkComplete(ctx context.Context, fileID int64) error
	Close() error
}
