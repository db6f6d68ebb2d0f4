// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package query contains the per-dialect SQL used by the archive package.
package query

// NewByDialect returns the query adapter for the given database dialect.
// The dialect is matched exactly once here; callers never inspect it again.
func NewByDialect(dialect string) Adapter {
	switch dialect {
	case "postgres", "postgresql", "pgx":
		return &Postgres{}
	case "sqlite", "sqlite3":
		return &Sqlite{Default: &Postgres{}}
	case "mysql":
		return &MySql{}
	default:
		return nil
	}
}

// Adapter stores all queries for the mediarc_archive table so the database
// driver can be swapped without touching the store code.
type Adapter interface {
	// Pragmas returns statements executed once after connecting, before
	// any other query. May be empty.
	Pragmas() []string
	CreateTableArchive() string
	CreateIndexArchiveType() string
	CheckID() string
	CheckAttributes() string
	DeleteConflicting() string
	InsertRecord() string
	MarkComplete() string
}
