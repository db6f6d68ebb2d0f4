// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package query

// Sqlite shares most queries with Postgres. The mattn/go-sqlite3 driver
// accepts $N placeholders, so only type names and pragmas differ.
type Sqlite struct {
	Default Adapter
}

func (a *Sqlite) Pragmas() []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
}

func (a *Sqlite) CreateTableArchive() string {
	return `CREATE TABLE IF NOT EXISTS mediarc_archive (
        file_id       INTEGER PRIMARY KEY NOT NULL,
        hash          BLOB    NOT NULL UNIQUE,
        msg           TEXT    NOT NULL,
        msg_id        INTEGER NOT NULL,
        chat_id       INTEGER NOT NULL,
        chat_username TEXT,
        width         INTEGER,
        height        INTEGER,
        size          INTEGER,
        duration      REAL,
        type          TEXT NOT NULL,
        downloaded    TIMESTAMP
    )`
}

func (a *Sqlite) CreateIndexArchiveType() string {
	return a.Default.CreateIndexArchiveType()
}

func (a *Sqlite) CheckID() string {
	return a.Default.CheckID()
}

func (a *Sqlite) CheckAttributes() string {
	return a.Default.CheckAttributes()
}

func (a *Sqlite) DeleteConflicting() string {
	return a.Default.DeleteConflicting()
}

func (a *Sqlite) InsertRecord() string {
	return a.Default.InsertRecord()
}

func (a *Sqlite) MarkComplete() string {
	return a.Default.MarkComplete()
}
