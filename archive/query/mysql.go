// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package query

type MySql struct{}

func (a *MySql) Pragmas() []string {
	return nil
}

func (a *MySql) CreateTableArchive() string {
	return `CREATE TABLE IF NOT EXISTS mediarc_archive (
        file_id       BIGINT PRIMARY KEY,
        hash          VARBINARY(64) NOT NULL UNIQUE,
        msg           TEXT   NOT NULL,
        msg_id        BIGINT NOT NULL,
        chat_id       BIGINT NOT NULL,
        chat_username TEXT,
        width         INTEGER,
        height        INTEGER,
        size          BIGINT,
        duration      DOUBLE,
        type          VARCHAR(20) NOT NULL,
        downloaded    TIMESTAMP NULL DEFAULT NULL,
        INDEX mediarc_archive_type_idx (type)
    )`
}

// CreateIndexArchiveType is a no-op: MySQL has no CREATE INDEX IF NOT EXISTS,
// so the index is declared inline in CreateTableArchive.
func (a *MySql) CreateIndexArchiveType() string {
	return ""
}

func (a *MySql) CheckID() string {
	return "SELECT msg FROM mediarc_archive WHERE file_id=? AND downloaded IS NOT NULL"
}

func (a *MySql) CheckAttributes() string {
	return `SELECT msg, hash, downloaded FROM mediarc_archive
        WHERE downloaded IS NOT NULL
          AND (hash=? OR (width=? AND height=? AND size=? AND duration=?))`
}

func (a *MySql) DeleteConflicting() string {
	return "DELETE FROM mediarc_archive WHERE file_id=? OR hash=?"
}

func (a *MySql) InsertRecord() string {
	return `INSERT INTO mediarc_archive (file_id, hash, msg, msg_id, chat_id, chat_username, width, height, size, duration, type)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
}

func (a *MySql) MarkComplete() string {
	return "UPDATE mediarc_archive SET downloaded=? WHERE file_id=?"
}
