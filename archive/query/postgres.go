// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package query

type Postgres struct{}

func (a *Postgres) Pragmas() []string {
	return nil
}

func (a *Postgres) CreateTableArchive() string {
	return `CREATE TABLE IF NOT EXISTS mediarc_archive (
        file_id       BIGINT PRIMARY KEY,
        hash          bytea  NOT NULL UNIQUE,
        msg           TEXT   NOT NULL,
        msg_id        BIGINT NOT NULL,
        chat_id       BIGINT NOT NULL,
        chat_username TEXT,
        width         INTEGER,
        height        INTEGER,
        size          BIGINT,
        duration      double precision,
        type          TEXT NOT NULL,
        downloaded    timestamptz
    )`
}

func (a *Postgres) CreateIndexArchiveType() string {
	return "CREATE INDEX IF NOT EXISTS mediarc_archive_type_idx ON mediarc_archive (type)"
}

func (a *Postgres) CheckID() string {
	return "SELECT msg FROM mediarc_archive WHERE file_id=$1 AND downloaded IS NOT NULL"
}

func (a *Postgres) CheckAttributes() string {
	return `SELECT msg, hash, downloaded FROM mediarc_archive
        WHERE downloaded IS NOT NULL
          AND (hash=$1 OR (width=$2 AND height=$3 AND size=$4 AND duration=$5))`
}

func (a *Postgres) DeleteConflicting() string {
	return "DELETE FROM mediarc_archive WHERE file_id=$1 OR hash=$2"
}

func (a *Postgres) InsertRecord() string {
	return `INSERT INTO mediarc_archive (file_id, hash, msg, msg_id, chat_id, chat_username, width, height, size, duration, type)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
}

func (a *Postgres) MarkComplete() string {
	return "UPDATE mediarc_archive SET downloaded=$1 WHERE file_id=$2"
}
