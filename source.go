// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package mediarc contains the deduplicating, resumable download
// orchestrator that sits between a remote message source and local storage.
package mediarc

import (
	"context"

	"go.mau.fi/mediarc/types"
)

// MessageIter walks an asynchronous message sequence. The usual loop is
//
//	for iter.Next(ctx) {
//	    msg := iter.Value()
//	    ...
//	}
//	if err := iter.Err(); err != nil { ... }
//
// Replies to a message are yielded right after it with ReplyID set.
type MessageIter interface {
	Next(ctx context.Context) bool
	Value() *types.Message
	Err() error
}

// Source is the remote content collaborator. Authentication, protocol
// framing and byte-level transfer all live behind this interface; the
// orchestrator only sees messages, hashes and finished files.
type Source interface {
	// ResolveEntity turns a raw identifier (username, invite name or
	// numeric id in string form) into an entity.
	ResolveEntity(ctx context.Context, identifier string) (*types.Entity, error)
	// IterMessages returns a restartable iterator over the entity's
	// messages matching the selector, ordered by arrival.
	IterMessages(ctx context.Context, entity *types.Entity, sel types.Selector) (MessageIter, error)
	// FileHash returns the content hash for the message's file. It may
	// fail with ErrReferenceExpired, in which case the caller refetches
	// the message and retries once.
	FileHash(ctx context.Context, msg *types.Message) ([]byte, error)
	// RefetchMessage fetches a fresh copy of the message, renewing any
	// expired file references.
	RefetchMessage(ctx context.Context, msg *types.Message) (*types.Message, error)
	// DownloadFile streams the message's file (or only its thumbnail) to
	// the given path. Failures are reported, not retried internally.
	DownloadFile(ctx context.Context, msg *types.Message, destPath string, thumbnail bool) error
}
