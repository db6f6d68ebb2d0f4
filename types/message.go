// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package types

import (
	"fmt"
	"strings"
)

// Entity identifies a chat, channel or user on the remote source.
type Entity struct {
	ID       int64
	Username string // primary public username, empty if none
	Name     string // display name or title
	Class    string // remote-side type name, e.g. "Channel" or "User"
}

func (e *Entity) String() string {
	parts := make([]string, 0, 2)
	parts = append(parts, fmt.Sprintf("id=%d", e.ID))
	if e.Username != "" {
		parts = append(parts, fmt.Sprintf("username=%q", e.Username))
	}
	return fmt.Sprintf("%s(%s)", e.Class, strings.Join(parts, ", "))
}

// FileInfo describes the file attached to a message. Attribute fields are
// pointers because the remote source only reports them for some media types;
// a nil attribute never participates in attribute-tuple deduplication.
type FileInfo struct {
	ID       int64  // remote content identifier, unique per distinct upload
	Name     string // original file name, if the source provides one
	Ext      string // extension including the leading dot, e.g. ".mp4"
	Type     FileType
	Width    *int
	Height   *int
	Size     *int64
	Duration *float64
}

// Message is one remote message as handed over by the Source collaborator.
type Message struct {
	ID       int64
	ChatID   int64
	Hashtags []string
	Text     string

	// ReplyID is nil for top-level messages and a zero-based sequence
	// number for thread replies.
	ReplyID *int

	// File is nil when the message carries no downloadable content.
	File *FileInfo

	// Ref is an opaque handle the Source uses to locate the content
	// bytes. It can expire; see Source.FileHash.
	Ref any `json:"-"`
}

// SourceString returns a log-friendly representation of the message and the
// chat it came from.
func (m *Message) SourceString(entity *Entity) string {
	reply := "<nil>"
	if m.ReplyID != nil {
		reply = fmt.Sprintf("%d", *m.ReplyID)
	}
	return fmt.Sprintf("Message(id=%d, reply_id=%s, from=%s)", m.ID, reply, entity)
}

// Selector narrows which messages Source.IterMessages yields.
type Selector struct {
	// IDs selects specific message IDs. When set, MinID/MaxID are ignored.
	IDs []int64
	// MinID/MaxID select an exclusive range of message IDs. MaxID of zero
	// means "up to the newest message".
	MinID int64
	MaxID int64
	// Reverse yields messages in ascending ID order.
	Reverse bool
	// WaitTime overrides the source's inter-request pacing in seconds.
	// Negative means source default.
	WaitTime float64
}
