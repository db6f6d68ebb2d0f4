// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mediarc

import (
	"go.mau.fi/mediarc/types"
)

// Outcome is the terminal state of a download task. Skip and duplicate
// conditions are values, not errors: only the transfer itself can fail.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SkipReason says why a task ended in OutcomeSkipped.
type SkipReason int

const (
	SkipNone SkipReason = iota
	// SkipNoFile: the message carries no downloadable content.
	SkipNoFile
	// SkipAlreadyExists: the target path is already on disk and
	// overwriting is disabled.
	SkipAlreadyExists
	// SkipDuplicateID: a completed archive record exists for this file ID.
	SkipDuplicateID
	// SkipDuplicateContent: a completed archive record matches by content
	// hash or by the (width, height, size, duration) tuple.
	SkipDuplicateContent
)

func (r SkipReason) String() string {
	switch r {
	case SkipNoFile:
		return "no-file"
	case SkipAlreadyExists:
		return "already-exists"
	case SkipDuplicateID:
		return "duplicate-id"
	case SkipDuplicateContent:
		return "duplicate-content"
	default:
		return "none"
	}
}

// Task is the ephemeral per-message unit of work. It is created when a
// message passes validation and discarded once its result has been folded
// into the archive and the input ledger.
type Task struct {
	Message    *types.Message
	Entity     *types.Entity
	File       *types.FileInfo
	Hash       []byte
	TargetPath string
	MetaPath   string
	Repr       string

	// Line is the 1-based input ledger line this task came from, zero for
	// URL- and range-driven runs.
	Line int
}

// Result is the folded outcome of one task.
type Result struct {
	Task    *Task
	Outcome Outcome
	Skip    SkipReason
	Err     error
}
