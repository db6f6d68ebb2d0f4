// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mediarc

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"go.mau.fi/mediarc/archive"
	"go.mau.fi/mediarc/input"
	"go.mau.fi/mediarc/types"
	mrcLog "go.mau.fi/mediarc/util/log"
)

// Config controls one Downloader.
type Config struct {
	// DownloadPath is the root directory for downloads. Defaults to the
	// current directory.
	DownloadPath string
	// Workers bounds the number of concurrently in-flight tasks.
	Workers int
	// Categorize namespaces downloads per chat.
	Categorize bool
	// Overwrite re-downloads files whose target path already exists.
	Overwrite bool
	// ThumbsOnly downloads only thumbnails for video content.
	ThumbsOnly bool
	// AlwaysWriteMeta writes the metadata sidecar even for skipped items.
	AlwaysWriteMeta bool
	// Reverse downloads ranges in ascending message ID order.
	Reverse bool
	// SingleURL fetches exactly one message per URL instead of the range
	// starting at it.
	SingleURL bool
	// WaitTime overrides the source's inter-request pacing in seconds.
	// Negative means source default; zero is meaningful (takeout-style
	// sessions are not rate limited).
	WaitTime float64
	// PostDownload, when set, runs after each successful transfer.
	PostDownload func(ctx context.Context, task *Task)
}

// Downloader drives messages through validation, dedup, transfer and
// archival with bounded parallelism.
type Downloader struct {
	source   Source
	archive  archive.Archive
	resolver Resolver
	cfg      Config
	log      mrcLog.Logger
	entities *entityCache
	runID    string

	results  chan *Result
	inFlight int
	onResult func(*Result)
}

// NewDownloader wires a Downloader. The archive must already be open; the
// Downloader calls Prepare on it when a run starts.
func NewDownloader(source Source, arc archive.Archive, cfg Config, log mrcLog.Logger) (*Downloader, error) {
	if source == nil {
		return nil, ErrNoSource
	}
	if arc == nil {
		return nil, ErrNoArchive
	}
	if log == nil {
		log = mrcLog.Noop
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "."
	}
	return &Downloader{
		source:  source,
		archive: arc,
		resolver: Resolver{
			Root:       cfg.DownloadPath,
			Categorize: cfg.Categorize,
			ThumbsOnly: cfg.ThumbsOnly,
		},
		cfg:      cfg,
		log:      log,
		entities: newEntityCache(source),
		runID:    uuid.NewString(),
		results:  make(chan *Result, cfg.Workers),
	}, nil
}

// RunURLs processes a list of parsed message URLs. Unless SingleURL is set,
// each URL selects the range from its message ID to the newest message.
func (dl *Downloader) RunURLs(ctx context.Context, urls []URLRef) error {
	if err := dl.archive.Prepare(ctx); err != nil {
		return fmt.Errorf("failed to prepare archive: %w", err)
	}
	defer dl.drain(ctx)
	for _, ref := range urls {
		entity, err := dl.entities.Resolve(ctx, ref.Entity)
		if err != nil {
			dl.log.Errorf("Failed to resolve %q: %v", ref.Entity, err)
			continue
		}
		var sel types.Selector
		if dl.cfg.SingleURL {
			sel = types.Selector{IDs: []int64{ref.MessageID}, WaitTime: dl.cfg.WaitTime}
		} else {
			sel = types.Selector{MinID: ref.MessageID - 1, Reverse: dl.cfg.Reverse, WaitTime: dl.cfg.WaitTime}
		}
		if err = dl.iterate(ctx, entity, sel, 0); err != nil {
			return err
		}
	}
	return nil
}

// IDRange selects messages of one entity by ID. EndID nil means "exactly
// StartID"; zero means "from StartID to the newest message"; anything else
// is an exclusive (StartID, EndID) range.
type IDRange struct {
	StartID int64
	EndID   *int64
}

// RunRanges processes ID ranges against a single entity.
func (dl *Downloader) RunRanges(ctx context.Context, identifier string, ranges []IDRange) error {
	if err := dl.archive.Prepare(ctx); err != nil {
		return fmt.Errorf("failed to prepare archive: %w", err)
	}
	defer dl.drain(ctx)
	entity, err := dl.entities.Resolve(ctx, identifier)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", identifier, err)
	}
	for _, rng := range ranges {
		var sel types.Selector
		if rng.EndID == nil {
			sel = types.Selector{IDs: []int64{rng.StartID}, WaitTime: dl.cfg.WaitTime}
		} else {
			sel = types.Selector{MinID: rng.StartID, MaxID: *rng.EndID, Reverse: dl.cfg.Reverse, WaitTime: dl.cfg.WaitTime}
		}
		if err = dl.iterate(ctx, entity, sel, 0); err != nil {
			return err
		}
	}
	return nil
}

// RunFile processes a worklist ledger: each consumable line holds one
// message URL. Lines are annotated as their tasks resolve and the ledger is
// flushed back once at the end, whatever happened in between.
func (dl *Downloader) RunFile(ctx context.Context, ledger *input.File) error {
	if err := dl.archive.Prepare(ctx); err != nil {
		return fmt.Errorf("failed to prepare archive: %w", err)
	}
	dl.onResult = func(r *Result) {
		if r.Task == nil || r.Task.Line == 0 {
			return
		}
		switch r.Outcome {
		case OutcomeSuccess:
			ledger.SetStatus(r.Task.Line, "# %s")
		case OutcomeFailed:
			ledger.SetStatus(r.Task.Line, "%s # error")
		}
	}
	defer func() {
		dl.drain(ctx)
		dl.onResult = nil
		if err := ledger.Flush(); err != nil {
			dl.log.Errorf("Failed to flush worklist: %v", err)
		}
	}()
	for _, line := range ledger.Entries() {
		ref, err := ParseURL(line.Text)
		if err != nil {
			dl.log.Warnf("Ignoring line %d: %v", line.Num, err)
			continue
		}
		entity, err := dl.entities.Resolve(ctx, ref.Entity)
		if err != nil {
			dl.log.Errorf("Failed to resolve %q: %v", ref.Entity, err)
			ledger.SetStatus(line.Num, "##%s (entity error)")
			continue
		}
		sel := types.Selector{IDs: []int64{ref.MessageID}, WaitTime: dl.cfg.WaitTime}
		if err = dl.iterate(ctx, entity, sel, line.Num); err != nil {
			return err
		}
	}
	return nil
}

// iterate walks one message selection and submits a task per message.
func (dl *Downloader) iterate(ctx context.Context, entity *types.Entity, sel types.Selector, line int) error {
	iter, err := dl.source.IterMessages(ctx, entity, sel)
	if err != nil {
		return fmt.Errorf("failed to iterate %s: %w", entity, err)
	}
	for iter.Next(ctx) {
		if err = dl.submit(ctx, iter.Value(), entity, line); err != nil {
			return err
		}
	}
	if err = iter.Err(); err != nil {
		return fmt.Errorf("message iteration over %s failed: %w", entity, err)
	}
	return nil
}

// submit adds one in-flight task. While the in-flight set is below the
// worker limit this never blocks; once the limit is reached it waits for at
// least one completion and then drains everything that has finished.
func (dl *Downloader) submit(ctx context.Context, msg *types.Message, entity *types.Entity, line int) error {
	task := &Task{Message: msg, Entity: entity, Line: line}
	dl.inFlight++
	go func() {
		dl.results <- dl.process(ctx, task)
	}()
	if dl.inFlight >= dl.cfg.Workers {
		dl.handleResult(ctx, <-dl.results)
		dl.inFlight--
		for {
			select {
			case r := <-dl.results:
				dl.handleResult(ctx, r)
				dl.inFlight--
			default:
				return ctx.Err()
			}
		}
	}
	return ctx.Err()
}

// drain waits for all remaining in-flight tasks. There is no forced
// cancellation: every task resolves on its own.
func (dl *Downloader) drain(ctx context.Context) {
	for dl.inFlight > 0 {
		dl.handleResult(ctx, <-dl.results)
		dl.inFlight--
	}
}

// handleResult folds one task outcome into the archive, the metadata
// sidecars and the input ledger.
func (dl *Downloader) handleResult(ctx context.Context, r *Result) {
	task := r.Task
	switch {
	case r.Outcome == OutcomeSkipped && r.Skip == SkipAlreadyExists:
		// The file landed on disk in an earlier run whose finalize step
		// may have been interrupted, so catch up the archive stamp.
		if err := dl.archive.MarkComplete(ctx, task.File.ID); err != nil {
			dl.log.Warnf("%s: failed to mark complete: %v", task.Repr, err)
		}
		dl.maybeWriteMeta(task)
	case r.Outcome == OutcomeSkipped && (r.Skip == SkipDuplicateID || r.Skip == SkipDuplicateContent):
		dl.maybeWriteMeta(task)
	case r.Outcome == OutcomeFailed:
		dl.log.Errorf("%s: download failed: %v", task.Repr, r.Err)
	}
	if dl.onResult != nil {
		dl.onResult(r)
	}
}

func (dl *Downloader) maybeWriteMeta(task *Task) {
	if !dl.cfg.AlwaysWriteMeta {
		return
	}
	if err := dl.writeMeta(task.Message, task.Entity, task.MetaPath); err != nil {
		dl.log.Warnf("%s: failed to write metadata: %v", task.Repr, err)
	}
}

// process runs one task through validation, dedup, transfer and archival.
// All skip and duplicate conditions come back as results; only transfer and
// storage problems are carried as errors inside a failed result.
func (dl *Downloader) process(ctx context.Context, task *Task) *Result {
	msg, entity := task.Message, task.Entity
	task.Repr = msg.SourceString(entity)
	if msg.File == nil {
		dl.log.Debugf("%s: message does not have any file", task.Repr)
		return &Result{Task: task, Outcome: OutcomeSkipped, Skip: SkipNoFile}
	}
	task.File = msg.File
	task.TargetPath, task.MetaPath = dl.resolver.Resolve(
		msg.ChatID, entity.Username, msg.ID, task.File.Name, task.File.Ext, msg.ReplyID, task.File.Type)

	if !dl.cfg.Overwrite {
		if _, err := os.Stat(task.TargetPath); err == nil {
			dl.log.Debugf("%s: target file already exists, skipping download", task.Repr)
			return &Result{Task: task, Outcome: OutcomeSkipped, Skip: SkipAlreadyExists}
		}
	}

	prior, err := dl.archive.CheckID(ctx, task.File.ID)
	if err != nil {
		return &Result{Task: task, Outcome: OutcomeFailed, Err: err}
	}
	if prior != "" {
		dl.log.Debugf("%s: duplicate file id with message %s, skipping download", task.Repr, prior)
		return &Result{Task: task, Outcome: OutcomeSkipped, Skip: SkipDuplicateID}
	}

	task.Hash = dl.fileHash(ctx, task)

	match, err := dl.archive.CheckAttributes(ctx, task.Hash,
		task.File.Width, task.File.Height, task.File.Size, task.File.Duration)
	if err != nil {
		return &Result{Task: task, Outcome: OutcomeFailed, Err: err}
	}
	if match != nil {
		if bytes.Equal(match.Hash, task.Hash) {
			dl.log.Debugf("%s: duplicate file hash with message %s, skipping download", task.Repr, match.Msg)
		} else {
			dl.log.Debugf("%s: duplicate attributes with message %s, skipping download", task.Repr, match.Msg)
		}
		return &Result{Task: task, Outcome: OutcomeSkipped, Skip: SkipDuplicateContent}
	}

	err = dl.archive.Upsert(ctx, &archive.Record{
		FileID:       task.File.ID,
		Hash:         task.Hash,
		Msg:          task.Repr,
		MsgID:        msg.ID,
		ChatID:       msg.ChatID,
		ChatUsername: entity.Username,
		Width:        task.File.Width,
		Height:       task.File.Height,
		Size:         task.File.Size,
		Duration:     task.File.Duration,
		Type:         task.File.Type.ArchiveLabel(),
	})
	if err != nil {
		return &Result{Task: task, Outcome: OutcomeFailed, Err: err}
	}

	if err = dl.transfer(ctx, task); err != nil {
		// The pending archive row stays behind on purpose: it never
		// matches dedup checks, so a later run retries this item.
		return &Result{Task: task, Outcome: OutcomeFailed, Err: err}
	}
	if dl.cfg.PostDownload != nil {
		dl.cfg.PostDownload(ctx, task)
	}
	return &Result{Task: task, Outcome: OutcomeSuccess}
}

// transfer streams the file to a part file, then atomically finalizes it:
// rename, metadata sidecar, archive completion stamp. A failed transfer
// leaves no partial file behind.
func (dl *Downloader) transfer(ctx context.Context, task *Task) error {
	dl.log.Debugf("%s: downloading as %s", task.Repr, filepath.Base(task.TargetPath))
	if err := os.MkdirAll(filepath.Dir(task.TargetPath), 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	partFile := task.TargetPath + ".part"
	if err := dl.source.DownloadFile(ctx, task.Message, partFile, dl.cfg.ThumbsOnly); err != nil {
		if removeErr := os.Remove(partFile); removeErr == nil {
			dl.log.Debugf("%s: incomplete download, part file deleted", task.Repr)
		} else if !os.IsNotExist(removeErr) {
			dl.log.Warnf("%s: failed to delete part file: %v", task.Repr, removeErr)
		}
		return fmt.Errorf("failed to download file: %w", err)
	}
	if err := os.Rename(partFile, task.TargetPath); err != nil {
		os.Remove(partFile)
		return fmt.Errorf("failed to finalize file: %w", err)
	}
	if err := dl.writeMeta(task.Message, task.Entity, task.MetaPath); err != nil {
		return err
	}
	if err := dl.archive.MarkComplete(ctx, task.File.ID); err != nil {
		return fmt.Errorf("failed to mark complete: %w", err)
	}
	dl.log.Infof("%s: file downloaded", task.Repr)
	return nil
}

// fileHash obtains the content hash, refetching the message once if the
// file reference has expired. When hashing still fails, it degrades to a
// hash derived from the file's own identifier so dedup keeps working on the
// identity axis instead of crashing the task.
func (dl *Downloader) fileHash(ctx context.Context, task *Task) []byte {
	hash, err := dl.source.FileHash(ctx, task.Message)
	if err == nil {
		return hash
	}
	if errors.Is(err, ErrReferenceExpired) {
		var refreshed *types.Message
		if refreshed, err = dl.source.RefetchMessage(ctx, task.Message); err == nil && refreshed.File != nil {
			task.Message = refreshed
			task.File = refreshed.File
			if hash, err = dl.source.FileHash(ctx, refreshed); err == nil {
				return hash
			}
		}
	}
	dl.log.Warnf("%s: unable to get file hash: %v", task.Repr, err)
	return idHash(task.File.ID)
}

// idHash is the degraded content hash: BLAKE2b-512 over the big-endian
// 8-byte file identifier.
func idHash(fileID int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(fileID))
	sum := blake2b.Sum512(buf[:])
	return sum[:]
}
