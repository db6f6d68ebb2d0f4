// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package input contains the resumable line-oriented worklist used for
// file-driven download runs.
package input

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// File is a worklist loaded into memory, one entry per line, 1-indexed.
// Entries are annotated in place as their outcomes resolve and the whole
// file is flushed back once at the end of a run, preserving line order.
//
// Each entry carries its own lock so concurrent annotations of the same line
// can never interleave into a corrupt entry. Cross-line operations are
// independent.
type File struct {
	path      string
	entries   []entry
	writeLock sync.Mutex
}

type entry struct {
	lock sync.Mutex
	text string
}

// Line is one consumable worklist entry: the 1-based line number and the
// line's text with any trailing "#" comment stripped.
type Line struct {
	Num  int
	Text string
}

// Load reads the worklist at path. Every line becomes an entry, including
// blank and comment-only ones, so Flush can reproduce the file verbatim.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open worklist: %w", err)
	}
	defer f.Close()
	file := &File{path: path}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		file.entries = append(file.entries, entry{text: strings.TrimSpace(scanner.Text())})
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read worklist: %w", err)
	}
	return file, nil
}

// Len returns the total number of lines, consumable or not.
func (f *File) Len() int {
	return len(f.entries)
}

// Get returns the current text of the given 1-based line.
func (f *File) Get(num int) string {
	e := &f.entries[num-1]
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.text
}

// Set replaces the text of the given 1-based line.
func (f *File) Set(num int, text string) {
	e := &f.entries[num-1]
	e.lock.Lock()
	defer e.lock.Unlock()
	e.text = text
}

// SetStatus rewrites a line by applying a printf template to its current
// text, e.g. "# %s" to comment out a processed line or "%s # error" to tag
// a failed one. The lock is held across the read-modify-write.
func (f *File) SetStatus(num int, template string) {
	e := &f.entries[num-1]
	e.lock.Lock()
	defer e.lock.Unlock()
	e.text = fmt.Sprintf(template, e.text)
}

// Entries returns the consumable lines in order: entries whose text,
// after stripping an inline "#" comment, is non-empty. Skipped lines keep
// their raw text for Flush.
func (f *File) Entries() []Line {
	lines := make([]Line, 0, len(f.entries))
	for i := range f.entries {
		text, _, _ := strings.Cut(f.Get(i+1), "#")
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		lines = append(lines, Line{Num: i + 1, Text: text})
	}
	return lines
}

// Flush writes all entries back to the worklist file in original order.
// At most one flush runs at a time.
func (f *File) Flush() error {
	f.writeLock.Lock()
	defer f.writeLock.Unlock()
	var sb strings.Builder
	for i := range f.entries {
		sb.WriteString(f.Get(i + 1))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(f.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write worklist: %w", err)
	}
	return nil
}
