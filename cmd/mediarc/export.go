// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.mau.fi/util/fallocate"
	"golang.org/x/crypto/blake2b"

	"go.mau.fi/mediarc"
	"go.mau.fi/mediarc/types"
)

// exportSource implements mediarc.Source over a local chat export: a JSON
// document listing messages and the relative paths of their media files.
// It stands in for the network protocol client, which lives in a separate
// project.
type exportSource struct {
	dir    string
	entity *types.Entity
	msgs   []*types.Message
	paths  map[int64]string // file id -> path relative to dir
	thumbs map[int64]string // file id -> thumbnail path, if the export has one
}

type exportDocument struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Name     string          `json:"name"`
	Messages []exportMessage `json:"messages"`
}

type exportMessage struct {
	ID       int64    `json:"id"`
	Text     string   `json:"text"`
	Hashtags []string `json:"hashtags"`
	ReplyID  *int     `json:"reply_id"`
	File     *struct {
		ID       int64    `json:"id"`
		Name     string   `json:"name"`
		Ext      string   `json:"ext"`
		Type     string   `json:"type"`
		Path     string   `json:"path"`
		Thumb    string   `json:"thumb"`
		Width    *int     `json:"width"`
		Height   *int     `json:"height"`
		Size     *int64   `json:"size"`
		Duration *float64 `json:"duration"`
	} `json:"file"`
}

func openExport(path string) (*exportSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	var doc exportDocument
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}
	src := &exportSource{
		dir: filepath.Dir(path),
		entity: &types.Entity{
			ID:       doc.ID,
			Username: doc.Username,
			Name:     doc.Name,
			Class:    "Export",
		},
		paths:  make(map[int64]string),
		thumbs: make(map[int64]string),
	}
	for _, em := range doc.Messages {
		msg := &types.Message{
			ID:       em.ID,
			ChatID:   doc.ID,
			Text:     em.Text,
			Hashtags: em.Hashtags,
			ReplyID:  em.ReplyID,
		}
		if em.File != nil {
			msg.File = &types.FileInfo{
				ID:       em.File.ID,
				Name:     em.File.Name,
				Ext:      em.File.Ext,
				Type:     parseFileType(em.File.Type),
				Width:    em.File.Width,
				Height:   em.File.Height,
				Size:     em.File.Size,
				Duration: em.File.Duration,
			}
			src.paths[em.File.ID] = em.File.Path
			if em.File.Thumb != "" {
				src.thumbs[em.File.ID] = em.File.Thumb
			}
		}
		src.msgs = append(src.msgs, msg)
	}
	return src, nil
}

func parseFileType(s string) types.FileType {
	switch s {
	case "image", "photo":
		return types.FileTypeImage
	case "video":
		return types.FileTypeVideo
	default:
		return types.FileTypeOther
	}
}

func (s *exportSource) ResolveEntity(_ context.Context, identifier string) (*types.Entity, error) {
	identifier = strings.TrimPrefix(strings.TrimPrefix(identifier, "https://"), "http://")
	identifier = strings.TrimPrefix(identifier, "t.me/")
	if identifier == s.entity.Username || identifier == strconv.FormatInt(s.entity.ID, 10) {
		return s.entity, nil
	}
	return nil, fmt.Errorf("entity %q not found in export", identifier)
}

func (s *exportSource) IterMessages(_ context.Context, entity *types.Entity, sel types.Selector) (mediarc.MessageIter, error) {
	if entity.ID != s.entity.ID {
		return nil, fmt.Errorf("entity %s not found in export", entity)
	}
	var selected []*types.Message
	for _, msg := range s.msgs {
		if len(sel.IDs) > 0 {
			if slices.Contains(sel.IDs, msg.ID) {
				selected = append(selected, msg)
			}
		} else if msg.ID > sel.MinID && (sel.MaxID == 0 || msg.ID < sel.MaxID) {
			selected = append(selected, msg)
		}
	}
	if len(sel.IDs) == 0 && !sel.Reverse {
		slices.Reverse(selected)
	}
	return &sliceIter{msgs: selected}, nil
}

type sliceIter struct {
	msgs []*types.Message
	cur  *types.Message
}

func (it *sliceIter) Next(ctx context.Context) bool {
	if ctx.Err() != nil || len(it.msgs) == 0 {
		return false
	}
	it.cur, it.msgs = it.msgs[0], it.msgs[1:]
	return true
}

func (it *sliceIter) Value() *types.Message { return it.cur }
func (it *sliceIter) Err() error            { return nil }

func (s *exportSource) FileHash(_ context.Context, msg *types.Message) ([]byte, error) {
	f, err := os.Open(s.filePath(msg))
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()
	hasher, _ := blake2b.New512(nil)
	if _, err = io.Copy(hasher, f); err != nil {
		return nil, fmt.Errorf("failed to hash export file: %w", err)
	}
	return hasher.Sum(nil), nil
}

// RefetchMessage is a no-op for exports: local references never expire.
func (s *exportSource) RefetchMessage(_ context.Context, msg *types.Message) (*types.Message, error) {
	return msg, nil
}

// DownloadFile copies the exported file to destPath. In thumbnail mode the
// export's thumbnail entry is copied instead; a video without one is an
// error rather than full video bytes behind a thumbnail name. Images fall
// back to the image itself, which is its own preview.
func (s *exportSource) DownloadFile(_ context.Context, msg *types.Message, destPath string, thumbnail bool) error {
	srcPath := s.filePath(msg)
	if thumbnail {
		if thumb, ok := s.thumbs[msg.File.ID]; ok {
			srcPath = filepath.Join(s.dir, thumb)
		} else if msg.File.Type == types.FileTypeVideo {
			return fmt.Errorf("export has no thumbnail for file %d", msg.File.ID)
		}
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open export file: %w", err)
	}
	defer src.Close()
	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer dest.Close()
	// Size describes the full file, not the thumbnail.
	if msg.File.Size != nil && !thumbnail {
		if err = fallocate.Fallocate(dest, int(*msg.File.Size)); err != nil {
			return fmt.Errorf("failed to preallocate file: %w", err)
		}
	}
	if _, err = io.Copy(dest, src); err != nil {
		return fmt.Errorf("failed to copy export file: %w", err)
	}
	return nil
}

func (s *exportSource) filePath(msg *types.Message) string {
	return filepath.Join(s.dir, s.paths[msg.File.ID])
}
