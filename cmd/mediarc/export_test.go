// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mau.fi/mediarc/types"
)

const testExport = `{
	"id": 1234567,
	"username": "somechannel",
	"name": "Some Channel",
	"messages": [
		{"id": 1, "text": "a photo #cats", "hashtags": ["cats"],
		 "file": {"id": 11, "ext": ".jpg", "type": "photo", "path": "media/one.jpg", "width": 640, "height": 480}},
		{"id": 2, "text": "no media"},
		{"id": 3, "text": "a document",
		 "file": {"id": 13, "name": "notes.txt", "ext": ".txt", "type": "document", "path": "media/notes.txt"}},
		{"id": 4, "text": "a video",
		 "file": {"id": 14, "ext": ".mp4", "type": "video", "path": "media/clip.mp4", "thumb": "media/clip_thumb.webp"}},
		{"id": 5, "text": "a video without preview",
		 "file": {"id": 15, "ext": ".mp4", "type": "video", "path": "media/bare.mp4"}}
	]
}`

func writeExport(t *testing.T) *exportSource {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "media"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "one.jpg"), []byte("jpeg bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "notes.txt"), []byte("some notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "clip.mp4"), []byte("video bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "clip_thumb.webp"), []byte("webp bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "bare.mp4"), []byte("more video bytes"), 0o644))
	exportPath := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(exportPath, []byte(testExport), 0o644))
	src, err := openExport(exportPath)
	require.NoError(t, err)
	return src
}

func TestExportSource_ResolveEntity(t *testing.T) {
	src := writeExport(t)
	for _, ident := range []string{"somechannel", "1234567", "t.me/somechannel", "https://t.me/somechannel"} {
		entity, err := src.ResolveEntity(context.Background(), ident)
		require.NoError(t, err, ident)
		assert.Equal(t, int64(1234567), entity.ID)
		assert.Equal(t, "somechannel", entity.Username)
	}
	_, err := src.ResolveEntity(context.Background(), "otherchannel")
	assert.Error(t, err)
}

func TestExportSource_IterMessages(t *testing.T) {
	ctx := context.Background()
	src := writeExport(t)

	collect := func(sel types.Selector) []int64 {
		iter, err := src.IterMessages(ctx, src.entity, sel)
		require.NoError(t, err)
		var ids []int64
		for iter.Next(ctx) {
			ids = append(ids, iter.Value().ID)
		}
		require.NoError(t, iter.Err())
		return ids
	}

	// Default order is newest first.
	assert.Equal(t, []int64{5, 4, 3, 2, 1}, collect(types.Selector{}))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, collect(types.Selector{Reverse: true}))
	assert.Equal(t, []int64{5, 4, 3, 2}, collect(types.Selector{MinID: 1}))
	assert.Equal(t, []int64{1}, collect(types.Selector{MaxID: 2}))
	assert.Equal(t, []int64{2}, collect(types.Selector{IDs: []int64{2}}))
}

func TestExportSource_FileTypes(t *testing.T) {
	ctx := context.Background()
	src := writeExport(t)
	iter, err := src.IterMessages(ctx, src.entity, types.Selector{Reverse: true})
	require.NoError(t, err)

	require.True(t, iter.Next(ctx))
	photo := iter.Value()
	require.NotNil(t, photo.File)
	assert.Equal(t, types.FileTypeImage, photo.File.Type)
	require.NotNil(t, photo.File.Width)
	assert.Equal(t, 640, *photo.File.Width)

	require.True(t, iter.Next(ctx))
	assert.Nil(t, iter.Value().File)

	require.True(t, iter.Next(ctx))
	doc := iter.Value()
	require.NotNil(t, doc.File)
	assert.Equal(t, types.FileTypeOther, doc.File.Type)
	assert.Equal(t, "notes.txt", doc.File.Name)
}

func TestExportSource_HashAndDownload(t *testing.T) {
	ctx := context.Background()
	src := writeExport(t)
	iter, err := src.IterMessages(ctx, src.entity, types.Selector{IDs: []int64{1}})
	require.NoError(t, err)
	require.True(t, iter.Next(ctx))
	msg := iter.Value()

	hash, err := src.FileHash(ctx, msg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// Hashing the same bytes twice gives the same result.
	again, err := src.FileHash(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	dest := filepath.Join(t.TempDir(), "one.jpg")
	require.NoError(t, src.DownloadFile(ctx, msg, dest, false))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestExportSource_Thumbnails(t *testing.T) {
	ctx := context.Background()
	src := writeExport(t)
	dir := t.TempDir()

	get := func(id int64) *types.Message {
		iter, err := src.IterMessages(ctx, src.entity, types.Selector{IDs: []int64{id}})
		require.NoError(t, err)
		require.True(t, iter.Next(ctx))
		return iter.Value()
	}

	// Video with a thumbnail entry: the thumbnail bytes are copied.
	dest := filepath.Join(dir, "clip.webp")
	require.NoError(t, src.DownloadFile(ctx, get(4), dest, true))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "webp bytes", string(data))

	// Video without one: refuse rather than mislabel the full video.
	err = src.DownloadFile(ctx, get(5), filepath.Join(dir, "bare.webp"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no thumbnail")
	assert.NoFileExists(t, filepath.Join(dir, "bare.webp"))

	// An image is its own preview.
	dest = filepath.Join(dir, "one.jpg")
	require.NoError(t, src.DownloadFile(ctx, get(1), dest, true))
	data, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}
