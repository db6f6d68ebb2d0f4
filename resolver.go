// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mediarc

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.mau.fi/mediarc/types"
)

// Resolver deterministically maps message and file metadata to filesystem
// locations. It is a pure function over its configuration: no I/O, no
// hidden state, and distinct (chat, message, reply) triples always resolve
// to distinct target paths.
type Resolver struct {
	// Root is the directory downloads land under.
	Root string
	// Categorize namespaces downloads per chat, by "@username" when the
	// chat has one and by the numeric chat ID otherwise.
	Categorize bool
	// ThumbsOnly marks the run as thumbnail-only: the chat directory gets
	// a distinct suffix and video targets switch to the thumbnail format.
	ThumbsOnly bool
}

const thumbsDirSuffix = " - thumbs"

// Resolve returns the download target path and the metadata sidecar path
// for one file.
func (r *Resolver) Resolve(chatID int64, chatUsername string, messageID int64, fileName, fileExt string, replyID *int, ftype types.FileType) (targetPath, metaPath string) {
	var reply string
	if replyID != nil {
		reply = fmt.Sprintf("_%d", *replyID)
	}
	baseName := fmt.Sprintf("%d_%d%s%s", chatID, messageID, reply, fileExt)
	if ftype == types.FileTypeOther && fileName != "" {
		// Keep the id prefix so two messages sharing an original file
		// name can't resolve to the same target.
		baseName = fmt.Sprintf("%d_%d%s_%s", chatID, messageID, reply, fileName)
	}
	dir := r.Root
	if r.Categorize {
		if chatUsername != "" {
			dir = filepath.Join(dir, "@"+chatUsername)
		} else {
			dir = filepath.Join(dir, strconv.FormatInt(chatID, 10))
		}
	}
	if r.ThumbsOnly {
		dir += thumbsDirSuffix
	}
	metaPath = filepath.Join(dir, "Meta", replaceExt(baseName, ".json"))
	targetPath = filepath.Join(dir, ftype.Subfolder(), baseName)
	if r.ThumbsOnly && ftype == types.FileTypeVideo {
		targetPath = replaceExt(targetPath, ".webp")
	}
	return
}

// replaceExt swaps the final extension of name for ext, or appends ext when
// name has none.
func replaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
