// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package types contains the value types shared by the mediarc packages.
package types

// FileType is the broad category of a downloadable file. It decides which
// subfolder the file lands in and how the archive labels the record.
type FileType int

const (
	FileTypeOther FileType = iota
	FileTypeImage
	FileTypeVideo
)

// Subfolder returns the per-type directory the file is stored under.
// Files of unknown type go directly into the chat directory.
func (ft FileType) Subfolder() string {
	switch ft {
	case FileTypeImage:
		return "Photo"
	case FileTypeVideo:
		return "Video"
	default:
		return ""
	}
}

// ArchiveLabel returns the type string stored in archive records.
func (ft FileType) ArchiveLabel() string {
	switch ft {
	case FileTypeImage:
		return "images"
	case FileTypeVideo:
		return "videos"
	default:
		return "files"
	}
}

func (ft FileType) String() string {
	switch ft {
	case FileTypeImage:
		return "image"
	case FileTypeVideo:
		return "video"
	default:
		return "other"
	}
}
