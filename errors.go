// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mediarc

import (
	"errors"
)

// Errors the Source collaborator is expected to return.
var (
	// ErrReferenceExpired is returned by Source.FileHash when the file
	// reference inside the message has gone stale and the message must be
	// refetched before the content can be addressed again.
	ErrReferenceExpired = errors.New("file reference expired")

	// ErrNoFile is returned by Source.RefetchMessage when the refreshed
	// message no longer carries a file.
	ErrNoFile = errors.New("message does not have any file")
)

// Errors returned by the downloader itself.
var (
	ErrNoSource   = errors.New("downloader has no source")
	ErrNoArchive  = errors.New("downloader has no archive")
	ErrInvalidURL = errors.New("unrecognized message URL")
)
