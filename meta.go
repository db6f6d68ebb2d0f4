// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mediarc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.mau.fi/mediarc/types"
)

// metaSidecar is the JSON document written next to each download.
type metaSidecar struct {
	RunID    string          `json:"run_id,omitempty"`
	Message  *types.Message  `json:"message"`
	Entity   *types.Entity   `json:"entity"`
	File     *types.FileInfo `json:"file"`
	Hashtags []string        `json:"hashtags"`
	SavedAt  time.Time       `json:"saved_at"`
}

// writeMeta writes the metadata sidecar for a message, creating the Meta
// directory as needed. Hashtags are deduplicated and sorted
// case-insensitively.
func (dl *Downloader) writeMeta(msg *types.Message, entity *types.Entity, metaPath string) error {
	tags := make([]string, 0, len(msg.Hashtags))
	seen := make(map[string]struct{}, len(msg.Hashtags))
	for _, tag := range msg.Hashtags {
		if _, dup := seen[tag]; !dup {
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		return strings.ToLower(tags[i]) < strings.ToLower(tags[j])
	})
	doc := metaSidecar{
		RunID:    dl.runID,
		Message:  msg,
		Entity:   entity,
		File:     msg.File,
		Hashtags: tags,
		SavedAt:  time.Now().UTC(),
	}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(metaPath), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}
	if err = os.WriteFile(metaPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}
