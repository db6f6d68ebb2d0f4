// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mau.fi/mediarc"
)

func exact(id int64) mediarc.IDRange {
	return mediarc.IDRange{StartID: id}
}

func span(start, end int64) mediarc.IDRange {
	return mediarc.IDRange{StartID: start, EndID: &end}
}

func TestParseRanges(t *testing.T) {
	tests := []struct {
		input string
		want  []mediarc.IDRange
	}{
		{"17", []mediarc.IDRange{exact(17)}},
		{"3-24", []mediarc.IDRange{span(2, 25)}},
		{"24-3", []mediarc.IDRange{span(2, 25)}},
		{"100-", []mediarc.IDRange{span(99, 0)}},
		{"-50", []mediarc.IDRange{span(0, 51)}},
		{"", []mediarc.IDRange{span(0, 0)}},
		{"17, 3-24,100-", []mediarc.IDRange{exact(17), span(2, 25), span(99, 0)}},
		{"17,,", []mediarc.IDRange{exact(17)}},
	}
	for _, tt := range tests {
		got, err := parseRanges(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	for _, bad := range []string{"abc", "3-x", "x-3", "1-2-3"} {
		_, err := parseRanges(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadConfig_Layers(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"archive": "postgres://localhost/mediarc",
		"download_threads": 4,
		"overwrite": false
	}`), 0o644))

	// Flags win over the config file, the file wins over defaults, and -c
	// is honored regardless of its position.
	cfg, err := loadConfig([]string{"-t", "2", "-c", configPath, "-plain-log", "t.me/somechannel/1"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/mediarc", cfg.ArchiveURL)
	assert.Equal(t, 2, cfg.Workers)
	assert.False(t, cfg.Overwrite)
	assert.True(t, cfg.Categorize)
	assert.True(t, cfg.PlainLog)
	assert.Equal(t, []string{"t.me/somechannel/1"}, cfg.URLs)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite::memory:", cfg.ArchiveURL)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Overwrite)
	assert.Empty(t, cfg.URLs)
}
