// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
)

// config holds the runtime settings of the mediarc binary. Values are
// applied in three layers: defaults, then an optional JSON config file,
// then command-line flags.
type config struct {
	ArchiveURL      string `json:"archive"`
	DownloadPath    string `json:"download_path"`
	Workers         int    `json:"download_threads"`
	Categorize      bool   `json:"categorize"`
	Overwrite       bool   `json:"overwrite"`
	ThumbsOnly      bool   `json:"thumbs_only"`
	AlwaysWriteMeta bool   `json:"always_write_meta"`
	Reverse         bool   `json:"reverse_download"`
	SingleURL       bool   `json:"single_url"`
	PlainLog        bool   `json:"plain_log"`
	Debug           bool   `json:"debug"`

	Export   string `json:"export"`
	Worklist string `json:"-"`
	URLs     []string
}

func defaultConfig() *config {
	return &config{
		ArchiveURL:   "sqlite::memory:",
		DownloadPath: ".",
		Workers:      8,
		Categorize:   true,
		Overwrite:    true,
	}
}

func loadConfig(args []string) (*config, error) {
	cfg := defaultConfig()

	// The config file path has to be known before the main flag pass, so
	// scan for it first. A FlagSet can't do this: it stops at the first
	// flag it doesn't know about.
	var configPath string
	for i, arg := range args {
		switch {
		case arg == "-c" || arg == "--c":
			if i+1 < len(args) {
				configPath = args[i+1]
			}
		case strings.HasPrefix(arg, "-c="):
			configPath = strings.TrimPrefix(arg, "-c=")
		case strings.HasPrefix(arg, "--c="):
			configPath = strings.TrimPrefix(arg, "--c=")
		}
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err = json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	fs := flag.NewFlagSet("mediarc", flag.ExitOnError)
	fs.String("c", "", "load config from `FILE`")
	fs.StringVar(&cfg.ArchiveURL, "a", cfg.ArchiveURL, "archive `URL` ({sqlite,postgres,mysql}://...)")
	fs.StringVar(&cfg.DownloadPath, "p", cfg.DownloadPath, "download `PATH`")
	fs.IntVar(&cfg.Workers, "t", cfg.Workers, "download threads")
	fs.StringVar(&cfg.Worklist, "f", cfg.Worklist, "download URLs from `FILE`")
	fs.StringVar(&cfg.Export, "e", cfg.Export, "chat export JSON `FILE` to use as the message source")
	fs.BoolVar(&cfg.Categorize, "categorize", cfg.Categorize, "categorize downloads by chat username/id")
	fs.BoolVar(&cfg.Overwrite, "overwrite", cfg.Overwrite, "overwrite downloaded files")
	fs.BoolVar(&cfg.ThumbsOnly, "thumbs-only", cfg.ThumbsOnly, "download only thumbnails on videos")
	fs.BoolVar(&cfg.AlwaysWriteMeta, "meta-always", cfg.AlwaysWriteMeta, "always write meta even if download fails")
	fs.BoolVar(&cfg.Reverse, "reverse-download", cfg.Reverse, "download URL(s) in ascending order")
	fs.BoolVar(&cfg.SingleURL, "single-url", cfg.SingleURL, "only fetch a single message per URL")
	fs.BoolVar(&cfg.PlainLog, "plain-log", cfg.PlainLog, "log plain colored lines to stdout instead of structured output")
	fs.BoolVar(&cfg.Debug, "v", cfg.Debug, "enable debug log")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.URLs = fs.Args()
	return cfg, nil
}
