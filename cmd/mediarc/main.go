// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// The mediarc command downloads media referenced by a chat export,
// deduplicating against a persistent archive.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	// Archive backend drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"go.mau.fi/mediarc"
	"go.mau.fi/mediarc/archive"
	"go.mau.fi/mediarc/input"
	mrcLog "go.mau.fi/mediarc/util/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "mediarc:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "warning: could not load .env file:", err)
	}
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	var log mrcLog.Logger
	if cfg.PlainLog {
		logLevel := mrcLog.InfoLevel
		if cfg.Debug {
			logLevel = mrcLog.DebugLevel
		}
		log = mrcLog.Stdout("Main", logLevel, true)
	} else {
		level := zerolog.InfoLevel
		if cfg.Debug {
			level = zerolog.DebugLevel
		}
		zlog := zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.StampMilli,
		}).With().Timestamp().Logger().Level(level)
		log = mrcLog.Zerolog(zlog)
	}

	if cfg.Export == "" {
		return fmt.Errorf("no chat export given (use -e)")
	}
	source, err := openExport(cfg.Export)
	if err != nil {
		return err
	}

	ctx := context.Background()
	arc, err := archive.New(ctx, cfg.ArchiveURL, log.Sub("Archive"))
	if err != nil {
		return err
	}
	defer arc.Close()

	dl, err := mediarc.NewDownloader(source, arc, mediarc.Config{
		DownloadPath:    cfg.DownloadPath,
		Workers:         cfg.Workers,
		Categorize:      cfg.Categorize,
		Overwrite:       cfg.Overwrite,
		ThumbsOnly:      cfg.ThumbsOnly,
		AlwaysWriteMeta: cfg.AlwaysWriteMeta,
		Reverse:         cfg.Reverse,
		SingleURL:       cfg.SingleURL,
		WaitTime:        -1,
	}, log.Sub("Downloader"))
	if err != nil {
		return err
	}

	switch {
	case cfg.Worklist != "":
		ledger, err := input.Load(cfg.Worklist)
		if err != nil {
			return err
		}
		return dl.RunFile(ctx, ledger)
	case len(cfg.URLs) > 0:
		refs := make([]mediarc.URLRef, 0, len(cfg.URLs))
		for _, raw := range cfg.URLs {
			ref, err := mediarc.ParseURL(raw)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
		}
		return dl.RunURLs(ctx, refs)
	default:
		entity, ranges, err := promptRanges(os.Stdin)
		if err != nil {
			return err
		}
		return dl.RunRanges(ctx, entity, ranges)
	}
}

// promptRanges implements the interactive mode: one entity identifier and a
// comma-separated list of message IDs or ID ranges ("17", "3-24", "100-",
// "-50" or "" for everything).
func promptRanges(in *os.File) (string, []mediarc.IDRange, error) {
	reader := bufio.NewReader(in)
	fmt.Print("peer/entity id: ")
	entity, err := reader.ReadString('\n')
	if err != nil {
		return "", nil, err
	}
	entity = strings.TrimSpace(entity)
	fmt.Print("message ids: ")
	rawIDs, err := reader.ReadString('\n')
	if err != nil {
		return "", nil, err
	}
	ranges, err := parseRanges(rawIDs)
	if err != nil {
		return "", nil, err
	}
	return entity, ranges, nil
}

func parseRanges(s string) ([]mediarc.IDRange, error) {
	var ranges []mediarc.IDRange
	for _, part := range strings.Split(s, ",") {
		start, end, isRange := strings.Cut(strings.TrimSpace(part), "-")
		start, end = strings.TrimSpace(start), strings.TrimSpace(end)
		switch {
		case start == "" && end == "":
			if !isRange && len(ranges) > 0 {
				continue
			}
			ranges = append(ranges, rangeOf(0, 0))
		case isRange && end == "":
			startID, err := strconv.ParseInt(start, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid input range %q", part)
			}
			ranges = append(ranges, rangeOf(startID-1, 0))
		case isRange && start == "":
			endID, err := strconv.ParseInt(end, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid input range %q", part)
			}
			ranges = append(ranges, rangeOf(0, endID+1))
		case !isRange:
			startID, err := strconv.ParseInt(start, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid input range %q", part)
			}
			ranges = append(ranges, mediarc.IDRange{StartID: startID})
		default:
			startID, err1 := strconv.ParseInt(start, 10, 64)
			endID, err2 := strconv.ParseInt(end, 10, 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("invalid input range %q", part)
			}
			ids := []int64{startID, endID}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			ranges = append(ranges, rangeOf(ids[0]-1, ids[1]+1))
		}
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("not enough input")
	}
	return ranges, nil
}

func rangeOf(start, end int64) mediarc.IDRange {
	return mediarc.IDRange{StartID: start, EndID: &end}
}
