// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mrcLog

import (
	"io"
	"os"
	"strings"
	"testing"
)

// TestSub tests the propagation of sub module names.
func TestSub(t *testing.T) {
	for _, test := range []struct {
		existing string
		new      string
		want     string
	}{
		{
			// Empty names
			existing: "",
			new:      "",
			want:     "",
		},
		{
			// No new name
			existing: "existing",
			new:      "",
			want:     "existing",
		},
		{
			// No existing name
			existing: "",
			new:      "new",
			want:     "new",
		},
		{
			// Both existing and new
			existing: "existing",
			new:      "new",
			want:     "existing/new",
		},
	} {
		if got := sub(test.existing, test.new); got != test.want {
			t.Errorf("sub(%q, %q) = %q, want %q", test.existing, test.new, got, test.want)
		}
	}
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() = %v, need nil error", err)
	}
	old := os.Stdout
	os.Stdout = w
	defer func() {
		os.Stdout = old
	}()
	fn()
	w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("io.ReadAll(_) = %v, need nil error", err)
	}
	return string(data)
}

// TestStdoutLevelFilter ensures that the minimum level of a stdout logger
// is respected.
func TestStdoutLevelFilter(t *testing.T) {
	out := captureStdout(t, func() {
		l := Stdout("Main", InfoLevel, false)
		l.Debugf("debug msg")
		l.Infof("info msg")
		l.Warnf("warn msg")
		l.Errorf("error msg")
	})
	if strings.Contains(out, "debug msg") {
		t.Errorf("output %q: unexpected DEBUG entry", out)
	}
	for _, want := range []string{
		"[Main " + InfoLevel + "] info msg",
		"[Main " + WarnLevel + "] warn msg",
		"[Main " + ErrorLevel + "] error msg",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q: missing %q", out, want)
		}
	}
}

// TestStdoutSubMods tests that module names propagate into stdout log lines.
func TestStdoutSubMods(t *testing.T) {
	out := captureStdout(t, func() {
		l := Stdout("Main", DebugLevel, false)
		l.Sub("Archive").Sub("Query").Infof("from the query layer")
	})
	if !strings.Contains(out, "[Main/Archive/Query "+InfoLevel+"] from the query layer") {
		t.Errorf("output %q: missing sub module line", out)
	}
}

// TestStdoutColor checks that color mode wraps lines in ANSI escapes and
// plain mode does not.
func TestStdoutColor(t *testing.T) {
	colored := captureStdout(t, func() {
		Stdout("Main", InfoLevel, true).Warnf("colorful")
	})
	if !strings.Contains(colored, "\033[33m") || !strings.Contains(colored, "\033[0m") {
		t.Errorf("output %q: missing warn color escapes", colored)
	}
	plain := captureStdout(t, func() {
		Stdout("Main", InfoLevel, false).Warnf("plain")
	})
	if strings.Contains(plain, "\033[") {
		t.Errorf("output %q: unexpected color escapes", plain)
	}
}
