// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := tt.level.toSlogLevel(); got != tt.want {
			t.Errorf("Level(%d).toSlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNew_ZeroConfig(t *testing.T) {
	logger := New(Config{})
	defer logger.Close()

	if logger.slog == nil {
		t.Fatal("New(Config{}) produced nil slog logger")
	}
	// Should not panic on any level
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "testsvc",
		Quiet:   true,
	})
	logger.Info("file entry", "key", "value")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	wantName := "testsvc_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, wantName))
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "file entry") {
		t.Errorf("log file missing message, got: %s", content)
	}
	if !strings.Contains(content, `"service":"testsvc"`) {
		t.Errorf("log file missing service attribute, got: %s", content)
	}
}

func TestNew_CreatesLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	logger := New(Config{LogDir: dir, Service: "testsvc", Quiet: true})
	logger.Info("hello")
	logger.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("log directory not created: %v", err)
	}
}

func TestLogger_With(t *testing.T) {
	buffered := NewBufferedSink()
	logger := New(Config{Quiet: true, Sink: buffered, Service: "testsvc"})
	defer logger.Close()

	child := logger.With("request_id", "r-1")
	if child == logger {
		t.Fatal("With returned the same logger")
	}
	child.Info("child message")

	waitForEntries(t, buffered, 1)
	entries := buffered.Entries()
	if entries[0].Message != "child message" {
		t.Errorf("entry message = %q, want %q", entries[0].Message, "child message")
	}
}

func TestLogger_SinkReceivesEntries(t *testing.T) {
	buffered := NewBufferedSink()
	logger := New(Config{Quiet: true, Sink: buffered, Service: "testsvc"})
	defer logger.Close()

	logger.Info("exported", "count", 3)

	waitForEntries(t, buffered, 1)
	entries := buffered.Entries()
	e := entries[0]
	if e.Level != LevelInfo {
		t.Errorf("entry level = %v, want %v", e.Level, LevelInfo)
	}
	if e.Service != "testsvc" {
		t.Errorf("entry service = %q, want %q", e.Service, "testsvc")
	}
	if e.Attrs["count"] != 3 {
		t.Errorf("entry attrs = %v, want count=3", e.Attrs)
	}
}

func TestLogger_SinkRespectsLevel(t *testing.T) {
	buffered := NewBufferedSink()
	logger := New(Config{Level: LevelWarn, Quiet: true, Sink: buffered})
	defer logger.Close()

	logger.Debug("below")
	logger.Info("below")
	logger.Warn("at level")

	waitForEntries(t, buffered, 1)
	entries := buffered.Entries()
	if len(entries) != 1 {
		t.Fatalf("sink received %d entries, want 1", len(entries))
	}
	if entries[0].Message != "at level" {
		t.Errorf("entry message = %q, want %q", entries[0].Message, "at level")
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	defer logger.Close()

	if logger.config.Service != "ocidash" {
		t.Errorf("Default service = %q, want %q", logger.config.Service, "ocidash")
	}
	if logger.config.Level != LevelInfo {
		t.Errorf("Default level = %v, want %v", logger.config.Level, LevelInfo)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/.ocidash/logs", filepath.Join(home, ".ocidash/logs")},
		{"/var/log", "/var/log"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArgsToMap(t *testing.T) {
	got := argsToMap([]any{"a", 1, "b", "two", "dangling"})
	if len(got) != 2 {
		t.Fatalf("argsToMap produced %d keys, want 2", len(got))
	}
	if got["a"] != 1 || got["b"] != "two" {
		t.Errorf("argsToMap = %v", got)
	}
}

// waitForEntries polls the buffered sink because export is async.
func waitForEntries(t *testing.T, s *BufferedSink, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.Entries()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("sink received %d entries, want at least %d", len(s.Entries()), n)
}
