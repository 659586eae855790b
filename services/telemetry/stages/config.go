// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stages

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/adibirzu/oci-coordinator-dashboards/services/telemetry/datatypes"
)

// patternsFile is the on-disk shape of a stage pattern override:
//
//	stages:
//	  retrieve: [rag, vector, search]
//	  generate: [llm, completion]
//
// Stages omitted from the file keep the built-in patterns.
type patternsFile struct {
	Stages map[string][]string `yaml:"stages"`
}

// LoadPatterns reads a YAML pattern override and merges it over the
// defaults. Unknown stage names are rejected so a typo cannot silently
// disable a stage.
func LoadPatterns(path string) (map[datatypes.Stage][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage config: %w", err)
	}

	var file patternsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse stage config: %w", err)
	}

	merged := DefaultPatterns()
	for name, pats := range file.Stages {
		stage := datatypes.Stage(strings.ToLower(name))
		if _, known := merged[stage]; !known {
			return nil, fmt.Errorf("stage config: unknown stage %q", name)
		}
		lowered := make([]string, 0, len(pats))
		for _, p := range pats {
			lowered = append(lowered, strings.ToLower(p))
		}
		merged[stage] = lowered
	}
	return merged, nil
}

// Watch reloads the pattern file into the mapper whenever it changes,
// until ctx is cancelled. A reload that fails to parse keeps the
// previous patterns in place.
func Watch(ctx context.Context, path string, mapper *Mapper, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("stage config watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				patterns, err := LoadPatterns(path)
				if err != nil {
					logger.Warn("stage config reload failed, keeping previous patterns",
						"path", path, "error", err)
					continue
				}
				mapper.SetPatterns(patterns)
				logger.Info("stage patterns reloaded", "path", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("stage config watcher error", "error", err)
			}
		}
	}()
	return nil
}
