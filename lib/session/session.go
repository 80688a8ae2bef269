// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package session persists the working set of queries between runs:
// a YAML mapping from display alias to canonical query text. Absence
// or emptiness of the file is a valid "no prior session", never an
// error; only genuinely malformed or unwritable files report one, and
// callers treat even those as recoverable (fall back to no session on
// load, notify the operator on save).
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Detect reports whether a prior session file exists at path. Gates
// the load prompt at startup.
func Detect(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the alias→query mapping from path. A missing file or an
// empty document yields an empty map and no error.
func Load(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	queries := map[string]string{}
	if err := yaml.Unmarshal(raw, &queries); err != nil {
		return nil, fmt.Errorf("decoding session file: %w", err)
	}
	if queries == nil {
		queries = map[string]string{}
	}
	return queries, nil
}

// Save writes the alias→query mapping to path, creating the parent
// directory if needed and rewriting the file wholesale.
func Save(path string, queries map[string]string) error {
	raw, err := yaml.Marshal(queries)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating session directory: %w", err)
		}
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}
