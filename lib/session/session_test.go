// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	queries := map[string]string{
		"checkout errors": "FROM Transaction SELECT count(*) as value WHERE app='checkout' SINCE 1 hour ago UNTIL now LIMIT 100 TIMESERIES",
		"cpu by host":     "FROM Metric SELECT max(cpu) as value WHERE env='prod' FACET host SINCE 30 minutes ago UNTIL now LIMIT 50 TIMESERIES",
	}

	if err := Save(path, queries); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !Detect(path) {
		t.Error("Detect false for a freshly saved session")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, queries) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", loaded, queries)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	if Detect(path) {
		t.Error("Detect true for a missing file")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load of a missing file errored: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded %d queries from a missing file", len(loaded))
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load of an empty file errored: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded %d queries from an empty file", len(loaded))
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not a mapping\n  x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load of malformed YAML succeeded, want error")
	}
}

func TestSaveRewritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")

	if err := Save(path, map[string]string{"old": "query"}); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, map[string]string{"new": "query"}); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, exists := loaded["old"]; exists {
		t.Error("stale entry survived a rewrite")
	}
	if loaded["new"] != "query" {
		t.Errorf("loaded = %v", loaded)
	}
}
