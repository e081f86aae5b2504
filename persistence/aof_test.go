// aof_test.go: unit tests for the append-only log.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package persistence

import (
	"path/filepath"
	"testing"
)

type replayedRecord struct {
	key, value string
	ttl        int64
	del        bool
}

func TestAOF_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.aof")
	a := NewAOF(path, 1<<20)

	if err := a.AppendSet("k1", "v1", 0); err != nil {
		t.Fatalf("AppendSet failed: %v", err)
	}
	if err := a.AppendSet("k2", "v2", 30); err != nil {
		t.Fatalf("AppendSet failed: %v", err)
	}
	if err := a.AppendDel("k1"); err != nil {
		t.Fatalf("AppendDel failed: %v", err)
	}

	var records []replayedRecord
	err := a.Load(func(key, value string, ttl int64, del bool) error {
		records = append(records, replayedRecord{key, value, ttl, del})
		return nil
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[1].key != "k2" || records[1].value != "v2" || records[1].ttl != 30 {
		t.Errorf("unexpected record[1]: %+v", records[1])
	}
	if !records[2].del || records[2].key != "k1" {
		t.Errorf("unexpected record[2]: %+v", records[2])
	}
}

func TestAOF_LoadMissingFileIsNotAnError(t *testing.T) {
	a := NewAOF(filepath.Join(t.TempDir(), "does-not-exist.aof"), 1<<20)
	if err := a.Load(func(string, string, int64, bool) error { return nil }); err != nil {
		t.Errorf("Load on a missing file should return nil, got %v", err)
	}
}

func TestAOF_LegacyBareTokenFormat(t *testing.T) {
	_, key, value, ttl, ok := parseAOFLine("SET legacykey legacyvalue 42")
	if !ok {
		t.Fatal("expected legacy bare-token line to parse")
	}
	if key != "legacykey" || value != "legacyvalue" || ttl != 42 {
		t.Errorf("got (%q, %q, %d), want (legacykey, legacyvalue, 42)", key, value, ttl)
	}
}

func TestAOF_QuotedFormat(t *testing.T) {
	cmd, key, value, ttl, ok := parseAOFLine(`SET k "a value with spaces" 10`)
	if !ok || cmd != "SET" {
		t.Fatal("expected quoted line to parse as SET")
	}
	if key != "k" || value != "a value with spaces" || ttl != 10 {
		t.Errorf("got (%q, %q, %d), want (k, 'a value with spaces', 10)", key, value, ttl)
	}
}

func TestAOF_CompactDropsDeadHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.aof")
	a := NewAOF(path, 1<<20)

	a.AppendSet("k1", "v1", 0)
	a.AppendSet("k2", "v2", 0)
	a.AppendDel("k1")

	err := a.Compact(func() []LiveEntry {
		return []LiveEntry{{Key: "k2", Value: "v2", RemainingTTL: 0}}
	})
	if err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	var records []replayedRecord
	err = a.Load(func(key, value string, ttl int64, del bool) error {
		records = append(records, replayedRecord{key, value, ttl, del})
		return nil
	})
	if err != nil {
		t.Fatalf("Load after compact failed: %v", err)
	}
	if len(records) != 1 || records[0].key != "k2" {
		t.Errorf("expected only k2 to survive compaction, got %+v", records)
	}
}

func TestAOF_ShouldCompact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.aof")
	a := NewAOF(path, 8) // tiny threshold

	if a.ShouldCompact() {
		t.Error("an empty (nonexistent) log should not need compaction")
	}
	a.AppendSet("k", "a reasonably long value to exceed the threshold", 0)
	if !a.ShouldCompact() {
		t.Error("expected ShouldCompact to report true once past the threshold")
	}
}
