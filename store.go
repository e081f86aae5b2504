// store.go: Store, the single owning context for a running AytDB instance.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import (
	"time"

	"github.com/OyuNet/aytdb/persistence"
)

// Store owns one arena, one pool, one table, one reaper, and (optionally)
// one persistence strategy. It is the idiomatic replacement for
// original_source/main.c's top-level kv_init/kv_cleanup sequencing: a
// constructor that wires everything together, and a Close that tears it
// down in the right order. Callers normally want exactly one Store; the
// package-level facade in facade.go exists only for the console front end.
type Store struct {
	cfg   Config
	arena *arena
	pool  *pool
	table *table
	reap  *reaper

	persist persistence.Persister
}

// New constructs a Store from cfg, loads any existing persisted state, and
// starts the reaper (and, for snapshot mode, the background save worker).
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := newArena(cfg.ArenaBlockSize, cfg.ArenaMaxBlocks, cfg.Logger)
	p := newPool(a, cfg.PoolCapacity)
	t := newTable(p, cfg)

	s := &Store{
		cfg:   cfg,
		arena: a,
		pool:  p,
		table: t,
	}

	switch cfg.Persistence {
	case PersistenceAOF:
		s.persist = persistence.NewAOF(cfg.AOFPath, int64(cfg.CompactionThreshold.Bytes()))
	case PersistenceSnapshot:
		snap := persistence.NewSnapshot(cfg.SnapshotPath, cfg.SnapshotInterval, cfg.TimeProvider.NowUnix)
		s.persist = snap
	}

	if s.persist != nil {
		if err := s.persist.Load(s.restore); err != nil {
			return nil, err
		}
		if snap, ok := s.persist.(*persistence.Snapshot); ok {
			snap.StartWorker(s.liveEntries)
		}
	}

	s.reap = newReaper(t, cfg.ReaperInterval, cfg.Logger)
	s.reap.start()

	return s, nil
}

// restore adapts a persistence.RestoreFunc call back onto the table,
// exactly as original_source/storage.c's storage_load drives kv_set_with_ttl
// and kv_del during replay.
func (s *Store) restore(key, value string, ttlSeconds int64, del bool) error {
	if del {
		_, err := s.table.del([]byte(key))
		return err
	}
	return s.table.set([]byte(key), []byte(value), int(ttlSeconds))
}

// liveEntries adapts the table's forEachLive walk into the slice shape
// persistence.Persister.Save/Compact expect.
func (s *Store) liveEntries() []persistence.LiveEntry {
	var out []persistence.LiveEntry
	s.table.forEachLive(func(key, value []byte, remainingTTL int64) {
		out = append(out, persistence.LiveEntry{
			Key:          string(key),
			Value:        string(value),
			RemainingTTL: remainingTTL,
		})
	})
	return out
}

// Set stores key/value with no expiry, clearing any TTL key previously had.
func (s *Store) Set(key, value []byte) error {
	return s.SetWithTTL(key, value, 0)
}

// SetWithTTL stores key/value, expiring after ttlSeconds (0 means never).
// The in-memory mutation commits first; the persistence append (if any)
// happens synchronously afterward on the caller's goroutine (§9 open
// question 1's resolution — see SPEC_FULL.md).
func (s *Store) SetWithTTL(key, value []byte, ttlSeconds int) error {
	if err := s.table.set(key, value, ttlSeconds); err != nil {
		return err
	}
	if s.persist != nil {
		if err := s.persist.AppendSet(string(key), string(value), int64(ttlSeconds)); err != nil {
			return err
		}
		s.maybeAutoCompact()
	}
	return nil
}

// Get returns the value for key, or found=false if absent or expired.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	return s.table.get(key)
}

// Del removes key, reporting whether it was present. The AOF append
// follows the same "commit first, log after" ordering as SetWithTTL.
func (s *Store) Del(key []byte) (bool, error) {
	found, err := s.table.del(key)
	if err != nil || !found {
		return found, err
	}
	if s.persist != nil {
		if err := s.persist.AppendDel(string(key)); err != nil {
			return found, err
		}
	}
	return found, nil
}

// maybeAutoCompact triggers AOF compaction once the log crosses the
// configured threshold, per §6.4's "AOF compaction threshold" knob.
func (s *Store) maybeAutoCompact() {
	aof, ok := s.persist.(*persistence.AOF)
	if !ok || !aof.ShouldCompact() {
		return
	}
	_ = aof.Compact(s.liveEntries)
}

// Save forces an immediate persisted write: "save" under snapshot mode, or
// equivalently a compaction under AOF mode, per §6.3.
func (s *Store) Save() error {
	if s.persist == nil {
		return nil
	}
	return s.persist.Save(s.liveEntries)
}

// Compact rewrites the backing persistence file to hold only the live set.
func (s *Store) Compact() error {
	if s.persist == nil {
		return nil
	}
	return s.persist.Compact(s.liveEntries)
}

// Reschedule implements the "interval <seconds>" command for snapshot mode;
// it is a no-op under AOF mode, which has no periodic worker to reschedule.
func (s *Store) Reschedule(seconds int) {
	if snap, ok := s.persist.(*persistence.Snapshot); ok {
		snap.Reschedule(time.Duration(seconds) * time.Second)
	}
}

// Size returns the current slot count without locking.
func (s *Store) Size() int { return s.table.Size() }

// Count returns the current occupied-slot count without locking.
func (s *Store) Count() int { return s.table.Count() }

// LoadFactor returns Count()/Size() without locking.
func (s *Store) LoadFactor() float64 { return s.table.LoadFactor() }

// Close stops the reaper and the snapshot worker (if any) and releases the
// arena's block memory, in the reverse order New brought them up.
func (s *Store) Close() error {
	s.reap.stop()
	var err error
	if s.persist != nil {
		err = s.persist.Close()
	}
	s.arena.cleanup()
	return err
}
