// config.go: configuration for AytDB.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import (
	"time"

	"github.com/c2h5oh/datasize"
)

// Bounds and limits from §6.4.
const (
	InitialTableSize      = 8192
	MaxTableSize          = 10_000_000
	GrowthFactor          = 2
	MaxConsecutiveResizes = 3
	LoadFactorResizeAt    = 0.6
	LoadFactorInvariant   = 0.7
	DefaultSnapshotPeriod = 300 * time.Second
	DefaultReaperInterval = 5 * time.Second
)

// PersistenceMode selects one of the two interchangeable durability
// strategies described in §4.E. Exactly one is active per Store.
type PersistenceMode int

const (
	// PersistenceNone disables durability entirely.
	PersistenceNone PersistenceMode = iota
	// PersistenceAOF selects the append-only command log (§4.E.i).
	PersistenceAOF
	// PersistenceSnapshot selects the periodic textual snapshot (§4.E.ii).
	PersistenceSnapshot
)

// Config holds the tunables named in §6.4 plus the ambient knobs
// (logging, clock, persistence selection) needed to construct a Store.
// The key and value size limits are not configurable; they are the
// constants MaxKeySize and MaxValueSize.
type Config struct {
	// InitialTableSize is the hash table's starting slot count. Must be a
	// power of two >= 8192. Default: InitialTableSize.
	InitialTableSize int

	// MaxTableSize caps how large the table may grow. Default: MaxTableSize.
	MaxTableSize int

	// GrowthFactor is the multiplicative resize factor. Default: GrowthFactor.
	GrowthFactor int

	// PoolCapacity is the entry pool's fixed capacity. Default: DefaultPoolCapacity.
	PoolCapacity int

	// ArenaBlockSize is the size of each arena block. Accepts human-
	// readable sizes ("4MiB") via datasize.ByteSize. Default: DefaultArenaBlockSize.
	ArenaBlockSize datasize.ByteSize

	// ArenaMaxBlocks caps how many blocks the arena may hold. Default: DefaultArenaMaxBlocks.
	ArenaMaxBlocks int

	// ReaperInterval is how often the TTL reaper scans the table.
	// Default: 1s for AOF mode, DefaultReaperInterval (5s) otherwise;
	// Validate applies this when ReaperInterval is left zero, per §4.D.
	ReaperInterval time.Duration

	// Persistence selects the durability strategy. Default: PersistenceNone.
	Persistence PersistenceMode

	// AOFPath is the append-only log path when Persistence == PersistenceAOF.
	// Default: "AytDB.aof".
	AOFPath string

	// CompactionThreshold triggers AOF compaction once the log exceeds
	// this size. Default: 1 MiB.
	CompactionThreshold datasize.ByteSize

	// SnapshotPath is the snapshot file path when Persistence ==
	// PersistenceSnapshot. Default: "snapshot.db".
	SnapshotPath string

	// SnapshotInterval is how often the background snapshot worker saves.
	// Default: DefaultSnapshotPeriod (300s).
	SnapshotInterval time.Duration

	// Logger receives structured diagnostics. Default: NoOpLogger.
	Logger Logger

	// TimeProvider supplies wall-clock time. Default: a go-timecache-backed clock.
	TimeProvider TimeProvider
}

// Validate normalizes config, filling in defaults for anything unset or
// out of range. It never returns an error — like the teacher's own
// Config.Validate, out-of-range values are corrected, not rejected.
func (c *Config) Validate() error {
	if c.InitialTableSize <= 0 || c.InitialTableSize&(c.InitialTableSize-1) != 0 {
		c.InitialTableSize = InitialTableSize
	}
	if c.InitialTableSize < InitialTableSize {
		c.InitialTableSize = InitialTableSize
	}
	if c.MaxTableSize <= 0 || c.MaxTableSize < c.InitialTableSize {
		c.MaxTableSize = MaxTableSize
	}
	if c.GrowthFactor < 2 {
		c.GrowthFactor = GrowthFactor
	}
	if c.PoolCapacity <= 0 {
		c.PoolCapacity = DefaultPoolCapacity
	}
	if c.ArenaBlockSize <= 0 {
		c.ArenaBlockSize = DefaultArenaBlockSize
	}
	if c.ArenaMaxBlocks <= 0 {
		c.ArenaMaxBlocks = DefaultArenaMaxBlocks
	}
	if c.ReaperInterval <= 0 {
		if c.Persistence == PersistenceAOF {
			c.ReaperInterval = time.Second
		} else {
			c.ReaperInterval = DefaultReaperInterval
		}
	}
	if c.AOFPath == "" {
		c.AOFPath = "AytDB.aof"
	}
	if c.CompactionThreshold <= 0 {
		c.CompactionThreshold = 1 * datasize.MB
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = "snapshot.db"
	}
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = DefaultSnapshotPeriod
	}
	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.TimeProvider == nil {
		c.TimeProvider = cachedTimeProvider{}
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults and no
// persistence enabled.
func DefaultConfig() Config {
	c := Config{}
	_ = c.Validate()
	return c
}
