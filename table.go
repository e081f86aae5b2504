// table.go: the open-addressed hash table — the core of AytDB.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstone
)

type slot struct {
	state slotState
	e     *entry
}

// table is a vector of slots, a mutex, and the bookkeeping described in
// §4.C. Grounded on original_source/kv_store.c's HashTable and its
// find_slot/kv_set/kv_get/kv_del/kv_resize functions.
type table struct {
	mu                 sync.Mutex
	slots              []slot
	size               int
	count              int
	tombstones         int
	consecutiveResizes int

	sizeAtomic  atomic.Int64
	countAtomic atomic.Int64

	overProbeWarnings atomic.Int32

	pool         *pool
	growthFactor int
	initialSize  int
	maxTableSize int

	logger Logger
	clock  TimeProvider
}

func newTable(p *pool, cfg Config) *table {
	t := &table{
		slots:        make([]slot, cfg.InitialTableSize),
		size:         cfg.InitialTableSize,
		pool:         p,
		growthFactor: cfg.GrowthFactor,
		initialSize:  cfg.InitialTableSize,
		maxTableSize: cfg.MaxTableSize,
		logger:       cfg.Logger,
		clock:        cfg.TimeProvider,
	}
	t.sizeAtomic.Store(int64(t.size))
	return t
}

func (t *table) maxProbes(size int) int {
	if size > 1000 {
		return 100
	}
	if size/10 < 1 {
		return 1
	}
	return size / 10
}

// findSlot implements §4.C's single-pass slot search: it returns the
// occupied index on a hit, and the first available (empty or tombstone)
// index encountered along the probe sequence for a prospective insert.
// A pure lookup still scans the full bounded sequence (tombstones do not
// terminate a probe, only a true empty slot does — that is what makes
// tombstones safe for double hashing).
func (t *table) findSlot(key []byte, h32 uint32) (found bool, foundIdx int, insertAt int, haveInsert bool) {
	size := t.size
	idx0 := int(h32) % size
	step := 1
	if size > 1 {
		step = 1 + int(h32)%(size-1)
	}
	probes := t.maxProbes(size)

	for i := 0; i < probes; i++ {
		pos := (idx0 + i*step) % size
		s := &t.slots[pos]
		switch s.state {
		case slotEmpty:
			if !haveInsert {
				insertAt, haveInsert = pos, true
			}
			return false, 0, insertAt, haveInsert
		case slotTombstone:
			if !haveInsert {
				insertAt, haveInsert = pos, true
			}
		case slotOccupied:
			if s.e.hash == h32 && bytes.Equal(s.e.key, key) {
				return true, pos, insertAt, haveInsert
			}
		}
	}

	t.warnOverProbing(key)
	return false, 0, insertAt, haveInsert
}

func (t *table) warnOverProbing(key []byte) {
	if t.overProbeWarnings.Add(1) <= 10 {
		t.logger.Warn("slot search exceeded probe bound", "key", string(key))
	}
}

func validateKeyValue(key, value []byte) error {
	if len(key) == 0 {
		return NewErrBadArgument("set", "key must not be empty")
	}
	if len(key) > MaxKeySize {
		return NewErrBadArgument("set", fmt.Sprintf("key exceeds %d bytes", MaxKeySize))
	}
	if len(value) > MaxValueSize {
		return NewErrBadArgument("set", fmt.Sprintf("value exceeds %d bytes", MaxValueSize))
	}
	if bytes.ContainsAny(key, "\n\r") || bytes.ContainsAny(value, "\n\r") {
		return NewErrBadArgument("set", "key/value must not contain newlines")
	}
	return nil
}

// set stores key/value, clearing any existing TTL when ttlSeconds is 0.
// ttlSeconds > 0 sets an absolute expiry of now+ttlSeconds. Implements
// both the "set" and "set_with_ttl" operations of §4.C.
func (t *table) set(key, value []byte, ttlSeconds int) error {
	if err := validateKeyValue(key, value); err != nil {
		return err
	}

	t.mu.Lock()
	h32 := hashKey32(key)
	found, idx, insertAt, haveInsert := t.findSlot(key, h32)

	if !found {
		if float64(t.count+1)/float64(t.size) > LoadFactorResizeAt {
			t.consecutiveResizes++
			if t.consecutiveResizes <= MaxConsecutiveResizes {
				newSize := t.size * t.growthFactor
				t.mu.Unlock()
				if err := t.resize(newSize); err != nil {
					t.logger.Warn("resize failed, inserting at degraded load factor", "error", err.Error())
				}
				t.mu.Lock()
				found, idx, insertAt, haveInsert = t.findSlot(key, h32)
			} else {
				t.logger.Warn("too many consecutive resizes, skipping resize", "key", string(key))
				t.consecutiveResizes = 0
			}
		} else {
			t.consecutiveResizes = 0
		}
	} else {
		t.consecutiveResizes = 0
	}

	var expireAt int64
	if ttlSeconds > 0 {
		expireAt = t.clock.NowUnix() + int64(ttlSeconds)
	}

	if found {
		s := &t.slots[idx]
		s.e.value = append(s.e.value[:0], value...)
		s.e.expireAt = expireAt
		t.mu.Unlock()
		return nil
	}

	if !haveInsert {
		t.mu.Unlock()
		return NewErrOverProbing(string(key), t.maxProbes(t.size))
	}

	e := t.pool.alloc()
	if e == nil {
		t.mu.Unlock()
		return NewErrPoolExhausted(string(key))
	}
	e.key = append(e.key[:0], key...)
	e.value = append(e.value[:0], value...)
	e.hash = h32
	e.expireAt = expireAt

	s := &t.slots[insertAt]
	if s.state == slotTombstone {
		t.tombstones--
	}
	s.state = slotOccupied
	s.e = e
	t.count++
	t.countAtomic.Store(int64(t.count))
	t.mu.Unlock()
	return nil
}

// get returns a copy of the value for key, or found=false if absent or
// expired. A copy is returned (not a reference into the table) so the
// caller's bytes stay stable after the lock is released, per §4.C.
func (t *table) get(key []byte) (value []byte, found bool, err error) {
	if len(key) == 0 || len(key) > MaxKeySize {
		return nil, false, NewErrBadArgument("get", "invalid key length")
	}

	t.mu.Lock()
	h32 := hashKey32(key)
	ok, idx, _, _ := t.findSlot(key, h32)
	if !ok {
		t.mu.Unlock()
		return nil, false, nil
	}

	s := &t.slots[idx]
	now := t.clock.NowUnix()
	if s.e.expireAt > 0 && now > s.e.expireAt {
		needRehash := t.removeAt(idx)
		t.mu.Unlock()
		if needRehash {
			_ = t.rehash(t.size)
		}
		return nil, false, nil
	}

	out := make([]byte, len(s.e.value))
	copy(out, s.e.value)
	t.mu.Unlock()
	return out, true, nil
}

// del removes key if present, reporting whether it was found.
func (t *table) del(key []byte) (bool, error) {
	if len(key) == 0 || len(key) > MaxKeySize {
		return false, NewErrBadArgument("del", "invalid key length")
	}

	t.mu.Lock()
	h32 := hashKey32(key)
	ok, idx, _, _ := t.findSlot(key, h32)
	if !ok {
		t.mu.Unlock()
		return false, nil
	}
	needRehash := t.removeAt(idx)
	t.mu.Unlock()
	if needRehash {
		_ = t.rehash(t.size)
	}
	return true, nil
}

// removeAt frees the entry at idx, leaves a tombstone behind (so other
// keys sharing part of the probe chain remain reachable), and reports
// whether tombstones have crossed the 20% threshold that should trigger
// an in-place rehash. Must be called with t.mu held.
func (t *table) removeAt(idx int) (needRehash bool) {
	s := &t.slots[idx]
	t.pool.freeEntry(s.e)
	s.e = nil
	s.state = slotTombstone
	t.count--
	t.tombstones++
	t.countAtomic.Store(int64(t.count))
	return t.tombstones > t.size/5
}

// purgeExpired is the reaper's tick body (§4.D): scan every occupied
// slot once, evicting anything past its expiry. The lock is released and
// reacquired every 1000 evictions within a pass to bound worst-case hold
// time during a mass-expiry event.
func (t *table) purgeExpired() (purged int, needRehash bool) {
	t.mu.Lock()
	now := t.clock.NowUnix()
	sinceYield := 0
	for i := range t.slots {
		s := &t.slots[i]
		if s.state != slotOccupied {
			continue
		}
		if s.e.expireAt > 0 && now > s.e.expireAt {
			t.removeAt(i)
			purged++
			sinceYield++
			if sinceYield == 1000 {
				sinceYield = 0
				t.mu.Unlock()
				t.mu.Lock()
			}
		}
	}
	needRehash = t.tombstones > t.size/5
	t.mu.Unlock()
	return purged, needRehash
}

// resize grows the table to newSize, clamped to [initialSize,
// maxTableSize]. Monotonic: a newSize not larger than the current size
// is a no-op, preventing oscillation (§4.C).
func (t *table) resize(newSize int) error {
	if newSize < t.initialSize {
		newSize = t.initialSize
	}
	if newSize > t.maxTableSize {
		newSize = t.maxTableSize
	}

	t.mu.Lock()
	if t.size >= newSize {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	return t.rehash(newSize)
}

// rehash swaps in a freshly allocated slots array of size newSize and
// migrates every live entry into it, probing with the same double-hash
// sequence (index and step from the entry's cached hash) that findSlot
// uses, per §4.C. The table lock is released between placements. Unlike resize, rehash has no
// monotonic guard — it is also used (with newSize == current size) to
// sweep tombstones once they cross the 20% threshold.
func (t *table) rehash(newSize int) error {
	t.mu.Lock()
	old := t.slots
	t.slots = make([]slot, newSize)
	t.size = newSize
	t.count = 0
	t.tombstones = 0
	t.sizeAtomic.Store(int64(newSize))
	t.countAtomic.Store(0)
	t.mu.Unlock()

	now := t.clock.NowUnix()
	moved := 0

	for i := range old {
		if old[i].state != slotOccupied {
			continue
		}
		e := old[i].e

		if e.expireAt > 0 && now > e.expireAt {
			t.pool.freeEntry(e)
			continue
		}

		t.mu.Lock()
		idx0 := int(e.hash) % t.size
		step := 1
		if t.size > 1 {
			step = 1 + int(e.hash)%(t.size-1)
		}
		placed := false
		for p := 0; p < t.size; p++ {
			pos := (idx0 + p*step) % t.size
			if t.slots[pos].state != slotOccupied {
				t.slots[pos] = slot{state: slotOccupied, e: e}
				t.count++
				t.countAtomic.Store(int64(t.count))
				placed = true
				break
			}
		}
		t.mu.Unlock()

		if placed {
			moved++
		} else {
			t.logger.Warn("failed to find slot during rehash", "key", string(e.key))
			t.pool.freeEntry(e)
		}
	}

	t.logger.Info("rehash completed", "old_size", len(old), "new_size", newSize, "moved", moved)
	return nil
}

// forEachLive walks every occupied, unexpired slot once under the table
// lock, invoking fn with the entry's key, value, and remaining TTL in
// seconds (0 meaning "does not expire"). Used by the persistence layer to
// source both Save and Compact (§4.E) without persistence.go needing to
// know anything about slots, probing, or pooling.
func (t *table) forEachLive(fn func(key, value []byte, remainingTTL int64)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.NowUnix()
	for i := range t.slots {
		s := &t.slots[i]
		if s.state != slotOccupied {
			continue
		}
		if s.e.expireAt > 0 && now > s.e.expireAt {
			continue
		}
		var remaining int64
		if s.e.expireAt > 0 {
			remaining = s.e.expireAt - now
			if remaining < 1 {
				// Still live this second; 0 would read back as "never expires".
				remaining = 1
			}
		}
		fn(s.e.key, s.e.value, remaining)
	}
}

// Size returns the current slot count without locking; callers accept a
// possibly stale value, per §5.
func (t *table) Size() int { return int(t.sizeAtomic.Load()) }

// Count returns the current occupied-slot count without locking.
func (t *table) Count() int { return int(t.countAtomic.Load()) }

// LoadFactor returns Count()/Size() without locking.
func (t *table) LoadFactor() float64 {
	size := t.Size()
	if size == 0 {
		return 0
	}
	return float64(t.Count()) / float64(size)
}
