// snapshot.go: periodic, atomically-replaced textual snapshot.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package persistence

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agilira/go-errors"
	natomic "github.com/natefinch/atomic"
)

const snapshotHeader = "AYTDB_SNAPSHOT_V1"

// Snapshot is the RDB-style strategy of §4.E.ii. No original_source/ file
// implements it — the C program only ever shipped the append-only log —
// so this is built directly from §6.2's wire format, in the same file
// shape as aof.go. A background goroutine calls Save on a ticker; the
// dispatcher's "save" and "interval" commands call Save and Reschedule
// directly.
type Snapshot struct {
	mu       sync.Mutex
	path     string
	tmpPath  string
	interval time.Duration

	nowFunc func() int64

	stop    chan struct{}
	stopped sync.WaitGroup
	started bool
}

// NewSnapshot returns a Snapshot writing to path with a background worker
// firing every interval seconds. nowFunc supplies wall-clock seconds (the
// owning Store passes its TimeProvider through so the clock source stays
// consistent with the table's own expiry math).
func NewSnapshot(path string, interval time.Duration, nowFunc func() int64) *Snapshot {
	return &Snapshot{
		path:     path,
		tmpPath:  path + ".tmp",
		interval: interval,
		nowFunc:  nowFunc,
	}
}

// StartWorker launches the periodic background save loop described in §4.E.ii.
func (s *Snapshot) StartWorker(live func() []LiveEntry) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.mu.Unlock()

	s.stopped.Add(1)
	go s.loop(live)
}

func (s *Snapshot) loop(live func() []LiveEntry) {
	defer s.stopped.Done()
	ticker := time.NewTicker(s.currentInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			_ = s.Save(live)
			ticker.Reset(s.currentInterval())
		}
	}
}

func (s *Snapshot) currentInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Reschedule implements the "interval <seconds>" command: the worker
// restarts its ticker with the new period on its next tick.
func (s *Snapshot) Reschedule(interval time.Duration) {
	s.mu.Lock()
	s.interval = interval
	s.mu.Unlock()
}

// AppendSet is a no-op for a snapshot-backed Persister: there is no
// incremental log, only periodic full rewrites (§4.E.ii).
func (s *Snapshot) AppendSet(key, value string, remainingTTL int64) error { return nil }

// AppendDel is a no-op for the same reason as AppendSet.
func (s *Snapshot) AppendDel(key string) error { return nil }

// Save writes the full live set to tmpPath and atomically renames it over
// path, the durability boundary per §6.2.
func (s *Snapshot) Save(live func() []LiveEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := live()
	var sb strings.Builder
	sb.Grow(64 * 1024)

	fmt.Fprintf(&sb, "%s\n", snapshotHeader)
	fmt.Fprintf(&sb, "TIME:%d\n", s.nowFunc())
	fmt.Fprintf(&sb, "ENTRIES:%d\n", len(entries))
	sb.WriteString("---\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "KEY:%s\n", e.Key)
		fmt.Fprintf(&sb, "VALUE:%s\n", e.Value)
		fmt.Fprintf(&sb, "TTL:%d\n", e.RemainingTTL)
		sb.WriteString("---\n")
	}

	err := withRetry(func() error {
		f, err := os.Create(s.tmpPath)
		if err != nil {
			return err
		}
		if _, err := f.WriteString(sb.String()); err != nil {
			f.Close()
			return err
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		return natomic.ReplaceFile(s.tmpPath, s.path)
	})
	if err != nil {
		return errors.Wrap(err, ErrCodeIOError, "snapshot save failed").WithContext("path", s.path).AsRetryable()
	}
	return nil
}

// Compact is identical to Save for a snapshot-backed Persister: §4.E.ii
// defines "compact" as "take a snapshot immediately" when persistence is
// snapshot-based, since the snapshot never serializes expired keys anyway.
func (s *Snapshot) Compact(live func() []LiveEntry) error {
	return s.Save(live)
}

// Load validates the header, the TIME and ENTRIES lines, then consumes
// KEY/VALUE/TTL/--- blocks per §6.2. A block missing any of its three
// fields is rejected and the load aborts, continuing with whatever was
// already loaded (§7 kind 6).
func (s *Snapshot) Load(fn RestoreFunc) error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, ErrCodeIOError, "open snapshot for load failed").WithContext("path", s.path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return errors.NewWithContext(ErrCodeCorruptFile, "snapshot missing header", map[string]interface{}{"path": s.path})
	}
	if strings.TrimSpace(scanner.Text()) != snapshotHeader {
		return errors.NewWithContext(ErrCodeCorruptFile, "snapshot header mismatch", map[string]interface{}{"path": s.path})
	}
	if !scanner.Scan() || !strings.HasPrefix(scanner.Text(), "TIME:") {
		return errors.NewWithContext(ErrCodeCorruptFile, "snapshot missing TIME line", map[string]interface{}{"path": s.path})
	}
	if !scanner.Scan() || !strings.HasPrefix(scanner.Text(), "ENTRIES:") {
		return errors.NewWithContext(ErrCodeCorruptFile, "snapshot missing ENTRIES line", map[string]interface{}{"path": s.path})
	}
	if !scanner.Scan() || scanner.Text() != "---" {
		return errors.NewWithContext(ErrCodeCorruptFile, "snapshot missing header terminator", map[string]interface{}{"path": s.path})
	}

	var key, value string
	var ttl int64
	haveKey, haveValue, haveTTL := false, false, false

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "KEY:"):
			key = strings.TrimPrefix(line, "KEY:")
			haveKey = true
		case strings.HasPrefix(line, "VALUE:"):
			value = strings.TrimPrefix(line, "VALUE:")
			haveValue = true
		case strings.HasPrefix(line, "TTL:"):
			ttl, _ = strconv.ParseInt(strings.TrimPrefix(line, "TTL:"), 10, 64)
			haveTTL = true
		case line == "---":
			if !(haveKey && haveValue && haveTTL) {
				return errors.NewWithContext(ErrCodeCorruptFile, "snapshot block missing KEY, VALUE or TTL", map[string]interface{}{"path": s.path})
			}
			if err := fn(key, value, ttl, false); err != nil {
				return err
			}
			key, value, ttl = "", "", 0
			haveKey, haveValue, haveTTL = false, false, false
		}
	}

	return scanner.Err()
}

// Close stops the background worker, joining it before returning.
func (s *Snapshot) Close() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	close(s.stop)
	s.mu.Unlock()

	s.stopped.Wait()
	return nil
}
