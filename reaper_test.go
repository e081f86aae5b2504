// reaper_test.go: unit tests for the background TTL eviction worker.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import (
	"fmt"
	"testing"
	"time"
)

func TestReaper_EvictsExpiredEntries(t *testing.T) {
	tb, clock := newTestTable(t, 8192)
	for i := 0; i < 5; i++ {
		key := []byte(fmt.Sprintf("k-%d", i))
		if err := tb.set(key, []byte("v"), 1); err != nil {
			t.Fatalf("set %d failed: %v", i, err)
		}
	}
	clock.advance(2)

	r := newReaper(tb, 10*time.Millisecond, NoOpLogger{})
	r.start()
	defer r.stop()

	deadline := time.Now().Add(2 * time.Second)
	for tb.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if tb.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after reaper sweeps", tb.Count())
	}
}

func TestReaper_StartStopIsIdempotent(t *testing.T) {
	tb, _ := newTestTable(t, 8192)
	r := newReaper(tb, time.Hour, NoOpLogger{})

	r.start()
	r.start() // should not spawn a second loop or panic
	r.stop()
	r.stop() // should not double-close the done channel
}

func TestReaper_StopJoinsLoop(t *testing.T) {
	tb, _ := newTestTable(t, 8192)
	r := newReaper(tb, time.Millisecond, NoOpLogger{})
	r.start()
	r.stop()
	// If stop did not actually join, a subsequent start below would race
	// with a still-running previous loop goroutine; the race detector
	// would catch this under `go test -race`.
	r.start()
	r.stop()
}
