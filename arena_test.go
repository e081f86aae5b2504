// arena_test.go: unit tests for the bump allocator.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import (
	"sync"
	"testing"

	"github.com/c2h5oh/datasize"
)

func TestArena_AllocAdvancesOffset(t *testing.T) {
	a := newArena(64, 2, NoOpLogger{})

	b1 := a.alloc(8)
	b2 := a.alloc(8)

	if len(b1) != 8 || len(b2) != 8 {
		t.Fatalf("unexpected allocation sizes: %d, %d", len(b1), len(b2))
	}
	if &b1[0] == &b2[0] {
		t.Error("successive allocations should not overlap")
	}
}

func TestArena_LargeAllocationFallsBackToHeap(t *testing.T) {
	a := newArena(64, 2, NoOpLogger{})
	buf := a.alloc(100)
	if len(buf) != 100 {
		t.Fatalf("len(buf) = %d, want 100", len(buf))
	}
}

func TestArena_ZeroSizeAllocReturnsNil(t *testing.T) {
	a := newArena(64, 2, NoOpLogger{})
	if buf := a.alloc(0); buf != nil {
		t.Errorf("alloc(0) = %v, want nil", buf)
	}
}

func TestArena_RecyclesBlockZeroWhenExhausted(t *testing.T) {
	var logged bool
	logger := &recordingLogger{onWarn: func(string, ...interface{}) { logged = true }}
	a := newArena(32, 1, logger)

	// 8 bytes is within blockSize/4, so each alloc is carved from the block;
	// four of them fill it exactly.
	for i := 0; i < 4; i++ {
		a.alloc(8)
	}
	a.alloc(8) // forces wraparound since maxBlocks == 1

	if !logged {
		t.Error("expected a warning when the arena wraps around")
	}
}

func TestArena_ResetRewindsCursor(t *testing.T) {
	a := newArena(64, 2, NoOpLogger{})
	a.alloc(16)
	a.reset()
	if a.currentOffset != 0 || a.currentBlock != 0 {
		t.Errorf("reset did not rewind cursor: block=%d offset=%d", a.currentBlock, a.currentOffset)
	}
}

func TestArena_CleanupDropsBlocks(t *testing.T) {
	a := newArena(64, 2, NoOpLogger{})
	a.alloc(8)
	a.cleanup()
	for i, b := range a.blocks {
		if b != nil {
			t.Errorf("block %d should be nil after cleanup", i)
		}
	}
}

func TestArena_ConcurrentAllocIsRaceFree(t *testing.T) {
	a := newArena(datasize.ByteSize(4096), 4, NoOpLogger{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.alloc(16)
		}()
	}
	wg.Wait()
}

type recordingLogger struct {
	onWarn func(msg string, keyvals ...interface{})
}

func (recordingLogger) Debug(string, ...interface{}) {}
func (recordingLogger) Info(string, ...interface{})  {}
func (l *recordingLogger) Warn(msg string, keyvals ...interface{}) {
	if l.onWarn != nil {
		l.onWarn(msg, keyvals...)
	}
}
func (recordingLogger) Error(string, ...interface{}) {}
