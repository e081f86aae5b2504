// arena.go: bump allocator backed by a small fixed array of large blocks.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import (
	"sync"

	"github.com/c2h5oh/datasize"
)

// Default block sizing, per §6.4. Expressed in datasize.ByteSize so a
// Config loaded from a file can write "4MiB" instead of a raw integer.
const (
	DefaultArenaBlockSize = 4 * datasize.MB
	DefaultArenaMaxBlocks = 16
)

// arena is a bump allocator over a fixed number of pre-sized blocks.
// Allocations never individually free; reset rewinds the cursor to the
// start of block 0 and cleanup drops every block reference.
//
// Allocations larger than a quarter of the block size fall through to the
// general heap (make([]byte, size)) and are owned by the caller; they are
// not reclaimed by reset.
type arena struct {
	mu            sync.Mutex
	blockSize     int
	maxBlocks     int
	blocks        [][]byte
	currentBlock  int
	currentOffset int
	logger        Logger
}

func newArena(blockSize datasize.ByteSize, maxBlocks int, logger Logger) *arena {
	if blockSize <= 0 {
		blockSize = DefaultArenaBlockSize
	}
	if maxBlocks <= 0 {
		maxBlocks = DefaultArenaMaxBlocks
	}
	if logger == nil {
		logger = NoOpLogger{}
	}
	a := &arena{
		blockSize: int(blockSize.Bytes()),
		maxBlocks: maxBlocks,
		blocks:    make([][]byte, maxBlocks),
		logger:    logger,
	}
	a.blocks[0] = make([]byte, a.blockSize)
	return a
}

// alloc rounds size up to 8 bytes and carves a slice out of the current
// block, advancing to (and lazily allocating) the next block when the
// current one does not have enough room. Wraps around to block 0 if the
// block index would exceed maxBlocks, logging a warning — this recycles
// live data, which is only safe because callers never alloc across a
// reset boundary for data they expect to outlive it.
func (a *arena) alloc(size int) []byte {
	if size <= 0 {
		return nil
	}
	rounded := (size + 7) &^ 7

	if rounded > a.blockSize/4 {
		return make([]byte, size)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentOffset+rounded > a.blockSize {
		a.currentBlock++
		a.currentOffset = 0

		if a.currentBlock >= a.maxBlocks {
			a.logger.Warn("arena ran out of blocks, recycling block 0")
			a.currentBlock = 0
		}

		if a.blocks[a.currentBlock] == nil {
			a.blocks[a.currentBlock] = make([]byte, a.blockSize)
		}
	}

	block := a.blocks[a.currentBlock]
	buf := block[a.currentOffset : a.currentOffset+rounded : a.currentOffset+rounded]
	a.currentOffset += rounded
	return buf[:size]
}

// reset returns the logical cursor to block 0, offset 0, without
// releasing any block's backing memory.
func (a *arena) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentBlock = 0
	a.currentOffset = 0
}

// cleanup drops every block reference so the GC can reclaim them.
func (a *arena) cleanup() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.blocks {
		a.blocks[i] = nil
	}
	a.currentBlock = 0
	a.currentOffset = 0
}
