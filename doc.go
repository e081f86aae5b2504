// Package aytdb provides an in-memory, Redis-like key-value store backed
// by a concurrent open-addressed hash table, a fixed-capacity entry pool,
// and a bump-allocating memory arena.
//
// # Overview
//
// AytDB is a single-process store built for predictable memory behavior
// rather than maximum throughput: every entry's key/value bytes live in
// pre-carved arena storage, so the working set lives in a small, bounded
// number of large allocations instead of one allocation per key.
//
//   - Open addressing: double-hash probing (FNV-1a), tombstone deletion
//   - Fixed-capacity entry pool: no per-Set garbage beyond growth (Get
//     returns a freshly allocated copy of the value)
//   - TTL support: background reaper, lazy expiry on Get
//   - Two interchangeable durability strategies: append-only log, or
//     periodic textual snapshot
//
// # Quick Start
//
//	import "github.com/OyuNet/aytdb"
//
//	func main() {
//	    store, err := aytdb.New(aytdb.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer store.Close()
//
//	    store.Set([]byte("user:123"), []byte("Alice"))
//	    store.SetWithTTL([]byte("session:abc"), []byte("token"), 300)
//
//	    if value, found, _ := store.Get([]byte("user:123")); found {
//	        fmt.Printf("User: %s\n", value)
//	    }
//	}
//
// # Concurrency Model
//
// Unlike a lock-free cache, AytDB uses coarse locking on purpose: the
// table, pool, and arena each hold one mutex, and every mutation is
// linearizable with respect to every other mutation on the same
// structure, except while a resize migrates entries: the table lock is
// released between individual placements, so a concurrent operation can
// observe a partially rehashed table. Read-only counters (Size, Count, LoadFactor) are exposed via
// atomics and can be read without a lock, at the cost of staleness.
//
// Lock ordering: table before pool, never the reverse; the arena is never
// held across another lock.
//
// # Persistence
//
// Exactly one of two strategies is active per Store (Config.Persistence):
//
//   - PersistenceAOF: every Set/Del appends a line to an append-only log,
//     compacted once it crosses a size threshold.
//   - PersistenceSnapshot: a background worker periodically serializes the
//     live set to a temp file and atomically renames it into place.
//
// Both reconstruct state at startup through the same code path the table
// itself would take for a live Set/Del, so a fresh process always behaves
// as if it had replayed every successfully-persisted mutation.
//
// # Error Handling
//
// AytDB uses structured errors with error codes (via go-errors):
//
//	if err := store.Set(key, value); err != nil {
//	    if aytdb.IsPoolExhausted(err) {
//	        // entry pool is full
//	    } else if aytdb.IsBadArgument(err) {
//	        // key/value too large, empty, or contains a newline
//	    }
//	}
//
// Available error codes: AYTDB_BAD_ARGUMENT, AYTDB_POOL_EXHAUSTED,
// AYTDB_ARENA_EXHAUSTED, AYTDB_OVER_PROBING, AYTDB_IO_ERROR,
// AYTDB_CORRUPT_FILE, AYTDB_KEY_NOT_FOUND, AYTDB_INTERNAL.
//
// # Front Ends
//
// The core store has no notion of a protocol or a CLI, and this module
// ships no front-end program. The dispatcher package is the shared layer
// a console REPL or a TCP server would drive: it parses a line into
// tokens, enforces password auth (with an auth/ping/help exemption), and
// maps commands onto Store calls.
//
// # License
//
// See LICENSE file in the repository.
package aytdb
