// clock.go: cached wall-clock time provider.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import "github.com/agilira/go-timecache"

// cachedTimeProvider backs TimeProvider with go-timecache, the same
// library and rationale the teacher's systemTimeProvider uses: TTL math
// happens under the table lock on every Get/Set, so a syscall-per-call
// clock would extend the critical section for no benefit.
type cachedTimeProvider struct{}

func (cachedTimeProvider) NowUnix() int64 {
	return timecache.CachedTimeNano() / int64(1e9)
}
