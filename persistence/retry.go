// retry.go: shared transient-I/O retry policy for both strategies.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package persistence

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// withRetry wraps op with a short bounded exponential backoff so a
// transient I/O error (§7 kind 5 — disk full momentarily, file locked by
// an antivirus scan, an NFS hiccup) does not surface as a hard failure on
// the first attempt. It never retries indefinitely: the attempt count is
// not fixed, but retrying stops once about a second has elapsed (around
// ten attempts with these intervals), then the last error is returned
// as-is.
func withRetry(op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	b.MaxElapsedTime = time.Second

	return backoff.Retry(op, b)
}
