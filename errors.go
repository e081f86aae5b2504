// errors.go: structured error kinds for AytDB core operations.
//
// This mirrors the teacher library's own error handling: rich context,
// standardized error codes, and retryability hints via go-errors, instead
// of the original's bool/NULL return-code convention (§7, §9 "Dispatch of
// error conditions").
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes, one per §7 error kind.
const (
	ErrCodeBadArgument    errors.ErrorCode = "AYTDB_BAD_ARGUMENT"
	ErrCodePoolExhausted  errors.ErrorCode = "AYTDB_POOL_EXHAUSTED"
	ErrCodeArenaExhausted errors.ErrorCode = "AYTDB_ARENA_EXHAUSTED"
	ErrCodeOverProbing    errors.ErrorCode = "AYTDB_OVER_PROBING"
	ErrCodeIOError        errors.ErrorCode = "AYTDB_IO_ERROR"
	ErrCodeCorruptFile    errors.ErrorCode = "AYTDB_CORRUPT_FILE"
	ErrCodeKeyNotFound    errors.ErrorCode = "AYTDB_KEY_NOT_FOUND"
	ErrCodeInternal       errors.ErrorCode = "AYTDB_INTERNAL"
)

const (
	msgBadArgument    = "bad argument"
	msgPoolExhausted  = "entry pool exhausted"
	msgArenaExhausted = "arena allocation failed"
	msgOverProbing    = "slot search exceeded probe bound"
	msgIOError        = "persistence I/O error"
	msgCorruptFile    = "corrupt persistence file"
	msgKeyNotFound    = "key not found"
	msgInternal       = "internal error"
)

// NewErrBadArgument reports kind 1: null/oversized key or value, or a
// TCP-level parse failure. Never fatal.
func NewErrBadArgument(operation, reason string) error {
	return errors.NewWithContext(ErrCodeBadArgument, msgBadArgument, map[string]interface{}{
		"operation": operation,
		"reason":    reason,
	})
}

// NewErrPoolExhausted reports kind 2: pool_alloc returned nil. The
// triggering operation fails; no in-memory state changes.
func NewErrPoolExhausted(key string) error {
	return errors.NewWithField(ErrCodePoolExhausted, msgPoolExhausted, "key", key)
}

// NewErrArenaExhausted reports kind 3: arena_alloc returned nil during a
// resize. The resize is aborted; the old table is retained.
func NewErrArenaExhausted(requestedSize int) error {
	return errors.NewWithContext(ErrCodeArenaExhausted, msgArenaExhausted, map[string]interface{}{
		"requested_size": requestedSize,
	})
}

// NewErrOverProbing reports kind 4: slot search hit the probe bound.
func NewErrOverProbing(key string, maxProbes int) error {
	return errors.NewWithContext(ErrCodeOverProbing, msgOverProbing, map[string]interface{}{
		"key":        key,
		"max_probes": maxProbes,
	}).AsRetryable()
}

// NewErrIOError reports kind 5: a persistence write or rename failed.
func NewErrIOError(path string, cause error) error {
	return errors.Wrap(cause, ErrCodeIOError, msgIOError).
		WithContext("path", path).
		AsRetryable()
}

// NewErrCorruptFile reports kind 6: a snapshot header or block failed
// validation.
func NewErrCorruptFile(path, details string) error {
	return errors.NewWithContext(ErrCodeCorruptFile, msgCorruptFile, map[string]interface{}{
		"path":    path,
		"details": details,
	})
}

// NewErrKeyNotFound reports a dispatcher-level "absent" where the caller
// needs an error rather than a sentinel (e.g. del on a missing key).
func NewErrKeyNotFound(key string) error {
	return errors.NewWithField(ErrCodeKeyNotFound, msgKeyNotFound, "key", key)
}

// NewErrInternal wraps an unexpected failure that doesn't fit any of the
// other kinds, preserving the cause.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternal, msgInternal).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternal, msgInternal, "operation", operation).
		WithSeverity("warning")
}

// IsPoolExhausted reports whether err is a pool-exhaustion error.
func IsPoolExhausted(err error) bool {
	return errors.HasCode(err, ErrCodePoolExhausted)
}

// IsArenaExhausted reports whether err is an arena-exhaustion error.
func IsArenaExhausted(err error) bool {
	return errors.HasCode(err, ErrCodeArenaExhausted)
}

// IsIOError reports whether err is a persistence I/O error.
func IsIOError(err error) bool {
	return errors.HasCode(err, ErrCodeIOError)
}

// IsCorruptFile reports whether err is a corrupt-file error.
func IsCorruptFile(err error) bool {
	return errors.HasCode(err, ErrCodeCorruptFile)
}

// IsBadArgument reports whether err is a bad-argument error.
func IsBadArgument(err error) bool {
	return errors.HasCode(err, ErrCodeBadArgument)
}

// IsKeyNotFound reports whether err denotes a missing key.
func IsKeyNotFound(err error) bool {
	return errors.HasCode(err, ErrCodeKeyNotFound)
}

// IsRetryable reports whether err can reasonably be retried by the caller.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from err, or "" if it carries none.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// errorReply renders err as "ERROR: <message>". The dispatcher package
// has its own errorReply, which also appends " (key=<key>)".
func errorReply(err error) string {
	return fmt.Sprintf("ERROR: %s", err.Error())
}
