// entry_test.go: unit tests for key hashing.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import "testing"

func TestHashKey_Deterministic(t *testing.T) {
	a := hashKey([]byte("hello"))
	b := hashKey([]byte("hello"))
	if a != b {
		t.Errorf("hashKey is not deterministic: %d != %d", a, b)
	}
}

func TestHashKey_DifferentKeysLikelyDiffer(t *testing.T) {
	if hashKey([]byte("a")) == hashKey([]byte("b")) {
		t.Error("distinct single-byte keys hashed to the same value (suspicious, not necessarily wrong)")
	}
}

func TestHashKey32_IsLowBitsOfHashKey(t *testing.T) {
	full := hashKey([]byte("some-key"))
	low32 := hashKey32([]byte("some-key"))
	if uint32(full) != low32 {
		t.Errorf("hashKey32() = %d, want low 32 bits of hashKey() = %d", low32, uint32(full))
	}
}
