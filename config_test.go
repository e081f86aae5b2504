// config_test.go: unit tests for Config validation.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import "testing"

func TestConfig_Validate_Defaults(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate returned an error: %v", err)
	}
	if c.InitialTableSize != InitialTableSize {
		t.Errorf("InitialTableSize = %d, want %d", c.InitialTableSize, InitialTableSize)
	}
	if c.MaxTableSize != MaxTableSize {
		t.Errorf("MaxTableSize = %d, want %d", c.MaxTableSize, MaxTableSize)
	}
	if c.GrowthFactor != GrowthFactor {
		t.Errorf("GrowthFactor = %d, want %d", c.GrowthFactor, GrowthFactor)
	}
	if c.PoolCapacity != DefaultPoolCapacity {
		t.Errorf("PoolCapacity = %d, want %d", c.PoolCapacity, DefaultPoolCapacity)
	}
	if c.ReaperInterval != DefaultReaperInterval {
		t.Errorf("ReaperInterval = %v, want %v", c.ReaperInterval, DefaultReaperInterval)
	}
	if c.AOFPath != "AytDB.aof" {
		t.Errorf("AOFPath = %q, want AytDB.aof", c.AOFPath)
	}
	if c.Logger == nil {
		t.Error("Logger should default to NoOpLogger")
	}
	if c.TimeProvider == nil {
		t.Error("TimeProvider should default to a non-nil provider")
	}
}

func TestConfig_Validate_AOFUsesFasterReaper(t *testing.T) {
	c := Config{Persistence: PersistenceAOF}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate returned an error: %v", err)
	}
	if c.ReaperInterval.Seconds() != 1 {
		t.Errorf("AOF mode should default ReaperInterval to 1s, got %v", c.ReaperInterval)
	}
}

func TestConfig_Validate_NonPowerOfTwoTableSize(t *testing.T) {
	c := Config{InitialTableSize: 1000}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate returned an error: %v", err)
	}
	if c.InitialTableSize != InitialTableSize {
		t.Errorf("non power-of-two InitialTableSize should fall back to default, got %d", c.InitialTableSize)
	}
}

func TestConfig_Validate_NeverFails(t *testing.T) {
	c := Config{
		InitialTableSize: -5,
		MaxTableSize:     -1,
		GrowthFactor:     0,
		PoolCapacity:     -1,
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate must never return an error, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Persistence != PersistenceNone {
		t.Errorf("DefaultConfig should select PersistenceNone, got %v", c.Persistence)
	}
}
