// facade.go: a thin package-level facade over one lazily-initialized Store.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import "sync"

// Global mutable state is deliberately limited to this file: every other
// component in this module takes its dependencies as constructor
// arguments. This facade exists only so a standalone front end (such as
// a console REPL) can avoid threading a *Store through
// every call without every library consumer being forced into a global.
var (
	defaultMu    sync.Mutex
	defaultStore *Store
)

// Init constructs the process-wide default Store from cfg. Calling Init a
// second time without Shutdown returns an error rather than silently
// replacing the running instance.
func Init(cfg Config) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultStore != nil {
		return NewErrBadArgument("Init", "default store already initialized")
	}
	s, err := New(cfg)
	if err != nil {
		return err
	}
	defaultStore = s
	return nil
}

// Default returns the process-wide Store, constructing one with
// DefaultConfig() on first use if Init was never called.
func Default() *Store {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultStore == nil {
		s, err := New(DefaultConfig())
		if err != nil {
			// DefaultConfig's Validate() never leaves an invalid state,
			// so New can only fail here on a truly unexpected internal
			// condition.
			panic(err)
		}
		defaultStore = s
	}
	return defaultStore
}

// Shutdown closes and clears the process-wide default Store, if any.
func Shutdown() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultStore == nil {
		return nil
	}
	err := defaultStore.Close()
	defaultStore = nil
	return err
}
