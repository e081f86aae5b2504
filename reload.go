// reload.go: dynamic reconfiguration of the network password and snapshot
// interval, using Argus file watching.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package aytdb

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// ServerSettings holds the two knobs that can be changed without a restart:
// the TCP auth password (the "config password" command's target) and the
// snapshot worker's period (the "interval" command's target). Grounded on
// the teacher's HotConfig, retargeted from cache-sizing knobs onto these two
// fields since AytDB's table geometry (unlike a cache's MaxSize) is fixed
// for the process lifetime and cannot be hot-reloaded.
type ServerSettings struct {
	Password         string
	SnapshotInterval time.Duration
}

// HotSettings watches a configuration file for ServerSettings changes,
// supplementing the "config password"/"interval" commands with a
// non-command trigger path (e.g. an operator editing a file instead of
// opening a connection). A changed snapshot interval is applied to the
// Store through Reschedule. A changed password is not applied anywhere
// by HotSettings: the Store holds no password, so the new value is only
// recorded in Current() and passed to OnReload.
type HotSettings struct {
	store   *Store
	watcher *argus.Watcher
	mu      sync.RWMutex
	current ServerSettings

	// OnReload is called after a change is applied. Optional, must be
	// fast and non-blocking.
	OnReload func(old, new ServerSettings)
}

// HotSettingsOptions configures the watcher.
type HotSettingsOptions struct {
	// ConfigPath is the file to watch. Supports JSON, YAML, TOML, HCL,
	// INI, Properties, per Argus's format auto-detection.
	ConfigPath string

	// PollInterval is how often to check for changes. Default 1s, floor 100ms.
	PollInterval time.Duration

	OnReload func(old, new ServerSettings)
}

// NewHotSettings starts watching opts.ConfigPath and applying changes to
// store. Expected file shape (YAML):
//
//	server:
//	  password: "newpassword"
//	  snapshot_interval: "10m"
func NewHotSettings(store *Store, opts HotSettingsOptions) (*HotSettings, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	hs := &HotSettings{
		store:    store,
		OnReload: opts.OnReload,
		current:  ServerSettings{Password: "password", SnapshotInterval: store.cfg.SnapshotInterval},
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hs.handleChange, argus.Config{
		PollInterval: opts.PollInterval,
	})
	if err != nil {
		return nil, err
	}
	hs.watcher = watcher
	return hs, nil
}

// Start begins watching, a no-op if already running.
func (hs *HotSettings) Start() error {
	if hs.watcher.IsRunning() {
		return nil
	}
	return hs.watcher.Start()
}

// Stop stops watching.
func (hs *HotSettings) Stop() error {
	return hs.watcher.Stop()
}

// Current returns the last-applied settings.
func (hs *HotSettings) Current() ServerSettings {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	return hs.current
}

func (hs *HotSettings) handleChange(data map[string]interface{}) {
	hs.mu.Lock()
	old := hs.current
	next := hs.parse(data, old)
	hs.current = next
	hs.mu.Unlock()

	if next.SnapshotInterval != old.SnapshotInterval {
		hs.store.Reschedule(int(next.SnapshotInterval / time.Second))
	}

	if hs.OnReload != nil {
		hs.OnReload(old, next)
	}
}

func (hs *HotSettings) parse(data map[string]interface{}, fallback ServerSettings) ServerSettings {
	next := fallback

	section, ok := data["server"].(map[string]interface{})
	if !ok {
		if _, hasPassword := data["password"]; hasPassword {
			section = data
		} else {
			return next
		}
	}

	if pw, ok := section["password"].(string); ok && pw != "" {
		next.Password = pw
	}
	if str, ok := section["snapshot_interval"].(string); ok {
		if d, err := time.ParseDuration(str); err == nil && d > 0 {
			next.SnapshotInterval = d
		}
	}

	return next
}
