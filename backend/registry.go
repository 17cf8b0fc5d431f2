// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/dusk/proc"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	backendPriority = []string{WGPU, Soft}
)

// Register registers a table factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get builds the table of the named backend.
func Get(name string) (*proc.Table, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	t, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend %q: %w", name, err)
	}
	if err := Validate(t); err != nil {
		return nil, fmt.Errorf("backend %q: %w", name, err)
	}
	return t, nil
}

// Default returns the table of the best available backend based on
// priority, falling back to any registered backend in name order.
func Default() (*proc.Table, error) {
	tried := make(map[string]bool)
	for _, name := range backendPriority {
		tried[name] = true
		if !IsRegistered(name) {
			continue
		}
		if t, err := Get(name); err == nil {
			return t, nil
		}
	}

	for _, name := range Available() {
		if tried[name] {
			continue
		}
		if t, err := Get(name); err == nil {
			return t, nil
		}
	}

	return nil, ErrBackendNotAvailable
}

// MustDefault returns the default table or panics.
func MustDefault() *proc.Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}
