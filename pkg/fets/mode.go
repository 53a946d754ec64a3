// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fets

import "sync"

// Mode is the calling convention shared by every FET instance of a Registry.
type Mode int

// Mode values
const (
	ModeUninitialized Mode = iota
	ModeModule             // port supplied on every call
	ModeBoundPort          // ports fixed at construction
	ModeConflict           // both conventions were mixed; every operation fails
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeUninitialized:
		return "UNINITIALIZED"
	case ModeModule:
		return "MODULE"
	case ModeBoundPort:
		return "BOUND_PORT"
	case ModeConflict:
		return "CONFLICT"
	default:
		return "UNKNOWN"
	}
}

// Registry holds the operating mode shared by all FET instances on one bus.
//
// The first instance constructed decides the mode. Constructing an instance
// in the other style switches the registry to ModeConflict, and it stays
// there for the registry's lifetime: mixing conventions on one wire is a
// setup bug and is reported by every later call on every instance.
type Registry struct {
	mu   sync.RWMutex
	mode Mode
}

// NewRegistry creates an uninitialized registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Mode returns the current operating mode
func (r *Registry) Mode() Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// Conflicted reports whether the registry has entered ModeConflict
func (r *Registry) Conflicted() bool {
	return r.Mode() == ModeConflict
}

// claim records an instance constructed with the intended mode and returns
// true if the instance may keep its ports.
func (r *Registry) claim(intended Mode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.mode {
	case ModeUninitialized:
		r.mode = intended
		return true
	case intended:
		return true
	default:
		r.mode = ModeConflict
		return false
	}
}
