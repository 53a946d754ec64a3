// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fets

import (
	"errors"
	"fmt"
)

// ErrConflict is returned by every operation once module-style and
// bound-port-style instances were constructed on the same Registry.
var ErrConflict = errors.New("fets: module and bound-port instances mixed on one bus")

// Port errors
var (
	ErrInvalidOutputPort = errors.New("fets: invalid output port")
	ErrInvalidInputPort  = errors.New("fets: invalid input port")
	ErrUnsupportedPort   = errors.New("fets: port supports digital output only")
)

// Value errors
var (
	ErrInvalidDuty     = errors.New("fets: digital value must be 0 or 1")
	ErrDutyBelowMin    = errors.New("fets: duty below minimum")
	ErrDutyAboveMax    = errors.New("fets: duty above maximum")
	ErrPeriodBelowMin  = errors.New("fets: period below minimum")
	ErrPeriodAboveMax  = errors.New("fets: period above maximum")
	ErrInvalidWaveform = errors.New("fets: invalid waveform")
)

// RangeError reports a value outside its documented bounds.
// It unwraps to one of the bound sentinels, e.g. ErrDutyAboveMax.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
	Err   error
}

// Error implements the error interface
func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: %s=%g (range %g..%g)", e.Err, e.Field, e.Value, e.Min, e.Max)
}

// Unwrap returns the bound sentinel
func (e *RangeError) Unwrap() error {
	return e.Err
}

// checkRange returns a *RangeError naming which bound v violates, or nil.
// NaN fails the low bound.
func checkRange(field string, v, lo, hi float64, below, above error) error {
	switch {
	case !(v >= lo):
		return &RangeError{Field: field, Value: v, Min: lo, Max: hi, Err: below}
	case !(v <= hi):
		return &RangeError{Field: field, Value: v, Min: lo, Max: hi, Err: above}
	}
	return nil
}
