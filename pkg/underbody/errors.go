// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package underbody

import (
	"errors"
	"fmt"
)

// Bound errors, in the order they are checked
var (
	ErrVXAboveMax    = errors.New("underbody: vx above maximum")
	ErrVXBelowMin    = errors.New("underbody: vx below minimum")
	ErrVYAboveMax    = errors.New("underbody: vy above maximum")
	ErrVYBelowMin    = errors.New("underbody: vy below minimum")
	ErrSpeedAboveMax = errors.New("underbody: speed above maximum")
	ErrSpeedBelowMin = errors.New("underbody: speed below minimum")
	ErrOmegaAboveMax = errors.New("underbody: omega above maximum")
	ErrOmegaBelowMin = errors.New("underbody: omega below minimum")
)

// RangeError reports a velocity outside its bounds.
// It unwraps to the matching bound sentinel.
type RangeError struct {
	Field string
	Value int
	Limit int
	Err   error
}

// Error implements the error interface
func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: %s=%d (limit ±%d)", e.Err, e.Field, e.Value, e.Limit)
}

// Unwrap returns the bound sentinel
func (e *RangeError) Unwrap() error {
	return e.Err
}

// checkBound checks -limit <= v <= limit, high bound first.
func checkBound(field string, v, limit int, above, below error) error {
	switch {
	case v > limit:
		return &RangeError{Field: field, Value: v, Limit: limit, Err: above}
	case v < -limit:
		return &RangeError{Field: field, Value: v, Limit: limit, Err: below}
	}
	return nil
}
