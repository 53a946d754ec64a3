// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package underbody implements the command side of the omnidirectional
// chassis driver protocol.
//
// Every command is one 8-byte frame carrying three signed values in
// sign-magnitude form, a checksum and a move mode. The chassis never
// answers.
package underbody

// FrameSize is the length of a movement frame
const FrameSize = 8

// MoveMode selects how the three frame parameters are interpreted
type MoveMode uint8

// Move modes
const (
	MoveRect  MoveMode = 0xFF // vX, vY, omega
	MovePolar MoveMode = 0xFE // speed, direction, omega
	MoveStop  MoveMode = 0xF0
)

// Command limits
const (
	MaxVelocity = 8000 // mm/s
	MaxOmega    = 500  // deg/s

	// MaxMagnitude is the largest magnitude the 6+7 bit packing can carry.
	// Larger values wrap silently; the velocity limits keep commands below it.
	MaxMagnitude = 1<<13 - 1
)

// Sign-magnitude packing
const (
	signBit  = 0x40
	highMask = 0x3F
	lowMask  = 0x7F
	lowBits  = 7
)

// String returns the move mode name
func (m MoveMode) String() string {
	switch m {
	case MoveRect:
		return "RECT"
	case MovePolar:
		return "POLAR"
	case MoveStop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}
