// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package underbody

import "fmt"

// Frame is one 8-byte movement frame:
//
//	[0,1] param1 high, low
//	[2,3] param2 high, low
//	[4,5] param3 high, low
//	[6]   checksum = XOR of [0..5]
//	[7]   move mode
type Frame [FrameSize]byte

// PackSigned splits v into a sign-magnitude pair: the high byte holds the
// sign in bit 6 and magnitude bits 7-12, the low byte magnitude bits 0-6.
func PackSigned(v int) (hi, lo byte) {
	if v < 0 {
		hi = signBit
		v = -v
	}
	hi |= byte(v>>lowBits) & highMask
	lo = byte(v) & lowMask
	return hi, lo
}

// UnpackSigned is the inverse of PackSigned for magnitudes up to MaxMagnitude
func UnpackSigned(hi, lo byte) int {
	v := int(hi&highMask)<<lowBits | int(lo&lowMask)
	if hi&signBit != 0 {
		v = -v
	}
	return v
}

// EncodeFrame builds a movement frame
func EncodeFrame(p1, p2, p3 int, mode MoveMode) Frame {
	var f Frame
	f[0], f[1] = PackSigned(p1)
	f[2], f[3] = PackSigned(p2)
	f[4], f[5] = PackSigned(p3)
	f[6] = f.Checksum()
	f[7] = byte(mode)
	return f
}

// Checksum computes the XOR of the six parameter bytes
func (f Frame) Checksum() byte {
	var sum byte
	for _, b := range f[:6] {
		sum ^= b
	}
	return sum
}

// Valid reports whether the checksum byte matches
func (f Frame) Valid() bool {
	return f[6] == f.Checksum()
}

// Params unpacks the three parameters
func (f Frame) Params() (p1, p2, p3 int) {
	return UnpackSigned(f[0], f[1]), UnpackSigned(f[2], f[3]), UnpackSigned(f[4], f[5])
}

// Mode returns the move mode byte
func (f Frame) Mode() MoveMode {
	return MoveMode(f[7])
}

// Bytes returns the frame as a slice
func (f Frame) Bytes() []byte {
	return f[:]
}

// FormatFrame formats a movement frame into a human-readable string
func FormatFrame(f Frame) string {
	p1, p2, p3 := f.Params()

	var result string
	switch f.Mode() {
	case MoveRect:
		result = fmt.Sprintf("RECT vx=%dmm/s vy=%dmm/s omega=%ddeg/s", p1, p2, p3)
	case MovePolar:
		result = fmt.Sprintf("POLAR speed=%dmm/s dir=%ddeg omega=%ddeg/s", p1, p2, p3)
	case MoveStop:
		result = "STOP"
	default:
		result = fmt.Sprintf("UNKNOWN(0x%02X) p1=%d p2=%d p3=%d", byte(f.Mode()), p1, p2, p3)
	}

	if !f.Valid() {
		result += fmt.Sprintf(" BAD_CHECKSUM(0x%02X!=0x%02X)", f[6], f.Checksum())
	}
	return result
}
