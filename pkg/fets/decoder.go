// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fets

// Decoder finds telemetry frames in a raw byte stream.
//
// There is no frame delimiter on the wire. The decoder keeps the last four
// bytes and tests them after every byte: if the newest byte is the device
// address and the third byte is the XOR of the first two, the window is a
// frame. This locks on after any misalignment, and can also lock on four
// bytes that only look like a frame.
//
// Each Decoder owns its window. Two decoders draining the same stream see
// different subsets of it and can disagree about the device state.
type Decoder struct {
	address byte
	window  Frame
}

// NewDecoder creates a decoder for frames ending in the given address
func NewDecoder(address byte) *Decoder {
	return &Decoder{address: address}
}

// Reset clears the window
func (d *Decoder) Reset() {
	d.window = Frame{}
}

// Window returns a copy of the current window
func (d *Decoder) Window() Frame {
	return d.window
}

// DecodeByte pushes one byte into the window.
// Returns the decoded telemetry and true if the window now holds a frame.
func (d *Decoder) DecodeByte(b byte) (Telemetry, bool) {
	copy(d.window[:], d.window[1:])
	d.window[FrameSize-1] = b

	if !d.window.Valid(d.address) {
		return Telemetry{}, false
	}
	return Telemetry{Output: d.window[1], Input: d.window[0]}, true
}
