// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fets

// Frame is one 4-byte FET frame:
//
//	[0] function<<3 | port   (telemetry: input state)
//	[1] parameter            (telemetry: output state)
//	[2] checksum = [0] ^ [1]
//	[3] device address
type Frame [FrameSize]byte

// EncodeFrame builds a command frame. Only four function bits and three port
// bits fit into the first byte; the rest are masked off.
func EncodeFrame(fn Function, port Port, param, address byte) Frame {
	var f Frame
	f[0] = (byte(fn)<<3)&functionMask | byte(port)&portMask
	f[1] = param
	f[2] = f[0] ^ f[1]
	f[3] = address
	return f
}

// Function returns the function code of a command frame
func (f Frame) Function() Function {
	return Function((f[0] & functionMask) >> 3)
}

// Port returns the output port of a command frame
func (f Frame) Port() Port {
	return Port(f[0] & portMask)
}

// Param returns the parameter byte
func (f Frame) Param() byte {
	return f[1]
}

// Address returns the device address byte
func (f Frame) Address() byte {
	return f[3]
}

// Checksum computes the expected checksum of the first two bytes
func (f Frame) Checksum() byte {
	return f[0] ^ f[1]
}

// Valid reports whether the frame carries the given address and a matching
// checksum. This is the same test the telemetry decoder applies.
func (f Frame) Valid(address byte) bool {
	return f[3] == address && f[2] == f.Checksum()
}

// Bytes returns the frame as a slice
func (f Frame) Bytes() []byte {
	return f[:]
}

// Telemetry is the last known state reported by a module.
// Bit n of Output is Out(n+1); bit n of Input is In(n+1).
type Telemetry struct {
	Output uint8
	Input  uint8
}

// TelemetryFrame builds the frame a module sends to report its state.
func TelemetryFrame(t Telemetry, address byte) Frame {
	var f Frame
	f[0] = t.Input
	f[1] = t.Output
	f[2] = f[0] ^ f[1]
	f[3] = address
	return f
}

// OutputBit returns the bit of an output port (0 or 1)
func (t Telemetry) OutputBit(p Port) uint8 {
	return (t.Output >> outputBit(p)) & 0x01
}

// InputBit returns the bit of an input port (0 or 1)
func (t Telemetry) InputBit(p Port) uint8 {
	return (t.Input >> inputBit(p)) & 0x01
}
