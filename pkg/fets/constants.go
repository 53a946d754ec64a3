// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package fets implements the host side of the FET driver module protocol.
//
// A FET module drives seven output ports (solenoids, lamps, PWM loads) and
// reads seven input ports. The host sends fixed 4-byte command frames and
// polls 4-byte telemetry frames carrying the output and input bit fields.
// Several modules can share one serial line; each one answers to its own
// address byte.
package fets

// DefaultAddress is the address byte a module answers to out of the box.
const DefaultAddress = 0x90

// FrameSize is the length of every FET frame, in both directions.
const FrameSize = 4

// Function selects the remote action a command frame requests.
type Function uint8

// Function codes
const (
	FuncDigitalOut    Function = 0x01
	FuncPWMOut        Function = 0x02
	FuncSensorRespond Function = 0x03
	FuncSensorTrigger Function = 0x04
	FuncWaveSquare    Function = 0x05
	FuncWaveSine      Function = 0x06
	FuncWaveTriangle  Function = 0x07
	FuncWaveSawtooth  Function = 0x08
	FuncWaveInvSaw    Function = 0x09
)

// Waveform selects a generated output shape. Each waveform is sent as its
// own function code.
type Waveform Function

// Waveform values
const (
	Square      = Waveform(FuncWaveSquare)
	Sine        = Waveform(FuncWaveSine)
	Triangular  = Waveform(FuncWaveTriangle)
	Sawtooth    = Waveform(FuncWaveSawtooth)
	InvSawtooth = Waveform(FuncWaveInvSaw)
)

// Output value limits
const (
	PWMResolution = 127 // parameter value for 100% duty

	MinWavePeriod  = 100   // ms
	MaxWavePeriod  = 10000 // ms
	WavePeriodStep = 100   // ms per parameter count
)

// Bit masks used when packing frames
const (
	functionMask = 0x78
	portMask     = 0x07
	stateMask    = 0x7F
)
