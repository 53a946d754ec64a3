// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fets

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// Transport is the byte channel to the bus.
//
// WriteByte transmits one byte. ReadByte polls for one received byte and
// returns io.EOF when nothing is available; it must not block waiting for
// data. *bytes.Buffer satisfies Transport.
type Transport interface {
	io.ByteWriter
	io.ByteReader
}

// Fets drives one FET module.
//
// All calls are synchronous: validation happens first, then the frame is
// written to the transport before the call returns. Nothing is acknowledged.
// A Fets is not safe for concurrent use.
type Fets struct {
	registry *Registry
	t        Transport
	address  byte
	output   Port
	input    Port

	decoder   *Decoder
	telemetry Telemetry
	stats     *Statistics
}

// New creates a FET instance on the given registry.
//
// Passing None as output selects module style, where every call names its
// port. Passing an output port selects bound-port style. If the registry
// was already set to the other style it enters ModeConflict and the
// instance keeps no ports.
func New(registry *Registry, t Transport, address byte, output, input Port) *Fets {
	intended := ModeModule
	if output != None {
		intended = ModeBoundPort
	}

	f := &Fets{
		registry: registry,
		t:        t,
		address:  address,
		decoder:  NewDecoder(address),
		stats:    NewStatistics(),
	}
	if registry.claim(intended) {
		f.output = output
		f.input = input
	}
	return f
}

// Address returns the device address byte
func (f *Fets) Address() byte {
	return f.address
}

// BoundPorts returns the ports fixed at construction (None in module style)
func (f *Fets) BoundPorts() (output, input Port) {
	return f.output, f.input
}

// Telemetry returns the cached snapshot without polling the transport.
// Before the first successful decode this is the zero value.
func (f *Fets) Telemetry() Telemetry {
	return f.telemetry
}

// Stats returns a copy of the decode statistics
func (f *Fets) Stats() Statistics {
	return *f.stats
}

// ResetStats restarts the decode statistics
func (f *Fets) ResetStats() {
	f.stats.Reset()
}

// resolveOutput picks the requested output port, or the bound one.
func (f *Fets) resolveOutput(requested Port) Port {
	switch {
	case f.registry.Conflicted():
		return None
	case requested.IsOutput():
		return requested
	case f.output.IsOutput():
		return f.output
	}
	return None
}

// resolveInput picks the requested input port, or the bound one.
func (f *Fets) resolveInput(requested Port) Port {
	switch {
	case f.registry.Conflicted():
		return None
	case requested.IsInput():
		return requested
	case f.input.IsInput():
		return f.input
	}
	return None
}

// outputPort resolves an output port or reports why it could not.
func (f *Fets) outputPort(requested Port) (Port, error) {
	if f.registry.Conflicted() {
		return None, ErrConflict
	}
	p := f.resolveOutput(requested)
	if p == None {
		return None, fmt.Errorf("%w: %v", ErrInvalidOutputPort, requested)
	}
	return p, nil
}

func (f *Fets) inputPort(requested Port) (Port, error) {
	if f.registry.Conflicted() {
		return None, ErrConflict
	}
	p := f.resolveInput(requested)
	if p == None {
		return None, fmt.Errorf("%w: %v", ErrInvalidInputPort, requested)
	}
	return p, nil
}

// SendData resolves the output port and writes one command frame.
func (f *Fets) SendData(fn Function, port Port, param byte) error {
	p, err := f.outputPort(port)
	if err != nil {
		return err
	}

	frame := EncodeFrame(fn, p, param, f.address)
	for _, b := range frame {
		if err := f.t.WriteByte(b); err != nil {
			return fmt.Errorf("fets: send %s to %v: %w", FunctionName(fn), p, err)
		}
	}
	return nil
}

// RecvData drains every byte currently available from the transport and
// updates the telemetry snapshot each time the window holds a valid frame.
// Returns the number of bytes drained.
func (f *Fets) RecvData() (int, error) {
	if f.registry.Conflicted() {
		return 0, ErrConflict
	}

	n, matched := 0, 0
	var err error
	for {
		var b byte
		b, err = f.t.ReadByte()
		if err != nil {
			break
		}
		n++
		if t, ok := f.decoder.DecodeByte(b); ok {
			f.telemetry = t
			matched++
		}
	}
	f.stats.Update(n, matched, time.Now())

	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, fmt.Errorf("fets: receive: %w", err)
}

// Write sets an output port to 0 or 1.
func (f *Fets) Write(value int, port Port) error {
	p, err := f.outputPort(port)
	if err != nil {
		return err
	}
	if value != 0 && value != 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuty, value)
	}
	return f.SendData(FuncDigitalOut, p, byte(value)&0x01)
}

// WritePWM drives an output port with a duty ratio in [0.0, 1.0].
// Out7 has no PWM hardware.
func (f *Fets) WritePWM(duty float64, port Port) error {
	p, err := f.outputPort(port)
	if err != nil {
		return err
	}
	if p == DigitalOnly {
		return fmt.Errorf("%w: %v", ErrUnsupportedPort, p)
	}
	if err := checkRange("duty", duty, 0.0, 1.0, ErrDutyBelowMin, ErrDutyAboveMax); err != nil {
		return err
	}
	return f.SendData(FuncPWMOut, p, byte(math.Round(duty*PWMResolution)))
}

// WriteWave generates a waveform on an output port.
// The period is in milliseconds and is sent with 100 ms resolution.
func (f *Fets) WriteWave(form Waveform, period int, port Port) error {
	p, err := f.outputPort(port)
	if err != nil {
		return err
	}
	if !form.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidWaveform, form)
	}
	if p == DigitalOnly {
		return fmt.Errorf("%w: %v", ErrUnsupportedPort, p)
	}
	if err := checkRange("period", float64(period), MinWavePeriod, MaxWavePeriod, ErrPeriodBelowMin, ErrPeriodAboveMax); err != nil {
		return err
	}
	return f.SendData(Function(form), p, byte(period/WavePeriodStep))
}

// SensorRespond programs the module to hold the output at actOutput while
// the input reads actInput, and to release it when the input changes back.
//
// The result reports whether the cached output bit already equals
// actOutput. It is only meaningful after a decode has run.
func (f *Fets) SensorRespond(actInput, actOutput bool, output, input Port) (bool, error) {
	return f.sensor(FuncSensorRespond, actInput, actOutput, output, input)
}

// SensorTrigger programs the module to latch the output at actOutput the
// first time the input reads actInput, and to hold it from then on.
// The result follows the same convention as SensorRespond.
func (f *Fets) SensorTrigger(actInput, actOutput bool, output, input Port) (bool, error) {
	return f.sensor(FuncSensorTrigger, actInput, actOutput, output, input)
}

func (f *Fets) sensor(fn Function, actInput, actOutput bool, output, input Port) (bool, error) {
	out, err := f.outputPort(output)
	if err != nil {
		return false, err
	}
	in, err := f.inputPort(input)
	if err != nil {
		return false, err
	}

	if err := f.SendData(fn, out, SensorParam(actInput, actOutput, in)); err != nil {
		return false, err
	}
	return f.telemetry.OutputBit(out) == bit(actOutput), nil
}

// SensorParam packs the parameter byte of a sensor frame:
// bit4 = actInput, bit3 = actOutput, bits0-2 = input number 1..7.
func SensorParam(actInput, actOutput bool, input Port) byte {
	return stateMask & (bit(actInput)<<4 | bit(actOutput)<<3 | byte(input-Separator)&portMask)
}

// OutputState polls the transport, then returns the output bit of the
// resolved port, or the whole 7-bit output field if no port resolves.
func (f *Fets) OutputState(port Port) (uint8, error) {
	if _, err := f.RecvData(); err != nil {
		return 0, err
	}
	p := f.resolveOutput(port)
	if p == None {
		return f.telemetry.Output & stateMask, nil
	}
	return f.telemetry.OutputBit(p), nil
}

// InputState polls the transport, then returns the input bit of the
// resolved port, or the whole 7-bit input field if no port resolves.
func (f *Fets) InputState(port Port) (uint8, error) {
	if _, err := f.RecvData(); err != nil {
		return 0, err
	}
	p := f.resolveInput(port)
	if p == None {
		return f.telemetry.Input & stateMask, nil
	}
	return f.telemetry.InputBit(p), nil
}

// Valid reports whether w is one of the five waveforms
func (w Waveform) Valid() bool {
	return w >= Square && w <= InvSawtooth
}

// CallBudget returns how many FET calls fit into one control period at the
// given baud rate. Each call is one 4-byte frame; the figure counts eight
// bit times per byte, which gives 36 calls per 10 ms at 115200 bps.
func CallBudget(baud int, period time.Duration) int {
	if baud <= 0 || period <= 0 {
		return 0
	}
	bytesPerPeriod := int64(baud) * int64(period) / int64(8*time.Second)
	return int(bytesPerPeriod / FrameSize)
}

func bit(v bool) byte {
	if v {
		return 1
	}
	return 0
}
