// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package sim simulates a FET module on an in-memory line, so commands can
// be tried without hardware.
package sim

import (
	"fmt"
	"io"

	"github.com/YukiHonma/sakura/pkg/fets"
	"github.com/YukiHonma/sakura/pkg/transport"
)

// Line is the device side of the bus
type Line interface {
	io.ByteReader
	io.ByteWriter
}

type rule struct {
	input     fets.Port
	actInput  bool
	actOutput bool
	latch     bool // trigger: fire once and hold
}

// Device is a simulated FET module
type Device struct {
	line    Line
	address byte
	decoder *fets.Decoder
	state   fets.Telemetry
	rules   map[fets.Port]rule

	commands uint64
	last     fets.Frame
}

// NewDevice creates a module answering to address on line
func NewDevice(line Line, address byte) *Device {
	return &Device{
		line:    line,
		address: address,
		decoder: fets.NewDecoder(address),
		rules:   make(map[fets.Port]rule),
	}
}

// State returns the current output and input fields
func (d *Device) State() fets.Telemetry {
	return d.state
}

// Commands returns the number of command frames applied
func (d *Device) Commands() uint64 {
	return d.commands
}

// LastCommand returns the last command frame applied
func (d *Device) LastCommand() fets.Frame {
	return d.last
}

// SetInput drives an input port and re-evaluates sensor rules
func (d *Device) SetInput(p fets.Port, level bool) error {
	if !p.IsInput() {
		return fmt.Errorf("sim: %v is not an input port", p)
	}
	d.state.Input = setBit(d.state.Input, uint(p-fets.In1), level)
	d.evaluate()
	return nil
}

// ToggleInput flips an input port
func (d *Device) ToggleInput(p fets.Port) error {
	if !p.IsInput() {
		return fmt.Errorf("sim: %v is not an input port", p)
	}
	return d.SetInput(p, d.state.InputBit(p) == 0)
}

// Step reads every pending byte from the line and applies the command
// frames found. Returns the number of commands applied.
func (d *Device) Step() int {
	applied := 0
	for {
		b, err := d.line.ReadByte()
		if err != nil {
			break
		}
		if _, ok := d.decoder.DecodeByte(b); ok {
			d.apply(d.decoder.Window())
			applied++
		}
	}
	if applied > 0 {
		d.evaluate()
	}
	return applied
}

// Report writes one telemetry frame to the line
func (d *Device) Report() error {
	for _, b := range fets.TelemetryFrame(d.state, d.address) {
		if err := d.line.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) apply(f fets.Frame) {
	port := f.Port()
	if !port.IsOutput() {
		return
	}
	d.commands++
	d.last = f

	switch f.Function() {
	case fets.FuncDigitalOut:
		delete(d.rules, port)
		d.setOutput(port, f.Param()&0x01 != 0)
	case fets.FuncPWMOut,
		fets.FuncWaveSquare, fets.FuncWaveSine, fets.FuncWaveTriangle,
		fets.FuncWaveSawtooth, fets.FuncWaveInvSaw:
		// Any non-zero drive reads back as on
		delete(d.rules, port)
		d.setOutput(port, f.Param() != 0)
	case fets.FuncSensorRespond, fets.FuncSensorTrigger:
		p := f.Param()
		d.rules[port] = rule{
			input:     fets.Separator + fets.Port(p&0x07),
			actInput:  p&0x10 != 0,
			actOutput: p&0x08 != 0,
			latch:     f.Function() == fets.FuncSensorTrigger,
		}
	}
}

func (d *Device) evaluate() {
	for out, r := range d.rules {
		active := d.state.InputBit(r.input) == bit(r.actInput)
		switch {
		case active && r.latch:
			d.setOutput(out, r.actOutput)
			delete(d.rules, out)
		case active:
			d.setOutput(out, r.actOutput)
		case !r.latch:
			d.setOutput(out, !r.actOutput)
		}
	}
}

func (d *Device) setOutput(p fets.Port, on bool) {
	d.state.Output = setBit(d.state.Output, uint(p-fets.Out1), on)
}

// Bench joins a host transport to a simulated device. The device runs
// whenever the host finds the line empty, and answers with one telemetry
// frame per drain.
type Bench struct {
	Device   *Device
	host     *transport.Loopback
	answered bool
}

// NewBench creates a bench with one simulated module at address
func NewBench(address byte) *Bench {
	host, device := transport.Pipe()
	return &Bench{Device: NewDevice(device, address), host: host}
}

// WriteByte sends one byte to the device
func (b *Bench) WriteByte(c byte) error {
	b.answered = false
	return b.host.WriteByte(c)
}

// ReadByte reads from the device, letting it process commands and report
// once each time the line runs dry.
func (b *Bench) ReadByte() (byte, error) {
	c, err := b.host.ReadByte()
	if err == nil {
		return c, nil
	}
	if b.answered {
		b.answered = false
		return 0, io.EOF
	}
	b.answered = true
	b.Device.Step()
	if err := b.Device.Report(); err != nil {
		return 0, err
	}
	return b.host.ReadByte()
}

// Close implements io.Closer
func (b *Bench) Close() error {
	return nil
}

// Info describes the bench for status lines
func (b *Bench) Info() string {
	return fmt.Sprintf("Simulator: FET @ 0x%02X", b.Device.address)
}

func setBit(v uint8, n uint, on bool) uint8 {
	if on {
		return v | 1<<n
	}
	return v &^ (1 << n)
}

func bit(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
