// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fets

import (
	"fmt"
	"strconv"
	"strings"
)

// Port identifies one output or input terminal on a FET module.
type Port uint8

// Port values. Output and input ranges are separated by an unused value and
// never overlap.
const (
	None Port = iota

	Out1
	Out2
	Out3
	Out4
	Out5
	Out6
	Out7 // digital only

	Separator

	In1
	In2
	In3
	In4
	In5
	In6
	In7
)

// DigitalOnly is the output port without PWM or waveform hardware.
const DigitalOnly = Out7

// IsOutput reports whether p is one of Out1..Out7.
func (p Port) IsOutput() bool {
	return p > None && p < Separator
}

// IsInput reports whether p is one of In1..In7.
func (p Port) IsInput() bool {
	return p > Separator && p <= In7
}

// String returns the port name, e.g. "Out3" or "In1"
func (p Port) String() string {
	switch {
	case p == None:
		return "None"
	case p.IsOutput():
		return "Out" + strconv.Itoa(int(p-Out1)+1)
	case p.IsInput():
		return "In" + strconv.Itoa(int(p-In1)+1)
	default:
		return fmt.Sprintf("Port(%d)", uint8(p))
	}
}

// ParsePort parses a port name such as "out3", "In7" or "none".
// The empty string parses as None.
func ParsePort(s string) (Port, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" || name == "none" {
		return None, nil
	}

	var base Port
	var digits string
	switch {
	case strings.HasPrefix(name, "out"):
		base, digits = Out1, name[3:]
	case strings.HasPrefix(name, "in"):
		base, digits = In1, name[2:]
	default:
		return None, fmt.Errorf("invalid port name %q", s)
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 7 {
		return None, fmt.Errorf("invalid port name %q (want 1-7)", s)
	}
	return base + Port(n-1), nil
}

// outputBit returns the bit index of an output port in the output state field.
func outputBit(p Port) uint {
	return uint(p - Out1)
}

// inputBit returns the bit index of an input port in the input state field.
func inputBit(p Port) uint {
	return uint(p - In1)
}
