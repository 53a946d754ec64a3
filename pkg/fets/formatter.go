// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fets

import (
	"fmt"
	"strings"
)

// FunctionName returns the human-readable name for a function code
func FunctionName(fn Function) string {
	switch fn {
	case FuncDigitalOut:
		return "DIGITAL_OUT"
	case FuncPWMOut:
		return "PWM_OUT"
	case FuncSensorRespond:
		return "SENSOR_RESPOND"
	case FuncSensorTrigger:
		return "SENSOR_TRIGGER"
	case FuncWaveSquare:
		return "WAVE_SQUARE"
	case FuncWaveSine:
		return "WAVE_SINE"
	case FuncWaveTriangle:
		return "WAVE_TRIANGLE"
	case FuncWaveSawtooth:
		return "WAVE_SAWTOOTH"
	case FuncWaveInvSaw:
		return "WAVE_INV_SAWTOOTH"
	default:
		return "UNKNOWN"
	}
}

// ParseWaveform parses a waveform name such as "sine" or "inv-sawtooth"
func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square":
		return Square, nil
	case "sine":
		return Sine, nil
	case "triangular", "triangle":
		return Triangular, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	case "inv-sawtooth", "invsawtooth", "inverse-sawtooth":
		return InvSawtooth, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWaveform, s)
}

// FormatFrame formats a command frame into a human-readable string
func FormatFrame(f Frame) string {
	result := fmt.Sprintf("%s (0x%X) port=%v param=0x%02X addr=0x%02X",
		FunctionName(f.Function()), uint8(f.Function()), f.Port(), f.Param(), f.Address())

	switch f.Function() {
	case FuncPWMOut:
		result += fmt.Sprintf(" duty=%.1f%%", float64(f.Param())*100.0/PWMResolution)
	case FuncSensorRespond, FuncSensorTrigger:
		p := f.Param()
		result += fmt.Sprintf(" in=In%d act_in=%d act_out=%d", p&portMask, (p>>4)&0x01, (p>>3)&0x01)
	case FuncWaveSquare, FuncWaveSine, FuncWaveTriangle, FuncWaveSawtooth, FuncWaveInvSaw:
		result += fmt.Sprintf(" period=%dms", int(f.Param())*WavePeriodStep)
	}

	if f[2] != f.Checksum() {
		result += fmt.Sprintf(" BAD_CHECKSUM(0x%02X!=0x%02X)", f[2], f.Checksum())
	}
	return result
}

// FormatTelemetry formats a snapshot as two 7-bit fields, Out7/In7 leftmost
func FormatTelemetry(t Telemetry) string {
	return fmt.Sprintf("out=%07b in=%07b", t.Output&stateMask, t.Input&stateMask)
}

// FormatHex formats raw bytes as space separated hex
func FormatHex(data []byte) string {
	var s strings.Builder
	for i, b := range data {
		if i > 0 {
			s.WriteByte(' ')
		}
		fmt.Fprintf(&s, "%02X", b)
	}
	return s.String()
}
