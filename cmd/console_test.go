// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/YukiHonma/sakura/pkg/fets"
	"github.com/YukiHonma/sakura/pkg/underbody"
)

func newConsole() (*console, *dryRunBus) {
	bus := &dryRunBus{}
	return &console{
		fet:     fets.New(fets.NewRegistry(), bus, fets.DefaultAddress, fets.None, fets.None),
		chassis: underbody.New(bus),
	}, bus
}

func TestConsoleFrames(t *testing.T) {
	tests := []struct {
		line string
		want []byte
	}{
		{"write out3 1", []byte{0x0B, 0x01, 0x0A, 0x90}},
		{"WRITE Out3 0", []byte{0x0B, 0x00, 0x0B, 0x90}},
		{"pwm out1 50%", []byte{0x11, 0x40, 0x51, 0x90}},
		{"pwm out1 1", []byte{0x11, 0x7F, 0x6E, 0x90}},
		{"wave sine out2 500", []byte{0x32, 0x05, 0x37, 0x90}},
		{"stop", []byte{0, 0, 0, 0, 0, 0, 0, 0xF0}},
	}

	for _, tt := range tests {
		c, bus := newConsole()
		if _, err := c.Run(tt.line); err != nil {
			t.Errorf("Run(%q) error = %v", tt.line, err)
			continue
		}
		if !bytes.Equal(bus.Sent(), tt.want) {
			t.Errorf("Run(%q) sent [%s], want [%s]", tt.line, fets.FormatHex(bus.Sent()), fets.FormatHex(tt.want))
		}
	}
}

func TestConsoleChassis(t *testing.T) {
	c, bus := newConsole()
	if _, err := c.Run("xy 100 -50 10"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	sent := bus.Sent()
	if len(sent) != underbody.FrameSize {
		t.Fatalf("sent %d bytes, want %d", len(sent), underbody.FrameSize)
	}
	var f underbody.Frame
	copy(f[:], sent)
	if f.Mode() != underbody.MoveRect || !f.Valid() {
		t.Errorf("frame %s", underbody.FormatFrame(f))
	}
	if vx, vy, w := f.Params(); vx != 100 || vy != -50 || w != 10 {
		t.Errorf("Params() = %d, %d, %d", vx, vy, w)
	}
}

func TestConsoleErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"pwm out7 0.5", fets.ErrUnsupportedPort},
		{"pwm out1 2", fets.ErrDutyAboveMax},
		{"write in1 1", fets.ErrInvalidOutputPort},
		{"wave sine out1 50", fets.ErrPeriodBelowMin},
		{"xy 9000 0 0", underbody.ErrVXAboveMax},
	}
	for _, tt := range tests {
		c, bus := newConsole()
		_, err := c.Run(tt.line)
		if !errors.Is(err, tt.want) {
			t.Errorf("Run(%q) error = %v, want %v", tt.line, err, tt.want)
		}
		if len(bus.Sent()) != 0 {
			t.Errorf("Run(%q) sent %d bytes after an error", tt.line, len(bus.Sent()))
		}
	}

	c, _ := newConsole()
	for _, line := range []string{"bogus", "write out1", "respond out1 in1 maybe 1", "xy 1e16 0 0", "polar NaN 0 0"} {
		if _, err := c.Run(line); err == nil {
			t.Errorf("Run(%q) error = nil", line)
		}
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in   string
		want byte
		ok   bool
	}{
		{"0x90", 0x90, true},
		{"144", 0x90, true},
		{"0b10010000", 0x90, true},
		{"0x100", 0, false},
		{"fet", 0, false},
	}
	for _, tt := range tests {
		got, err := parseAddress(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseAddress(%q) = 0x%02X, %v", tt.in, got, err)
		}
	}
}

func TestParseDuty(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0.25", 0.25},
		{"25%", 0.25},
		{"100%", 1},
	}
	for _, tt := range tests {
		got, err := parseDuty(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseDuty(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := parseDuty("half"); err == nil {
		t.Error("parseDuty(\"half\") error = nil")
	}
}
