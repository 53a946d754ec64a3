// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package underbody

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

// sentFrame returns the single frame written to buf and resets it
func sentFrame(t *testing.T, buf *bytes.Buffer) Frame {
	t.Helper()
	if buf.Len() != FrameSize {
		t.Fatalf("wrote %d bytes, want %d", buf.Len(), FrameSize)
	}
	var f Frame
	copy(f[:], buf.Bytes())
	buf.Reset()
	return f
}

func TestPackSignedRoundTrip(t *testing.T) {
	tests := []struct {
		v      int
		hi, lo byte
	}{
		{-8000, 0x40 | 0x3E, 0x40},
		{-1, 0x40, 0x01},
		{0, 0x00, 0x00},
		{1, 0x00, 0x01},
		{127, 0x00, 0x7F},
		{128, 0x01, 0x00},
		{8000, 0x3E, 0x40},
		{MaxMagnitude, 0x3F, 0x7F},
	}

	for _, tt := range tests {
		hi, lo := PackSigned(tt.v)
		if hi != tt.hi || lo != tt.lo {
			t.Errorf("PackSigned(%d) = 0x%02X 0x%02X, want 0x%02X 0x%02X", tt.v, hi, lo, tt.hi, tt.lo)
		}
		if got := UnpackSigned(hi, lo); got != tt.v {
			t.Errorf("UnpackSigned(PackSigned(%d)) = %d", tt.v, got)
		}
		if lo&0x80 != 0 || hi&0x80 != 0 {
			t.Errorf("PackSigned(%d) set bit 7", tt.v)
		}
	}
}

func TestEncodeFrame(t *testing.T) {
	f := EncodeFrame(300, -200, 45, MoveRect)

	if !f.Valid() {
		t.Fatal("encoded frame has bad checksum")
	}
	var sum byte
	for _, b := range f[:6] {
		sum ^= b
	}
	if f[6] != sum {
		t.Errorf("checksum = 0x%02X, want 0x%02X", f[6], sum)
	}
	if f.Mode() != MoveRect {
		t.Errorf("Mode() = %v, want RECT", f.Mode())
	}
	p1, p2, p3 := f.Params()
	if p1 != 300 || p2 != -200 || p3 != 45 {
		t.Errorf("Params() = %d, %d, %d", p1, p2, p3)
	}
}

func TestMoveXY(t *testing.T) {
	tests := []struct {
		name          string
		vX, vY, omega int
		wantErr       error
	}{
		{"zero", 0, 0, 0, nil},
		{"limits", 8000, -8000, 500, nil},
		{"negative limits", -8000, 8000, -500, nil},
		{"vx high", 8001, 0, 0, ErrVXAboveMax},
		{"vx low", -8001, 0, 0, ErrVXBelowMin},
		{"vy high", 0, 8001, 0, ErrVYAboveMax},
		{"vy low", 0, -8001, 0, ErrVYBelowMin},
		{"omega high", 0, 0, 501, ErrOmegaAboveMax},
		{"omega low", 0, 0, -501, ErrOmegaBelowMin},
		{"vx checked first", 9000, 9000, 9000, ErrVXAboveMax},
		{"vy before omega", 0, -9000, 9000, ErrVYBelowMin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			u := New(&buf)
			err := u.MoveXY(tt.vX, tt.vY, tt.omega)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("MoveXY() error = %v, want %v", err, tt.wantErr)
				}
				if buf.Len() != 0 {
					t.Errorf("rejected move wrote %d bytes", buf.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("MoveXY() error = %v", err)
			}
			f := sentFrame(t, &buf)
			if f.Mode() != MoveRect {
				t.Errorf("mode = %v, want RECT", f.Mode())
			}
			vX, vY, omega := f.Params()
			if vX != tt.vX || vY != tt.vY || omega != tt.omega {
				t.Errorf("Params() = %d, %d, %d", vX, vY, omega)
			}
		})
	}
}

func TestMoveXYSI(t *testing.T) {
	var buf bytes.Buffer
	u := New(&buf)

	if err := u.MoveXYSI(9.0, 0.0, 0.0); !errors.Is(err, ErrVXAboveMax) {
		t.Errorf("MoveXYSI(9 m/s) error = %v, want ErrVXAboveMax", err)
	}
	if err := u.MoveXYSI(0, 0, 10.0); !errors.Is(err, ErrOmegaAboveMax) {
		t.Errorf("MoveXYSI(omega 10 rad/s) error = %v, want ErrOmegaAboveMax", err)
	}

	if err := u.MoveXYSI(1.5, -0.25, math.Pi/2); err != nil {
		t.Fatalf("MoveXYSI() error = %v", err)
	}
	vX, vY, omega := sentFrame(t, &buf).Params()
	if vX != 1500 || vY != -250 || omega != 90 {
		t.Errorf("Params() = %d, %d, %d; want 1500, -250, 90", vX, vY, omega)
	}
}

func TestMoveXYSITruncates(t *testing.T) {
	tests := []struct {
		vX     float64
		wantVX int
	}{
		{8.0006, 8000},
		{-8.0006, -8000},
		{0.0079, 7},
		{-0.0079, -7},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := New(&buf).MoveXYSI(tt.vX, 0, 0); err != nil {
			t.Errorf("MoveXYSI(%v) error = %v", tt.vX, err)
			continue
		}
		if vX, _, _ := sentFrame(t, &buf).Params(); vX != tt.wantVX {
			t.Errorf("MoveXYSI(%v) vx = %d, want %d", tt.vX, vX, tt.wantVX)
		}
	}
}

func TestSIOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		move    func(u *UnderBody) error
		wantErr error
	}{
		{"vx +Inf", func(u *UnderBody) error { return u.MoveXYSI(math.Inf(1), 0, 0) }, ErrVXAboveMax},
		{"vx -Inf", func(u *UnderBody) error { return u.MoveXYSI(math.Inf(-1), 0, 0) }, ErrVXBelowMin},
		{"vx NaN", func(u *UnderBody) error { return u.MoveXYSI(math.NaN(), 0, 0) }, ErrVXAboveMax},
		{"vx 1e16", func(u *UnderBody) error { return u.MoveXYSI(1e16, 0, 0) }, ErrVXAboveMax},
		{"vx -1e16", func(u *UnderBody) error { return u.MoveXYSI(-1e16, 0, 0) }, ErrVXBelowMin},
		{"vy 1e16", func(u *UnderBody) error { return u.MoveXYSI(0, 1e16, 0) }, ErrVYAboveMax},
		{"omega NaN", func(u *UnderBody) error { return u.MoveXYSI(0, 0, math.NaN()) }, ErrOmegaAboveMax},
		{"omega -Inf", func(u *UnderBody) error { return u.MoveXYSI(0, 0, math.Inf(-1)) }, ErrOmegaBelowMin},
		{"speed +Inf", func(u *UnderBody) error { return u.MovePolarSI(math.Inf(1), 0, 0) }, ErrSpeedAboveMax},
		{"speed -1e16", func(u *UnderBody) error { return u.MovePolarSI(-1e16, 0, 0) }, ErrSpeedBelowMin},
		{"polar omega 1e16", func(u *UnderBody) error { return u.MovePolarSI(0, 0, 1e16) }, ErrOmegaAboveMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.move(New(&buf)); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if buf.Len() != 0 {
				t.Errorf("rejected move wrote %d bytes", buf.Len())
			}
		})
	}
}

func TestMovePolarSILargeHeading(t *testing.T) {
	var buf bytes.Buffer
	// 1e6 full turns plus a quarter
	if err := New(&buf).MovePolarSI(0.1, (1e6*2+0.5)*math.Pi, 0); err != nil {
		t.Fatalf("MovePolarSI() error = %v", err)
	}
	if _, dir, _ := sentFrame(t, &buf).Params(); dir < 0 || dir >= 360 {
		t.Errorf("direction = %d, want within [0, 360)", dir)
	}
}

func TestMovePolar(t *testing.T) {
	tests := []struct {
		name    string
		dir     int
		wantDir int
	}{
		{"negative", -10, 350},
		{"wraps twice", 725, 5},
		{"full turn", 360, 0},
		{"zero", 0, 0},
		{"many turns back", -1080, 0},
		{"in range", 359, 359},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := New(&buf).MovePolar(1000, tt.dir, -30); err != nil {
				t.Fatalf("MovePolar() error = %v", err)
			}
			f := sentFrame(t, &buf)
			if f.Mode() != MovePolar {
				t.Errorf("mode = %v, want POLAR", f.Mode())
			}
			speed, dir, omega := f.Params()
			if speed != 1000 || dir != tt.wantDir || omega != -30 {
				t.Errorf("Params() = %d, %d, %d; want 1000, %d, -30", speed, dir, omega, tt.wantDir)
			}
		})
	}
}

func TestMovePolarBounds(t *testing.T) {
	tests := []struct {
		speed, dir, omega int
		wantErr           error
	}{
		{8001, 0, 0, ErrSpeedAboveMax},
		{-8001, 0, 0, ErrSpeedBelowMin},
		{0, 0, 501, ErrOmegaAboveMax},
		{0, 0, -501, ErrOmegaBelowMin},
		{0, 100000, 0, nil},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		err := New(&buf).MovePolar(tt.speed, tt.dir, tt.omega)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("MovePolar(%d, %d, %d) error = %v, want %v", tt.speed, tt.dir, tt.omega, err, tt.wantErr)
		}
	}
}

func TestMovePolarSI(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).MovePolarSI(0.5, -math.Pi/2, math.Pi); err != nil {
		t.Fatalf("MovePolarSI() error = %v", err)
	}
	speed, dir, omega := sentFrame(t, &buf).Params()
	if speed != 500 || dir != 270 || omega != 180 {
		t.Errorf("Params() = %d, %d, %d; want 500, 270, 180", speed, dir, omega)
	}
}

func TestStop(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 0xF0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("Stop() wrote % X, want % X", buf.Bytes(), want)
	}
}

func TestRangeError(t *testing.T) {
	err := New(&bytes.Buffer{}).MoveXY(0, 0, 600)
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("error = %T, want *RangeError", err)
	}
	if rangeErr.Field != "omega" || rangeErr.Value != 600 || rangeErr.Limit != MaxOmega {
		t.Errorf("RangeError = %+v", rangeErr)
	}
}

func TestFormatFrame(t *testing.T) {
	tests := []struct {
		frame Frame
		want  string
	}{
		{EncodeFrame(100, -100, 5, MoveRect), "RECT vx=100mm/s vy=-100mm/s omega=5deg/s"},
		{EncodeFrame(100, 90, 0, MovePolar), "POLAR speed=100mm/s dir=90deg omega=0deg/s"},
		{EncodeFrame(0, 0, 0, MoveStop), "STOP"},
		{Frame{0, 1, 0, 0, 0, 0, 0, 0xF0}, "STOP BAD_CHECKSUM(0x00!=0x01)"},
	}

	for _, tt := range tests {
		if got := FormatFrame(tt.frame); got != tt.want {
			t.Errorf("FormatFrame() = %q, want %q", got, tt.want)
		}
	}
}
