// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package underbody

import (
	"fmt"
	"io"
	"math"
)

// UnderBody drives the chassis module. It keeps no state besides the
// writer; every call validates, then writes one frame.
type UnderBody struct {
	w io.ByteWriter
}

// New creates a chassis driver writing to w
func New(w io.ByteWriter) *UnderBody {
	return &UnderBody{w: w}
}

// MoveXY commands a velocity in chassis coordinates: vX and vY in mm/s
// (±MaxVelocity), omega in deg/s (±MaxOmega).
func (u *UnderBody) MoveXY(vX, vY, omega int) error {
	if err := checkBound("vx", vX, MaxVelocity, ErrVXAboveMax, ErrVXBelowMin); err != nil {
		return err
	}
	if err := checkBound("vy", vY, MaxVelocity, ErrVYAboveMax, ErrVYBelowMin); err != nil {
		return err
	}
	if err := checkBound("omega", omega, MaxOmega, ErrOmegaAboveMax, ErrOmegaBelowMin); err != nil {
		return err
	}
	return u.SendData(vX, vY, omega, MoveRect)
}

// MoveXYSI is MoveXY with vX, vY in m/s and omega in rad/s
func (u *UnderBody) MoveXYSI(vX, vY, omega float64) error {
	return u.MoveXY(millimeters(vX), millimeters(vY), degrees(omega))
}

// MovePolar commands a speed in mm/s along a direction in degrees, with
// omega in deg/s. The direction is normalized into [0, 360).
func (u *UnderBody) MovePolar(speed, direction, omega int) error {
	if err := checkBound("speed", speed, MaxVelocity, ErrSpeedAboveMax, ErrSpeedBelowMin); err != nil {
		return err
	}
	if err := checkBound("omega", omega, MaxOmega, ErrOmegaAboveMax, ErrOmegaBelowMin); err != nil {
		return err
	}
	return u.SendData(speed, NormalizeDirection(direction), omega, MovePolar)
}

// MovePolarSI is MovePolar with speed in m/s, direction in rad and omega in rad/s
func (u *UnderBody) MovePolarSI(speed, direction, omega float64) error {
	heading := math.Mod(direction*180.0/math.Pi, 360)
	return u.MovePolar(millimeters(speed), saturate(heading), degrees(omega))
}

// Stop sends a zero stop frame
func (u *UnderBody) Stop() error {
	return u.SendData(0, 0, 0, MoveStop)
}

// SendData packs and writes one frame. Values are not range checked here.
func (u *UnderBody) SendData(p1, p2, p3 int, mode MoveMode) error {
	f := EncodeFrame(p1, p2, p3, mode)
	for _, b := range f {
		if err := u.w.WriteByte(b); err != nil {
			return fmt.Errorf("underbody: send %v: %w", mode, err)
		}
	}
	return nil
}

// NormalizeDirection maps any angle in degrees into [0, 360)
func NormalizeDirection(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

func millimeters(m float64) int {
	return saturate(m * 1000.0)
}

func degrees(rad float64) int {
	return saturate(rad * 180.0 / math.Pi)
}

// saturate truncates v toward zero, clamped to one past the largest
// packable magnitude so out-of-range input still fails the right bound.
// NaN fails the high bound.
func saturate(v float64) int {
	const limit = MaxMagnitude + 1
	switch {
	case math.IsNaN(v), v >= limit:
		return limit
	case v <= -limit:
		return -limit
	}
	return int(v)
}
