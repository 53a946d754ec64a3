// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fets

import (
	"errors"
	"testing"
)

func TestRegistrySameMode(t *testing.T) {
	reg := NewRegistry()
	if reg.Mode() != ModeUninitialized {
		t.Fatalf("new registry Mode() = %v, want UNINITIALIZED", reg.Mode())
	}

	a := New(reg, &bus{}, 0x90, None, None)
	b := New(reg, &bus{}, 0x91, None, None)
	if reg.Mode() != ModeModule {
		t.Fatalf("Mode() = %v, want MODULE", reg.Mode())
	}
	if a.Address() != 0x90 || b.Address() != 0x91 {
		t.Errorf("addresses = 0x%02X, 0x%02X", a.Address(), b.Address())
	}

	reg = NewRegistry()
	New(reg, &bus{}, 0x90, Out1, In1)
	c := New(reg, &bus{}, 0x90, Out2, In2)
	if reg.Mode() != ModeBoundPort {
		t.Fatalf("Mode() = %v, want BOUND_PORT", reg.Mode())
	}
	if out, in := c.BoundPorts(); out != Out2 || in != In2 {
		t.Errorf("BoundPorts() = %v, %v; want Out2, In2", out, in)
	}
}

func TestRegistryConflict(t *testing.T) {
	tests := []struct {
		name        string
		first, then Port
	}{
		{"module then bound", None, Out1},
		{"bound then module", Out1, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			busA, busB := &bus{}, &bus{}
			a := New(reg, busA, DefaultAddress, tt.first, In1)
			b := New(reg, busB, DefaultAddress, tt.then, In1)

			if reg.Mode() != ModeConflict {
				t.Fatalf("Mode() = %v, want CONFLICT", reg.Mode())
			}
			if out, in := b.BoundPorts(); out != None || in != None {
				t.Errorf("conflicting instance kept ports %v, %v", out, in)
			}

			for name, f := range map[string]*Fets{"first": a, "second": b} {
				checks := map[string]error{
					"Write":     f.Write(1, Out1),
					"WritePWM":  f.WritePWM(0.5, Out1),
					"WriteWave": f.WriteWave(Sine, 1000, Out1),
					"SendData":  f.SendData(FuncDigitalOut, Out1, 1),
				}
				_, checks["SensorRespond"] = f.SensorRespond(true, true, Out1, In1)
				_, checks["SensorTrigger"] = f.SensorTrigger(true, true, Out1, In1)
				_, checks["RecvData"] = f.RecvData()
				_, checks["OutputState"] = f.OutputState(Out1)
				_, checks["InputState"] = f.InputState(In1)

				for op, err := range checks {
					if !errors.Is(err, ErrConflict) {
						t.Errorf("%s instance %s() error = %v, want ErrConflict", name, op, err)
					}
				}
			}

			if busA.tx.Len() != 0 || busB.tx.Len() != 0 {
				t.Error("conflicted instances transmitted bytes")
			}
		})
	}
}

func TestRegistryConflictIsSticky(t *testing.T) {
	reg := NewRegistry()
	New(reg, &bus{}, DefaultAddress, None, None)
	New(reg, &bus{}, DefaultAddress, Out1, None)

	// A later instance in either style cannot heal the registry
	m := New(reg, &bus{}, DefaultAddress, None, None)
	p := New(reg, &bus{}, DefaultAddress, Out2, None)
	if reg.Mode() != ModeConflict {
		t.Fatalf("Mode() = %v, want CONFLICT", reg.Mode())
	}
	if err := m.Write(0, Out1); !errors.Is(err, ErrConflict) {
		t.Errorf("module Write() error = %v, want ErrConflict", err)
	}
	if err := p.Write(0, None); !errors.Is(err, ErrConflict) {
		t.Errorf("bound Write() error = %v, want ErrConflict", err)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	left, right := NewRegistry(), NewRegistry()
	New(left, &bus{}, DefaultAddress, None, None)
	f := New(right, &bus{}, DefaultAddress, Out1, None)

	if left.Mode() != ModeModule || right.Mode() != ModeBoundPort {
		t.Fatalf("modes = %v, %v; want MODULE, BOUND_PORT", left.Mode(), right.Mode())
	}
	if err := f.Write(1, None); err != nil {
		t.Errorf("Write() error = %v", err)
	}
}
