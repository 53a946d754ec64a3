// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package fets

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// fuzzSetup reads FUZZ_SEED and FUZZ_ROUNDS (default: time seed, 1000
// rounds) and logs the seed so a failing run can be repeated.
func fuzzSetup(t *testing.T) (*rand.Rand, int) {
	t.Helper()
	seed := time.Now().UnixNano()
	if v, err := strconv.ParseInt(os.Getenv("FUZZ_SEED"), 10, 64); err == nil {
		seed = v
	}
	rounds := 1000
	if v, err := strconv.Atoi(os.Getenv("FUZZ_ROUNDS")); err == nil && v > 0 {
		rounds = v
	}
	t.Logf("FUZZ_SEED=%d FUZZ_ROUNDS=%d", seed, rounds)
	return rand.New(rand.NewSource(seed)), rounds
}

// ============================================================
// Decoder Fuzz Tests
// ============================================================

// Random garbage followed by a real frame always ends locked on that frame.
func TestFuzzDecoderLocksAfterGarbage(t *testing.T) {
	rng, rounds := fuzzSetup(t)

	for round := 0; round < rounds; round++ {
		addr := byte(rng.Intn(256))
		want := Telemetry{Output: byte(rng.Intn(128)), Input: byte(rng.Intn(128))}

		garbage := make([]byte, rng.Intn(64))
		rng.Read(garbage)

		b := &bus{}
		b.rx.Write(garbage)
		b.rx.Write(TelemetryFrame(want, addr).Bytes())

		f := New(NewRegistry(), b, addr, None, None)
		n, err := f.RecvData()
		if err != nil {
			t.Fatalf("round %d: RecvData() error = %v", round, err)
		}
		if n != len(garbage)+FrameSize {
			t.Fatalf("round %d: drained %d bytes, want %d", round, n, len(garbage)+FrameSize)
		}
		if f.Telemetry() != want {
			t.Fatalf("round %d: addr=0x%02X garbage=% X: got %s, want %s",
				round, addr, garbage, FormatTelemetry(f.Telemetry()), FormatTelemetry(want))
		}
	}
}

// Every encoded command frame satisfies the checksum relation.
func TestFuzzEncodeFrameChecksum(t *testing.T) {
	rng, rounds := fuzzSetup(t)

	for round := 0; round < rounds; round++ {
		fn := Function(rng.Intn(16))
		port := Out1 + Port(rng.Intn(7))
		param := byte(rng.Intn(256))
		addr := byte(rng.Intn(256))

		f := EncodeFrame(fn, port, param, addr)
		if f[2] != f[0]^f[1] {
			t.Fatalf("round %d: checksum 0x%02X, want 0x%02X", round, f[2], f[0]^f[1])
		}
		if f.Function() != fn || f.Port() != port || f.Param() != param || f.Address() != addr {
			t.Fatalf("round %d: %s does not carry fn=%d port=%v", round, FormatFrame(f), fn, port)
		}
	}
}

// The decoder never panics and only reports frames that end in its address.
func TestFuzzDecoderRandomStream(t *testing.T) {
	rng, rounds := fuzzSetup(t)
	d := NewDecoder(DefaultAddress)

	for round := 0; round < rounds; round++ {
		b := byte(rng.Intn(256))
		if _, ok := d.DecodeByte(b); ok {
			w := d.Window()
			if w[3] != DefaultAddress || w[2] != w[0]^w[1] {
				t.Fatalf("round %d: matched invalid window % X", round, w[:])
			}
		}
	}
}
