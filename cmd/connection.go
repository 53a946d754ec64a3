// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/YukiHonma/sakura/internal/sim"
	"github.com/YukiHonma/sakura/pkg/fets"
	"github.com/YukiHonma/sakura/pkg/transport"
)

// Bus is the byte line shared by every module a command talks to
type Bus interface {
	io.ByteWriter
	io.ByteReader
	io.Closer
	Info() string
}

// dryRunBus records what would be sent and never has anything to read
type dryRunBus struct {
	sent bytes.Buffer
}

func (d *dryRunBus) WriteByte(b byte) error {
	return d.sent.WriteByte(b)
}

func (d *dryRunBus) ReadByte() (byte, error) {
	return 0, io.EOF
}

func (d *dryRunBus) Close() error {
	return nil
}

func (d *dryRunBus) Info() string {
	return "Dry run"
}

// Sent returns the recorded bytes
func (d *dryRunBus) Sent() []byte {
	return d.sent.Bytes()
}

// OpenConnection opens the simulator, a dry-run recorder, a WebSocket
// bridge or a serial port, in that order of precedence. simAddress is the
// address the simulated module answers on.
func OpenConnection(simAddress byte) (Bus, error) {
	switch {
	case dryRun:
		return &dryRunBus{}, nil

	case simulate:
		bench := sim.NewBench(simAddress)
		log.WithField("address", fmt.Sprintf("0x%02X", simAddress)).Debug("simulator started")
		return bench, nil

	case wsURL != "":
		password := ""
		if wsUsername != "" {
			var err error
			password, err = transport.GetPassword()
			if err != nil {
				return nil, err
			}
		}
		return transport.OpenWebSocket(wsURL, wsUsername, password, wsNoSSLVerify)

	case portName != "":
		poll, err := time.ParseDuration(pollTime)
		if err != nil {
			return nil, fmt.Errorf("invalid --poll %q: %w", pollTime, err)
		}
		return transport.OpenSerial(portName, baudRate, poll)
	}

	return nil, errors.New("one of --port, --url, --sim or --dry-run must be specified")
}

// flushDryRun prints the frames a dry run collected, split by frameSize
func flushDryRun(bus Bus, frameSize int, format func([]byte) string) {
	d, ok := bus.(*dryRunBus)
	if !ok {
		return
	}
	sent := d.Sent()
	for len(sent) >= frameSize {
		fmt.Printf("[%s]  %s\n", fets.FormatHex(sent[:frameSize]), format(sent[:frameSize]))
		sent = sent[frameSize:]
	}
	if len(sent) > 0 {
		fmt.Printf("[%s]  (partial)\n", fets.FormatHex(sent))
	}
}
