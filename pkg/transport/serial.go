// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// DefaultBaudRate is the module firmware's default line speed
const DefaultBaudRate = 115200

// DefaultPollTimeout bounds how long a serial poll waits for a byte
const DefaultPollTimeout = time.Millisecond

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// OpenSerial opens a serial port (8N1) for polling. poll is the read
// timeout; a poll that sees no byte within it reports io.EOF.
func OpenSerial(portName string, baudRate int, poll time.Duration) (*Stream, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if poll <= 0 {
		poll = DefaultPollTimeout
	}
	if err := port.SetReadTimeout(poll); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}

	log.WithFields(log.Fields{
		"port": portName,
		"baud": baudRate,
		"poll": poll,
	}).Debug("serial port open")

	info := fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate)
	return NewStream(&SerialConnection{port: port}, info), nil
}

// ListSerialPorts returns the serial port device names on this machine
func ListSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}
