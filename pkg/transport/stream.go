// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transport provides byte transports for the module bus: a serial
// port, a WebSocket serial bridge, and an in-memory loopback.
//
// All transports implement io.ByteWriter and a polling io.ByteReader that
// returns io.EOF when no byte is available, which is what fets.Transport
// and underbody.New expect.
package transport

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrClosed is returned after the transport was closed
var ErrClosed = errors.New("transport closed")

// Connection is the raw link under a Stream. Read must return promptly
// with (0, nil) or a timeout error when no data is available.
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// Stream adapts a Connection to single-byte polling.
type Stream struct {
	conn   Connection
	info   string
	buf    []byte
	off    int
	closed bool
}

// NewStream wraps conn; info describes the link for logs and status lines
func NewStream(conn Connection, info string) *Stream {
	return &Stream{
		conn: conn,
		info: info,
		buf:  make([]byte, 0, 128),
	}
}

// Info returns the link description, e.g. "Serial: /dev/ttyUSB0 @ 115200 baud"
func (s *Stream) Info() string {
	return s.info
}

// WriteByte transmits one byte
func (s *Stream) WriteByte(b byte) error {
	if s.closed {
		return ErrClosed
	}
	n, err := s.conn.Write([]byte{b})
	if err != nil {
		return err
	}
	if n != 1 {
		return io.ErrShortWrite
	}
	return nil
}

// ReadByte returns the next received byte, or io.EOF if none is available
// right now.
func (s *Stream) ReadByte() (byte, error) {
	if s.closed {
		return 0, ErrClosed
	}

	if s.off >= len(s.buf) {
		n, err := s.conn.Read(s.buf[:cap(s.buf)])
		s.buf, s.off = s.buf[:n], 0
		if n == 0 {
			if err == nil || errors.Is(err, os.ErrDeadlineExceeded) {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("read %s: %w", s.info, err)
		}
	}

	b := s.buf[s.off]
	s.off++
	return b, nil
}

// Buffered returns the number of received bytes not yet returned by ReadByte
func (s *Stream) Buffered() int {
	return len(s.buf) - s.off
}

// Close closes the underlying connection
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
