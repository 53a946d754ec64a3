// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"io"
	"sync"
)

// Loopback is one end of an in-memory serial line
type Loopback struct {
	mu   *sync.Mutex
	rx   *[]byte // bytes sent by the peer
	peer *[]byte // bytes this end sends
}

// Pipe returns the two connected ends of an in-memory line.
// Bytes written to one end are read from the other.
func Pipe() (host, device *Loopback) {
	mu := &sync.Mutex{}
	a, b := &[]byte{}, &[]byte{}
	return &Loopback{mu: mu, rx: a, peer: b}, &Loopback{mu: mu, rx: b, peer: a}
}

// WriteByte sends one byte to the peer
func (l *Loopback) WriteByte(b byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.peer = append(*l.peer, b)
	return nil
}

// Write sends p to the peer
func (l *Loopback) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.peer = append(*l.peer, p...)
	return len(p), nil
}

// ReadByte returns the next byte from the peer, or io.EOF if none is waiting
func (l *Loopback) ReadByte() (byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(*l.rx) == 0 {
		return 0, io.EOF
	}
	b := (*l.rx)[0]
	*l.rx = (*l.rx)[1:]
	return b, nil
}

// Pending returns the number of bytes waiting to be read at this end
func (l *Loopback) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(*l.rx)
}
