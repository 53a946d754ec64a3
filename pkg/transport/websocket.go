// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = fmt.Errorf("websocket connection closed")

// WebSocketConnection carries bus bytes in binary WebSocket messages.
//
// A pump goroutine owns all reads from the socket and hands messages over a
// channel, so Read never blocks.
type WebSocketConnection struct {
	conn     *websocket.Conn
	messages chan []byte
	done     chan struct{}
	err      error // set by the pump before messages is closed
	buf      []byte
	closed   bool
}

func newWebSocketConnection(conn *websocket.Conn) *WebSocketConnection {
	w := &WebSocketConnection{
		conn:     conn,
		messages: make(chan []byte, 64),
		done:     make(chan struct{}),
	}
	go w.pump()
	return w
}

func (w *WebSocketConnection) pump() {
	defer close(w.messages)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.err = err
			return
		}
		// Only binary messages carry bus data
		if messageType != websocket.BinaryMessage {
			continue
		}
		select {
		case w.messages <- data:
		case <-w.done:
			return
		}
	}
}

// Read returns buffered bus bytes, or (0, nil) if no message is waiting
func (w *WebSocketConnection) Read(p []byte) (int, error) {
	if len(w.buf) == 0 {
		if w.closed {
			return 0, ErrConnectionClosed
		}
		select {
		case data, ok := <-w.messages:
			if !ok {
				w.closed = true
				if w.err != nil {
					return 0, fmt.Errorf("%w: %v", ErrConnectionClosed, w.err)
				}
				return 0, ErrConnectionClosed
			}
			w.buf = data
		default:
			return 0, nil
		}
	}

	n := copy(p, w.buf)
	w.buf = w.buf[n:]
	return n, nil
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return w.conn.Close()
}

// OpenWebSocket connects to a serial bridge with optional HTTP Basic auth
func OpenWebSocket(wsURL, username, password string, skipSSLVerify bool) (*Stream, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	dialer, err := bridgeDialer(u.Scheme, skipSSLVerify)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, u.String(), basicAuth(username, password))
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: HTTP %d: %w", u.Redacted(), resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}

	log.WithField("url", u.Redacted()).Debug("websocket bridge connected")
	return NewStream(newWebSocketConnection(conn), "WebSocket: "+u.Redacted()), nil
}

const (
	handshakeTimeout = 10 * time.Second
	dialTimeout      = 15 * time.Second
)

// bridgeDialer accepts ws and wss; wss may skip certificate checks
func bridgeDialer(scheme string, skipSSLVerify bool) (*websocket.Dialer, error) {
	d := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	switch scheme {
	case "ws":
	case "wss":
		d.TLSClientConfig = &tls.Config{InsecureSkipVerify: skipSSLVerify}
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", scheme)
	}
	return d, nil
}

// basicAuth returns the handshake headers; empty unless both parts are set
func basicAuth(username, password string) http.Header {
	h := http.Header{}
	if username == "" || password == "" {
		return h
	}
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	h.Set("Authorization", "Basic "+token)
	return h
}
