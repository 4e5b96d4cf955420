// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package websocket carries the door lock byte link over a WebSocket so the
// two nodes can run on separate hosts. Bytes travel in binary messages;
// message boundaries carry no meaning.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
	"github.com/gorilla/websocket"
)

const (
	// DefaultPath is the upgrade endpoint served by a listener
	DefaultPath = "/link"

	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	bufferSize       = 64
)

// Conn is a doorlock.Transport over one WebSocket connection
type Conn struct {
	conn    *websocket.Conn
	peer    string
	buf     []byte
	off     int
	writeMu syncutil.Mutex
	closed  atomic.Bool
}

func newConn(c *websocket.Conn) *Conn {
	return &Conn{conn: c, peer: c.RemoteAddr().String()}
}

// Dial connects to a listening node at rawURL (ws:// or wss://)
func Dial(ctx context.Context, rawURL string) (*Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("%w: unsupported URL scheme %q (use ws:// or wss://)",
			doorlock.ErrInvalidConfig, u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		ReadBufferSize:   bufferSize,
		WriteBufferSize:  bufferSize,
	}
	c, resp, err := dialer.DialContext(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}
	doorlock.Debugf("websocket: connected to %s", rawURL)
	return newConn(c), nil
}

// Read returns buffered bytes, reading the next binary message when the
// buffer is empty. Text messages are skipped.
func (c *Conn) Read(p []byte) (int, error) {
	if c.off < len(c.buf) {
		n := copy(p, c.buf[c.off:])
		c.off += n
		return n, nil
	}

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return 0, c.mapError(err)
		}
		if messageType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}
		c.buf = data
		n := copy(p, c.buf)
		c.off = n
		return n, nil
	}
}

// mapError reports a closed connection as io.EOF
func (c *Conn) mapError(err error) error {
	if c.closed.Load() ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, net.ErrClosed) {
		return io.EOF
	}
	return fmt.Errorf("websocket %s: %w", c.peer, err)
}

// Write sends p as one binary message
func (c *Conn) Write(p []byte) (int, error) {
	if c.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, c.mapError(err)
	}
	return len(p), nil
}

// Close sends a close frame and closes the connection
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.writeMu.Unlock()
	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close websocket: %w", err)
	}
	return nil
}

// Type returns the transport type
func (*Conn) Type() doorlock.TransportType {
	return doorlock.TransportWebSocket
}

// String returns the peer address
func (c *Conn) String() string {
	return c.peer
}

// Listener serves the upgrade endpoint and hands out exactly one peer. A
// door lock link is point to point: later peers are refused while one is
// connected.
type Listener struct {
	ln       net.Listener
	srv      *http.Server
	upgrader websocket.Upgrader
	accepted chan *Conn
	active   atomic.Bool
}

// Listen starts serving path on addr
func Listen(addr, path string) (*Listener, error) {
	if path == "" {
		path = DefaultPath
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	l := &Listener{
		ln:       ln,
		accepted: make(chan *Conn, 1),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  bufferSize,
			WriteBufferSize: bufferSize,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, l.handle)
	l.srv = &http.Server{Handler: mux, ReadHeaderTimeout: handshakeTimeout}

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			doorlock.Debugf("websocket: server stopped: %v", err)
		}
	}()
	doorlock.Debugf("websocket: listening on %s%s", ln.Addr(), path)
	return l, nil
}

func (l *Listener) handle(w http.ResponseWriter, r *http.Request) {
	if !l.active.CompareAndSwap(false, true) {
		http.Error(w, "link already connected", http.StatusConflict)
		return
	}
	c, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.active.Store(false)
		doorlock.Debugf("websocket: upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	doorlock.Debugf("websocket: peer %s connected", r.RemoteAddr)
	l.accepted <- newConn(c)
}

// Addr returns the listening address
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept waits for the peer
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	select {
	case c := <-l.accepted:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting peers. Accepted connections stay open.
func (l *Listener) Close() error {
	if err := l.srv.Close(); err != nil {
		return fmt.Errorf("close listener: %w", err)
	}
	return nil
}

var _ doorlock.Transport = (*Conn)(nil)
