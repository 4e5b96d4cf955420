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

package doorlock

import (
	"io"
	"sync"
)

// Transport is the byte link between the two nodes. Implementations are
// provided for a serial port, a WebSocket connection and an in-memory pipe.
// Read may return any number of bytes; the link consumes them one at a time.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportWebSocket represents a WebSocket byte stream.
	TransportWebSocket TransportType = "websocket"
	// TransportPipe represents an in-process pipe used by tests and simulation
	TransportPipe TransportType = "pipe"
)

// pipeBufferSize bounds the bytes in flight in each direction of a pipe.
const pipeBufferSize = 64

// PipeTransport is one end of an in-memory full-duplex byte link.
type PipeTransport struct {
	rx        chan byte
	tx        chan byte
	done      chan struct{}
	closeOnce *sync.Once
}

// NewPipe returns two connected transports. Bytes written to one end are
// read from the other. Closing either end closes both.
func NewPipe() (a, b *PipeTransport) {
	ab := make(chan byte, pipeBufferSize)
	ba := make(chan byte, pipeBufferSize)
	done := make(chan struct{})
	once := &sync.Once{}
	a = &PipeTransport{rx: ba, tx: ab, done: done, closeOnce: once}
	b = &PipeTransport{rx: ab, tx: ba, done: done, closeOnce: once}
	return a, b
}

// Read blocks until at least one byte is available, then returns as many
// buffered bytes as fit in p.
func (p *PipeTransport) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	select {
	case b := <-p.rx:
		buf[0] = b
	case <-p.done:
		return 0, io.EOF
	}
	n := 1
	for n < len(buf) {
		select {
		case b := <-p.rx:
			buf[n] = b
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

// Write queues every byte of buf for the peer, blocking while the pipe is full.
func (p *PipeTransport) Write(buf []byte) (int, error) {
	for i, b := range buf {
		select {
		case <-p.done:
			return i, io.ErrClosedPipe
		default:
		}
		select {
		case p.tx <- b:
		case <-p.done:
			return i, io.ErrClosedPipe
		}
	}
	return len(buf), nil
}

// Close closes both ends of the pipe
func (p *PipeTransport) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return nil
}

// Type implements Transport interface
func (*PipeTransport) Type() TransportType {
	return TransportPipe
}
