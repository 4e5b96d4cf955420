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
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
)

// Port is the side of a link a state machine talks to.
type Port interface {
	// Send writes one byte to the peer
	Send(b byte) error
	// Pending returns the most recently received byte, if any has arrived.
	// It does not consume the byte.
	Pending() (byte, bool)
	// Receive waits up to timeout for the next byte to arrive
	Receive(ctx context.Context, timeout time.Duration) (byte, error)
}

// LinkStats holds link traffic counters
type LinkStats struct {
	TxBytes uint64
	RxBytes uint64
	// Overwritten counts bytes replaced in the mailbox before being read.
	// Strict turn-taking keeps this at zero.
	Overwritten uint64
}

// LinkOption configures a Link
type LinkOption func(*Link)

// WithPortName labels the link in errors, traces and logs
func WithPortName(name string) LinkOption {
	return func(l *Link) {
		l.name = name
	}
}

// WithTraceSize sets how many bytes are kept for error reports
func WithTraceSize(n int) LinkOption {
	return func(l *Link) {
		l.traceSize = n
	}
}

// mailboxValid marks the mailbox as holding a byte
const mailboxValid uint32 = 1 << 8

// Link turns a Transport into the single-slot mailbox and received flag the
// node loop waits on. A goroutine reads the transport and, for every byte,
// stores it in the mailbox and raises the flag. It never runs node logic.
type Link struct {
	transport   Transport
	trace       *TraceBuffer
	err         error
	rx          chan struct{}
	done        chan struct{}
	name        string
	traceSize   int
	mailbox     atomic.Uint32
	txBytes     atomic.Uint64
	rxBytes     atomic.Uint64
	overwritten atomic.Uint64
	closing     atomic.Bool
	writeMu     syncutil.Mutex
	closeOnce   sync.Once
}

// NewLink wraps t and starts its receive loop
func NewLink(t Transport, opts ...LinkOption) *Link {
	l := &Link{
		transport: t,
		rx:        make(chan struct{}, 1),
		done:      make(chan struct{}),
		name:      string(t.Type()),
		traceSize: DefaultTraceSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.trace = NewTraceBuffer(string(t.Type()), l.name, l.traceSize)
	go l.receiveLoop()
	return l
}

func (l *Link) receiveLoop() {
	buf := make([]byte, linkReadBufferSize)
	for {
		n, err := l.transport.Read(buf)
		for _, b := range buf[:n] {
			l.deliver(b)
		}
		if err != nil {
			l.fail(err)
			return
		}
	}
}

// deliver is the receive event: store the byte, then raise the flag.
func (l *Link) deliver(b byte) {
	unread := len(l.rx) > 0
	l.mailbox.Store(mailboxValid | uint32(b))
	if unread {
		l.overwritten.Add(1)
	}
	l.rxBytes.Add(1)
	l.trace.RecordRX(b, "")
	Debugf("%s: RX %02X %s", l.name, b, Command(b))

	select {
	case l.rx <- struct{}{}:
	default:
	}
}

func (l *Link) fail(err error) {
	switch {
	case l.closing.Load(), errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe):
		l.err = NewTransportClosedError("receive", l.name)
	default:
		l.err = NewTransportError("receive", l.name, errors.Join(ErrTransportRead, err), ErrorTypePermanent)
	}
	Debugf("%s: receive loop stopped: %v", l.name, l.err)
	close(l.done)
}

// Send writes one byte to the peer. It returns once the transport has
// accepted the byte.
func (l *Link) Send(b byte) error {
	select {
	case <-l.done:
		return l.err
	default:
	}

	l.writeMu.Lock()
	n, err := l.transport.Write([]byte{b})
	l.writeMu.Unlock()

	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	if err != nil {
		errType := ErrorTypeTransient
		if IsFatal(err) || l.closing.Load() {
			errType = ErrorTypePermanent
		}
		return NewTransportError("send", l.name, errors.Join(ErrTransportWrite, err), errType)
	}

	l.txBytes.Add(1)
	l.trace.RecordTX(b, "")
	Debugf("%s: TX %02X %s", l.name, b, Command(b))
	return nil
}

// Pending returns the mailbox content
func (l *Link) Pending() (byte, bool) {
	v := l.mailbox.Load()
	return byte(v), v&mailboxValid != 0
}

// Receive waits up to timeout for the received flag and returns the mailbox
// byte. The flag is consumed.
func (l *Link) Receive(ctx context.Context, timeout time.Duration) (byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-l.rx:
		b, _ := l.Pending()
		return b, nil
	case <-timer.C:
		return 0, NewTimeoutError("receive", l.name)
	case <-l.done:
		return 0, l.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Received returns the received flag. A value is available on the channel
// once a byte has arrived since the flag was last cleared.
func (l *Link) Received() <-chan struct{} {
	return l.rx
}

func (l *Link) clearReceived() {
	select {
	case <-l.rx:
	default:
	}
}

// Done is closed when the receive loop stops
func (l *Link) Done() <-chan struct{} {
	return l.done
}

// Err returns the reason the receive loop stopped, or nil while it runs
func (l *Link) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// Stats returns the link traffic counters
func (l *Link) Stats() LinkStats {
	return LinkStats{
		TxBytes:     l.txBytes.Load(),
		RxBytes:     l.rxBytes.Load(),
		Overwritten: l.overwritten.Load(),
	}
}

// Trace returns the link's trace buffer
func (l *Link) Trace() *TraceBuffer {
	return l.trace
}

// Close closes the underlying transport, which stops the receive loop
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.closing.Store(true)
		err = l.transport.Close()
	})
	return err
}

var _ Port = (*Link)(nil)
