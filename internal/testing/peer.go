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

package testing

import (
	"context"
	"errors"
	"io"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
)

// Responder returns the bytes a peer sends back after receiving b
type Responder func(b byte) []byte

// Peer is a scripted node on the far end of a transport. It reads bytes,
// records them and answers through its responder.
type Peer struct {
	transport doorlock.Transport
	respond   Responder
	err       error
	done      chan struct{}
	changed   chan struct{}
	received  []byte
	mu        syncutil.Mutex
}

// StartPeer starts answering on t
func StartPeer(t doorlock.Transport, respond Responder) *Peer {
	p := &Peer{
		transport: t,
		respond:   respond,
		done:      make(chan struct{}),
		changed:   make(chan struct{}, 1),
	}
	go p.loop()
	return p
}

func (p *Peer) loop() {
	defer close(p.done)
	buf := make([]byte, 16)
	for {
		n, err := p.transport.Read(buf)
		for _, b := range buf[:n] {
			p.record(b)
			if reply := p.respond(b); len(reply) > 0 {
				if _, werr := p.transport.Write(reply); werr != nil {
					p.setErr(werr)
					return
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.setErr(err)
			}
			return
		}
	}
}

func (p *Peer) record(b byte) {
	p.mu.Lock()
	p.received = append(p.received, b)
	p.mu.Unlock()
	select {
	case p.changed <- struct{}{}:
	default:
	}
}

func (p *Peer) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Received returns a copy of every byte received so far
func (p *Peer) Received() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, len(p.received))
	copy(out, p.received)
	return out
}

// WaitFor blocks until b has been received or ctx is done
func (p *Peer) WaitFor(ctx context.Context, b byte) error {
	for {
		for _, got := range p.Received() {
			if got == b {
				return nil
			}
		}
		select {
		case <-p.changed:
		case <-p.done:
			return io.EOF
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop closes the transport and waits for the peer to exit
func (p *Peer) Stop() error {
	closeErr := p.transport.Close()
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	return closeErr //nolint:wrapcheck // Pass-through
}

// AckAll acknowledges every byte
func AckAll() Responder {
	return func(byte) []byte {
		return []byte{byte(doorlock.CmdAck)}
	}
}

// IgnoreFirst drops the first n bytes, then defers to next
func IgnoreFirst(n int, next Responder) Responder {
	return func(b byte) []byte {
		if n > 0 {
			n--
			return nil
		}
		return next(b)
	}
}

// Keypad models the interface node's replies without a display. Each
// request for input consumes the next key; when the keys run out the peer
// stops answering, like an operator walking away.
func Keypad(keys string) Responder {
	inMenu := false
	next := func() []byte {
		if keys == "" {
			return nil
		}
		k := keys[0]
		keys = keys[1:]
		return []byte{k}
	}

	return func(b byte) []byte {
		cmd := doorlock.Command(b)
		switch {
		case cmd == doorlock.CmdShowMenu:
			inMenu = true
			return next()
		case inMenu && cmd == doorlock.CmdAck:
			return next()
		case cmd.IsPasswordPrompt():
			inMenu = false
			return next()
		}

		inMenu = false
		switch cmd {
		case doorlock.CmdNextPasswordChar, doorlock.CmdSkipPasswordChar,
			doorlock.CmdBackspacePasswordChar, doorlock.CmdClearPasswordChars:
			return next()
		default:
			return []byte{byte(doorlock.CmdAck)}
		}
	}
}
