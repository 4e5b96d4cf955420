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

// Package keypad provides a queue-backed 4x4 keypad. Keys are pushed by a
// terminal front panel, a script or a byte stream and consumed by the
// interface node one at a time.
package keypad

import (
	"bufio"
	"context"
	"errors"
	"io"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
)

// Layout is the glyph printed on each key, row by row
var Layout = [4][4]byte{
	{'7', '8', '9', '/'},
	{'4', '5', '6', 'x'},
	{'1', '2', '3', '-'},
	{'c', '0', '=', '+'},
}

// DefaultQueueSize bounds the number of unread keystrokes
const DefaultQueueSize = 32

// ErrQueueFull is returned by Press when no more keys can be buffered
var ErrQueueFull = errors.New("keypad queue full")

// Valid reports whether b is printed on a key
func Valid(b byte) bool {
	for _, row := range Layout {
		for _, k := range row {
			if k == b {
				return true
			}
		}
	}
	return false
}

// Key returns the glyph at (row, col) of the layout
func Key(row, col int) (byte, bool) {
	if row < 0 || row >= len(Layout) || col < 0 || col >= len(Layout[row]) {
		return 0, false
	}
	return Layout[row][col], true
}

// Queue is a keypad fed programmatically
type Queue struct {
	keys   chan byte
	done   chan struct{}
	closed bool
	mu     syncutil.Mutex
}

// New returns an empty keypad with room for size pending keys
func New(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		keys: make(chan byte, size),
		done: make(chan struct{}),
	}
}

// Press queues one key. Glyphs that are not on the keypad are ignored.
func (q *Queue) Press(key byte) error {
	if !Valid(key) {
		doorlock.Debugf("keypad: ignoring %q", key)
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return doorlock.ErrKeypadClosed
	}
	select {
	case q.keys <- key:
		return nil
	default:
		return ErrQueueFull
	}
}

// PressString queues every key of s in order
func (q *Queue) PressString(s string) error {
	for i := range len(s) {
		if err := q.Press(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadKey blocks until a key is pressed. Keys queued before Close are
// still delivered.
func (q *Queue) ReadKey(ctx context.Context) (byte, error) {
	select {
	case k := <-q.keys:
		return k, nil
	default:
	}

	select {
	case k := <-q.keys:
		return k, nil
	case <-q.done:
		select {
		case k := <-q.keys:
			return k, nil
		default:
			return 0, doorlock.ErrKeypadClosed
		}
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Pending returns the number of unread keys
func (q *Queue) Pending() int {
	return len(q.keys)
}

// Close wakes blocked readers. Further presses fail.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Feed presses every keypad glyph read from r until EOF or ctx is done.
// Other bytes, including newlines, are skipped. A full queue blocks the
// feeder rather than dropping keys.
func (q *Queue) Feed(ctx context.Context, r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if !Valid(b) {
			continue
		}
		select {
		case q.keys <- b:
		case <-q.done:
			return doorlock.ErrKeypadClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
