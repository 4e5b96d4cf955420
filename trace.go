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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
)

// TraceDirection indicates the direction of a byte on the link
type TraceDirection string

const (
	// TraceTX indicates a byte sent to the peer node
	TraceTX TraceDirection = "TX"
	// TraceRX indicates a byte received from the peer node
	TraceRX TraceDirection = "RX"
)

// TraceEntry is one byte exchanged on the link
type TraceEntry struct {
	Timestamp time.Time
	Direction TraceDirection
	Note      string
	Data      byte
}

// String returns a human-readable representation of the trace entry
func (e TraceEntry) String() string {
	if e.Note != "" {
		return fmt.Sprintf("[%s] %s: %02X %s (%s)",
			e.Timestamp.Format("15:04:05.000"), e.Direction, e.Data, Command(e.Data), e.Note)
	}
	return fmt.Sprintf("[%s] %s: %02X %s",
		e.Timestamp.Format("15:04:05.000"), e.Direction, e.Data, Command(e.Data))
}

// TraceableError wraps an error with the most recent link traffic.
// Applications can use errors.As() to extract the exchange that led to a
// failure:
//
//	var te *doorlock.TraceableError
//	if errors.As(err, &te) {
//	    log.Printf("Link trace:\n%s", te.FormatTrace())
//	}
type TraceableError struct {
	Err       error
	Transport string
	Port      string
	Trace     []TraceEntry
}

// Error implements the error interface
func (e *TraceableError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *TraceableError) Unwrap() error {
	return e.Err
}

// FormatTrace returns the trace as one line per byte
func (e *TraceableError) FormatTrace() string {
	if len(e.Trace) == 0 {
		return fmt.Sprintf("[%s:%s] (no trace data)", e.Transport, e.Port)
	}

	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "[%s:%s] Link trace (%d entries):\n", e.Transport, e.Port, len(e.Trace))
	for _, entry := range e.Trace {
		direction := ">"
		if entry.Direction == TraceRX {
			direction = "<"
		}
		if entry.Note != "" {
			_, _ = fmt.Fprintf(&sb, "  %s %02X %s (%s)\n", direction, entry.Data, Command(entry.Data), entry.Note)
		} else {
			_, _ = fmt.Fprintf(&sb, "  %s %02X %s\n", direction, entry.Data, Command(entry.Data))
		}
	}
	return sb.String()
}

// TraceBuffer keeps the last few bytes exchanged on a link in a fixed-size
// ring. It is safe for concurrent use by the sender and the receive loop.
type TraceBuffer struct {
	transport string
	port      string
	entries   []TraceEntry
	maxSize   int
	mu        syncutil.Mutex
}

// NewTraceBuffer creates a new trace buffer with the specified capacity
func NewTraceBuffer(transport, port string, maxSize int) *TraceBuffer {
	if maxSize <= 0 {
		maxSize = 32
	}
	return &TraceBuffer{
		entries:   make([]TraceEntry, 0, maxSize),
		maxSize:   maxSize,
		transport: transport,
		port:      port,
	}
}

// RecordTX records a byte sent to the peer
func (tb *TraceBuffer) RecordTX(b byte, note string) {
	tb.record(TraceTX, b, note)
}

// RecordRX records a byte received from the peer
func (tb *TraceBuffer) RecordRX(b byte, note string) {
	tb.record(TraceRX, b, note)
}

func (tb *TraceBuffer) record(dir TraceDirection, b byte, note string) {
	entry := TraceEntry{
		Direction: dir,
		Data:      b,
		Timestamp: time.Now(),
		Note:      note,
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	if len(tb.entries) >= tb.maxSize {
		copy(tb.entries, tb.entries[1:])
		tb.entries[len(tb.entries)-1] = entry
	} else {
		tb.entries = append(tb.entries, entry)
	}
}

// Entries returns a copy of the recorded entries, oldest first
func (tb *TraceBuffer) Entries() []TraceEntry {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	out := make([]TraceEntry, len(tb.entries))
	copy(out, tb.entries)
	return out
}

// WrapError wraps an error with the collected trace data.
// Returns nil if err is nil.
func (tb *TraceBuffer) WrapError(err error) error {
	if err == nil {
		return nil
	}
	return &TraceableError{
		Err:       err,
		Trace:     tb.Entries(),
		Transport: tb.transport,
		Port:      tb.port,
	}
}

// Clear resets the trace buffer
func (tb *TraceBuffer) Clear() {
	tb.mu.Lock()
	tb.entries = tb.entries[:0]
	tb.mu.Unlock()
}

// HasTrace checks if an error contains trace data
func HasTrace(err error) bool {
	var te *TraceableError
	return errors.As(err, &te)
}

// GetTrace extracts trace data from an error, returning nil if not present
func GetTrace(err error) *TraceableError {
	var te *TraceableError
	if errors.As(err, &te) {
		return te
	}
	return nil
}
