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

// Package lcd emulates a character LCD with HD44780 cursor behaviour.
package lcd

import (
	"fmt"
	"io"
	"strings"

	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
)

// Standard module geometry
const (
	DefaultRows = 2
	DefaultCols = 16
)

// Option configures an LCD
type Option func(*LCD)

// WithMirror writes the screen contents to w after every change
func WithMirror(w io.Writer) Option {
	return func(l *LCD) {
		l.mirror = w
	}
}

// WithChangeHook calls fn after every change. fn must not call back into
// the LCD.
func WithChangeHook(fn func()) Option {
	return func(l *LCD) {
		l.onChange = fn
	}
}

// LCD is an in-memory character display. Writes past the last column are
// dropped, like writes into the hidden part of the controller's DDRAM.
type LCD struct {
	mirror   io.Writer
	onChange func()
	cells    [][]byte
	rows     int
	cols     int
	row      int
	col      int
	mu       syncutil.Mutex
}

// New returns a cleared display
func New(rows, cols int, opts ...Option) *LCD {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	l := &LCD{rows: rows, cols: cols, cells: make([][]byte, rows)}
	for i := range l.cells {
		l.cells[i] = make([]byte, cols)
	}
	for _, opt := range opts {
		opt(l)
	}
	l.clear()
	return l
}

// Clear blanks the display and homes the cursor
func (l *LCD) Clear() {
	l.mu.Lock()
	l.clear()
	l.mu.Unlock()
	l.changed()
}

func (l *LCD) clear() {
	for _, r := range l.cells {
		for i := range r {
			r[i] = ' '
		}
	}
	l.row, l.col = 0, 0
}

// WriteAt moves the cursor to (row, col) and writes text
func (l *LCD) WriteAt(row, col int, text string) {
	l.mu.Lock()
	l.setCursor(row, col)
	for i := range len(text) {
		l.put(text[i])
	}
	l.mu.Unlock()
	l.changed()
}

// SetCursor moves the cursor
func (l *LCD) SetCursor(row, col int) {
	l.mu.Lock()
	l.setCursor(row, col)
	l.mu.Unlock()
	l.changed()
}

func (l *LCD) setCursor(row, col int) {
	l.row = min(max(row, 0), l.rows-1)
	l.col = max(col, 0)
}

// WriteChar writes c at the cursor and advances it
func (l *LCD) WriteChar(c byte) {
	l.mu.Lock()
	l.put(c)
	l.mu.Unlock()
	l.changed()
}

func (l *LCD) put(c byte) {
	if l.col < l.cols {
		l.cells[l.row][l.col] = c
	}
	l.col++
}

// CursorLeft moves the cursor one column left, stopping at column 0
func (l *LCD) CursorLeft() {
	l.mu.Lock()
	if l.col > 0 {
		l.col--
	}
	l.mu.Unlock()
	l.changed()
}

// Lines returns the text of every row
func (l *LCD) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, l.rows)
	for i, r := range l.cells {
		out[i] = string(r)
	}
	return out
}

// Cursor returns the cursor position
func (l *LCD) Cursor() (row, col int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.row, l.col
}

// Size returns rows and columns
func (l *LCD) Size() (rows, cols int) {
	return l.rows, l.cols
}

// String renders the display with a frame
func (l *LCD) String() string {
	lines := l.Lines()
	border := "+" + strings.Repeat("-", l.cols) + "+"
	var sb strings.Builder
	sb.WriteString(border)
	for _, line := range lines {
		sb.WriteString("\n|" + line + "|")
	}
	sb.WriteString("\n" + border)
	return sb.String()
}

func (l *LCD) changed() {
	if l.mirror != nil {
		_, _ = fmt.Fprintf(l.mirror, "[%s]\n", strings.Join(l.Lines(), "|"))
	}
	if l.onChange != nil {
		l.onChange()
	}
}
