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

// Package eeprom provides byte-addressed persistent stores for the
// controller: an M24C16 over I2C, a file-backed image for simulation and
// an in-memory store for tests.
package eeprom

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
)

// Size is the capacity of an M24C16 in bytes
const Size = 2048

// Erased is the value of a never-written cell
const Erased = 0xFF

// Store is a byte-addressed store
type Store interface {
	ReadByteAt(addr uint16) (byte, error)
	WriteByteAt(addr uint16, b byte) error
}

func checkAddr(op string, addr uint16, size int) error {
	if int(addr) >= size {
		return &doorlock.StoreError{Op: op, Addr: addr, Err: doorlock.ErrStoreAddress}
	}
	return nil
}

// Memory is an in-memory store initialised to the erased value
type Memory struct {
	cells []byte
	mu    syncutil.Mutex
}

// NewMemory returns an erased store of size bytes
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = Size
	}
	m := &Memory{cells: make([]byte, size)}
	fill(m.cells, Erased)
	return m
}

// ReadByteAt returns the byte at addr
func (m *Memory) ReadByteAt(addr uint16) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkAddr("read", addr, len(m.cells)); err != nil {
		return 0, err
	}
	return m.cells[addr], nil
}

// WriteByteAt stores b at addr
func (m *Memory) WriteByteAt(addr uint16, b byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkAddr("write", addr, len(m.cells)); err != nil {
		return err
	}
	m.cells[addr] = b
	return nil
}

// Bytes returns a copy of the contents
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.cells))
	copy(out, m.cells)
	return out
}

// File is a store backed by an image file. Every write goes through to
// the file so a killed simulator keeps its password.
type File struct {
	f    *os.File
	path string
	size int
	mu   syncutil.Mutex
}

// OpenFile opens the image at path, creating an erased image of Size bytes
// if it does not exist.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open eeprom image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat eeprom image: %w", err)
	}

	size := int(info.Size())
	if size < Size {
		pad := make([]byte, Size-size)
		fill(pad, Erased)
		if _, err := f.WriteAt(pad, int64(size)); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("initialise eeprom image: %w", err)
		}
		size = Size
	}
	doorlock.Debugf("eeprom: image %s (%d bytes)", path, size)
	return &File{f: f, path: path, size: size}, nil
}

// ReadByteAt returns the byte at addr
func (s *File) ReadByteAt(addr uint16) (byte, error) {
	if err := checkAddr("read", addr, s.size); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var b [1]byte
	if _, err := s.f.ReadAt(b[:], int64(addr)); err != nil {
		return 0, doorlock.NewStoreReadError(addr, err)
	}
	return b[0], nil
}

// WriteByteAt stores b at addr
func (s *File) WriteByteAt(addr uint16, b byte) error {
	if err := checkAddr("write", addr, s.size); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.WriteAt([]byte{b}, int64(addr)); err != nil {
		return doorlock.NewStoreWriteError(addr, err)
	}
	return nil
}

// Path returns the image path
func (s *File) Path() string { return s.path }

// Close closes the image
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close eeprom image: %w", err)
	}
	return nil
}

// Erase writes the erased value to n bytes starting at from
func Erase(s Store, from uint16, n int) error {
	for i := range n {
		if err := s.WriteByteAt(from+uint16(i), Erased); err != nil {
			return err
		}
	}
	return nil
}

// Dump writes a hex dump of n bytes starting at from
func Dump(w io.Writer, s Store, from uint16, n int) error {
	buf := make([]byte, n)
	for i := range buf {
		b, err := s.ReadByteAt(from + uint16(i))
		if err != nil {
			return err
		}
		buf[i] = b
	}
	d := hex.Dumper(w)
	if _, err := d.Write(buf); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	if err := d.Close(); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	return nil
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
