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

package uart

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

var errLineNoise = errors.New("framing error")

// mockPort is an in-memory serial port
type mockPort struct {
	rx       *bytes.Buffer
	tx       bytes.Buffer
	readErr  error
	writeErr error
	drains   int
	closed   bool
}

func (m *mockPort) Read(p []byte) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	if m.rx.Len() == 0 {
		// read timeout with nothing on the line
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	return m.rx.Read(p)
}

func (m *mockPort) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.tx.Write(p)
}

func (m *mockPort) Close() error { m.closed = true; return nil }

func (*mockPort) ResetInputBuffer() error { return nil }

func (m *mockPort) Drain() error { m.drains++; return nil }

func TestTransport_ReadWrite(t *testing.T) {
	t.Parallel()

	m := &mockPort{rx: bytes.NewBufferString("+")}
	tr := newTransport(m, "/dev/ttyUSB0")

	n, err := tr.Write([]byte{byte(doorlock.CmdShowMenu)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte("K"), m.tx.Bytes())
	assert.Equal(t, 1, m.drains)

	buf := make([]byte, 4)
	n, err = tr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "+", string(buf[:n]))

	assert.Equal(t, doorlock.TransportUART, tr.Type())
	assert.Equal(t, "/dev/ttyUSB0", tr.String())
}

func TestTransport_Close(t *testing.T) {
	t.Parallel()

	m := &mockPort{rx: &bytes.Buffer{}}
	tr := newTransport(m, "ttyS0")

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.True(t, m.closed)

	_, err := tr.Write([]byte{'A'})
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	_, err = tr.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestTransport_ErrorMapping(t *testing.T) {
	t.Parallel()

	m := &mockPort{rx: &bytes.Buffer{}, readErr: errLineNoise, writeErr: errLineNoise}
	tr := newTransport(m, "ttyS0")

	_, err := tr.Read(make([]byte, 1))
	require.ErrorIs(t, err, errLineNoise)
	assert.Contains(t, err.Error(), "ttyS0")

	_, err = tr.Write([]byte{'A'})
	require.ErrorIs(t, err, errLineNoise)

	m.readErr = &serial.PortError{}
	_, err = tr.Read(make([]byte, 1))
	assert.NotErrorIs(t, err, io.EOF)
}

func TestNew_RequiresPortName(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.ErrorIs(t, err, doorlock.ErrInvalidConfig)

	cfg := DefaultConfig("/dev/ttyACM0")
	assert.Equal(t, 9600, cfg.BaudRate)
	assert.Equal(t, "/dev/ttyACM0", cfg.PortName)
}

func TestTransport_OverLink(t *testing.T) {
	t.Parallel()

	m := &mockPort{rx: bytes.NewBufferString("A")}
	link := doorlock.NewLink(newTransport(m, "ttyS0"))
	defer func() { _ = link.Close() }()

	select {
	case <-link.Received():
	case <-link.Done():
		t.Fatal(link.Err())
	}
	b, ok := link.Pending()
	assert.True(t, ok)
	assert.Equal(t, byte('A'), b)
}
