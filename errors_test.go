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
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "transport timeout", err: ErrTransportTimeout, want: true},
		{name: "transport read", err: ErrTransportRead, want: true},
		{name: "transport write", err: ErrTransportWrite, want: true},
		{name: "handshake mismatch", err: ErrHandshakeMismatch, want: true},
		{name: "store read", err: NewStoreReadError(0x01, errors.New("nack")), want: true},
		{name: "store write", err: NewStoreWriteError(0x02, errors.New("nack")), want: true},
		{name: "store address", err: &StoreError{Op: "read", Addr: 0x800, Err: ErrStoreAddress}, want: false},
		{name: "transport closed", err: ErrTransportClosed, want: false},
		{name: "wrapped timeout", err: fmt.Errorf("handshake: %w", ErrTransportTimeout), want: true},
		{name: "retryable transport error", err: NewTimeoutError("receive", "pipe"), want: true},
		{name: "permanent transport error", err: NewTransportClosedError("send", "pipe"), want: false},
		{name: "unknown error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "closed", err: ErrTransportClosed, want: true},
		{name: "eof", err: io.EOF, want: true},
		{name: "closed pipe", err: io.ErrClosedPipe, want: true},
		{name: "store unavailable", err: ErrStoreUnavailable, want: true},
		{name: "keypad closed", err: ErrKeypadClosed, want: true},
		{name: "device gone", err: fmt.Errorf("read: %w", syscall.ENXIO), want: true},
		{name: "timeout", err: ErrTransportTimeout, want: false},
		{name: "permanent transport error", err: NewTransportClosedError("receive", "uart"), want: true},
		{name: "timeout transport error", err: NewTimeoutError("receive", "uart"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrorTypeTimeout, GetErrorType(ErrTransportTimeout))
	assert.Equal(t, ErrorTypePermanent, GetErrorType(ErrTransportClosed))
	assert.Equal(t, ErrorTypeTransient, GetErrorType(ErrStoreWrite))
	assert.Equal(t, ErrorTypePermanent, GetErrorType(errors.New("unknown")))
}

func TestTransportError_Format(t *testing.T) {
	t.Parallel()

	err := NewTransportError("send", "/dev/ttyUSB0", ErrTransportWrite, ErrorTypeTransient)
	assert.Equal(t, "send /dev/ttyUSB0: transport write failed", err.Error())
	assert.True(t, err.Retryable)
	require.ErrorIs(t, err, ErrTransportWrite)

	noPort := &TransportError{Op: "receive", Err: ErrTransportTimeout}
	assert.Equal(t, "receive: transport timeout", noPort.Error())
}

func TestStoreError_Format(t *testing.T) {
	t.Parallel()

	cause := errors.New("i2c nack")
	err := NewStoreWriteError(0x003, cause)

	assert.Contains(t, err.Error(), "write 0x003")
	require.ErrorIs(t, err, ErrStoreWrite)
	require.ErrorIs(t, err, cause)

	var se *StoreError
	require.ErrorAs(t, fmt.Errorf("persist: %w", err), &se)
	assert.Equal(t, uint16(0x003), se.Addr)
}

func TestTraceBuffer_RingAndWrap(t *testing.T) {
	t.Parallel()

	tb := NewTraceBuffer("pipe", "test", 3)
	tb.RecordTX(byte(CmdReady), "")
	tb.RecordRX(byte(CmdReady), "")
	tb.RecordTX(byte(CmdShowBanner), "")
	tb.RecordRX(byte(CmdAck), "late")

	entries := tb.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, TraceRX, entries[0].Direction)
	assert.Equal(t, byte(CmdAck), entries[2].Data)

	err := tb.WrapError(ErrTransportClosed)
	require.ErrorIs(t, err, ErrTransportClosed)
	assert.True(t, HasTrace(err))

	te := GetTrace(err)
	require.NotNil(t, te)
	formatted := te.FormatTrace()
	assert.Contains(t, formatted, "[pipe:test] Link trace (3 entries)")
	assert.Contains(t, formatted, "> 42 ShowBanner")
	assert.Contains(t, formatted, "< 41 Ready (late)")

	assert.NoError(t, tb.WrapError(nil))
	tb.Clear()
	assert.Empty(t, tb.Entries())
	assert.Nil(t, GetTrace(errors.New("plain")))
}
