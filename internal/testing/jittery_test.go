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
	"io"
	"testing"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readN(t *testing.T, r io.Reader, n int) []byte {
	t.Helper()
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		got, err := r.Read(buf[:n-len(out)])
		require.NoError(t, err)
		out = append(out, buf[:got]...)
	}
	return out
}

func TestJitteryTransport_PreservesBytes(t *testing.T) {
	t.Parallel()

	a, b := doorlock.NewPipe()
	j := NewJitteryTransport(b, JitterConfig{MaxLatencyMs: 2, Seed: 12345})
	defer func() { _ = j.Close() }()

	_, err := a.Write([]byte("ABCDEF"))
	require.NoError(t, err)

	assert.Equal(t, []byte("ABCDEF"), readN(t, j, 6))
	assert.Equal(t, doorlock.TransportPipe, j.Type())
}

func TestJitteryTransport_Latency(t *testing.T) {
	t.Parallel()

	a, b := doorlock.NewPipe()
	j := NewJitteryTransport(b, JitterConfig{MaxLatencyMs: 10, Seed: 7})

	_, err := a.Write([]byte{'A'})
	require.NoError(t, err)

	start := time.Now()
	readN(t, j, 1)
	assert.Less(t, time.Since(start), time.Second)
}

func TestJitteryTransport_Stall(t *testing.T) {
	t.Parallel()

	a, b := doorlock.NewPipe()
	j := NewJitteryTransport(b, JitterConfig{StallAfterBytes: 1, StallDuration: 30 * time.Millisecond})

	_, err := a.Write([]byte{'A'})
	require.NoError(t, err)
	readN(t, j, 1)

	_, err = a.Write([]byte{'B'})
	require.NoError(t, err)
	start := time.Now()
	assert.Equal(t, []byte{'B'}, readN(t, j, 1))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	j.ResetStallState()
}

func TestJitteryTransport_PassesEOF(t *testing.T) {
	t.Parallel()

	a, b := doorlock.NewPipe()
	j := NewJitteryTransport(b, DefaultJitterConfig())
	require.NoError(t, a.Close())

	_, err := j.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestJitteryTransport_UnderLink(t *testing.T) {
	t.Parallel()

	a, b := doorlock.NewPipe()
	link := doorlock.NewLink(NewJitteryTransport(b, JitterConfig{MaxLatencyMs: 3, Seed: 99}))
	defer func() { _ = link.Close() }()

	for _, c := range []byte("AKL") {
		_, err := a.Write([]byte{c})
		require.NoError(t, err)
		got, err := link.Receive(context.Background(), time.Second)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}
