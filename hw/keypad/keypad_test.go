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

package keypad

import (
	"context"
	"strings"
	"testing"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	t.Parallel()

	for _, k := range []byte("0123456789/x-c=+") {
		assert.True(t, Valid(k), "key %q", k)
	}
	for _, k := range []byte("ab*#\n ") {
		assert.False(t, Valid(k), "key %q", k)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	k, ok := Key(3, 3)
	assert.True(t, ok)
	assert.Equal(t, byte('+'), k)

	k, ok = Key(0, 0)
	assert.True(t, ok)
	assert.Equal(t, byte('7'), k)

	_, ok = Key(4, 0)
	assert.False(t, ok)
}

func TestQueue_PressAndRead(t *testing.T) {
	t.Parallel()

	q := New(4)
	require.NoError(t, q.PressString("1a2"))
	assert.Equal(t, 2, q.Pending())

	ctx := context.Background()
	k, err := q.ReadKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte('1'), k)
	k, err = q.ReadKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte('2'), k)
}

func TestQueue_Full(t *testing.T) {
	t.Parallel()

	q := New(1)
	require.NoError(t, q.Press('1'))
	assert.ErrorIs(t, q.Press('2'), ErrQueueFull)
}

func TestQueue_ReadKeyCancel(t *testing.T) {
	t.Parallel()

	q := New(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.ReadKey(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_Close(t *testing.T) {
	t.Parallel()

	q := New(4)
	require.NoError(t, q.Press('5'))
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Press('6'), doorlock.ErrKeypadClosed)

	k, err := q.ReadKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte('5'), k)

	_, err = q.ReadKey(context.Background())
	assert.ErrorIs(t, err, doorlock.ErrKeypadClosed)
	assert.True(t, doorlock.IsFatal(err))
}

func TestQueue_Feed(t *testing.T) {
	t.Parallel()

	q := New(2)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- q.Feed(ctx, strings.NewReader("12\n34=\n"))
	}()

	var got []byte
	for range 5 {
		k, err := q.ReadKey(ctx)
		require.NoError(t, err)
		got = append(got, k)
	}
	assert.Equal(t, "1234=", string(got))
	require.NoError(t, <-done)
}
