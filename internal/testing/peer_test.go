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
	"testing"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeypadResponder(t *testing.T) {
	t.Parallel()

	r := Keypad("5+1=")
	steps := []struct {
		in   doorlock.Command
		want []byte
	}{
		{doorlock.CmdShowBanner, []byte{'A'}},
		{doorlock.CmdShowMenu, []byte{'5'}},
		{doorlock.CmdAck, []byte{'+'}},
		{doorlock.CmdPromptVerifyPassword, []byte{'1'}},
		{doorlock.CmdNextPasswordChar, []byte{'='}},
		{doorlock.CmdStopReceivingPassword, []byte{'A'}},
		{doorlock.CmdShowMenu, nil},
	}
	for _, s := range steps {
		assert.Equal(t, s.want, r(byte(s.in)), "after %v", s.in)
	}
}

func TestIgnoreFirst(t *testing.T) {
	t.Parallel()

	r := IgnoreFirst(2, AckAll())
	assert.Nil(t, r('A'))
	assert.Nil(t, r('A'))
	assert.Equal(t, []byte{'A'}, r('A'))
}

func TestPeer_StopReportsClose(t *testing.T) {
	t.Parallel()

	a, b := doorlock.NewPipe()
	peer := StartPeer(b, AckAll())

	_, err := a.Write([]byte{'B'})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, peer.WaitFor(ctx, 'B'))

	got := make([]byte, 1)
	_, err = a.Read(got)
	require.NoError(t, err)
	assert.Equal(t, byte('A'), got[0])

	require.NoError(t, peer.Stop())
	assert.Equal(t, []byte{'B'}, peer.Received())
}
