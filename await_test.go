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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptNode returns a fixed sequence of awaits, recording each step.
type scriptNode struct {
	link    *Link
	timer   *Timer
	awaits  []Await
	stepped []time.Time
	fail    error
}

func (n *scriptNode) Step(_ context.Context) (Await, error) {
	n.stepped = append(n.stepped, time.Now())
	i := len(n.stepped) - 1
	if i >= len(n.awaits) {
		if n.fail != nil {
			return AwaitNothing, n.fail
		}
		return AwaitNothing, errStop
	}
	if n.awaits[i] == AwaitTimer || n.awaits[i] == AwaitBoth {
		n.timer.Arm(10 * time.Millisecond)
	}
	if n.awaits[i] == AwaitMessage || n.awaits[i] == AwaitBoth {
		_ = n.link.Send(byte(CmdShowMenu))
	}
	return n.awaits[i], nil
}

var errStop = errors.New("script finished")

// echo answers every byte on the peer end with an Ack after delay.
func echo(peer *PipeTransport, delay time.Duration) {
	buf := make([]byte, 1)
	for {
		if _, err := peer.Read(buf); err != nil {
			return
		}
		time.Sleep(delay)
		if _, err := peer.Write([]byte{byte(CmdAck)}); err != nil {
			return
		}
	}
}

func TestAwait_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Nothing", AwaitNothing.String())
	assert.Equal(t, "Message", AwaitMessage.String())
	assert.Equal(t, "Timer", AwaitTimer.String())
	assert.Equal(t, "Both", AwaitBoth.String())
	assert.Equal(t, "Await(9)", Await(9).String())
}

func TestRun_WaitsForEachCondition(t *testing.T) {
	t.Parallel()

	link, peer := newLinkPair(t)
	go echo(peer, 0)

	node := &scriptNode{
		link:   link,
		timer:  NewTimer(),
		awaits: []Await{AwaitNothing, AwaitMessage, AwaitTimer, AwaitBoth},
	}

	err := Run(context.Background(), node, link, node.timer)
	require.ErrorIs(t, err, errStop)
	assert.True(t, HasTrace(err))
	require.Len(t, node.stepped, 5)

	assert.GreaterOrEqual(t, node.stepped[3].Sub(node.stepped[2]), 10*time.Millisecond, "timer wait")
	assert.GreaterOrEqual(t, node.stepped[4].Sub(node.stepped[3]), 10*time.Millisecond, "both wait")
}

func TestRun_BothWaitsForSlowMessage(t *testing.T) {
	t.Parallel()

	link, peer := newLinkPair(t)
	go echo(peer, 40*time.Millisecond)

	node := &scriptNode{link: link, timer: NewTimer(), awaits: []Await{AwaitBoth}}

	err := Run(context.Background(), node, link, node.timer)
	require.ErrorIs(t, err, errStop)
	require.Len(t, node.stepped, 2)
	assert.GreaterOrEqual(t, node.stepped[1].Sub(node.stepped[0]), 40*time.Millisecond)
}

func TestRun_StopsOnLinkLoss(t *testing.T) {
	t.Parallel()

	link, peer := newLinkPair(t)
	node := &scriptNode{link: link, timer: NewTimer(), awaits: []Await{AwaitMessage, AwaitMessage}}

	go func() {
		buf := make([]byte, 1)
		_, _ = peer.Read(buf)
		_ = peer.Close()
	}()

	err := Run(context.Background(), node, link, node.timer)
	require.ErrorIs(t, err, ErrTransportClosed)
}

func TestRun_ContextCancel(t *testing.T) {
	t.Parallel()

	link, _ := newLinkPair(t)
	node := &scriptNode{link: link, timer: NewTimer(), awaits: []Await{AwaitMessage}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := Run(ctx, node, link, node.timer)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, HasTrace(err))
}
