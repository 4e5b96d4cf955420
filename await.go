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
	"fmt"
)

// Await is the condition a node waits for after a step
type Await int

const (
	// AwaitNothing starts the next step immediately
	AwaitNothing Await = iota
	// AwaitMessage waits for a byte from the peer
	AwaitMessage
	// AwaitTimer waits for the armed timer to expire
	AwaitTimer
	// AwaitBoth waits until a byte has arrived and the timer has expired
	AwaitBoth
)

func (a Await) String() string {
	switch a {
	case AwaitNothing:
		return "Nothing"
	case AwaitMessage:
		return "Message"
	case AwaitTimer:
		return "Timer"
	case AwaitBoth:
		return "Both"
	default:
		return fmt.Sprintf("Await(%d)", int(a))
	}
}

// Node is a tick-driven state machine. Step runs exactly one step of the
// current state and reports what to wait for before the next one.
type Node interface {
	Step(ctx context.Context) (Await, error)
}

// Run drives node until ctx is cancelled, a step fails, or the link is
// lost. Each tick clears the received and expiry flags, runs one step, then
// waits for the condition the step returned. Errors other than context
// cancellation carry the link trace.
func Run(ctx context.Context, node Node, link *Link, timer *Timer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		link.clearReceived()
		timer.clear()

		await, err := node.Step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return link.Trace().WrapError(fmt.Errorf("step: %w", err))
		}

		if err := wait(ctx, await, link, timer); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return link.Trace().WrapError(err)
		}
	}
}

func wait(ctx context.Context, await Await, link *Link, timer *Timer) error {
	var msg <-chan struct{}
	var exp <-chan struct{}

	switch await {
	case AwaitNothing:
		return link.Err()
	case AwaitMessage:
		msg = link.rx
	case AwaitTimer:
		exp = timer.expired
	case AwaitBoth:
		msg = link.rx
		exp = timer.expired
	default:
		return fmt.Errorf("unknown await condition %v", await)
	}

	for msg != nil || exp != nil {
		select {
		case <-msg:
			msg = nil
		case <-exp:
			exp = nil
		case <-link.done:
			return link.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
