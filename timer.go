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
	"time"

	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
)

// Arming is the side of a timer a state machine uses
type Arming interface {
	Arm(d time.Duration)
}

// Timer is a one-shot timer whose expiry raises a flag, the timer
// counterpart of a Link's received flag. Arming again supersedes any
// pending expiry.
type Timer struct {
	t       *time.Timer
	expired chan struct{}
	gen     uint64
	mu      syncutil.Mutex
}

// NewTimer returns a disarmed timer
func NewTimer() *Timer {
	return &Timer{expired: make(chan struct{}, 1)}
}

// Arm starts the timer for d
func (t *Timer) Arm(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	gen := t.gen
	if t.t != nil {
		t.t.Stop()
	}
	t.t = time.AfterFunc(d, func() { t.fire(gen) })
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return
	}
	select {
	case t.expired <- struct{}{}:
	default:
	}
}

// Expired returns the expiry flag
func (t *Timer) Expired() <-chan struct{} {
	return t.expired
}

func (t *Timer) clear() {
	select {
	case <-t.expired:
	default:
	}
}

// Stop disarms the timer
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
}

var _ Arming = (*Timer)(nil)
