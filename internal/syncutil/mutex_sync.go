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

//go:build !deadlock

// Package syncutil provides the mutexes used across the door lock nodes.
// Building with -tags=deadlock swaps them for github.com/sasha-s/go-deadlock
// so lock-order bugs between the rx goroutine, timers and the node loop
// surface in tests.
package syncutil

import (
	"sync"
	"time"
)

// Detecting reports whether lock-order checking is compiled in
const Detecting = false

// Mutex is a plain sync.Mutex in regular builds.
//
//nolint:gocritic // embedding exposes Lock/Unlock directly
type Mutex struct {
	sync.Mutex
}

// RWMutex is a plain sync.RWMutex in regular builds.
//
//nolint:gocritic // embedding exposes Lock/Unlock directly
type RWMutex struct {
	sync.RWMutex
}

// SetLockTimeout is a no-op without -tags=deadlock.
func SetLockTimeout(time.Duration) {}
