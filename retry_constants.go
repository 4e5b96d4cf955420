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

import "time"

// Link timing constants follow the deployed boards.
const (
	// DefaultBaudRate is the serial speed of the inter-node link (8N1).
	DefaultBaudRate = 9600
	// HandshakeInterval is how long the controller waits for the Ready echo
	// before sending Ready again.
	HandshakeInterval = 50 * time.Millisecond
)

// Persistence retry constants control access to the password store.
const (
	// StoreByteDelay is the pause between consecutive store operations and
	// between retries of a failed one. It covers the EEPROM write cycle.
	StoreByteDelay = 20 * time.Millisecond
	// StoreBoundedAttempts is the attempt limit of the bounded store policy.
	StoreBoundedAttempts = 10
	// StoreBoundedTimeout caps the total time of the bounded store policy.
	StoreBoundedTimeout = 2 * time.Second
)

// StoreBoundedConfig returns a store retry policy that gives up after
// StoreBoundedAttempts. Nodes use it when configured not to block forever
// on a failing store.
func StoreBoundedConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       StoreBoundedAttempts,
		InitialBackoff:    StoreByteDelay,
		MaxBackoff:        8 * StoreByteDelay,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      StoreBoundedTimeout,
	}
}

// Link receive loop constants.
const (
	// linkReadBufferSize is the chunk size of each transport read.
	linkReadBufferSize = 16
	// DefaultTraceSize is the number of link bytes kept for error reports.
	DefaultTraceSize = 32
)
