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

// Package testing provides transport wrappers and scripted peers for
// exercising the door lock nodes under realistic link conditions.
package testing

import (
	"math/rand/v2"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
)

// JitterConfig configures the behavior of JitteryTransport.
type JitterConfig struct {
	MaxLatencyMs    int
	StallAfterBytes int
	StallDuration   time.Duration
	Seed            uint64
}

// DefaultJitterConfig returns a sensible default configuration for testing.
func DefaultJitterConfig() JitterConfig {
	return JitterConfig{
		MaxLatencyMs: 5,
	}
}

// JitteryTransport wraps a doorlock.Transport to simulate a USB-UART bridge
// with unpredictable latency and stalls. Writes pass through unchanged.
type JitteryTransport struct {
	backend             doorlock.Transport
	rng                 *rand.Rand
	readBuf             []byte
	config              JitterConfig
	bytesReadSinceStall int
	stallTriggered      bool
	rngMu               syncutil.Mutex
}

// NewJitteryTransport wraps backend with jitter simulation.
func NewJitteryTransport(backend doorlock.Transport, config JitterConfig) *JitteryTransport {
	var rng *rand.Rand
	if config.Seed != 0 {
		rng = rand.New(rand.NewPCG(config.Seed, config.Seed^0xDEADBEEF)) //nolint:gosec // Test code, not crypto
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Test code, not crypto
	}
	return &JitteryTransport{
		backend: backend,
		config:  config,
		rng:     rng,
		readBuf: make([]byte, 0, 64),
	}
}

func (j *JitteryTransport) delay() time.Duration {
	if j.config.MaxLatencyMs <= 0 {
		return 0
	}
	j.rngMu.Lock()
	defer j.rngMu.Unlock()
	return time.Duration(j.rng.IntN(j.config.MaxLatencyMs+1)) * time.Millisecond
}

// Read returns buffered bytes after a random delay. Only the receive loop
// calls Read, so the buffer needs no lock.
func (j *JitteryTransport) Read(buf []byte) (int, error) {
	if d := j.delay(); d > 0 {
		time.Sleep(d)
	}

	if len(j.readBuf) == 0 {
		tmp := make([]byte, 64)
		n, err := j.backend.Read(tmp)
		if n > 0 {
			j.readBuf = append(j.readBuf, tmp[:n]...)
		}
		if err != nil && len(j.readBuf) == 0 {
			return 0, err //nolint:wrapcheck // Pass-through wrapper
		}
	}

	if j.config.StallAfterBytes > 0 && !j.stallTriggered &&
		j.bytesReadSinceStall >= j.config.StallAfterBytes {
		j.stallTriggered = true
		time.Sleep(j.config.StallDuration)
	}

	n := copy(buf, j.readBuf)
	j.readBuf = j.readBuf[n:]
	j.bytesReadSinceStall += n
	return n, nil
}

// Write passes writes through to the backend without modification.
func (j *JitteryTransport) Write(data []byte) (int, error) {
	return j.backend.Write(data) //nolint:wrapcheck // Pass-through wrapper
}

// Close closes the backend
func (j *JitteryTransport) Close() error {
	return j.backend.Close() //nolint:wrapcheck // Pass-through wrapper
}

// Type reports the backend type
func (j *JitteryTransport) Type() doorlock.TransportType {
	return j.backend.Type()
}

// ResetStallState resets the stall tracking state.
func (j *JitteryTransport) ResetStallState() {
	j.bytesReadSinceStall = 0
	j.stallTriggered = false
}

var _ doorlock.Transport = (*JitteryTransport)(nil)
