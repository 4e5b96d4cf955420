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

// Package buzzer drives the alarm buzzer on a GPIO pin.
package buzzer

import (
	"fmt"
	"sync/atomic"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Buzzer is an active buzzer switched by one output pin
type Buzzer struct {
	pin gpio.PinOut
}

// New returns a buzzer on pin
func New(pin gpio.PinOut) *Buzzer {
	return &Buzzer{pin: pin}
}

// Open initialises the host drivers and looks up the pin by name
func Open(name string) (*Buzzer, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: no GPIO pin %q", doorlock.ErrInvalidConfig, name)
	}
	return New(p), nil
}

// On sounds the buzzer
func (b *Buzzer) On() error {
	if err := b.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("buzzer on: %w", err)
	}
	return nil
}

// Off silences the buzzer
func (b *Buzzer) Off() error {
	if err := b.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("buzzer off: %w", err)
	}
	return nil
}

// Sim is a buzzer that only records its state
type Sim struct {
	notify func(bool)
	on     atomic.Bool
}

// NewSim returns a silent simulated buzzer. notify, if not nil, is called
// on every change.
func NewSim(notify func(bool)) *Sim {
	return &Sim{notify: notify}
}

// On records the alarm sounding
func (s *Sim) On() error { s.set(true); return nil }

// Off records the alarm stopping
func (s *Sim) Off() error { s.set(false); return nil }

func (s *Sim) set(on bool) {
	s.on.Store(on)
	doorlock.Debugf("buzzer: on=%v", on)
	if s.notify != nil {
		s.notify(on)
	}
}

// Sounding reports whether the alarm is on
func (s *Sim) Sounding() bool {
	return s.on.Load()
}
