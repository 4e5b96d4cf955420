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

// Package motor drives the door lock DC motor through an H-bridge.
package motor

import (
	"fmt"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// DefaultPWMFrequency is the enable pin PWM frequency
const DefaultPWMFrequency = 500 * physic.Hertz

// Direction is the rotation of the motor
type Direction int

const (
	// Stopped means both bridge inputs are low
	Stopped Direction = iota
	// Forward unlocks the door
	Forward
	// Reverse locks the door
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Stopped:
		return "stopped"
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Duty converts a percentage to a PWM duty cycle. Values above 100 are
// clamped.
func Duty(percent uint8) gpio.Duty {
	if percent > 100 {
		percent = 100
	}
	return gpio.Duty(uint32(gpio.DutyMax) * uint32(percent) / 100)
}

// HBridge drives an L293D style bridge: two direction inputs and a PWM
// enable input.
type HBridge struct {
	in1  gpio.PinOut
	in2  gpio.PinOut
	en   gpio.PinOut
	freq physic.Frequency
}

// New returns a bridge driver on the given pins
func New(in1, in2, en gpio.PinOut) *HBridge {
	return &HBridge{in1: in1, in2: in2, en: en, freq: DefaultPWMFrequency}
}

// Open initialises the host drivers and looks up the pins by name
func Open(in1, in2, en string) (*HBridge, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	pins := make([]gpio.PinIO, 0, 3)
	for _, name := range []string{in1, in2, en} {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("%w: no GPIO pin %q", doorlock.ErrInvalidConfig, name)
		}
		pins = append(pins, p)
	}
	return New(pins[0], pins[1], pins[2]), nil
}

// Forward turns the motor in the unlock direction at duty percent
func (h *HBridge) Forward(duty uint8) error {
	return h.drive(gpio.High, gpio.Low, duty)
}

// Reverse turns the motor in the lock direction at duty percent
func (h *HBridge) Reverse(duty uint8) error {
	return h.drive(gpio.Low, gpio.High, duty)
}

func (h *HBridge) drive(a, b gpio.Level, duty uint8) error {
	if err := h.in1.Out(a); err != nil {
		return fmt.Errorf("motor in1: %w", err)
	}
	if err := h.in2.Out(b); err != nil {
		return fmt.Errorf("motor in2: %w", err)
	}
	if err := h.en.PWM(Duty(duty), h.freq); err != nil {
		return fmt.Errorf("motor enable: %w", err)
	}
	return nil
}

// Stop drives every bridge input low
func (h *HBridge) Stop() error {
	for _, p := range []gpio.PinOut{h.en, h.in1, h.in2} {
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("motor stop %s: %w", p, err)
		}
	}
	return nil
}

// Sim is a motor that only records what it was told to do
type Sim struct {
	notify func(Direction, uint8)
	dir    Direction
	duty   uint8
	mu     syncutil.Mutex
}

// NewSim returns a stopped simulated motor. notify, if not nil, is called
// on every change.
func NewSim(notify func(Direction, uint8)) *Sim {
	return &Sim{notify: notify}
}

// Forward records a forward run
func (s *Sim) Forward(duty uint8) error { s.set(Forward, duty); return nil }

// Reverse records a reverse run
func (s *Sim) Reverse(duty uint8) error { s.set(Reverse, duty); return nil }

// Stop records a stop
func (s *Sim) Stop() error { s.set(Stopped, 0); return nil }

func (s *Sim) set(d Direction, duty uint8) {
	s.mu.Lock()
	s.dir, s.duty = d, duty
	notify := s.notify
	s.mu.Unlock()

	doorlock.Debugf("motor: %v duty %d%%", d, duty)
	if notify != nil {
		notify(d, duty)
	}
}

// State returns the last commanded direction and duty
func (s *Sim) State() (Direction, uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir, s.duty
}
