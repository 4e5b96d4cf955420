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

// Package controller implements the door lock controller node. It owns the
// password store, the door motor and the alarm, and drives the command
// protocol: the interface node only renders what it is told and forwards
// keystrokes.
package controller

import (
	"bytes"
	"context"
	"fmt"

	doorlock "github.com/ZaparooProject/go-doorlock"
)

// Motor drives the door bolt
type Motor interface {
	Forward(duty uint8) error
	Reverse(duty uint8) error
	Stop() error
}

// Alarm is the audible warning device
type Alarm interface {
	On() error
	Off() error
}

// Hardware groups the peripherals the controller owns
type Hardware struct {
	Store Store
	Motor Motor
	Alarm Alarm
}

// TransitionFunc observes top-level state changes
type TransitionFunc func(from, to AppState)

// Option configures a Controller
type Option func(*Controller)

// WithConfig replaces the default configuration
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithTransitionHook registers fn to be called on every state change. It
// runs on the node loop and must not block.
func WithTransitionHook(fn TransitionFunc) Option {
	return func(c *Controller) {
		c.onTransition = fn
	}
}

// Stats reports counters kept by the controller
type Stats struct {
	WrongPasswords int
	Mismatches     int
	Lockouts       int
	Unlocks        int
	StoreReads     int
	StoreWrites    int
}

// Controller is the controller node state machine. Step must be called
// from a single goroutine; see doorlock.Run.
type Controller struct {
	port         doorlock.Port
	timer        doorlock.Arming
	motor        Motor
	alarm        Alarm
	store        *passwordStore
	entry        *entry
	onTransition TransitionFunc
	newPassword  []byte
	cfg          Config
	stats        Stats
	state        AppState
	previous     AppState
	inner        int
	trials       int
	firstRun     bool
}

// New returns a controller in the Bootstrapping state
func New(port doorlock.Port, timer doorlock.Arming, hw Hardware, opts ...Option) (*Controller, error) {
	c := &Controller{
		port:  port,
		timer: timer,
		motor: hw.Motor,
		alarm: hw.Alarm,
		cfg:   DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if port == nil || timer == nil || hw.Store == nil || hw.Motor == nil || hw.Alarm == nil {
		return nil, fmt.Errorf("%w: port, timer, store, motor and alarm are required", doorlock.ErrInvalidConfig)
	}
	c.store = newPasswordStore(hw.Store, &c.cfg)
	return c, nil
}

// State returns the current top-level state
func (c *Controller) State() AppState { return c.state }

// Previous returns the state that preceded the current one
func (c *Controller) Previous() AppState { return c.previous }

// Trials returns the active trial counter (wrong passwords while
// Authorizing, mismatches while ChangingPassword)
func (c *Controller) Trials() int { return c.trials }

// Provisioned reports whether a password has been stored
func (c *Controller) Provisioned() bool { return !c.firstRun }

// Stats returns the controller counters
func (c *Controller) Stats() Stats {
	s := c.stats
	s.StoreReads = c.store.reads
	s.StoreWrites = c.store.writes
	return s
}

// Step runs one step of the current state
func (c *Controller) Step(ctx context.Context) (doorlock.Await, error) {
	switch c.state {
	case Bootstrapping:
		return c.bootstrap(ctx)
	case MainMenu:
		return c.mainMenu()
	case ChangingPassword:
		return c.changePassword(ctx)
	case OpeningDoor:
		return c.openDoor()
	case Authorizing:
		return c.authorize(ctx)
	default:
		return doorlock.AwaitNothing, fmt.Errorf("unknown state %v", c.state)
	}
}

func (c *Controller) setState(s AppState) {
	from := c.state
	c.previous = c.state
	c.state = s
	c.inner = 0
	doorlock.Debugf("controller: %v -> %v", from, s)
	if c.onTransition != nil {
		c.onTransition(from, s)
	}
}

func (c *Controller) send(cmd doorlock.Command) error {
	if err := c.port.Send(byte(cmd)); err != nil {
		return fmt.Errorf("send %v: %w", cmd, err)
	}
	return nil
}

// received returns the byte that satisfied the last message wait
func (c *Controller) received() byte {
	b, _ := c.port.Pending()
	return b
}

func (c *Controller) bootstrap(ctx context.Context) (doorlock.Await, error) {
	switch c.inner {
	case 0:
		if err := c.handshake(ctx); err != nil {
			return doorlock.AwaitNothing, err
		}
		c.timer.Arm(c.cfg.BannerTime)
		if err := c.send(doorlock.CmdShowBanner); err != nil {
			return doorlock.AwaitNothing, err
		}
		c.inner++
		return doorlock.AwaitBoth, nil
	default:
		provisioned, err := c.store.provisioned(ctx)
		if err != nil {
			return doorlock.AwaitNothing, fmt.Errorf("read first-run flag: %w", err)
		}
		c.firstRun = !provisioned
		if provisioned {
			c.setState(MainMenu)
		} else {
			doorlock.Debugf("controller: no password provisioned")
			c.setState(ChangingPassword)
		}
		return doorlock.AwaitNothing, nil
	}
}

// handshake sends Ready until the interface node echoes it back.
func (c *Controller) handshake(ctx context.Context) error {
	attempts := 0
	err := doorlock.RetryWithConfig(ctx, doorlock.RetryForeverConfig(0), func() error {
		attempts++
		if err := c.send(doorlock.CmdReady); err != nil {
			return err
		}
		b, err := c.port.Receive(ctx, c.cfg.HandshakeInterval)
		if err != nil {
			return err
		}
		if doorlock.Command(b) != doorlock.CmdReady {
			return fmt.Errorf("got %v: %w", doorlock.Command(b), doorlock.ErrHandshakeMismatch)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	doorlock.Debugf("controller: handshake complete after %d attempts", attempts)
	return nil
}

func (c *Controller) mainMenu() (doorlock.Await, error) {
	switch c.inner {
	case 0:
		if err := c.send(doorlock.CmdShowMenu); err != nil {
			return doorlock.AwaitNothing, err
		}
		c.inner++
		return doorlock.AwaitMessage, nil
	default:
		switch c.received() {
		case c.cfg.OpenDoorKey:
			c.setState(OpeningDoor)
			return doorlock.AwaitNothing, nil
		case c.cfg.ChangePasswordKey:
			c.setState(ChangingPassword)
			return doorlock.AwaitNothing, nil
		default:
			if err := c.send(doorlock.CmdAck); err != nil {
				return doorlock.AwaitNothing, err
			}
			return doorlock.AwaitMessage, nil
		}
	}
}

// readPassword feeds the last received byte to the active entry. It
// reports completion, or sends the entry's reply.
func (c *Controller) readPassword() (bool, error) {
	reply, done := c.entry.feed(c.received())
	if done {
		return true, nil
	}
	return false, c.send(reply)
}

func (c *Controller) prompt(cmd doorlock.Command) error {
	c.entry = newEntry(&c.cfg)
	return c.send(cmd)
}

func (c *Controller) changePassword(ctx context.Context) (doorlock.Await, error) {
	switch c.inner {
	case 0:
		c.trials = 0
		c.inner++
		return doorlock.AwaitNothing, nil

	case 1:
		if !c.firstRun && c.previous != Authorizing {
			c.setState(Authorizing)
			return doorlock.AwaitNothing, nil
		}
		if err := c.prompt(doorlock.CmdPromptNewPassword); err != nil {
			return doorlock.AwaitNothing, err
		}
		c.inner++
		return doorlock.AwaitMessage, nil

	case 2:
		done, err := c.readPassword()
		if err != nil {
			return doorlock.AwaitNothing, err
		}
		if done {
			c.newPassword = c.entry.password()
			if err := c.prompt(doorlock.CmdPromptConfirmPassword); err != nil {
				return doorlock.AwaitNothing, err
			}
			c.inner++
		}
		return doorlock.AwaitMessage, nil

	case 3:
		done, err := c.readPassword()
		if err != nil || !done {
			return doorlock.AwaitMessage, err
		}
		if bytes.Equal(c.newPassword, c.entry.password()) {
			if err := c.commitPassword(ctx); err != nil {
				return doorlock.AwaitNothing, err
			}
			if err := c.send(doorlock.CmdShowPasswordChanged); err != nil {
				return doorlock.AwaitNothing, err
			}
			c.inner = 4
		} else {
			if err := c.send(doorlock.CmdShowMismatch); err != nil {
				return doorlock.AwaitNothing, err
			}
			if !(c.firstRun && c.cfg.FreeProvisioningMismatches) {
				c.trials++
				c.stats.Mismatches++
			}
			doorlock.Debugf("controller: password mismatch %d/%d", c.trials, c.cfg.MaxMismatches)
			if c.trials < c.cfg.MaxMismatches {
				c.inner = 1
			} else {
				doorlock.Debugf("controller: mismatch limit reached, abandoning password change")
				c.inner = 4
			}
		}
		c.timer.Arm(c.cfg.MessageTime)
		return doorlock.AwaitBoth, nil

	default:
		c.setState(MainMenu)
		return doorlock.AwaitNothing, nil
	}
}

// commitPassword persists the confirmed password, then records that a
// password exists.
func (c *Controller) commitPassword(ctx context.Context) error {
	if err := c.store.save(ctx, c.newPassword); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	if c.firstRun {
		if err := c.store.markProvisioned(ctx); err != nil {
			return fmt.Errorf("mark provisioned: %w", err)
		}
		c.firstRun = false
	}
	doorlock.Debugf("controller: password changed")
	return nil
}

func (c *Controller) openDoor() (doorlock.Await, error) {
	switch c.inner {
	case 0:
		if c.previous != Authorizing {
			c.setState(Authorizing)
			return doorlock.AwaitNothing, nil
		}
		c.timer.Arm(c.cfg.UnlockTime)
		c.actuate("forward", func() error { return c.motor.Forward(c.cfg.MotorDuty) })
		c.stats.Unlocks++
		return c.advance(doorlock.CmdShowUnlocking, doorlock.AwaitTimer)
	case 1:
		c.timer.Arm(c.cfg.HoldTime)
		c.actuate("stop", c.motor.Stop)
		return c.advance(doorlock.CmdShowDoorUnlocked, doorlock.AwaitTimer)
	case 2:
		c.timer.Arm(c.cfg.LockTime)
		c.actuate("reverse", func() error { return c.motor.Reverse(c.cfg.MotorDuty) })
		return c.advance(doorlock.CmdShowLocking, doorlock.AwaitTimer)
	default:
		c.actuate("stop", c.motor.Stop)
		c.setState(MainMenu)
		return doorlock.AwaitNothing, nil
	}
}

// advance sends cmd and moves to the next inner step
func (c *Controller) advance(cmd doorlock.Command, await doorlock.Await) (doorlock.Await, error) {
	if err := c.send(cmd); err != nil {
		return doorlock.AwaitNothing, err
	}
	c.inner++
	return await, nil
}

// actuate runs a motor or alarm action. Failures are logged; the sequence
// continues so the door is never left waiting on a timer that was not
// armed.
func (c *Controller) actuate(what string, fn func() error) {
	if err := fn(); err != nil {
		doorlock.Debugf("controller: %s failed: %v", what, err)
	}
}

func (c *Controller) authorize(ctx context.Context) (doorlock.Await, error) {
	switch c.inner {
	case 0:
		c.trials = 0
		c.inner++
		return doorlock.AwaitNothing, nil

	case 1:
		if err := c.prompt(doorlock.CmdPromptVerifyPassword); err != nil {
			return doorlock.AwaitNothing, err
		}
		c.inner++
		return doorlock.AwaitMessage, nil

	case 2:
		done, err := c.readPassword()
		if err != nil {
			return doorlock.AwaitNothing, err
		}
		if !done {
			return doorlock.AwaitMessage, nil
		}
		c.inner++
		return doorlock.AwaitNothing, nil

	case 3:
		stored, err := c.store.load(ctx)
		if err != nil {
			return doorlock.AwaitNothing, fmt.Errorf("load password: %w", err)
		}
		if bytes.Equal(stored, c.entry.password()) {
			doorlock.Debugf("controller: authorized for %v", c.previous)
			c.setState(c.previous)
			return doorlock.AwaitNothing, nil
		}
		c.trials++
		c.stats.WrongPasswords++
		doorlock.Debugf("controller: wrong password %d/%d", c.trials, c.cfg.MaxWrongAttempts)
		if c.trials < c.cfg.MaxWrongAttempts {
			if err := c.send(doorlock.CmdShowWrongPassword); err != nil {
				return doorlock.AwaitNothing, err
			}
			c.inner = 1
			c.timer.Arm(c.cfg.MessageTime)
			return doorlock.AwaitBoth, nil
		}
		c.inner++
		return doorlock.AwaitNothing, nil

	case 4:
		doorlock.Debugf("controller: access denied, alarm on for %v", c.cfg.WarningTime)
		c.stats.Lockouts++
		c.timer.Arm(c.cfg.WarningTime)
		c.actuate("alarm on", c.alarm.On)
		return c.advance(doorlock.CmdShowAccessDenied, doorlock.AwaitTimer)

	default:
		c.actuate("alarm off", c.alarm.Off)
		c.setState(MainMenu)
		return doorlock.AwaitNothing, nil
	}
}
