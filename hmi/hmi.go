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

// Package hmi implements the door lock interface node: it renders what the
// controller tells it to and forwards keystrokes. It holds no password or
// security state.
package hmi

import (
	"context"
	"fmt"
	"strings"

	doorlock "github.com/ZaparooProject/go-doorlock"
)

// Display is a character display with a cursor
type Display interface {
	Clear()
	WriteAt(row, col int, text string)
	SetCursor(row, col int)
	WriteChar(c byte)
	CursorLeft()
}

// Keypad is a blocking key source
type Keypad interface {
	ReadKey(ctx context.Context) (byte, error)
}

// State is the interface node state
type State int

const (
	// ReceivingCommand renders display commands and acknowledges them.
	ReceivingCommand State = iota
	// ReadingPassword echoes masked entry and forwards keystrokes.
	ReadingPassword
	// ReadingMenuOptions forwards menu keystrokes.
	ReadingMenuOptions
)

func (s State) String() string {
	switch s {
	case ReceivingCommand:
		return "ReceivingCommand"
	case ReadingPassword:
		return "ReadingPassword"
	case ReadingMenuOptions:
		return "ReadingMenuOptions"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Panel is the interface node state machine. Step must be called from a
// single goroutine; see doorlock.Run.
type Panel struct {
	port    doorlock.Port
	display Display
	keypad  Keypad
	blank   string
	cfg     Config
	state   State
	keys    int
}

// New returns a panel in the ReceivingCommand state
func New(port doorlock.Port, display Display, keypad Keypad, cfg Config) (*Panel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if port == nil || display == nil || keypad == nil {
		return nil, fmt.Errorf("%w: port, display and keypad are required", doorlock.ErrInvalidConfig)
	}
	return &Panel{
		port:    port,
		display: display,
		keypad:  keypad,
		cfg:     cfg,
		blank:   strings.Repeat(" ", cfg.Columns),
	}, nil
}

// State returns the current state
func (p *Panel) State() State { return p.state }

// KeysForwarded returns the number of keystrokes sent to the controller
func (p *Panel) KeysForwarded() int { return p.keys }

// Step processes the last received command. The same command may be
// processed twice: entering ReadingPassword or ReadingMenuOptions does not
// wait, so the next step handles the command in the new state.
func (p *Panel) Step(ctx context.Context) (doorlock.Await, error) {
	b, ok := p.port.Pending()
	if !ok {
		return doorlock.AwaitMessage, nil
	}
	cmd := doorlock.Command(b)

	switch p.state {
	case ReadingPassword:
		return p.readPassword(ctx, cmd)
	case ReadingMenuOptions:
		return p.readMenu(ctx, cmd)
	default:
		return p.receive(cmd)
	}
}

func (p *Panel) setState(s State) {
	doorlock.Debugf("hmi: %v -> %v", p.state, s)
	p.state = s
}

func (p *Panel) receive(cmd doorlock.Command) (doorlock.Await, error) {
	p.render(cmd)

	switch {
	case cmd == doorlock.CmdShowMenu:
		p.setState(ReadingMenuOptions)
		return doorlock.AwaitNothing, nil
	case cmd.IsPasswordPrompt():
		p.setState(ReadingPassword)
		p.display.SetCursor(1, 0)
		return doorlock.AwaitNothing, nil
	default:
		if !cmd.Known() {
			doorlock.Debugf("hmi: unknown command %v acknowledged", cmd)
		}
		if err := p.port.Send(byte(doorlock.CmdAck)); err != nil {
			return doorlock.AwaitNothing, fmt.Errorf("ack %v: %w", cmd, err)
		}
		return doorlock.AwaitMessage, nil
	}
}

// render clears the screen for known commands and writes their text
func (p *Panel) render(cmd doorlock.Command) {
	if !cmd.Known() {
		return
	}
	p.display.Clear()
	upper, lower := p.cfg.Texts.lines(cmd)
	if upper != "" {
		p.display.WriteAt(0, 0, upper)
	}
	if lower != "" {
		p.display.WriteAt(1, 0, lower)
	}
}

func (p *Panel) readPassword(ctx context.Context, cmd doorlock.Command) (doorlock.Await, error) {
	switch cmd {
	case doorlock.CmdStopReceivingPassword:
		p.setState(ReceivingCommand)
		if err := p.port.Send(byte(doorlock.CmdAck)); err != nil {
			return doorlock.AwaitNothing, fmt.Errorf("ack %v: %w", cmd, err)
		}
		return doorlock.AwaitMessage, nil
	case doorlock.CmdBackspacePasswordChar:
		p.display.CursorLeft()
		p.display.WriteChar(' ')
		p.display.CursorLeft()
	case doorlock.CmdClearPasswordChars:
		p.display.WriteAt(1, 0, p.blank)
		p.display.SetCursor(1, 0)
	case doorlock.CmdNextPasswordChar:
		p.display.WriteChar(p.cfg.MaskChar)
	}
	return p.forwardKey(ctx)
}

func (p *Panel) readMenu(ctx context.Context, cmd doorlock.Command) (doorlock.Await, error) {
	if cmd != doorlock.CmdAck && cmd != doorlock.CmdShowMenu {
		p.setState(ReceivingCommand)
		return doorlock.AwaitNothing, nil
	}
	return p.forwardKey(ctx)
}

// forwardKey blocks for one keystroke and sends it to the controller
func (p *Panel) forwardKey(ctx context.Context) (doorlock.Await, error) {
	key, err := p.keypad.ReadKey(ctx)
	if err != nil {
		return doorlock.AwaitNothing, fmt.Errorf("read key: %w", err)
	}
	if err := p.port.Send(key); err != nil {
		return doorlock.AwaitNothing, fmt.Errorf("forward key %q: %w", key, err)
	}
	p.keys++
	return doorlock.AwaitMessage, nil
}
