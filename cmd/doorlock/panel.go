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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ZaparooProject/go-doorlock/hw/keypad"
	"github.com/ZaparooProject/go-doorlock/hw/lcd"
	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
	"github.com/ZaparooProject/go-doorlock/internal/tui"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// interactive reports whether the front panel can take over the terminal
func interactive(lineMode bool) bool {
	if lineMode {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// frontPanel is the interface node's display and keypad, rendered by the
// terminal UI or mirrored as plain lines.
type frontPanel struct {
	display *lcd.LCD
	keys    *keypad.Queue
	refresh *tui.Refresher
}

func newFrontPanel(out io.Writer, cols int, useTUI bool) *frontPanel {
	p := &frontPanel{keys: keypad.New(keypad.DefaultQueueSize)}
	if useTUI {
		p.refresh = tui.NewRefresher()
		p.display = lcd.New(lcd.DefaultRows, cols, lcd.WithChangeHook(p.refresh.Notify))
	} else {
		p.display = lcd.New(lcd.DefaultRows, cols, lcd.WithMirror(out))
	}
	return p
}

func (p *frontPanel) notify() {
	if p.refresh != nil {
		p.refresh.Notify()
	}
}

// serve shows the panel until ctx is done or the user quits. In line mode
// keys are read from in.
func (p *frontPanel) serve(ctx context.Context, title string, ind tui.Indicators, in io.Reader, log *zap.Logger) error {
	if p.refresh != nil {
		return tui.Run(ctx, tui.New(title, p.display, p.keys, p.refresh, ind))
	}

	go func() {
		err := p.keys.Feed(ctx, in)
		switch {
		case err == nil:
			log.Info("keypad input closed")
		case ctx.Err() == nil:
			log.Warn("keypad input failed", zap.Error(err))
		}
	}()
	<-ctx.Done()
	return nil
}

// nodeStatus is the status line shown under the display
type nodeStatus struct {
	link  string
	state string
	err   error
	mu    syncutil.Mutex
}

func (s *nodeStatus) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *nodeStatus) stop(err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *nodeStatus) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := "link: " + s.link
	if s.state != "" {
		out += " | controller: " + s.state
	}
	if s.err != nil {
		out += fmt.Sprintf(" | stopped: %v", s.err)
	}
	return out
}
