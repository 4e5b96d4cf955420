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

package controller

import doorlock "github.com/ZaparooProject/go-doorlock"

// entry collects one password from keystrokes forwarded by the interface
// node. Every keystroke is answered with exactly one command telling the
// interface how to update its entry line.
type entry struct {
	cfg       *Config
	buf       []byte
	index     int
	submitted bool
}

func newEntry(cfg *Config) *entry {
	return &entry{cfg: cfg, buf: make([]byte, cfg.PasswordLength)}
}

// feed processes one received byte. It returns the reply to send, or
// done=true once the byte following a submitted full buffer arrives; no
// reply is sent in that case.
func (e *entry) feed(b byte) (reply doorlock.Command, done bool) {
	if e.submitted {
		return 0, true
	}

	full := e.index == len(e.buf)
	switch {
	case b == e.cfg.BackspaceKey && e.index > 0:
		e.index--
		return doorlock.CmdBackspacePasswordChar, false
	case b == e.cfg.ClearKey:
		e.index = 0
		return doorlock.CmdClearPasswordChars, false
	case !full && e.cfg.isDigit(b):
		e.buf[e.index] = b
		e.index++
		return doorlock.CmdNextPasswordChar, false
	case full && b == e.cfg.SubmitKey:
		e.submitted = true
		return doorlock.CmdStopReceivingPassword, false
	default:
		return doorlock.CmdSkipPasswordChar, false
	}
}

func (e *entry) password() []byte {
	out := make([]byte, len(e.buf))
	copy(out, e.buf)
	return out
}
