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

import "fmt"

// Command is a single-byte message exchanged between the controller and the
// interface node. The controller always speaks first in an exchange and the
// interface node answers every controller byte with exactly one byte: either
// an acknowledgement or a forwarded keystroke.
type Command byte

// Command vocabulary. Values match the wire encoding of the deployed
// firmware, starting at 'A', so both node implementations stay compatible
// with existing boards.
const (
	// CmdReady is sent by the controller during bootstrap until echoed back,
	// and doubles as the generic acknowledgement.
	CmdReady Command = 'A' + iota
	CmdShowBanner
	CmdPromptNewPassword
	CmdPromptConfirmPassword
	CmdNextPasswordChar
	CmdSkipPasswordChar
	CmdBackspacePasswordChar
	CmdClearPasswordChars
	CmdShowMismatch
	CmdShowPasswordChanged
	CmdShowMenu
	CmdPromptVerifyPassword
	CmdStopReceivingPassword
	CmdShowWrongPassword
	CmdShowAccessDenied
	CmdShowUnlocking
	CmdShowLocking
	CmdShowDoorUnlocked
)

// CmdAck is the acknowledgement; it shares its encoding with CmdReady.
const CmdAck = CmdReady

// commandNames maps each command to a short name used in logs and traces
var commandNames = map[Command]string{
	CmdReady:                 "Ready",
	CmdShowBanner:            "ShowBanner",
	CmdPromptNewPassword:     "PromptNewPassword",
	CmdPromptConfirmPassword: "PromptConfirmPassword",
	CmdNextPasswordChar:      "NextPasswordChar",
	CmdSkipPasswordChar:      "SkipPasswordChar",
	CmdBackspacePasswordChar: "BackspacePasswordChar",
	CmdClearPasswordChars:    "ClearPasswordChars",
	CmdShowMismatch:          "ShowMismatch",
	CmdShowPasswordChanged:   "ShowPasswordChanged",
	CmdShowMenu:              "ShowMenu",
	CmdPromptVerifyPassword:  "PromptVerifyPassword",
	CmdStopReceivingPassword: "StopReceivingPassword",
	CmdShowWrongPassword:     "ShowWrongPassword",
	CmdShowAccessDenied:      "ShowAccessDenied",
	CmdShowUnlocking:         "ShowUnlocking",
	CmdShowLocking:           "ShowLocking",
	CmdShowDoorUnlocked:      "ShowDoorUnlocked",
}

// String returns the command name, or a quoted byte for anything outside
// the vocabulary (keystrokes travel on the same link).
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	if c >= 0x20 && c < 0x7F {
		return fmt.Sprintf("%q", rune(c))
	}
	return fmt.Sprintf("0x%02X", byte(c))
}

// Known reports whether c is part of the command vocabulary.
func (c Command) Known() bool {
	return c >= CmdReady && c <= CmdShowDoorUnlocked
}

// IsPasswordPrompt reports whether c asks the interface node to collect a
// password (new, confirmation or verification).
func (c Command) IsPasswordPrompt() bool {
	switch c {
	case CmdPromptNewPassword, CmdPromptConfirmPassword, CmdPromptVerifyPassword:
		return true
	default:
		return false
	}
}

// Commands returns the full vocabulary in wire order.
func Commands() []Command {
	cmds := make([]Command, 0, len(commandNames))
	for c := CmdReady; c <= CmdShowDoorUnlocked; c++ {
		cmds = append(cmds, c)
	}
	return cmds
}
