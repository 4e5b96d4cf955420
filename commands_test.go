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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand_WireValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Command('A'), CmdReady)
	assert.Equal(t, CmdReady, CmdAck)
	assert.Equal(t, Command('B'), CmdShowBanner)
	assert.Equal(t, Command('K'), CmdShowMenu)
	assert.Equal(t, Command('M'), CmdStopReceivingPassword)
	assert.Equal(t, Command('R'), CmdShowDoorUnlocked)
	assert.Len(t, Commands(), 18)
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
		cmd  Command
	}{
		{name: "ready", cmd: CmdReady, want: "Ready"},
		{name: "menu", cmd: CmdShowMenu, want: "ShowMenu"},
		{name: "digit keystroke", cmd: Command('7'), want: "'7'"},
		{name: "menu key", cmd: Command('+'), want: "'+'"},
		{name: "non printable", cmd: Command(0x05), want: "0x05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestCommand_Known(t *testing.T) {
	t.Parallel()

	for _, c := range Commands() {
		assert.True(t, c.Known(), "%v", c)
	}
	assert.False(t, Command('@').Known())
	assert.False(t, Command('S').Known())
	assert.False(t, Command('1').Known())
}

func TestCommand_IsPasswordPrompt(t *testing.T) {
	t.Parallel()

	prompts := map[Command]bool{
		CmdPromptNewPassword:     true,
		CmdPromptConfirmPassword: true,
		CmdPromptVerifyPassword:  true,
	}
	for _, c := range Commands() {
		assert.Equal(t, prompts[c], c.IsPasswordPrompt(), "%v", c)
	}
}
