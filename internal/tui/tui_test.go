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

package tui

import (
	"context"
	"testing"
	"time"

	"github.com/ZaparooProject/go-doorlock/hw/keypad"
	"github.com/ZaparooProject/go-doorlock/hw/lcd"
	"github.com/ZaparooProject/go-doorlock/hw/motor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestModel(ind Indicators) (Model, *lcd.LCD, *keypad.Queue) {
	display := lcd.New(2, 16)
	keys := keypad.New(8)
	return New("DOOR LOCK", display, keys, nil, ind), display, keys
}

func readKey(t *testing.T, q *keypad.Queue) byte {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	k, err := q.ReadKey(ctx)
	require.NoError(t, err)
	return k
}

func TestUpdate_PadKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want byte
	}{
		{name: "digit", msg: runeKey('7'), want: '7'},
		{name: "operator", msg: runeKey('+'), want: '+'},
		{name: "clear", msg: runeKey('c'), want: 'c'},
		{name: "enter alias", msg: tea.KeyMsg{Type: tea.KeyEnter}, want: '='},
		{name: "backspace alias", msg: tea.KeyMsg{Type: tea.KeyBackspace}, want: '-'},
		{name: "star alias", msg: runeKey('*'), want: 'x'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, _, keys := newTestModel(Indicators{})

			next, cmd := m.Update(tt.msg)
			assert.Nil(t, cmd)
			assert.Equal(t, 1, keys.Pending())
			assert.Equal(t, tt.want, readKey(t, keys))
			assert.Equal(t, tt.want, next.(Model).lastKey)
		})
	}
}

func TestUpdate_IgnoresOtherKeys(t *testing.T) {
	t.Parallel()
	m, _, keys := newTestModel(Indicators{})

	_, cmd := m.Update(runeKey('z'))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, keys.Pending())
}

func TestUpdate_Quit(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(Indicators{})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "Shutting down...\n", next.View())
}

func TestUpdate_ClosedKeypadShowsError(t *testing.T) {
	t.Parallel()
	m, _, keys := newTestModel(Indicators{})
	keys.Close()

	next, _ := m.Update(runeKey('1'))
	assert.Contains(t, next.View(), "keypad closed")
}

func TestView_DisplayAndIndicators(t *testing.T) {
	t.Parallel()
	alarm := true
	m, display, _ := newTestModel(Indicators{
		Motor:  func() (motor.Direction, uint8) { return motor.Forward, 50 },
		Alarm:  func() bool { return alarm },
		Status: func() string { return "link: pipe" },
	})
	display.WriteAt(0, 0, "Enter Password")

	view := m.View()
	assert.Contains(t, view, "DOOR LOCK")
	assert.Contains(t, view, "Enter Password")
	assert.Contains(t, view, "forward 50%")
	assert.Contains(t, view, "SOUNDING")
	assert.Contains(t, view, "link: pipe")

	alarm = false
	view = m.View()
	assert.NotContains(t, view, "SOUNDING")
	assert.Contains(t, view, "off")
}

func TestView_HidesMissingIndicators(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestModel(Indicators{})

	view := m.View()
	assert.NotContains(t, view, "Motor:")
	assert.NotContains(t, view, "Alarm:")
}

func TestRefresher(t *testing.T) {
	t.Parallel()
	r := NewRefresher()
	m := New("DOOR LOCK", lcd.New(2, 16), keypad.New(1), r, Indicators{})

	r.Notify()
	r.Notify()

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, refreshMsg{}, cmd())

	_, next := m.Update(refreshMsg{})
	assert.NotNil(t, next)
}
