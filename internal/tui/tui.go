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

// Package tui renders the interface node as a terminal front panel: the
// character display, the keypad and the controller's actuator indicators.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZaparooProject/go-doorlock/hw/keypad"
	"github.com/ZaparooProject/go-doorlock/hw/lcd"
	"github.com/ZaparooProject/go-doorlock/hw/motor"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

////////////////////////////////////////////////////////////////////////////////
// Types
////////////////////////////////////////////////////////////////////////////////

// Indicators report controller outputs shown beside the display. Nil
// providers are hidden, which is the case for a remote controller.
type Indicators struct {
	Motor  func() (motor.Direction, uint8)
	Alarm  func() bool
	Status func() string
}

// Refresher wakes the panel when the display or an actuator changes. Notify
// never blocks and coalesces bursts into one redraw.
type Refresher struct {
	ch chan struct{}
}

// NewRefresher returns a refresher with no pending redraw
func NewRefresher() *Refresher {
	return &Refresher{ch: make(chan struct{}, 1)}
}

// Notify schedules a redraw
func (r *Refresher) Notify() {
	select {
	case r.ch <- struct{}{}:
	default:
	}
}

func (r *Refresher) wait() tea.Cmd {
	return func() tea.Msg {
		<-r.ch
		return refreshMsg{}
	}
}

type keyMap struct {
	Quit key.Binding
	Pad  []padBinding
}

type padBinding struct {
	binding key.Binding
	glyph   byte
}

// newKeyMap binds every keypad glyph to its own key. Enter, backspace and
// '*' are aliases for '=', '-' and 'x'.
func newKeyMap() keyMap {
	km := keyMap{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	aliases := map[byte][]string{
		'=': {"enter"},
		'-': {"backspace"},
		'x': {"*"},
	}
	for _, row := range keypad.Layout {
		for _, g := range row {
			keys := append([]string{string(g)}, aliases[g]...)
			km.Pad = append(km.Pad, padBinding{
				binding: key.NewBinding(key.WithKeys(keys...), key.WithHelp(string(g), "keypad")),
				glyph:   g,
			})
		}
	}
	return km
}

////////////////////////////////////////////////////////////////////////////////
// Messages
////////////////////////////////////////////////////////////////////////////////

type refreshMsg struct{}

////////////////////////////////////////////////////////////////////////////////
// Model Initialization
////////////////////////////////////////////////////////////////////////////////

// Model is the bubbletea model of the front panel
type Model struct {
	display    *lcd.LCD
	keys       *keypad.Queue
	refresh    *Refresher
	indicators Indicators
	title      string
	keyMap     keyMap
	lastKey    byte
	err        error
	width      int
	quitting   bool
}

// New returns a panel model. refresh may be nil, in which case the view is
// only redrawn on input.
func New(title string, display *lcd.LCD, keys *keypad.Queue, refresh *Refresher, ind Indicators) Model {
	return Model{
		display:    display,
		keys:       keys,
		refresh:    refresh,
		indicators: ind,
		title:      title,
		keyMap:     newKeyMap(),
	}
}

// Run shows the panel until the user quits or ctx is cancelled
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("front panel: %w", err)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// Bubble Tea Interface
////////////////////////////////////////////////////////////////////////////////

func (m Model) Init() tea.Cmd {
	if m.refresh == nil {
		return nil
	}
	return m.refresh.wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		for _, pb := range m.keyMap.Pad {
			if key.Matches(msg, pb.binding) {
				m.lastKey = pb.glyph
				m.err = m.keys.Press(pb.glyph)
				break
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case refreshMsg:
		return m, m.refresh.wait()
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	screenStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("10")).
		Padding(0, 1)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render(m.title))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render("0-9 digits | = enter | - back | c clear | + open | q quit"))
	s.WriteString("\n\n")

	screen := screenStyle.Render(strings.Join(m.display.Lines(), "\n"))
	pad := boxStyle.Render(m.renderKeypad(labelStyle))
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, screen, "  ", pad))
	s.WriteString("\n")

	var status []string
	if m.indicators.Motor != nil {
		dir, duty := m.indicators.Motor()
		v := dir.String()
		if dir != motor.Stopped {
			v = fmt.Sprintf("%s %d%%", dir, duty)
		}
		status = append(status, labelStyle.Render("Motor:")+" "+valueStyle.Render(v))
	}
	if m.indicators.Alarm != nil {
		if m.indicators.Alarm() {
			status = append(status, labelStyle.Render("Alarm:")+" "+errorStyle.Render("SOUNDING"))
		} else {
			status = append(status, labelStyle.Render("Alarm:")+" "+valueStyle.Render("off"))
		}
	}
	if m.indicators.Status != nil {
		if st := m.indicators.Status(); st != "" {
			status = append(status, headerStyle.Render(st))
		}
	}
	if len(status) > 0 {
		s.WriteString(strings.Join(status, "   "))
		s.WriteString("\n")
	}

	if m.lastKey != 0 {
		s.WriteString(headerStyle.Render(fmt.Sprintf("Last key: %c", m.lastKey)))
		s.WriteString("\n")
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render("Keypad: " + m.err.Error()))
		s.WriteString("\n")
	}

	return s.String()
}

func (m Model) renderKeypad(style lipgloss.Style) string {
	rows := make([]string, 0, len(keypad.Layout))
	for _, row := range keypad.Layout {
		cells := make([]string, 0, len(row))
		for _, g := range row {
			cells = append(cells, style.Render(string(g)))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}
