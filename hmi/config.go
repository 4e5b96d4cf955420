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

package hmi

import (
	"fmt"

	doorlock "github.com/ZaparooProject/go-doorlock"
)

// Texts are the messages shown for each display command
type Texts struct {
	Banner          string `yaml:"banner"`
	NewPassword     string `yaml:"new_password"`
	ConfirmPassword string `yaml:"confirm_password"`
	Mismatch        string `yaml:"mismatch"`
	Changed         string `yaml:"changed"`
	MenuUpper       string `yaml:"menu_upper"`
	MenuLower       string `yaml:"menu_lower"`
	EnterPassword   string `yaml:"enter_password"`
	WrongPassword   string `yaml:"wrong_password"`
	AccessDenied    string `yaml:"access_denied"`
	Unlocking       string `yaml:"unlocking"`
	Locking         string `yaml:"locking"`
	Unlocked        string `yaml:"unlocked"`
}

// DefaultTexts returns the messages of the deployed boards
func DefaultTexts() Texts {
	return Texts{
		Banner:          "DOOR LOCK SYSTEM",
		NewPassword:     "Enter a new Pass",
		ConfirmPassword: "Confirm Pass",
		Mismatch:        "Pass Mismatch",
		Changed:         "Pass Changed",
		MenuUpper:       "+: Open Door",
		MenuLower:       "-: Change Pass",
		EnterPassword:   "Enter Pass :",
		WrongPassword:   "Wrong Pass",
		AccessDenied:    "ACCESS DENIED",
		Unlocking:       "Unlocking Door",
		Locking:         "Locking Door",
		Unlocked:        "Door is Unlocked",
	}
}

// lines returns the first and second row text for cmd
func (t *Texts) lines(cmd doorlock.Command) (upper, lower string) {
	switch cmd {
	case doorlock.CmdShowBanner:
		return t.Banner, ""
	case doorlock.CmdPromptNewPassword:
		return t.NewPassword, ""
	case doorlock.CmdPromptConfirmPassword:
		return t.ConfirmPassword, ""
	case doorlock.CmdShowMismatch:
		return t.Mismatch, ""
	case doorlock.CmdShowPasswordChanged:
		return t.Changed, ""
	case doorlock.CmdShowMenu:
		return t.MenuUpper, t.MenuLower
	case doorlock.CmdPromptVerifyPassword:
		return t.EnterPassword, ""
	case doorlock.CmdShowWrongPassword:
		return t.WrongPassword, ""
	case doorlock.CmdShowAccessDenied:
		return t.AccessDenied, ""
	case doorlock.CmdShowUnlocking:
		return t.Unlocking, ""
	case doorlock.CmdShowLocking:
		return t.Locking, ""
	case doorlock.CmdShowDoorUnlocked:
		return t.Unlocked, ""
	default:
		return "", ""
	}
}

// Config holds the interface node settings
type Config struct {
	Texts    Texts
	Columns  int
	MaskChar byte
}

// DefaultConfig returns the settings of the deployed boards
func DefaultConfig() Config {
	return Config{
		Texts:    DefaultTexts(),
		Columns:  16,
		MaskChar: '*',
	}
}

// Validate checks that every text fits on one display row
func (c *Config) Validate() error {
	if c.Columns <= 0 {
		return fmt.Errorf("%w: columns must be positive", doorlock.ErrInvalidConfig)
	}
	for _, cmd := range doorlock.Commands() {
		upper, lower := c.Texts.lines(cmd)
		for _, text := range []string{upper, lower} {
			if len(text) > c.Columns {
				return fmt.Errorf("%w: %v text %q is wider than %d columns",
					doorlock.ErrInvalidConfig, cmd, text, c.Columns)
			}
		}
	}
	return nil
}
