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

import "fmt"

// AppState is the controller's top-level state
type AppState int

const (
	// Bootstrapping performs the handshake, shows the banner and reads the
	// first-run flag.
	Bootstrapping AppState = iota
	// MainMenu shows the menu and dispatches the chosen option.
	MainMenu
	// ChangingPassword collects and confirms a new password.
	ChangingPassword
	// OpeningDoor runs the unlock, hold and lock sequence.
	OpeningDoor
	// Authorizing verifies the stored password on behalf of another state.
	Authorizing
)

var stateNames = [...]string{
	Bootstrapping:    "Bootstrapping",
	MainMenu:         "MainMenu",
	ChangingPassword: "ChangingPassword",
	OpeningDoor:      "OpeningDoor",
	Authorizing:      "Authorizing",
}

func (s AppState) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("AppState(%d)", int(s))
}
