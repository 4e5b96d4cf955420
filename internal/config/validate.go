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

package config

import (
	"errors"
	"fmt"
	"strings"

	doorlock "github.com/ZaparooProject/go-doorlock"
)

// Validate checks the file for values that cannot be converted. It does not
// mutate cfg. Node-level consistency is checked by the node configs.
func Validate(cfg *Config) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	c := cfg.Controller
	for name, key := range map[string]string{
		"backspace": c.Keys.Backspace, "clear": c.Keys.Clear, "submit": c.Keys.Submit,
		"open_door": c.Keys.OpenDoor, "change_password": c.Keys.ChangePassword,
	} {
		if len(key) != 1 {
			add("controller.keys.%s must be one character, got %q", name, key)
		}
	}
	for name, ms := range map[string]int{
		"banner_ms": c.BannerMs, "message_ms": c.MessageMs, "warning_ms": c.WarningMs,
		"unlock_ms": c.UnlockMs, "hold_ms": c.HoldMs, "lock_ms": c.LockMs,
		"handshake_interval_ms": c.HandshakeIntervalMs, "store_byte_delay_ms": c.StoreByteDelayMs,
	} {
		if ms < 0 {
			add("controller.%s must not be negative", name)
		}
	}
	switch strings.ToLower(c.StorePolicy) {
	case PolicyForever, PolicyBounded:
	default:
		add("controller.store_policy must be %q or %q, got %q", PolicyForever, PolicyBounded, c.StorePolicy)
	}

	if len(cfg.HMI.MaskChar) != 1 {
		add("hmi.mask_char must be one character, got %q", cfg.HMI.MaskChar)
	}

	if cfg.Link.Listen != "" && cfg.Link.URL != "" {
		add("link.listen and link.url are mutually exclusive")
	}
	if cfg.Link.BaudRate < 0 {
		add("link.baud_rate must not be negative")
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "", "console", "json":
	default:
		add("log.format must be console or json, got %q", cfg.Log.Format)
	}

	if len(errs) == 0 {
		if _, err := cfg.ControllerConfig(); err != nil {
			errs = append(errs, err)
		}
		if _, err := cfg.HMIConfig(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", doorlock.ErrInvalidConfig, errors.Join(errs...))
}
