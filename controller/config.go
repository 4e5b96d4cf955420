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

import (
	"errors"
	"fmt"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
)

// Config holds the controller's keys, limits, store layout and timings.
type Config struct {
	// StoreRetry is the policy for every store byte operation. Nil selects
	// the retry-forever policy paced by StoreByteDelay.
	StoreRetry *doorlock.RetryConfig

	PasswordLength   int
	MaxWrongAttempts int
	MaxMismatches    int

	BannerTime        time.Duration
	MessageTime       time.Duration
	WarningTime       time.Duration
	UnlockTime        time.Duration
	HoldTime          time.Duration
	LockTime          time.Duration
	HandshakeInterval time.Duration
	StoreByteDelay    time.Duration

	FirstRunAddress   uint16
	PasswordAddress   uint16
	ProvisionedMarker byte

	DigitMin          byte
	DigitMax          byte
	BackspaceKey      byte
	ClearKey          byte
	SubmitKey         byte
	OpenDoorKey       byte
	ChangePasswordKey byte

	// MotorDuty is the PWM duty cycle in percent for unlock and lock.
	MotorDuty uint8

	// FreeProvisioningMismatches stops charging mismatches while the first
	// password is being provisioned, so a fresh install keeps prompting.
	FreeProvisioningMismatches bool
}

// DefaultConfig returns the configuration of the deployed boards
func DefaultConfig() Config {
	return Config{
		PasswordLength:    5,
		MaxWrongAttempts:  3,
		MaxMismatches:     5,
		BannerTime:        time.Second,
		MessageTime:       time.Second,
		WarningTime:       time.Minute,
		UnlockTime:        15 * time.Second,
		HoldTime:          3 * time.Second,
		LockTime:          15 * time.Second,
		HandshakeInterval: doorlock.HandshakeInterval,
		StoreByteDelay:    doorlock.StoreByteDelay,
		FirstRunAddress:   0x00,
		PasswordAddress:   0x01,
		ProvisionedMarker: 0x55,
		DigitMin:          '0',
		DigitMax:          '9',
		BackspaceKey:      '-',
		ClearKey:          'c',
		SubmitKey:         '=',
		OpenDoorKey:       '+',
		ChangePasswordKey: '-',
		MotorDuty:         50,
	}
}

// Validate reports the first inconsistency in c
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.PasswordLength > 0, "password length must be positive")
	check(c.MaxWrongAttempts > 0, "max wrong attempts must be positive")
	check(c.MaxMismatches > 0, "max mismatches must be positive")
	check(c.DigitMin <= c.DigitMax, "digit range %q..%q is empty", c.DigitMin, c.DigitMax)
	check(c.MotorDuty <= 100, "motor duty %d exceeds 100%%", c.MotorDuty)
	check(c.HandshakeInterval > 0, "handshake interval must be positive")

	for name, d := range map[string]time.Duration{
		"banner": c.BannerTime, "message": c.MessageTime, "warning": c.WarningTime,
		"unlock": c.UnlockTime, "hold": c.HoldTime, "lock": c.LockTime,
		"store byte delay": c.StoreByteDelay,
	} {
		check(d >= 0, "%s time must not be negative", name)
	}

	entryKeys := map[string]byte{"backspace": c.BackspaceKey, "clear": c.ClearKey, "submit": c.SubmitKey}
	seen := make(map[byte]string, len(entryKeys))
	for name, k := range entryKeys {
		check(k < c.DigitMin || k > c.DigitMax, "%s key %q overlaps the digit range", name, k)
		if other, dup := seen[k]; dup {
			errs = append(errs, fmt.Errorf("%s and %s keys are both %q", name, other, k))
		}
		seen[k] = name
	}
	check(c.OpenDoorKey != c.ChangePasswordKey, "open and change menu keys are both %q", c.OpenDoorKey)

	end := uint32(c.PasswordAddress) + uint32(c.PasswordLength)
	check(end <= 0x10000, "password range 0x%04X+%d wraps past the address space", c.PasswordAddress, c.PasswordLength)
	check(uint32(c.FirstRunAddress) < uint32(c.PasswordAddress) || uint32(c.FirstRunAddress) >= end,
		"first-run byte 0x%03X lies inside the password range", c.FirstRunAddress)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", doorlock.ErrInvalidConfig, errors.Join(errs...))
}

func (c *Config) storeRetry() *doorlock.RetryConfig {
	if c.StoreRetry != nil {
		return c.StoreRetry
	}
	return doorlock.RetryForeverConfig(c.StoreByteDelay)
}

func (c *Config) isDigit(b byte) bool {
	return b >= c.DigitMin && b <= c.DigitMax
}
