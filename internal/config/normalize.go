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
	"path/filepath"
	"strings"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/controller"
	"github.com/ZaparooProject/go-doorlock/hmi"
)

// Normalize canonicalises values after Validate. It is allowed to mutate
// cfg.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Controller.StorePolicy = strings.ToLower(cfg.Controller.StorePolicy)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Link.BaudRate == 0 {
		cfg.Link.BaudRate = doorlock.DefaultBaudRate
	}
	if cfg.Link.Path != "" && !strings.HasPrefix(cfg.Link.Path, "/") {
		cfg.Link.Path = "/" + cfg.Link.Path
	}
	if cfg.Hardware.EEPROMImage != "" {
		cfg.Hardware.EEPROMImage = filepath.Clean(cfg.Hardware.EEPROMImage)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = filepath.Clean(cfg.Log.File)
	}
}

// ControllerConfig converts the controller section
func (cfg *Config) ControllerConfig() (controller.Config, error) {
	c := cfg.Controller
	out := controller.DefaultConfig()

	out.PasswordLength = c.PasswordLength
	out.MaxWrongAttempts = c.MaxWrongAttempts
	out.MaxMismatches = c.MaxMismatches
	out.BannerTime = duration(c.BannerMs)
	out.MessageTime = duration(c.MessageMs)
	out.WarningTime = duration(c.WarningMs)
	out.UnlockTime = duration(c.UnlockMs)
	out.HoldTime = duration(c.HoldMs)
	out.LockTime = duration(c.LockMs)
	out.HandshakeInterval = duration(c.HandshakeIntervalMs)
	out.StoreByteDelay = duration(c.StoreByteDelayMs)
	out.MotorDuty = c.MotorDuty
	out.FreeProvisioningMismatches = c.FreeProvisioningMismatches

	out.BackspaceKey = firstByte(c.Keys.Backspace)
	out.ClearKey = firstByte(c.Keys.Clear)
	out.SubmitKey = firstByte(c.Keys.Submit)
	out.OpenDoorKey = firstByte(c.Keys.OpenDoor)
	out.ChangePasswordKey = firstByte(c.Keys.ChangePassword)

	if strings.EqualFold(c.StorePolicy, PolicyBounded) {
		out.StoreRetry = doorlock.StoreBoundedConfig()
	}

	if err := out.Validate(); err != nil {
		return controller.Config{}, err
	}
	return out, nil
}

// HMIConfig converts the hmi section
func (cfg *Config) HMIConfig() (hmi.Config, error) {
	out := hmi.Config{
		Texts:    cfg.HMI.Texts,
		Columns:  cfg.HMI.Columns,
		MaskChar: firstByte(cfg.HMI.MaskChar),
	}
	if err := out.Validate(); err != nil {
		return hmi.Config{}, err
	}
	return out, nil
}

func firstByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}
