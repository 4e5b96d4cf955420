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

// Package config loads the YAML node configuration used by the doorlock
// command. Durations are written as integer milliseconds.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/controller"
	"github.com/ZaparooProject/go-doorlock/hmi"
	"gopkg.in/yaml.v3"
)

// Store retry policies
const (
	PolicyForever = "forever"
	PolicyBounded = "bounded"
)

// Config is the whole configuration file
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	HMI        HMIConfig        `yaml:"hmi"`
	Link       LinkConfig       `yaml:"link"`
	Hardware   HardwareConfig   `yaml:"hardware"`
	Log        LogConfig        `yaml:"log"`
}

// ---- CONTROLLER ----

type ControllerConfig struct {
	PasswordLength             int        `yaml:"password_length"`
	MaxWrongAttempts           int        `yaml:"max_wrong_attempts"`
	MaxMismatches              int        `yaml:"max_mismatches"`
	BannerMs                   int        `yaml:"banner_ms"`
	MessageMs                  int        `yaml:"message_ms"`
	WarningMs                  int        `yaml:"warning_ms"`
	UnlockMs                   int        `yaml:"unlock_ms"`
	HoldMs                     int        `yaml:"hold_ms"`
	LockMs                     int        `yaml:"lock_ms"`
	HandshakeIntervalMs        int        `yaml:"handshake_interval_ms"`
	StoreByteDelayMs           int        `yaml:"store_byte_delay_ms"`
	StorePolicy                string     `yaml:"store_policy"`
	MotorDuty                  uint8      `yaml:"motor_duty"`
	FreeProvisioningMismatches bool       `yaml:"free_provisioning_mismatches"`
	Keys                       KeysConfig `yaml:"keys"`
}

// KeysConfig holds single-character key bindings
type KeysConfig struct {
	Backspace      string `yaml:"backspace"`
	Clear          string `yaml:"clear"`
	Submit         string `yaml:"submit"`
	OpenDoor       string `yaml:"open_door"`
	ChangePassword string `yaml:"change_password"`
}

// ---- HMI ----

type HMIConfig struct {
	Texts    hmi.Texts `yaml:"texts"`
	Columns  int       `yaml:"columns"`
	MaskChar string    `yaml:"mask_char"`
}

// ---- LINK ----

type LinkConfig struct {
	// Port is a serial device; Listen and URL select the websocket link.
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	Listen   string `yaml:"listen"`
	URL      string `yaml:"url"`
	Path     string `yaml:"path"`
}

// ---- HARDWARE ----

type HardwareConfig struct {
	Simulated   bool   `yaml:"simulated"`
	EEPROMImage string `yaml:"eeprom_image"`
	I2CBus      string `yaml:"i2c_bus"`
	MotorIn1    string `yaml:"motor_in1"`
	MotorIn2    string `yaml:"motor_in2"`
	MotorEnable string `yaml:"motor_enable"`
	Buzzer      string `yaml:"buzzer"`
}

// ---- LOG ----

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration of the deployed boards
func Default() *Config {
	cc := controller.DefaultConfig()
	hc := hmi.DefaultConfig()
	return &Config{
		Controller: ControllerConfig{
			PasswordLength:      cc.PasswordLength,
			MaxWrongAttempts:    cc.MaxWrongAttempts,
			MaxMismatches:       cc.MaxMismatches,
			BannerMs:            millis(cc.BannerTime),
			MessageMs:           millis(cc.MessageTime),
			WarningMs:           millis(cc.WarningTime),
			UnlockMs:            millis(cc.UnlockTime),
			HoldMs:              millis(cc.HoldTime),
			LockMs:              millis(cc.LockTime),
			HandshakeIntervalMs: millis(cc.HandshakeInterval),
			StoreByteDelayMs:    millis(cc.StoreByteDelay),
			StorePolicy:         PolicyForever,
			MotorDuty:           cc.MotorDuty,
			Keys: KeysConfig{
				Backspace:      string(cc.BackspaceKey),
				Clear:          string(cc.ClearKey),
				Submit:         string(cc.SubmitKey),
				OpenDoor:       string(cc.OpenDoorKey),
				ChangePassword: string(cc.ChangePasswordKey),
			},
		},
		HMI: HMIConfig{
			Texts:    hc.Texts,
			Columns:  hc.Columns,
			MaskChar: string(hc.MaskChar),
		},
		Link: LinkConfig{
			BaudRate: doorlock.DefaultBaudRate,
			Path:     "/link",
		},
		Hardware: HardwareConfig{
			EEPROMImage: "doorlock-eeprom.bin",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", doorlock.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Write encodes cfg as YAML
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func millis(d time.Duration) int {
	return int(d / time.Millisecond)
}

func duration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
