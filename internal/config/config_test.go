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
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/controller"
	"github.com/ZaparooProject/go-doorlock/hmi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
controller:
  password_length: 4
  unlock_ms: 5000
  store_policy: Bounded
  keys:
    submit: "#"
hmi:
  texts:
    banner: "FRONT DOOR"
  mask_char: "#"
link:
  port: /dev/ttyUSB0
  path: ws
hardware:
  simulated: true
  eeprom_image: ./state/../eeprom.bin
log:
  level: DEBUG
  format: JSON
`

func TestDefault_MatchesNodeDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))

	cc, err := cfg.ControllerConfig()
	require.NoError(t, err)
	assert.Equal(t, controller.DefaultConfig(), cc)

	hc, err := cfg.HMIConfig()
	require.NoError(t, err)
	assert.Equal(t, hmi.DefaultConfig(), hc)
}

func TestParse_OverridesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))
	Normalize(cfg)

	cc, err := cfg.ControllerConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, cc.PasswordLength)
	assert.Equal(t, 5*time.Second, cc.UnlockTime)
	assert.Equal(t, 3*time.Second, cc.HoldTime)
	assert.Equal(t, byte('#'), cc.SubmitKey)
	require.NotNil(t, cc.StoreRetry)
	assert.False(t, cc.StoreRetry.Forever)

	hc, err := cfg.HMIConfig()
	require.NoError(t, err)
	assert.Equal(t, "FRONT DOOR", hc.Texts.Banner)
	assert.Equal(t, "Enter Pass :", hc.Texts.EnterPassword)
	assert.Equal(t, byte('#'), hc.MaskChar)

	assert.Equal(t, "/ws", cfg.Link.Path)
	assert.Equal(t, 9600, cfg.Link.BaudRate)
	assert.Equal(t, "eeprom.bin", cfg.Hardware.EEPROMImage)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, PolicyBounded, cfg.Controller.StorePolicy)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "controller:\n  pin_length: 4\n"},
		{"bad type", "controller:\n  unlock_ms: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, doorlock.ErrInvalidConfig)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mutate func(*Config)
		name   string
	}{
		{func(c *Config) { c.Controller.Keys.Clear = "cc" }, "long key"},
		{func(c *Config) { c.Controller.Keys.Submit = "" }, "empty key"},
		{func(c *Config) { c.Controller.LockMs = -1 }, "negative duration"},
		{func(c *Config) { c.Controller.StorePolicy = "sometimes" }, "policy"},
		{func(c *Config) { c.HMI.MaskChar = "" }, "mask"},
		{func(c *Config) { c.Link.Listen, c.Link.URL = ":8080", "ws://x" }, "listen and url"},
		{func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{func(c *Config) { c.Controller.Keys.Submit = "5" }, "submit is a digit"},
		{func(c *Config) { c.HMI.Texts.Locking = "Locking the front door" }, "text too wide"},
		{func(c *Config) { c.Controller.MaxMismatches = 0 }, "zero limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), doorlock.ErrInvalidConfig)
		})
	}
}

func TestLoadAndWrite_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Link.URL = "ws://door.local:8080/link"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))

	path := filepath.Join(t.TempDir(), "doorlock.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
