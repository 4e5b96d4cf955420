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
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observeSession installs an observed session logger and returns its logs.
func observeSession(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)

	sessionMu.Lock()
	orig := sessionZap
	sessionZap = zap.New(core).Sugar()
	sessionMu.Unlock()

	origEnabled := debugEnabled.Load()
	debugEnabled.Store(false)
	t.Cleanup(func() {
		sessionMu.Lock()
		sessionZap = orig
		sessionMu.Unlock()
		debugEnabled.Store(origEnabled)
	})
	return logs
}

func TestDebugf_WritesToSessionLog(t *testing.T) {
	logs := observeSession(t)

	Debugf("test message %d", 42)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "test message 42", entry.Message)
	assert.Equal(t, zapcore.DebugLevel, entry.Level)
}

func TestDebugf_NilSessionLogger(t *testing.T) {
	sessionMu.Lock()
	orig := sessionZap
	sessionZap = nil
	sessionMu.Unlock()
	t.Cleanup(func() {
		sessionMu.Lock()
		sessionZap = orig
		sessionMu.Unlock()
	})

	assert.NotPanics(t, func() { Debugf("test message %d", 42) })
}

func TestDebugln_SpacesOperands(t *testing.T) {
	logs := observeSession(t)

	Debugln("value1", 42, "value2", true)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "value1 42 value2 true", logs.All()[0].Message)
}

func TestDebugf_MultipleMessages(t *testing.T) {
	logs := observeSession(t)

	Debugf("message 1")
	Debugf("message 2")
	Debugf("message 3")

	entries := logs.FilterMessageSnippet("message ").All()
	require.Len(t, entries, 3)
	assert.Equal(t, "message 1", entries[0].Message)
	assert.Equal(t, "message 2", entries[1].Message)
	assert.Equal(t, "message 3", entries[2].Message)
}

func TestSetLogger_RoutesConsoleOutput(t *testing.T) {
	observeSession(t)
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	Debugf("hidden")
	assert.Equal(t, 0, logs.Len(), "console logger must stay quiet while debug is off")

	SetDebugEnabled(true)
	Debugf("shown %s", "now")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown now", logs.All()[0].Message)
}

func TestSetDebugEnabled(t *testing.T) {
	orig := DebugEnabled()
	t.Cleanup(func() { SetDebugEnabled(orig) })

	SetDebugEnabled(true)
	assert.True(t, DebugEnabled())

	SetDebugEnabled(false)
	assert.False(t, DebugEnabled())
}
