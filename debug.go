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
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// debugEnabled controls whether debug messages reach the console logger.
// The session log, when open, receives every message regardless.
var debugEnabled atomic.Bool

var consoleLogger atomic.Pointer[zap.SugaredLogger]

func init() {
	if os.Getenv("DOORLOCK_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled.Store(true)
	}
	consoleLogger.Store(newConsoleLogger().Sugar())
}

func newConsoleLogger() *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// Debugf logs a formatted debug message.
// Always writes to the session log (if initialized).
// Only writes to the console logger when debug mode is enabled.
func Debugf(format string, args ...any) {
	emit(fmt.Sprintf(format, args...))
}

// Debugln logs its operands as a debug message, spaced like fmt.Sprintln.
func Debugln(args ...any) {
	msg := fmt.Sprintln(args...)
	emit(msg[:len(msg)-1])
}

func emit(message string) {
	if s := sessionLogger(); s != nil {
		s.Debug(message)
	}
	if debugEnabled.Load() {
		consoleLogger.Load().Debug(message)
	}
}

// SetDebugEnabled allows programmatic control of debug logging
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether console debug logging is on
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// SetLogger routes console debug output through l. A nil logger restores
// the default stderr logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = newConsoleLogger()
	}
	consoleLogger.Store(l.Sugar())
}
