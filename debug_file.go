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
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Session log rotation limits
const (
	sessionLogMaxSizeMB  = 10
	sessionLogMaxBackups = 3
)

// Session log state
var (
	sessionMu     syncutil.RWMutex
	sessionWriter *lumberjack.Logger
	sessionPath   string
	sessionZap    *zap.SugaredLogger
)

// InitSessionLog opens a rotating session log in dir (the current directory
// when empty). Returns the log file path for display to the user.
func InitSessionLog(dir string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("doorlock_%s.log", timestamp))

	writer := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    sessionLogMaxSizeMB,
		MaxBackups: sessionLogMaxBackups,
	}
	if err := writeSessionHeader(writer); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to create session log: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(writer), zapcore.DebugLevel)

	sessionMu.Lock()
	old := sessionWriter
	sessionWriter = writer
	sessionPath = filename
	sessionZap = zap.New(core).Sugar()
	sessionMu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return filename, nil
}

// CloseSessionLog closes the current session log file.
func CloseSessionLog() error {
	sessionMu.Lock()
	writer := sessionWriter
	logger := sessionZap
	sessionWriter = nil
	sessionPath = ""
	sessionZap = nil
	sessionMu.Unlock()

	if writer == nil {
		return nil
	}
	_ = logger.Sync()
	timestamp := time.Now().Format("15:04:05.000")
	_, _ = fmt.Fprintf(writer, "\n%s === Session ended ===\n", timestamp)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close session log: %w", err)
	}
	return nil
}

// GetSessionLogPath returns the current session log file path.
func GetSessionLogPath() string {
	sessionMu.RLock()
	defer sessionMu.RUnlock()
	return sessionPath
}

func sessionLogger() *zap.SugaredLogger {
	sessionMu.RLock()
	defer sessionMu.RUnlock()
	return sessionZap
}

// writeSessionHeader writes metadata about the session to the log file.
func writeSessionHeader(writer io.Writer) error {
	var sb strings.Builder
	_, _ = sb.WriteString("=== Door Lock Session Log ===\n")
	_, _ = fmt.Fprintf(&sb, "Started: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&sb, "PID: %d\n", os.Getpid())
	_, _ = fmt.Fprintf(&sb, "OS: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&sb, "Go Version: %s\n", runtime.Version())
	if exe, err := os.Executable(); err == nil {
		_, _ = fmt.Fprintf(&sb, "Executable: %s\n", exe)
	}
	_, _ = fmt.Fprintf(&sb, "Command Line: %s\n", strings.Join(os.Args, " "))
	_, _ = sb.WriteString("=============================\n\n")
	_, err := io.WriteString(writer, sb.String())
	return err
}
