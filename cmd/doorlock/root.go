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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/internal/config"
	"github.com/ZaparooProject/go-doorlock/internal/logging"
	"github.com/ZaparooProject/go-doorlock/internal/syncutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath  string
	sessionDir  string
	lockTimeout time.Duration
	debug       bool
	sessionLog  bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "doorlock",
		Short: "Two-node keypad door lock",
		Long: `doorlock runs the nodes of a keypad door lock.

The controller owns the password store, the bolt motor and the alarm. The
interface node owns the keypad and the character display. The two talk over
a serial line or a websocket using single-byte commands.

  doorlock controller --port /dev/ttyUSB0
  doorlock hmi --port /dev/ttyUSB1
  doorlock sim`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML configuration file")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug output")
	pf.BoolVar(&flags.sessionLog, "session-log", false, "Write a link session log")
	pf.StringVar(&flags.sessionDir, "session-dir", "", "Directory for session logs")
	pf.DurationVar(&flags.lockTimeout, "lock-timeout", 30*time.Second, "Lock hold limit in deadlock builds")
	_ = pf.MarkHidden("lock-timeout")

	root.AddCommand(
		newControllerCmd(flags),
		newHMICmd(flags),
		newSimCmd(flags),
		newPortsCmd(),
		newEEPROMCmd(flags),
		newConfigCmd(flags),
	)
	return root
}

// loadConfig reads the configuration file, or the defaults when none is given
func (f *globalFlags) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		cfg, err = config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

// env is the per-command runtime: configuration and logging
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	cleanup []func()
}

// setup loads the configuration and installs the loggers. console may be
// nil when the terminal belongs to the front panel.
func (f *globalFlags) setup(console io.Writer) (*env, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Console: console,
		Config:  cfg.Log,
		Debug:   f.debug,
	})
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: logger, cleanup: []func(){closeLog}}
	doorlock.SetLogger(logger)
	doorlock.SetDebugEnabled(f.debug)
	syncutil.SetLockTimeout(f.lockTimeout)

	if f.sessionLog {
		path, err := doorlock.InitSessionLog(f.sessionDir)
		if err != nil {
			e.close()
			return nil, err
		}
		logger.Info("session log", zap.String("path", path))
		e.onClose(func() { _ = doorlock.CloseSessionLog() })
	}
	return e, nil
}

func (e *env) onClose(fn func()) {
	e.cleanup = append(e.cleanup, fn)
}

// close runs cleanups in reverse order
func (e *env) close() {
	for i := len(e.cleanup) - 1; i >= 0; i-- {
		e.cleanup[i]()
	}
	e.cleanup = nil
	doorlock.SetLogger(nil)
}

// nodeExit turns a node loop result into a command result. Cancellation is
// a normal shutdown.
func nodeExit(name string, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("%s stopped: %w", name, err)
}
