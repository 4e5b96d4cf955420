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
	"io"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/controller"
	"github.com/ZaparooProject/go-doorlock/hmi"
	"github.com/ZaparooProject/go-doorlock/hw/motor"
	"github.com/ZaparooProject/go-doorlock/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// hmiStartDelay lets the interface node reach its receive loop before the
// controller's first handshake byte.
const hmiStartDelay = 5 * time.Millisecond

func newSimCmd(flags *globalFlags) *cobra.Command {
	var (
		image    string
		volatile bool
		lineMode bool
	)

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run both nodes with a simulated front panel",
		Long: `Run the controller and the interface node in one process over an
in-memory link. The password store is an image file (--image) so the
provisioned password survives restarts, or lives in memory with --volatile.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			useTUI := interactive(lineMode)
			var console io.Writer = cmd.ErrOrStderr()
			if useTUI {
				console = nil
			}
			e, err := flags.setup(console)
			if err != nil {
				return err
			}
			defer e.close()

			if image != "" {
				e.cfg.Hardware.EEPROMImage = image
			}
			hc, err := e.cfg.HMIConfig()
			if err != nil {
				return err
			}

			fp := newFrontPanel(cmd.OutOrStdout(), hc.Columns, useTUI)
			hooks := simHooks{
				motor: func(motor.Direction, uint8) { fp.notify() },
				alarm: func(bool) { fp.notify() },
			}
			hw, m, b, err := openSimHardware(e.cfg.Hardware, volatile, e.log, hooks)
			if err != nil {
				return err
			}
			defer hw.close()

			status := &nodeStatus{link: string(doorlock.TransportPipe)}
			opts, err := controllerOptions(e.cfg, e.log, func(to controller.AppState) {
				status.setState(to.String())
				fp.notify()
			})
			if err != nil {
				return err
			}

			a, z := doorlock.NewPipe()
			ctrlLink := doorlock.NewLink(a, doorlock.WithPortName("controller"))
			hmiLink := doorlock.NewLink(z, doorlock.WithPortName("hmi"))
			defer func() { _ = ctrlLink.Close() }()
			defer func() { _ = hmiLink.Close() }()
			ctrlTimer := doorlock.NewTimer()
			hmiTimer := doorlock.NewTimer()
			defer ctrlTimer.Stop()
			defer hmiTimer.Stop()

			ctrl, err := controller.New(ctrlLink, ctrlTimer, hw.Hardware, opts...)
			if err != nil {
				return err
			}
			panel, err := hmi.New(hmiLink, fp.display, fp.keys, hc)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			done := make(chan error, 2)
			run := func(node doorlock.Node, l *doorlock.Link, t *doorlock.Timer) {
				err := doorlock.Run(ctx, node, l, t)
				status.stop(err)
				fp.notify()
				if !useTUI {
					cancel()
				}
				done <- err
			}
			go run(panel, hmiLink, hmiTimer)
			time.Sleep(hmiStartDelay)
			go run(ctrl, ctrlLink, ctrlTimer)

			e.log.Info("simulation started", zap.Bool("volatile", volatile), zap.String("image", e.cfg.Hardware.EEPROMImage))
			serveErr := fp.serve(ctx, "DOOR LOCK - SIMULATOR", tui.Indicators{
				Motor:  m.State,
				Alarm:  b.Sounding,
				Status: status.String,
			}, cmd.InOrStdin(), e.log)
			cancel()
			fp.keys.Close()
			var runErr error
			for range 2 {
				if err := nodeExit("simulation", <-done); err != nil && runErr == nil {
					runErr = err
				}
			}
			logControllerStats(e.log, ctrl, ctrlLink)

			if serveErr != nil {
				return serveErr
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "EEPROM image file (default from configuration)")
	cmd.Flags().BoolVar(&volatile, "volatile", false, "Keep the password store in memory")
	cmd.Flags().BoolVar(&lineMode, "line", false, "Print display lines instead of drawing the front panel")
	return cmd
}
