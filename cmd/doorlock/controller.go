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
	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/controller"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newControllerCmd(flags *globalFlags) *cobra.Command {
	var (
		port   string
		listen string
		baud   int
		simHW  bool
	)

	cmd := &cobra.Command{
		Use:   "controller",
		Short: "Run the controller node",
		Long: `Run the controller node: password store, bolt motor and alarm.

The link is a serial port (--port) or a websocket listener (--listen) the
interface node connects to. Peripherals come from the hardware section of the
configuration, or are simulated with --sim-hw.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			link := &e.cfg.Link
			if port != "" {
				link.Port = port
			}
			if listen != "" {
				link.Listen = listen
			}
			if cmd.Flags().Changed("baud") {
				link.BaudRate = baud
			}

			opts, err := controllerOptions(e.cfg, e.log, nil)
			if err != nil {
				return err
			}

			var hw *hardware
			if simHW || e.cfg.Hardware.Simulated {
				hw, _, _, err = openSimHardware(e.cfg.Hardware, false, e.log, simHooks{})
			} else {
				hw, err = openBoardHardware(e.cfg.Hardware)
			}
			if err != nil {
				return err
			}
			defer hw.close()

			ctx := cmd.Context()
			t, name, err := openControllerLink(ctx, *link, e.log)
			if err != nil {
				return err
			}
			l := doorlock.NewLink(t, doorlock.WithPortName(name))
			defer func() { _ = l.Close() }()
			timer := doorlock.NewTimer()
			defer timer.Stop()

			ctrl, err := controller.New(l, timer, hw.Hardware, opts...)
			if err != nil {
				return err
			}

			e.log.Info("controller started", zap.String("link", name))
			err = doorlock.Run(ctx, ctrl, l, timer)
			logControllerStats(e.log, ctrl, l)
			return nodeExit("controller", err)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", `Serial port device, or "auto" to probe for the interface node`)
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Websocket listen address (host:port)")
	cmd.Flags().IntVarP(&baud, "baud", "b", doorlock.DefaultBaudRate, "Baud rate (serial only)")
	cmd.Flags().BoolVar(&simHW, "sim-hw", false, "Simulate the EEPROM, motor and alarm")
	cmd.MarkFlagsMutuallyExclusive("port", "listen")
	return cmd
}
