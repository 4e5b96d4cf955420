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

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/hmi"
	"github.com/ZaparooProject/go-doorlock/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newHMICmd(flags *globalFlags) *cobra.Command {
	var (
		port     string
		url      string
		baud     int
		lineMode bool
	)

	cmd := &cobra.Command{
		Use:   "hmi",
		Short: "Run the interface node",
		Long: `Run the interface node: keypad and character display.

On a terminal the display and keypad are drawn as a front panel. Otherwise
every display change is printed as a line and keys are read from stdin.`,
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

			link := &e.cfg.Link
			if port != "" {
				link.Port = port
			}
			if url != "" {
				link.URL = url
			}
			if cmd.Flags().Changed("baud") {
				link.BaudRate = baud
			}

			hc, err := e.cfg.HMIConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			t, name, err := openHMILink(ctx, *link)
			if err != nil {
				return err
			}
			l := doorlock.NewLink(t, doorlock.WithPortName(name))
			defer func() { _ = l.Close() }()
			timer := doorlock.NewTimer()
			defer timer.Stop()

			fp := newFrontPanel(cmd.OutOrStdout(), hc.Columns, useTUI)
			panel, err := hmi.New(l, fp.display, fp.keys, hc)
			if err != nil {
				return err
			}

			status := &nodeStatus{link: name}
			done := make(chan error, 1)
			go func() {
				err := doorlock.Run(ctx, panel, l, timer)
				status.stop(err)
				fp.notify()
				if !useTUI {
					cancel()
				}
				done <- err
			}()

			e.log.Info("interface node started", zap.String("link", name))
			serveErr := fp.serve(ctx, "DOOR LOCK - INTERFACE", tui.Indicators{Status: status.String}, cmd.InOrStdin(), e.log)
			cancel()
			fp.keys.Close()
			runErr := <-done
			e.log.Info("interface node stopped", zap.Int("keys_forwarded", panel.KeysForwarded()))

			if serveErr != nil {
				return serveErr
			}
			return nodeExit("hmi", runErr)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Serial port device")
	cmd.Flags().StringVarP(&url, "url", "u", "", "Controller websocket URL (ws:// or wss://)")
	cmd.Flags().IntVarP(&baud, "baud", "b", doorlock.DefaultBaudRate, "Baud rate (serial only)")
	cmd.Flags().BoolVar(&lineMode, "line", false, "Print display lines instead of drawing the front panel")
	cmd.MarkFlagsMutuallyExclusive("port", "url")
	return cmd
}
