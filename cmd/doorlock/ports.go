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
	"fmt"
	"io"

	"github.com/ZaparooProject/go-doorlock/detection"
	"github.com/ZaparooProject/go-doorlock/transport/uart"
	"github.com/spf13/cobra"
)

func newPortsCmd() *cobra.Command {
	var (
		probe  bool
		ignore []string
	)

	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Long: `List serial ports. With --probe every port is sent the ready command and
only ports with an idle interface node attached are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if probe {
				opts := detection.DefaultOptions()
				opts.IgnorePaths = ignore
				peers, err := detection.Detect(cmd.Context(), &opts)
				if err != nil {
					return err
				}
				for _, p := range peers {
					_, _ = fmt.Fprintln(out, p)
				}
				return nil
			}

			ports, err := uart.ListPorts()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				_, _ = fmt.Fprintln(out, "No serial ports found")
				return nil
			}
			for _, p := range ports {
				printPort(out, p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Probe ports for an interface node")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Ports to skip when probing")
	return cmd
}

func printPort(out io.Writer, p uart.PortInfo) {
	if !p.USB {
		_, _ = fmt.Fprintln(out, p.Name)
		return
	}
	_, _ = fmt.Fprintf(out, "%s\tUSB %s", p.Name, p.VIDPID)
	if p.Product != "" {
		_, _ = fmt.Fprintf(out, " %s", p.Product)
	}
	if p.SerialNumber != "" {
		_, _ = fmt.Fprintf(out, " (serial %s)", p.SerialNumber)
	}
	_, _ = fmt.Fprintln(out)
}
