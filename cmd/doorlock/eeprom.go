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

	"github.com/ZaparooProject/go-doorlock/hw/eeprom"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// storeCloser is a byte store that must be released
type storeCloser interface {
	eeprom.Store
	Close() error
}

func newEEPROMCmd(flags *globalFlags) *cobra.Command {
	var (
		image  string
		board  bool
		erase  bool
		from   uint16
		length int
	)

	cmd := &cobra.Command{
		Use:   "eeprom",
		Short: "Dump or erase the password store",
		Long: `Dump or erase the controller's password store.

The store is the image file used by simulated hardware, or the M24C16 on the
configured I2C bus with --board. Erasing returns the lock to first-run
provisioning.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			if int(from)+length > eeprom.Size || length <= 0 {
				return fmt.Errorf("range 0x%03X+%d outside the %d byte store", from, length, eeprom.Size)
			}

			var store storeCloser
			if board {
				store, err = eeprom.OpenM24C16(e.cfg.Hardware.I2CBus)
			} else {
				if image == "" {
					image = e.cfg.Hardware.EEPROMImage
				}
				store, err = eeprom.OpenFile(image)
			}
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if erase {
				if err := eeprom.Erase(store, from, length); err != nil {
					return err
				}
				e.log.Info("store erased", zap.Uint16("from", from), zap.Int("length", length))
			}
			return eeprom.Dump(cmd.OutOrStdout(), store, from, length)
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "EEPROM image file (default from configuration)")
	cmd.Flags().BoolVar(&board, "board", false, "Use the M24C16 on the configured I2C bus")
	cmd.Flags().BoolVar(&erase, "erase", false, "Erase the range before dumping it")
	cmd.Flags().Uint16Var(&from, "from", 0, "First address")
	cmd.Flags().IntVarP(&length, "length", "n", 64, "Number of bytes")
	cmd.MarkFlagsMutuallyExclusive("image", "board")
	return cmd
}
