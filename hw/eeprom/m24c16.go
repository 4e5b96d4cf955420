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

package eeprom

import (
	"fmt"
	"strings"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// M24C16 7-bit base address. The three high address bits select one of
	// eight 256-byte blocks and are carried in the device address.
	m24c16Addr = 0x50

	maxClockFreq = 400 * physic.KiloHertz
)

// M24C16 is a 16 Kbit I2C EEPROM. The chip needs up to 5ms to finish a
// write cycle; callers pace writes (see controller StoreByteDelay).
type M24C16 struct {
	bus     i2c.Bus
	closer  i2c.BusCloser
	busName string
}

// NewM24C16 returns a driver for the chip on bus
func NewM24C16(bus i2c.Bus) *M24C16 {
	return &M24C16{bus: bus, busName: bus.String()}
}

// OpenM24C16 initialises the host drivers and opens the named bus. An
// empty name selects the first bus.
func OpenM24C16(busName string) (*M24C16, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}
	_ = bus.SetSpeed(maxClockFreq)

	return &M24C16{bus: bus, closer: bus, busName: busName}, nil
}

// deviceAddr returns the I2C address and word address for addr
func deviceAddr(addr uint16) (uint16, byte) {
	return m24c16Addr | (addr>>8)&0x07, byte(addr)
}

// ReadByteAt performs a random read of one byte
func (e *M24C16) ReadByteAt(addr uint16) (byte, error) {
	if err := checkAddr("read", addr, Size); err != nil {
		return 0, err
	}
	dev, word := deviceAddr(addr)
	r := make([]byte, 1)
	if err := e.bus.Tx(dev, []byte{word}, r); err != nil {
		return 0, doorlock.NewStoreReadError(addr, err)
	}
	return r[0], nil
}

// WriteByteAt performs a byte write
func (e *M24C16) WriteByteAt(addr uint16, b byte) error {
	if err := checkAddr("write", addr, Size); err != nil {
		return err
	}
	dev, word := deviceAddr(addr)
	if err := e.bus.Tx(dev, []byte{word, b}, nil); err != nil {
		return doorlock.NewStoreWriteError(addr, err)
	}
	return nil
}

func (e *M24C16) String() string {
	return "M24C16@" + strings.TrimSpace(e.busName)
}

// Close releases the bus if this driver opened it
func (e *M24C16) Close() error {
	if e.closer == nil {
		return nil
	}
	if err := e.closer.Close(); err != nil {
		return fmt.Errorf("close I2C bus: %w", err)
	}
	return nil
}
