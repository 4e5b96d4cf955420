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

// Package uart provides the serial byte link between the two door lock
// nodes.
package uart

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Config describes the serial line
type Config struct {
	PortName string
	BaudRate int
	// Settle is waited after opening before stale input is discarded.
	// Some USB adapters deliver garbage while the line comes up.
	Settle time.Duration
}

// DefaultConfig returns 9600 8N1 on portName
func DefaultConfig(portName string) Config {
	return Config{
		PortName: portName,
		BaudRate: doorlock.DefaultBaudRate,
		Settle:   defaultSettle(),
	}
}

// defaultSettle returns the platform-specific settle time
func defaultSettle() time.Duration {
	if runtime.GOOS == "windows" {
		return 100 * time.Millisecond
	}
	return 20 * time.Millisecond
}

// port is the subset of serial.Port the transport uses
type port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
	Drain() error
}

// Transport is a doorlock.Transport over a serial port
type Transport struct {
	port     port
	portName string
	closed   atomic.Bool
}

// New opens the serial port described by cfg
func New(cfg Config) (*Transport, error) {
	if cfg.PortName == "" {
		return nil, fmt.Errorf("%w: serial port name is required", doorlock.ErrInvalidConfig)
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = doorlock.DefaultBaudRate
	}

	p, err := serial.Open(cfg.PortName, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", cfg.PortName, err)
	}

	if cfg.Settle > 0 {
		time.Sleep(cfg.Settle)
	}
	if err := p.ResetInputBuffer(); err != nil {
		doorlock.Debugf("uart %s: reset input buffer: %v", cfg.PortName, err)
	}

	doorlock.Debugf("uart %s: open at %d 8N1", cfg.PortName, cfg.BaudRate)
	return newTransport(p, cfg.PortName), nil
}

func newTransport(p port, name string) *Transport {
	return &Transport{port: p, portName: name}
}

// Read blocks until at least one byte arrives
func (t *Transport) Read(b []byte) (int, error) {
	n, err := t.port.Read(b)
	if err != nil {
		return n, t.mapError(err)
	}
	if n == 0 && t.closed.Load() {
		return 0, io.EOF
	}
	return n, nil
}

// Write sends b and waits until it has been transmitted
func (t *Transport) Write(b []byte) (int, error) {
	if t.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	n, err := t.port.Write(b)
	if err != nil {
		return n, t.mapError(err)
	}
	if err := t.port.Drain(); err != nil {
		return n, t.mapError(err)
	}
	return n, nil
}

// mapError turns a closed-port error into io.EOF so the link reports a
// lost peer rather than a read failure.
func (t *Transport) mapError(err error) error {
	var pe *serial.PortError
	if t.closed.Load() || (errors.As(err, &pe) && pe.Code() == serial.PortClosed) {
		return io.EOF
	}
	return fmt.Errorf("uart %s: %w", t.portName, err)
}

// Close closes the port and unblocks a pending Read
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("close UART port %s: %w", t.portName, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() doorlock.TransportType {
	return doorlock.TransportUART
}

// String returns the port name
func (t *Transport) String() string {
	return t.portName
}

// PortInfo describes an available serial port
type PortInfo struct {
	Name         string
	VIDPID       string
	SerialNumber string
	Product      string
	USB          bool
}

// ListPorts returns the serial ports present on the system. USB metadata is
// filled in where the platform provides it.
func ListPorts() ([]PortInfo, error) {
	detailed, err := enumerator.GetDetailedPortsList()
	if err == nil {
		ports := make([]PortInfo, 0, len(detailed))
		for _, d := range detailed {
			info := PortInfo{Name: d.Name, USB: d.IsUSB, Product: d.Product, SerialNumber: d.SerialNumber}
			if d.IsUSB {
				info.VIDPID = d.VID + ":" + d.PID
			}
			ports = append(ports, info)
		}
		return ports, nil
	}
	doorlock.Debugf("uart: detailed port list unavailable: %v", err)

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(names))
	for _, n := range names {
		ports = append(ports, PortInfo{Name: n})
	}
	return ports, nil
}

var _ doorlock.Transport = (*Transport)(nil)
