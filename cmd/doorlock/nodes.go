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

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/controller"
	"github.com/ZaparooProject/go-doorlock/detection"
	"github.com/ZaparooProject/go-doorlock/hw/buzzer"
	"github.com/ZaparooProject/go-doorlock/hw/eeprom"
	"github.com/ZaparooProject/go-doorlock/hw/motor"
	"github.com/ZaparooProject/go-doorlock/internal/config"
	"github.com/ZaparooProject/go-doorlock/transport/uart"
	"github.com/ZaparooProject/go-doorlock/transport/websocket"
	"go.uber.org/zap"
)

// autoPort asks the controller to probe serial ports for the interface node
const autoPort = "auto"

// openSerial opens the serial link named in cfg
func openSerial(cfg config.LinkConfig) (doorlock.Transport, string, error) {
	ucfg := uart.DefaultConfig(cfg.Port)
	ucfg.BaudRate = cfg.BaudRate
	t, err := uart.New(ucfg)
	if err != nil {
		return nil, "", err
	}
	return t, t.String(), nil
}

// openControllerLink opens the controller side: a serial port, or a
// websocket listener that waits for the interface node to connect.
func openControllerLink(ctx context.Context, cfg config.LinkConfig, log *zap.Logger) (doorlock.Transport, string, error) {
	switch {
	case cfg.Listen != "":
		ln, err := websocket.Listen(cfg.Listen, cfg.Path)
		if err != nil {
			return nil, "", err
		}
		log.Info("waiting for interface node", zap.Stringer("addr", ln.Addr()), zap.String("path", cfg.Path))
		conn, err := ln.Accept(ctx)
		if err != nil {
			_ = ln.Close()
			return nil, "", err
		}
		return &listenerConn{Conn: conn, ln: ln}, conn.String(), nil
	case cfg.Port == autoPort:
		opts := detection.DefaultOptions()
		opts.BaudRate = cfg.BaudRate
		peer, err := detection.First(ctx, &opts)
		if err != nil {
			return nil, "", err
		}
		log.Info("found interface node", zap.String("port", peer.Path))
		cfg.Port = peer.Path
		return openSerial(cfg)
	case cfg.Port != "":
		return openSerial(cfg)
	default:
		return nil, "", fmt.Errorf("%w: one of --port or --listen is required", doorlock.ErrInvalidConfig)
	}
}

// openHMILink opens the interface node side: a serial port or a websocket
// to a listening controller.
func openHMILink(ctx context.Context, cfg config.LinkConfig) (doorlock.Transport, string, error) {
	switch {
	case cfg.URL != "":
		conn, err := websocket.Dial(ctx, cfg.URL)
		if err != nil {
			return nil, "", err
		}
		return conn, conn.String(), nil
	case cfg.Port != "":
		return openSerial(cfg)
	default:
		return nil, "", fmt.Errorf("%w: one of --port or --url is required", doorlock.ErrInvalidConfig)
	}
}

// listenerConn closes the listener together with the accepted peer
type listenerConn struct {
	*websocket.Conn
	ln *websocket.Listener
}

func (c *listenerConn) Close() error {
	return errors.Join(c.Conn.Close(), c.ln.Close())
}

// hardware is the controller peripheral set with its release function
type hardware struct {
	controller.Hardware
	close func()
}

// simHooks observe simulated actuators
type simHooks struct {
	motor func(motor.Direction, uint8)
	alarm func(bool)
}

// openSimHardware backs the store with an image file, or memory when
// volatile, and logs actuator changes.
func openSimHardware(cfg config.HardwareConfig, volatile bool, log *zap.Logger, hooks simHooks) (*hardware, *motor.Sim, *buzzer.Sim, error) {
	var store controller.Store = eeprom.NewMemory(eeprom.Size)
	release := func() {}
	if !volatile {
		f, err := eeprom.OpenFile(cfg.EEPROMImage)
		if err != nil {
			return nil, nil, nil, err
		}
		store = f
		release = func() { _ = f.Close() }
	}
	m := motor.NewSim(func(d motor.Direction, duty uint8) {
		log.Info("motor", zap.Stringer("direction", d), zap.Uint8("duty", duty))
		if hooks.motor != nil {
			hooks.motor(d, duty)
		}
	})
	b := buzzer.NewSim(func(on bool) {
		log.Info("alarm", zap.Bool("sounding", on))
		if hooks.alarm != nil {
			hooks.alarm(on)
		}
	})
	hw := &hardware{
		Hardware: controller.Hardware{Store: store, Motor: m, Alarm: b},
		close:    release,
	}
	return hw, m, b, nil
}

// Board drivers, replaced in tests.
var (
	openBoardStore = func(bus string) (storeCloser, error) { return eeprom.OpenM24C16(bus) }
	openBridge     = motor.Open
	openBuzzer     = buzzer.Open
)

// openBoardHardware opens the EEPROM on I2C and the actuators on GPIO. On
// failure everything already opened is released and the bridge is stopped.
func openBoardHardware(cfg config.HardwareConfig) (*hardware, error) {
	store, err := openBoardStore(cfg.I2CBus)
	if err != nil {
		return nil, err
	}
	bridge, err := openBridge(cfg.MotorIn1, cfg.MotorIn2, cfg.MotorEnable)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	alarm, err := openBuzzer(cfg.Buzzer)
	if err != nil {
		_ = bridge.Stop()
		_ = store.Close()
		return nil, err
	}
	return &hardware{
		Hardware: controller.Hardware{Store: store, Motor: bridge, Alarm: alarm},
		close: func() {
			_ = bridge.Stop()
			_ = alarm.Off()
			_ = store.Close()
		},
	}, nil
}

// controllerOptions returns the options shared by the controller and sim
// commands. observe, if set, sees every state change.
func controllerOptions(cfg *config.Config, log *zap.Logger, observe func(controller.AppState)) ([]controller.Option, error) {
	cc, err := cfg.ControllerConfig()
	if err != nil {
		return nil, err
	}
	return []controller.Option{
		controller.WithConfig(cc),
		controller.WithTransitionHook(func(from, to controller.AppState) {
			log.Debug("controller state", zap.Stringer("from", from), zap.Stringer("to", to))
			if observe != nil {
				observe(to)
			}
		}),
	}, nil
}

func logControllerStats(log *zap.Logger, c *controller.Controller, link *doorlock.Link) {
	s := c.Stats()
	ls := link.Stats()
	log.Info("controller stopped",
		zap.Stringer("state", c.State()),
		zap.Int("unlocks", s.Unlocks),
		zap.Int("wrong_passwords", s.WrongPasswords),
		zap.Int("mismatches", s.Mismatches),
		zap.Int("lockouts", s.Lockouts),
		zap.Int("store_reads", s.StoreReads),
		zap.Int("store_writes", s.StoreWrites),
		zap.Uint64("tx_bytes", ls.TxBytes),
		zap.Uint64("rx_bytes", ls.RxBytes),
		zap.Uint64("overwritten", ls.Overwritten),
	)
}
