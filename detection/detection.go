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

// Package detection finds the serial port the interface node is attached
// to.
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
	"github.com/ZaparooProject/go-doorlock/transport/uart"
)

// Mode represents the level of invasiveness for peer detection
type Mode int

const (
	// Passive mode only checks port descriptors without any communication
	Passive Mode = iota
	// Probe mode sends the ready command and waits for it to be echoed
	Probe
)

// Confidence represents the confidence level of peer detection
type Confidence int

const (
	// Low confidence - an unrecognised serial port
	Low Confidence = iota
	// Medium confidence - a known USB-serial adapter
	Medium
	// High confidence - the port answered the ready command
	High
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// PeerInfo describes a candidate port
type PeerInfo struct {
	Path       string
	Product    string
	VIDPID     string
	Confidence Confidence
}

// String returns a human-readable representation of the candidate
func (p PeerInfo) String() string {
	return fmt.Sprintf("peer at %s (confidence: %s)", p.Path, p.Confidence)
}

// ProbeFunc checks whether a node answers on path
type ProbeFunc func(ctx context.Context, path string, opts *Options) error

// Options configures the detection behavior
type Options struct {
	// Probe replaces the serial probe; used by tests
	Probe ProbeFunc
	// USB VID:PID pairs to skip (e.g., ["1234:5678", "ABCD:EF01"])
	Blocklist []string
	// Device paths to explicitly ignore (e.g., ["/dev/ttyUSB0", "COM2"])
	IgnorePaths []string
	// Time allowed for each probe reply
	ProbeTimeout time.Duration
	BaudRate     int
	Mode         Mode
}

// DefaultOptions returns sensible default detection options
func DefaultOptions() Options {
	return Options{
		Mode:         Probe,
		ProbeTimeout: 500 * time.Millisecond,
		BaudRate:     doorlock.DefaultBaudRate,
		Blocklist:    DefaultBlocklist(),
	}
}

// ErrNoPeerFound indicates no candidate port was found
var ErrNoPeerFound = errors.New("no interface node found")

// lister is swapped in tests
var lister = uart.ListPorts

// Detect lists candidate ports ordered by confidence. In Probe mode only
// ports that answered are returned.
func Detect(ctx context.Context, opts *Options) ([]PeerInfo, error) {
	ports, err := lister()
	if err != nil {
		return nil, err
	}

	var peers []PeerInfo
	for _, p := range ports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.VIDPID != "" && IsBlocked(p.VIDPID, opts.Blocklist) {
			continue
		}
		if IsPathIgnored(p.Name, opts.IgnorePaths) {
			continue
		}

		peer := PeerInfo{Path: p.Name, Product: p.Product, VIDPID: p.VIDPID, Confidence: Low}
		if isKnownAdapter(p) {
			peer.Confidence = Medium
		}

		if opts.Mode == Probe {
			if err := probe(ctx, p.Name, opts); err != nil {
				doorlock.Debugf("detection: %s did not answer: %v", p.Name, err)
				continue
			}
			peer.Confidence = High
		}
		peers = append(peers, peer)
	}

	if len(peers) == 0 {
		return nil, ErrNoPeerFound
	}
	sort.SliceStable(peers, func(i, j int) bool {
		return peers[i].Confidence > peers[j].Confidence
	})
	return peers, nil
}

// First returns the best candidate
func First(ctx context.Context, opts *Options) (PeerInfo, error) {
	peers, err := Detect(ctx, opts)
	if err != nil {
		return PeerInfo{}, err
	}
	return peers[0], nil
}

func probe(ctx context.Context, path string, opts *Options) error {
	if opts.Probe != nil {
		return opts.Probe(ctx, path, opts)
	}
	return SerialProbe(ctx, path, opts)
}

// SerialProbe opens path and sends the ready command once. An idle
// interface node acknowledges it with the same byte.
func SerialProbe(ctx context.Context, path string, opts *Options) error {
	cfg := uart.DefaultConfig(path)
	if opts.BaudRate > 0 {
		cfg.BaudRate = opts.BaudRate
	}
	t, err := uart.New(cfg)
	if err != nil {
		return err
	}
	link := doorlock.NewLink(t, doorlock.WithPortName(path))
	defer func() { _ = link.Close() }()

	if err := link.Send(byte(doorlock.CmdReady)); err != nil {
		return err
	}
	b, err := link.Receive(ctx, opts.ProbeTimeout)
	if err != nil {
		return err
	}
	if doorlock.Command(b) != doorlock.CmdReady {
		return fmt.Errorf("%w: got %v", doorlock.ErrHandshakeMismatch, doorlock.Command(b))
	}
	return nil
}
