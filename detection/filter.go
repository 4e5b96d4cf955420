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

package detection

import (
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/go-doorlock/transport/uart"
)

// DefaultBlocklist returns a list of known problematic USB devices
// that should not be probed during detection.
// Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{}
}

// IsBlocked checks if a USB device is in the blocklist.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	for _, blocked := range blocklist {
		if vidpid == strings.ToUpper(strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}

// IsPathIgnored checks if a device path should be ignored.
// Supports exact path matching and normalized path comparison.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	normalizedDevice := normalizedPath(devicePath)
	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}
		if devicePath == ignorePath || normalizedDevice == normalizedPath(ignorePath) {
			return true
		}
	}
	return false
}

// normalizedPath cleans path and lowercases it for Windows port names
func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

// adapterPatterns match the port names of common USB-serial bridges
var adapterPatterns = []string{
	"usbserial",      // FTDI and similar on macOS
	"slab_usbtouart", // Silicon Labs CP210x
	"usbmodem",       // CDC ACM boards on macOS
	"ttyusb",
	"ttyacm",
}

// adapterProducts match USB product strings of the same bridges
var adapterProducts = []string{
	"ftdi", "cp210", "ch340", "pl2303", "arduino", "usb-serial", "usb serial",
}

// isKnownAdapter reports whether the port looks like a USB-serial bridge
func isKnownAdapter(p uart.PortInfo) bool {
	name := strings.ToLower(p.Name)
	for _, pattern := range adapterPatterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	product := strings.ToLower(p.Product)
	for _, pattern := range adapterProducts {
		if strings.Contains(product, pattern) {
			return true
		}
	}
	return false
}
