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

package buzzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestBuzzer(t *testing.T) {
	t.Parallel()

	pin := &gpiotest.Pin{N: "BUZZ", Num: 4}
	b := New(pin)

	require.NoError(t, b.On())
	assert.Equal(t, gpio.High, pin.Read())
	require.NoError(t, b.Off())
	assert.Equal(t, gpio.Low, pin.Read())
}

func TestSim(t *testing.T) {
	t.Parallel()

	var changes []bool
	s := NewSim(func(on bool) { changes = append(changes, on) })
	assert.False(t, s.Sounding())

	require.NoError(t, s.On())
	assert.True(t, s.Sounding())
	require.NoError(t, s.Off())
	assert.False(t, s.Sounding())
	assert.Equal(t, []bool{true, false}, changes)
}
