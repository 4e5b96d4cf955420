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

package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	doorlock "github.com/ZaparooProject/go-doorlock"
)

// Store is byte-addressed non-volatile memory. Implementations report
// transient failures as errors; every operation is retried by the caller.
type Store interface {
	ReadByteAt(addr uint16) (byte, error)
	WriteByteAt(addr uint16, b byte) error
}

// passwordStore applies the persistence access policy: every byte
// operation is retried under the configured policy, and consecutive
// operations are spaced by the store's write-cycle delay.
type passwordStore struct {
	store  Store
	retry  *doorlock.RetryConfig
	cfg    *Config
	delay  time.Duration
	reads  int
	writes int
}

func newPasswordStore(store Store, cfg *Config) *passwordStore {
	return &passwordStore{
		store: store,
		retry: cfg.storeRetry(),
		cfg:   cfg,
		delay: cfg.StoreByteDelay,
	}
}

func (p *passwordStore) readByte(ctx context.Context, addr uint16) (byte, error) {
	var value byte
	attempts := 0
	err := doorlock.RetryWithConfig(ctx, p.retry, func() error {
		attempts++
		b, err := p.store.ReadByteAt(addr)
		if err != nil {
			return storeFailure(doorlock.NewStoreReadError(addr, err), err)
		}
		value = b
		return nil
	})
	p.reads += attempts
	if err != nil {
		return 0, p.unavailable(ctx, err)
	}
	if attempts > 1 {
		doorlock.Debugf("store: read 0x%03X succeeded after %d attempts", addr, attempts)
	}
	return value, nil
}

func (p *passwordStore) writeByte(ctx context.Context, addr uint16, b byte) error {
	attempts := 0
	err := doorlock.RetryWithConfig(ctx, p.retry, func() error {
		attempts++
		if err := p.store.WriteByteAt(addr, b); err != nil {
			return storeFailure(doorlock.NewStoreWriteError(addr, err), err)
		}
		return nil
	})
	p.writes += attempts
	if err != nil {
		return p.unavailable(ctx, err)
	}
	if attempts > 1 {
		doorlock.Debugf("store: write 0x%03X succeeded after %d attempts", addr, attempts)
	}
	return nil
}

// storeFailure keeps address errors permanent and makes everything else
// retryable.
func storeFailure(wrapped *doorlock.StoreError, cause error) error {
	var se *doorlock.StoreError
	if errors.As(cause, &se) || errors.Is(cause, doorlock.ErrStoreAddress) {
		return cause
	}
	return wrapped
}

func (p *passwordStore) unavailable(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %w", doorlock.ErrStoreUnavailable, err)
}

func (p *passwordStore) pause(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *passwordStore) provisioned(ctx context.Context) (bool, error) {
	b, err := p.readByte(ctx, p.cfg.FirstRunAddress)
	if err != nil {
		return false, err
	}
	return b == p.cfg.ProvisionedMarker, nil
}

func (p *passwordStore) markProvisioned(ctx context.Context) error {
	return p.writeByte(ctx, p.cfg.FirstRunAddress, p.cfg.ProvisionedMarker)
}

func (p *passwordStore) load(ctx context.Context) ([]byte, error) {
	password := make([]byte, p.cfg.PasswordLength)
	for i := range password {
		b, err := p.readByte(ctx, p.cfg.PasswordAddress+uint16(i))
		if err != nil {
			return nil, err
		}
		password[i] = b
		if err := p.pause(ctx); err != nil {
			return nil, err
		}
	}
	return password, nil
}

func (p *passwordStore) save(ctx context.Context, password []byte) error {
	for i, b := range password {
		if err := p.writeByte(ctx, p.cfg.PasswordAddress+uint16(i), b); err != nil {
			return err
		}
		if err := p.pause(ctx); err != nil {
			return err
		}
	}
	return nil
}
