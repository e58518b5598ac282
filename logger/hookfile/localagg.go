/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package hookfile

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosedResources is returned by a writeAggregator once it has been
// closed; the caller (hkf.Write) uses it to detect that the underlying file
// needs to be reopened through setAgg.
var ErrClosedResources = errors.New("hookfile: aggregator closed")

// aggConfig mirrors the subset of the external aggregator's configuration
// this package actually exercises: a periodic sync callback and the write
// function that lands bytes on disk.
type aggConfig struct {
	SyncTimer time.Duration
	SyncFct   func(ctx context.Context)
	FctWriter func(p []byte) (int, error)
}

// writeAggregator serializes writes to one open file descriptor behind a
// mutex and runs the configured sync callback on a ticker, replacing the
// channel-based design of the external aggregator package with a minimal
// equivalent scoped to what the file hook needs.
type writeAggregator struct {
	mu     sync.Mutex
	cfg    aggConfig
	closed bool
	cancel context.CancelFunc
	onErr  func(msg string, err ...error)
}

func newWriteAggregator(_ context.Context, cfg aggConfig) (*writeAggregator, error) {
	return &writeAggregator{cfg: cfg}, nil
}

func (a *writeAggregator) SetLoggerError(fct func(msg string, err ...error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onErr = fct
}

func (a *writeAggregator) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosedResources
	}
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	if a.cfg.SyncTimer > 0 && a.cfg.SyncFct != nil {
		go func() {
			t := time.NewTicker(a.cfg.SyncTimer)
			defer t.Stop()
			for {
				select {
				case <-runCtx.Done():
					return
				case <-t.C:
					a.cfg.SyncFct(runCtx)
				}
			}
		}()
	}

	return nil
}

func (a *writeAggregator) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0, ErrClosedResources
	}

	return a.cfg.FctWriter(p)
}

func (a *writeAggregator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}

	a.closed = true
	if a.cancel != nil {
		a.cancel()
	}

	return nil
}
