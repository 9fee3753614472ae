// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance is called. Tickers registered on the fake clock
// fire during Advance, once per elapsed interval, in deadline order.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for testing. Time advances only
// when Advance is called.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	tickers []*fakeTicker
}

type fakeTicker struct {
	deadline time.Time
	interval time.Duration
	channel  chan time.Time
	stopped  bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NewTicker returns a Ticker that fires when Advance moves the clock
// past each interval boundary. Panics if d <= 0, matching
// time.NewTicker.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ticker := &fakeTicker{
		deadline: c.current.Add(d),
		interval: d,
		channel:  make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, ticker)

	return &Ticker{
		C: ticker.channel,
		stopFunc: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			ticker.stopped = true
		},
	}
}

// Advance moves the fake time forward by d and fires any tickers
// whose deadlines fall within the advanced window. A ticker that
// falls multiple intervals behind fires at most once per Advance for
// each elapsed interval, but drops ticks its consumer has not drained
// (capacity-1 channel, matching time.Ticker).
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.current.Add(d)
	for _, ticker := range c.tickers {
		for !ticker.stopped && !ticker.deadline.After(target) {
			select {
			case ticker.channel <- ticker.deadline:
			default:
			}
			ticker.deadline = ticker.deadline.Add(ticker.interval)
		}
	}
	c.current = target

	// Drop stopped tickers so long-lived fake clocks don't
	// accumulate dead entries.
	active := c.tickers[:0]
	for _, ticker := range c.tickers {
		if !ticker.stopped {
			active = append(active, ticker)
		}
	}
	c.tickers = active
}
