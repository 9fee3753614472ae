// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeNow(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := Fake(start)

	if got := fake.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want %v", got, start)
	}

	fake.Advance(90 * time.Second)
	want := start.Add(90 * time.Second)
	if got := fake.Now(); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeTickerFires(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	ticker := fake.NewTicker(time.Minute)
	defer ticker.Stop()

	select {
	case tick := <-ticker.C:
		t.Fatalf("unexpected tick before Advance: %v", tick)
	default:
	}

	fake.Advance(time.Minute)
	select {
	case <-ticker.C:
	default:
		t.Fatal("no tick after advancing one interval")
	}
}

func TestFakeTickerDropsUnconsumedTicks(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	ticker := fake.NewTicker(time.Minute)
	defer ticker.Stop()

	// Three intervals elapse with nobody draining the channel.
	// Only one tick is buffered, matching time.Ticker.
	fake.Advance(3 * time.Minute)

	ticks := 0
	for {
		select {
		case <-ticker.C:
			ticks++
			continue
		default:
		}
		break
	}
	if ticks != 1 {
		t.Errorf("buffered ticks = %d, want 1", ticks)
	}
}

func TestFakeTickerStop(t *testing.T) {
	fake := Fake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	ticker := fake.NewTicker(time.Minute)
	ticker.Stop()

	fake.Advance(5 * time.Minute)
	select {
	case tick := <-ticker.C:
		t.Fatalf("tick after Stop: %v", tick)
	default:
	}
}

func TestFakeTickerPanicsOnNonPositiveInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-positive interval")
		}
	}()
	Fake(time.Now()).NewTicker(0)
}
