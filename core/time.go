// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"sync"
	"time"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	var interval time.Duration
	if cfg.FramesPerSecond <= 0 {
		interval = time.Nanosecond
	} else {
		interval = time.Second / time.Duration(cfg.FramesPerSecond)
	}
	pollDelay := time.Duration(cfg.EventPollDelay) * time.Millisecond
	if pollDelay <= 0 {
		pollDelay = time.Millisecond
	}

	return &Time{
		fps:            cfg.FramesPerSecond,
		fpsTicker:      time.NewTicker(interval),
		eventPollDelay: cfg.EventPollDelay,
		eventTicker:    time.NewTicker(pollDelay),
		now:            time.Now,
	}
}

// Time contains all the time services and tickers
type Time struct {
	fps       int
	fpsTicker *time.Ticker

	eventPollDelay int
	eventTicker    *time.Ticker

	now func() time.Time

	mu       sync.Mutex
	last     time.Time
	delta    time.Duration
	frames   int
	window   time.Time
	measured float64
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// FpsTicker gets the initialized fps ticker
func (t *Time) FpsTicker() *time.Ticker {
	return t.fpsTicker
}

// EventTicker gets the initialized event ticker for the event loop
func (t *Time) EventTicker() *time.Ticker {
	return t.eventTicker
}

// EventPollDelay returns the event polling interval in milliseconds.
func (t *Time) EventPollDelay() int {
	return t.eventPollDelay
}

// Tick marks the start of a frame and returns the time since the
// previous one. The first tick returns zero.
func (t *Time) Tick() time.Duration {
	return t.tickAt(t.now())
}

func (t *Time) tickAt(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last.IsZero() {
		t.last, t.window = now, now
		return 0
	}
	t.delta = now.Sub(t.last)
	t.last = now
	t.frames++
	if elapsed := now.Sub(t.window); elapsed >= time.Second {
		t.measured = float64(t.frames) / elapsed.Seconds()
		t.frames = 0
		t.window = now
	}
	return t.delta
}

// FrameDelta returns the duration of the last frame.
func (t *Time) FrameDelta() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delta
}

// MeasuredFps returns the frame rate over the last full second.
func (t *Time) MeasuredFps() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.measured
}

// Stop stops the tickers.
func (t *Time) Stop() {
	t.fpsTicker.Stop()
	t.eventTicker.Stop()
}
