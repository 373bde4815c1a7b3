// Package ptime provides the scheduler's time seam: a tiny ticker
// abstraction that can be swapped for a fake in tests, the same way the
// teacher's pkg/time exposes a swappable time.After var.
package ptime

import "time"

// Ticker is the subset of *time.Ticker the scheduler depends on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Source constructs tickers. The default Source wraps time.NewTicker;
// tests substitute a fake that fires on demand.
type Source interface {
	NewTicker(initialDelay, interval time.Duration) Ticker
}

// Real is the production Source, backed by the standard library.
var Real Source = realSource{}

type realSource struct{}

func (realSource) NewTicker(initialDelay, interval time.Duration) Ticker {
	return newRealTicker(initialDelay, interval)
}

// realTicker fires once after initialDelay, then every interval, matching
// the source's "fire on startup, then on schedule" semantics (spec.md §4.1:
// "initial fire ~1 ms after init").
type realTicker struct {
	c      chan time.Time
	stop   chan struct{}
	ticker *time.Ticker
}

func newRealTicker(initialDelay, interval time.Duration) *realTicker {
	t := &realTicker{
		c:    make(chan time.Time, 1),
		stop: make(chan struct{}),
	}
	go t.run(initialDelay, interval)
	return t
}

func (t *realTicker) run(initialDelay, interval time.Duration) {
	first := time.NewTimer(initialDelay)
	defer first.Stop()

	select {
	case now := <-first.C:
		t.emit(now)
	case <-t.stop:
		return
	}

	t.ticker = time.NewTicker(interval)
	defer t.ticker.Stop()

	for {
		select {
		case now := <-t.ticker.C:
			t.emit(now)
		case <-t.stop:
			return
		}
	}
}

func (t *realTicker) emit(now time.Time) {
	select {
	case t.c <- now:
	default:
		// scheduler hasn't drained the previous tick yet; drop, the next
		// tick will still arrive on schedule.
	}
}

func (t *realTicker) C() <-chan time.Time { return t.c }

func (t *realTicker) Stop() {
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
}
