// Package pacer bounds the render loop rate and keeps the runtime clock in step
// with wall-clock time.
package pacer

import "time"

// DefaultDelay is the pause at the end of every cycle.
const DefaultDelay = 20 * time.Millisecond

// Clock is the time source of a Pacer.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the clock backed by package time.
func SystemClock() Clock { return systemClock{} }

// Pacer measures each cycle and sleeps a fixed delay at its end.
//
// The delay is always slept in full, however long the cycle took: it caps how
// often the loop polls input, it does not set an exact frame period. The elapsed
// time including the delay is fed to tick so that time-based animation follows the
// wall clock.
type Pacer struct {
	clock Clock
	delay time.Duration
	tick  func(time.Duration)
	start time.Time
	last  time.Duration
}

func New(clock Clock, delay time.Duration, tick func(time.Duration)) *Pacer {
	if clock == nil {
		clock = SystemClock()
	}
	if delay < 0 {
		delay = 0
	}
	return &Pacer{clock: clock, delay: delay, tick: tick}
}

// Begin marks the start of a cycle.
func (p *Pacer) Begin() { p.start = p.clock.Now() }

// End sleeps the delay, then feeds the cycle duration to the tick sink and returns it.
func (p *Pacer) End() time.Duration {
	if p.delay > 0 {
		p.clock.Sleep(p.delay)
	}
	elapsed := p.clock.Now().Sub(p.start)
	if elapsed < 0 {
		elapsed = 0
	}
	p.last = elapsed
	if p.tick != nil {
		p.tick(elapsed)
	}
	return elapsed
}

func (p *Pacer) Delay() time.Duration { return p.delay }

// Last returns the duration of the previous cycle.
func (p *Pacer) Last() time.Duration { return p.last }
