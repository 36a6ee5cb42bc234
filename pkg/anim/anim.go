// Package anim schedules fixed-duration transitions on a virtual clock.
//
// A [Timeline] owns a set of transitions and a clock that only moves when
// told to. Tests and headless renderers step it with [Timeline.Advance];
// interactive front ends drive it from a ticker with [Timeline.Run] or
// from their own event loop. Nothing in this package reads the wall clock
// except Run.
//
// Each [Transition] calls its tick function with eased progress in [0, 1]
// and, once it reaches 1, its end function. Cancelled transitions stop
// ticking and never call end. End functions of transitions that finish on
// the same step run in the order the transitions were started.
//
// A Timeline is not safe for concurrent use; Run takes the lock that
// guards the state the callbacks mutate.
package anim

import (
	"context"
	"math"
	"sync"
	"time"
)

// Easing maps linear progress onto eased progress. Both are in [0, 1].
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// CubicInOut accelerates through the first half and decelerates through
// the second.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpPair interpolates two pairs component-wise.
func LerpPair(a, b [2]float64, t float64) [2]float64 {
	return [2]float64{Lerp(a[0], b[0], t), Lerp(a[1], b[1], t)}
}

// Transition is one scheduled interpolation.
type Transition struct {
	tl       *Timeline
	start    time.Duration
	duration time.Duration
	ease     Easing
	tick     func(t float64)
	end      func()

	progress  float64
	done      bool
	cancelled bool
}

// Cancel stops the transition. Its end function is not called. Cancelling
// a finished transition has no effect.
func (tr *Transition) Cancel() {
	if tr.done {
		return
	}
	tr.cancelled = true
	tr.done = true
	tr.tl.remove(tr)
}

// Done reports whether the transition has ended or was cancelled.
func (tr *Transition) Done() bool { return tr.done }

// Cancelled reports whether the transition was cancelled.
func (tr *Transition) Cancelled() bool { return tr.cancelled }

// Progress returns the eased progress reached so far.
func (tr *Transition) Progress() float64 { return tr.progress }

// Timeline is a virtual clock with scheduled transitions.
type Timeline struct {
	now    time.Duration
	active []*Transition
}

// NewTimeline returns an empty timeline at time zero.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Now returns the virtual time.
func (tl *Timeline) Now() time.Duration { return tl.now }

// Idle reports whether no transitions are pending.
func (tl *Timeline) Idle() bool { return len(tl.active) == 0 }

// Pending returns the number of pending transitions.
func (tl *Timeline) Pending() int { return len(tl.active) }

// Start schedules a transition beginning now. tick, if non-nil, is called
// once immediately with ease(0) and again on every step. end, if non-nil,
// is called once after the final tick. A nil ease means [CubicInOut].
func (tl *Timeline) Start(d time.Duration, ease Easing, tick func(t float64), end func()) *Transition {
	return tl.schedule(0, d, ease, tick, end)
}

// After schedules fn to run once delay has elapsed.
func (tl *Timeline) After(delay time.Duration, fn func()) *Transition {
	return tl.schedule(delay, 0, Linear, nil, fn)
}

func (tl *Timeline) schedule(delay, d time.Duration, ease Easing, tick func(float64), end func()) *Transition {
	if ease == nil {
		ease = CubicInOut
	}
	tr := &Transition{tl: tl, start: tl.now + delay, duration: d, ease: ease, tick: tick, end: end}
	tl.active = append(tl.active, tr)
	if delay == 0 && tick != nil {
		tick(ease(0))
	}
	return tr
}

func (tl *Timeline) remove(tr *Transition) {
	for i, t := range tl.active {
		if t == tr {
			tl.active = append(tl.active[:i], tl.active[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by d and steps every pending
// transition. Transitions started by callbacks during the step begin at
// the new time.
func (tl *Timeline) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	tl.now += d

	batch := append([]*Transition(nil), tl.active...)
	var finished []*Transition
	for _, tr := range batch {
		if tr.done || tl.now < tr.start {
			continue
		}
		p := 1.0
		if tr.duration > 0 {
			p = math.Min(1, float64(tl.now-tr.start)/float64(tr.duration))
		}
		tr.progress = tr.ease(p)
		if tr.tick != nil {
			tr.tick(tr.progress)
		}
		if p >= 1 && !tr.done {
			tr.done = true
			tl.remove(tr)
			finished = append(finished, tr)
		}
	}
	for _, tr := range finished {
		if tr.end != nil {
			tr.end()
		}
	}
}

// Settle advances until no transitions are pending, in steps of step, and
// returns the time advanced. It gives up after limit.
func (tl *Timeline) Settle(step, limit time.Duration) time.Duration {
	if step <= 0 {
		step = time.Millisecond
	}
	start := tl.now
	for !tl.Idle() && tl.now-start < limit {
		tl.Advance(step)
	}
	return tl.now - start
}

// Run advances the timeline with wall-clock time every interval until ctx
// is done. mu, if non-nil, is held around each step.
func (tl *Timeline) Run(ctx context.Context, interval time.Duration, mu sync.Locker) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if mu != nil {
				mu.Lock()
			}
			tl.Advance(now.Sub(last))
			if mu != nil {
				mu.Unlock()
			}
			last = now
		}
	}
}
