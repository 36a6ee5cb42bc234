package anim

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEasing(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0}, {0.5, 0.5}, {1, 1}, {0.25, 0.0625}, {0.75, 0.9375},
	}
	for _, tt := range tests {
		if got := CubicInOut(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("CubicInOut(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if Linear(0.3) != 0.3 {
		t.Error("Linear is not the identity")
	}
}

func TestLerp(t *testing.T) {
	if Lerp(10, 20, 0.25) != 12.5 {
		t.Error("Lerp")
	}
	if got := LerpPair([2]float64{0, 10}, [2]float64{10, 0}, 0.5); got != [2]float64{5, 5} {
		t.Errorf("LerpPair = %v", got)
	}
}

func TestTransitionTicksAndEnds(t *testing.T) {
	tl := NewTimeline()
	var ticks []float64
	ended := 0
	tr := tl.Start(400*time.Millisecond, Linear, func(p float64) { ticks = append(ticks, p) }, func() { ended++ })

	if len(ticks) != 1 || ticks[0] != 0 {
		t.Fatalf("Start should tick at 0, got %v", ticks)
	}
	tl.Advance(100 * time.Millisecond)
	tl.Advance(100 * time.Millisecond)
	if ended != 0 || tr.Done() {
		t.Fatal("ended early")
	}
	if tr.Progress() != 0.5 {
		t.Errorf("Progress() = %v, want 0.5", tr.Progress())
	}
	tl.Advance(time.Second)
	if ended != 1 || !tr.Done() || !tl.Idle() {
		t.Fatalf("ended=%d done=%v idle=%v", ended, tr.Done(), tl.Idle())
	}
	if last := ticks[len(ticks)-1]; last != 1 {
		t.Errorf("final tick = %v, want 1", last)
	}
	tl.Advance(time.Second)
	if ended != 1 {
		t.Error("end called twice")
	}
}

func TestCancelSuppressesEnd(t *testing.T) {
	tl := NewTimeline()
	ended := false
	ticks := 0
	tr := tl.Start(time.Second, nil, func(float64) { ticks++ }, func() { ended = true })
	tl.Advance(100 * time.Millisecond)
	tr.Cancel()
	tl.Advance(2 * time.Second)

	if ended {
		t.Error("cancelled transition called end")
	}
	if ticks != 2 {
		t.Errorf("ticks = %d, want 2", ticks)
	}
	if !tr.Cancelled() || !tr.Done() || !tl.Idle() {
		t.Error("cancel bookkeeping")
	}
	tr.Cancel()
}

func TestEndOrderFollowsStartOrder(t *testing.T) {
	tl := NewTimeline()
	var order []string
	tl.Start(500*time.Millisecond, nil, nil, func() { order = append(order, "long") })
	tl.Start(100*time.Millisecond, nil, nil, func() { order = append(order, "a") })
	tl.Start(100*time.Millisecond, nil, nil, func() { order = append(order, "b") })
	tl.Advance(time.Second)

	if got := strings.Join(order, ","); got != "long,a,b" {
		t.Errorf("end order = %s, want long,a,b", got)
	}
}

func TestAfter(t *testing.T) {
	tl := NewTimeline()
	fired := 0
	tl.After(450*time.Millisecond, func() { fired++ })
	tl.Advance(400 * time.Millisecond)
	if fired != 0 {
		t.Fatal("fired early")
	}
	tl.Advance(50 * time.Millisecond)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestCallbacksMayStartTransitions(t *testing.T) {
	tl := NewTimeline()
	var second *Transition
	tl.Start(100*time.Millisecond, nil, nil, func() {
		second = tl.Start(100*time.Millisecond, nil, nil, nil)
	})
	tl.Advance(100 * time.Millisecond)
	if second == nil || second.Done() {
		t.Fatal("chained transition missing or finished in the same step")
	}
	if d := tl.Settle(10*time.Millisecond, time.Second); d != 100*time.Millisecond {
		t.Errorf("Settle() = %v, want 100ms", d)
	}
}

func TestRun(t *testing.T) {
	tl := NewTimeline()
	var mu sync.Mutex
	done := make(chan struct{})
	mu.Lock()
	tl.Start(5*time.Millisecond, nil, nil, func() { close(done) })
	mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- tl.Run(ctx, time.Millisecond, &mu) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("transition never ended")
	}
	cancel()
	if err := <-errc; err != context.Canceled {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}
