package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Loading records")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.SetMessage("Building hierarchy")
	time.Sleep(2 * spinnerInterval)
	s.Stop()
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Loading records") {
		t.Errorf("output %q should contain the first message", got)
	}
	if !strings.Contains(got, "Building hierarchy") {
		t.Errorf("output %q should contain the updated message", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Error("stopping should clear the line")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	s := newSpinnerTo(ctx, &out, "Waiting")
	s.Start()
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop should return after the context is cancelled")
	}
}
