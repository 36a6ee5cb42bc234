package zoom

import (
	"math"
	"testing"
	"time"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
)

// sample is All Categories(A(a1,a2,a3),B(b1)).
func sample() *hierarchy.Node {
	leaf := func(name string) *hierarchy.Node {
		return &hierarchy.Node{Name: name, Kind: hierarchy.KindSolution}
	}
	return &hierarchy.Node{Name: hierarchy.RootName, Kind: hierarchy.KindRoot, Children: []*hierarchy.Node{
		{Name: "B", Kind: hierarchy.KindCategory, Children: []*hierarchy.Node{leaf("b1")}},
		{Name: "A", Kind: hierarchy.KindCategory, Children: []*hierarchy.Node{leaf("a1"), leaf("a2"), leaf("a3")}},
	}}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestResultString(t *testing.T) {
	if Applied.String() != "applied" || Ignored.String() != "ignored" {
		t.Errorf("got %q, %q", Applied, Ignored)
	}
}

func TestHue(t *testing.T) {
	ic := NewIcicle(sample(), IcicleOptions{})
	p := ic.Partition()
	if got := hue(p.Root, p.Root); got != 0 {
		t.Errorf("root hue = %v, want 0", got)
	}
	// A holds three of four leaves.
	a1 := p.Cell(2)
	if got := hue(a1, p.Root); !approx(got, 0.6) {
		t.Errorf("a1 hue = %v, want 0.6", got)
	}
	if got := hue(p.Cell(1), p.Root); !approx(got, 0.6) {
		t.Errorf("A hue = %v, want 0.6", got)
	}
}

func TestClickUnknownIndex(t *testing.T) {
	ic := NewIcicle(sample(), IcicleOptions{})
	if _, err := ic.Click(99); !errs.Is(err, errs.ErrCodeNodeNotFound) {
		t.Errorf("icicle: got %v, want NOT_FOUND_NODE", err)
	}
	sb := NewSunburst(sample(), SunburstOptions{})
	if _, err := sb.Click(-1); !errs.Is(err, errs.ErrCodeNodeNotFound) {
		t.Errorf("sunburst: got %v, want NOT_FOUND_NODE", err)
	}
}

func TestSettleFinishes(t *testing.T) {
	ic := NewIcicle(sample(), IcicleOptions{Common: Common{Duration: 100 * time.Millisecond}})
	ic.Click(1)
	if !ic.Animating() {
		t.Fatal("expected a transition in flight")
	}
	ic.Settle()
	if ic.Animating() || !ic.Timeline().Idle() {
		t.Error("transition still pending after Settle")
	}
}
