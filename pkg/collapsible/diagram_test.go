package collapsible

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
)

func seqTokens() func() string {
	i := 0
	return func() string {
		i++
		return fmt.Sprintf("t%d", i)
	}
}

func h(name string, children ...*hierarchy.Node) *hierarchy.Node {
	return &hierarchy.Node{Name: name, Children: children}
}

func sampleRoot() *hierarchy.Node {
	return h(hierarchy.RootName,
		h("A", h("a1"), h("a2", h("a2x"))),
		h("B", h("b1")),
		h("C"),
	)
}

func newTestDiagram(t *testing.T, opts Options) *Diagram {
	t.Helper()
	if opts.Tokens == nil {
		opts.Tokens = seqTokens()
	}
	d := New(sampleRoot(), opts)
	d.Settle()
	if d.Busy() {
		t.Fatal("diagram still busy after settling")
	}
	return d
}

func visibleNames(d *Diagram) string {
	var names []string
	for _, n := range d.VisibleNodes() {
		names = append(names, n.Name())
	}
	return strings.Join(names, ",")
}

func frameNames(d *Diagram) string {
	var names []string
	for _, n := range d.Frame().Nodes {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func TestInitialState(t *testing.T) {
	d := newTestDiagram(t, Options{})

	if d.Root().State() != Expanded {
		t.Error("root should start expanded")
	}
	if got := visibleNames(d); got != "All Categories,A,B,C" {
		t.Errorf("visible = %s", got)
	}
	a := d.FindByPath("A")
	if a.State() != Collapsed || len(a.Stashed()) != 2 || a.Visible() != nil {
		t.Errorf("A state=%s stashed=%d", a.State(), len(a.Stashed()))
	}
	if a.Token() == "" {
		t.Error("visible node without token")
	}
	if tok := d.FindByPath("A", "a1").Token(); tok != "" {
		t.Errorf("hidden node already has token %q", tok)
	}
	if got := frameNames(d); got != "A,All Categories,B,C" {
		t.Errorf("frame nodes = %s", got)
	}
	if len(d.Frame().Links) != 3 {
		t.Errorf("links = %d, want 3", len(d.Frame().Links))
	}
}

func TestInitialGeometry(t *testing.T) {
	d := newTestDiagram(t, Options{})

	// Children at -52, 0, 52 on the breadth axis; root at depth 60,
	// children at 275.
	c := d.Container()
	want := Container{Width: 954, Height: 400, TranslateX: 0, TranslateY: 60 + (800-224)/2.0}
	if c != want {
		t.Errorf("container = %+v, want %+v", c, want)
	}
	for _, n := range d.Frame().Nodes {
		if n.Opacity != 1 || n.Radius != DefaultNodeRadius {
			t.Errorf("%s opacity=%v radius=%v after settling", n.Name, n.Opacity, n.Radius)
		}
	}
}

func TestTallTreeAnchorsBelowTopMargin(t *testing.T) {
	var kids []*hierarchy.Node
	for i := 0; i < 20; i++ {
		kids = append(kids, h(fmt.Sprintf("n%d", i)))
	}
	d := New(h("root", kids...), Options{Tokens: seqTokens()})
	d.Settle()

	b := d.placement.Bounds()
	treeHeight := b.MaxX - b.MinX + TreeBreadthPadding
	c := d.Container()
	if want := DefaultMargin.Top - b.MinX + TopClearance; c.TranslateY != want {
		t.Errorf("TranslateY = %v, want %v", c.TranslateY, want)
	}
	if c.Height != treeHeight+ContainerPadding {
		t.Errorf("Height = %v, want %v", c.Height, treeHeight+ContainerPadding)
	}
}

func TestToggleTwiceRestoresSubtree(t *testing.T) {
	d := newTestDiagram(t, Options{})
	a := d.FindByPath("A")
	children := append([]*Node(nil), a.Children()...)

	if res, err := d.Click(a.Token()); err != nil || res != Applied {
		t.Fatalf("expand: %v %v", res, err)
	}
	d.Settle()
	a2 := d.FindByPath("A", "a2")
	if res := d.Toggle(a2); res != Applied {
		t.Fatalf("expand a2: %v", res)
	}
	d.Settle()

	before := make(map[string]*Node)
	for _, n := range d.VisibleNodes() {
		before[n.Token()] = n
	}

	d.Toggle(a)
	d.Settle()
	if got := visibleNames(d); got != "All Categories,A,B,C" {
		t.Fatalf("after collapse visible = %s", got)
	}
	d.Toggle(a)
	d.Settle()

	after := make(map[string]*Node)
	for _, n := range d.VisibleNodes() {
		after[n.Token()] = n
	}
	if len(before) != len(after) {
		t.Fatalf("visible count %d -> %d", len(before), len(after))
	}
	for tok, n := range before {
		if after[tok] != n {
			t.Errorf("token %s changed identity", tok)
		}
	}
	for i, c := range a.Children() {
		if c != children[i] {
			t.Errorf("child %d replaced", i)
		}
	}
	if d.FindByPath("A", "a2").State() != Expanded {
		t.Error("nested expansion state lost")
	}
	if got := visibleNames(d); got != "All Categories,A,a1,a2,a2x,B,C" {
		t.Errorf("visible = %s", got)
	}
}

func TestLeafClickDoesNothing(t *testing.T) {
	d := newTestDiagram(t, Options{})
	before := d.Frame()

	res, err := d.Click(d.FindByPath("C").Token())
	if err != nil || res != Ignored {
		t.Fatalf("Click(leaf) = %v, %v", res, err)
	}
	if d.Busy() || !d.Timeline().Idle() {
		t.Error("leaf click started a re-layout")
	}
	if after := d.Frame(); after.Height != before.Height || len(after.Nodes) != len(before.Nodes) {
		t.Error("leaf click changed the frame")
	}
}

func TestClicksWhileBusyAreDropped(t *testing.T) {
	d := newTestDiagram(t, Options{})
	a, b := d.FindByPath("A"), d.FindByPath("B")

	if res := d.Toggle(a); res != Applied {
		t.Fatalf("first click = %v", res)
	}
	if !d.Busy() {
		t.Fatal("not busy after click")
	}
	if res := d.Toggle(b); res != Dropped {
		t.Errorf("second click = %v, want dropped", res)
	}
	if b.State() != Collapsed {
		t.Error("dropped click changed state")
	}

	d.Timeline().Advance(DefaultDuration - time.Millisecond)
	if !d.Busy() {
		t.Error("busy cleared before the container transition ended")
	}
	d.Timeline().Advance(time.Millisecond)
	if d.Busy() {
		t.Error("still busy after the container transition ended")
	}
	if res := d.Toggle(b); res != Applied {
		t.Errorf("click after animation = %v", res)
	}
}

func TestBusyIsPerDiagram(t *testing.T) {
	d1 := newTestDiagram(t, Options{})
	d2 := newTestDiagram(t, Options{})

	d1.Toggle(d1.FindByPath("A"))
	if d2.Busy() {
		t.Fatal("busy leaked across diagrams")
	}
	if res := d2.Toggle(d2.FindByPath("A")); res != Applied {
		t.Errorf("independent diagram click = %v", res)
	}
}

func TestEnterAndExitOrigins(t *testing.T) {
	d := newTestDiagram(t, Options{})
	a := d.FindByPath("A")
	ax0, ay0 := a.X, a.Y

	d.Toggle(a)
	for _, n := range d.Frame().Nodes {
		if n.Name == "a1" {
			if n.X != ax0 || n.Y != ay0 || n.Opacity != 0 || n.Radius != 0 {
				t.Errorf("entering a1 at (%v,%v) op=%v, want (%v,%v) op=0", n.X, n.Y, n.Opacity, ax0, ay0)
			}
		}
	}
	for _, l := range d.Frame().Links {
		if l.Token == d.FindByPath("A", "a1").Token() && (l.Source != [2]float64{ax0, ay0} || l.Opacity != 0) {
			t.Errorf("entering link %+v", l)
		}
	}
	d.Settle()
	if a.X0 != a.X || a.Y0 != a.Y {
		t.Error("destination did not become source")
	}

	a1 := d.FindByPath("A", "a1")
	a1tok := a1.Token()
	d.Toggle(a)
	d.Timeline().Advance(DefaultDuration / 2)
	var exiting bool
	for _, n := range d.Frame().Nodes {
		if n.Token == a1tok {
			exiting = n.Exiting
		}
	}
	if !exiting {
		t.Error("a1 should be exiting mid-transition")
	}
	if _, ok := d.Lookup(a1tok); ok {
		t.Error("exiting node should not be clickable")
	}
	d.Settle()

	for _, n := range d.Frame().Nodes {
		if n.Token == a1tok {
			t.Error("exited node still drawn")
		}
	}
	if a1.Token() != a1tok {
		t.Error("token reassigned")
	}
}

func TestExitMovesToSourceNewPosition(t *testing.T) {
	d := newTestDiagram(t, Options{})
	a := d.FindByPath("A")
	d.Toggle(a)
	d.Settle()
	a1 := d.FindByPath("A", "a1").Token()

	d.Toggle(a)
	d.Timeline().Advance(DefaultDuration - time.Millisecond)
	for _, n := range d.Frame().Nodes {
		if n.Token == a1 {
			if math.Abs(n.X-a.X) > 1 || math.Abs(n.Y-a.Y) > 1 {
				t.Errorf("a1 heading to (%v,%v), want A at (%v,%v)", n.X, n.Y, a.X, a.Y)
			}
		}
	}
}

func TestClickUnknownToken(t *testing.T) {
	d := newTestDiagram(t, Options{})
	_, err := d.Click("nope")
	if !errs.Is(err, errs.ErrCodeNodeNotFound) {
		t.Errorf("error = %v", err)
	}
	_, err = d.Click(d.FindByPath("A", "a1").Token())
	if err == nil {
		t.Error("hidden node should not be clickable")
	}
}

func TestExpandAndCollapseAll(t *testing.T) {
	d := newTestDiagram(t, Options{})
	if res := d.ExpandAll(); res != Applied {
		t.Fatalf("ExpandAll = %v", res)
	}
	d.Settle()
	if got := len(d.VisibleNodes()); got != 8 {
		t.Errorf("visible after ExpandAll = %d, want 8", got)
	}
	if res := d.ExpandAll(); res != Ignored {
		t.Errorf("second ExpandAll = %v", res)
	}
	d.CollapseAll()
	d.Settle()
	if got := visibleNames(d); got != "All Categories,A,B,C" {
		t.Errorf("visible after CollapseAll = %s", got)
	}
}

func TestTransitionEndCallback(t *testing.T) {
	var got []time.Duration
	d := newTestDiagram(t, Options{OnTransitionEnd: func(d time.Duration) { got = append(got, d) }})
	d.Toggle(d.FindByPath("A"))
	d.Settle()
	if len(got) != 2 || got[1] != DefaultDuration {
		t.Errorf("transition ends = %v", got)
	}
}

func TestScrollToClickedNode(t *testing.T) {
	window := &Pane{Overflow: true, ContentWidth: 5000, ContentHeight: 5000, ViewWidth: 800, ViewHeight: 600}
	outer := &Pane{Outer: window, Overflow: true, ContentWidth: 5000, ContentHeight: 5000,
		ViewWidth: 500, ViewHeight: 500, ScrollX: 1000, ScrollY: 1000}
	inner := &Pane{Outer: outer, ContentWidth: 5000, ContentHeight: 5000, ViewWidth: 100, ViewHeight: 100}

	d := newTestDiagram(t, Options{Host: inner, Window: window})
	b := d.FindByPath("B")
	d.Toggle(b)

	d.Timeline().Advance(DefaultDuration)
	if outer.ScrollX != 1000 {
		t.Fatal("scrolled before the delay elapsed")
	}
	d.Settle()

	x, y := d.SurfacePosition(b)
	wantX := clamp(x-250, 0, 4500)
	wantY := clamp(y-250, 0, 4500)
	if outer.ScrollX != wantX || outer.ScrollY != wantY {
		t.Errorf("outer scroll = (%v,%v), want (%v,%v)", outer.ScrollX, outer.ScrollY, wantX, wantY)
	}
	if inner.ScrollX != 0 || window.ScrollX != 0 {
		t.Error("wrong container scrolled")
	}
}

func TestScrollFallsBackToWindow(t *testing.T) {
	window := &Pane{Overflow: true, ContentWidth: 5000, ContentHeight: 5000, ViewWidth: 100, ViewHeight: 100}
	d := newTestDiagram(t, Options{Host: &Pane{}, Window: window})
	d.Toggle(d.FindByPath("A"))
	d.Settle()
	if window.ScrollX == 0 && window.ScrollY == 0 {
		t.Error("window did not scroll")
	}
}

func TestScrollWithoutContainers(t *testing.T) {
	d := newTestDiagram(t, Options{})
	d.Toggle(d.FindByPath("A"))
	d.Settle()
	if FindScrollable(nil, nil) != nil {
		t.Error("FindScrollable(nil, nil) should be nil")
	}
}
