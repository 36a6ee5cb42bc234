package layout

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/matzehuels/solutionmap/pkg/hierarchy"
)

func kids(n *hierarchy.Node) []*hierarchy.Node { return n.Children }

func node(name string, children ...*hierarchy.Node) *hierarchy.Node {
	return &hierarchy.Node{Name: name, Children: children}
}

func byName(p *Placement[*hierarchy.Node]) map[string]*Point[*hierarchy.Node] {
	out := make(map[string]*Point[*hierarchy.Node])
	for _, pt := range p.Points {
		out[pt.Node.Name] = pt
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestTidySingleNode(t *testing.T) {
	p := Tidy(node("root"), kids, DefaultTidyOptions())
	if len(p.Points) != 1 {
		t.Fatalf("got %d points", len(p.Points))
	}
	if p.Root.X != 0 || p.Root.Y != DefaultRootOffset {
		t.Errorf("root at (%v, %v), want (0, %v)", p.Root.X, p.Root.Y, DefaultRootOffset)
	}
}

func TestTidySiblings(t *testing.T) {
	p := Tidy(node("root", node("a"), node("b"), node("c")), kids, DefaultTidyOptions())
	pts := byName(p)

	for name, want := range map[string]float64{"a": -52, "b": 0, "c": 52, "root": 0} {
		if !near(pts[name].X, want) {
			t.Errorf("%s.X = %v, want %v", name, pts[name].X, want)
		}
	}
	if pts["a"].Y != DefaultDepthSpacing {
		t.Errorf("depth 1 Y = %v, want %v", pts["a"].Y, DefaultDepthSpacing)
	}
}

func TestTidyCousinsSeparatedWider(t *testing.T) {
	root := node("root",
		node("A", node("a1"), node("a2")),
		node("B", node("b1")),
	)
	pts := byName(Tidy(root, kids, DefaultTidyOptions()))

	if gap := pts["a2"].X - pts["a1"].X; !near(gap, 1.3*DefaultNodeBreadth) {
		t.Errorf("sibling gap = %v, want %v", gap, 1.3*DefaultNodeBreadth)
	}
	if gap := pts["b1"].X - pts["a2"].X; !near(gap, 2.0*DefaultNodeBreadth) {
		t.Errorf("cousin gap = %v, want %v", gap, 2.0*DefaultNodeBreadth)
	}
	if mid := (pts["a1"].X + pts["a2"].X) / 2; !near(pts["A"].X, mid) {
		t.Errorf("A.X = %v, want centred at %v", pts["A"].X, mid)
	}
	if !near(pts["root"].X, 0) {
		t.Errorf("root.X = %v, want 0", pts["root"].X)
	}
	if pts["a1"].Y != 2*DefaultDepthSpacing {
		t.Errorf("depth 2 Y = %v", pts["a1"].Y)
	}
}

func TestTidyCustomOptions(t *testing.T) {
	opts := TidyOptions{
		NodeSize:     [2]float64{10, 100},
		Separation:   SiblingSeparation(1, 1),
		DepthSpacing: -1,
	}
	pts := byName(Tidy(node("r", node("a"), node("b")), kids, opts))
	if !near(pts["b"].X-pts["a"].X, 10) {
		t.Errorf("gap = %v, want 10", pts["b"].X-pts["a"].X)
	}
	if pts["a"].Y != 100 || pts["r"].Y != 0 {
		t.Errorf("depth falls back to node size: got %v and %v", pts["a"].Y, pts["r"].Y)
	}
}

func TestTidyChildrenFilter(t *testing.T) {
	hidden := node("hidden")
	root := node("root", node("a", hidden), node("b"))
	only := func(n *hierarchy.Node) []*hierarchy.Node {
		if n.Name == "a" {
			return nil
		}
		return n.Children
	}
	p := Tidy(root, only, DefaultTidyOptions())
	if len(p.Points) != 3 {
		t.Errorf("got %d points, want 3", len(p.Points))
	}
	for _, pt := range p.Points {
		if pt.Node == hidden {
			t.Error("filtered child was placed")
		}
	}
	if len(p.Links()) != 2 {
		t.Errorf("got %d links, want 2", len(p.Links()))
	}
}

func TestTidyBounds(t *testing.T) {
	p := Tidy(node("root", node("a"), node("b", node("c"))), kids, DefaultTidyOptions())
	b := p.Bounds()
	if b.MinY != DefaultRootOffset || b.MaxY != 2*DefaultDepthSpacing {
		t.Errorf("depth bounds = [%v, %v]", b.MinY, b.MaxY)
	}
	if b.Width() <= 0 || !near(b.Depth(), 2*DefaultDepthSpacing-DefaultRootOffset) {
		t.Errorf("extent = %v x %v", b.Width(), b.Depth())
	}
	if (&Placement[int]{}).Bounds() != (Bounds{}) {
		t.Error("empty placement should have zero bounds")
	}
}

// TestTidyInvariantsRandomized checks that no two nodes on the same level
// are closer than the separation allows and that parents are centred over
// their children.
func TestTidyInvariantsRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	opts := DefaultTidyOptions()
	for iter := 0; iter < 100; iter++ {
		root := randomTree(rng, 0, 5)
		p := Tidy(root, kids, opts)

		levels := make(map[int][]*Point[*hierarchy.Node])
		for _, pt := range p.Points {
			levels[pt.Depth] = append(levels[pt.Depth], pt)
			if n := len(pt.Children); n > 0 {
				mid := (pt.Children[0].X + pt.Children[n-1].X) / 2
				if !near(pt.X, mid) {
					t.Fatalf("iter %d: %s at %v, children centre %v", iter, pt.Node.Name, pt.X, mid)
				}
			}
		}
		for depth, pts := range levels {
			sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
			for i := 1; i < len(pts); i++ {
				a, b := pts[i-1], pts[i]
				minGap := opts.Separation(a.Parent == b.Parent) * opts.NodeSize[0]
				if b.X-a.X < minGap-1e-6 {
					t.Fatalf("iter %d depth %d: %s and %s only %v apart, want >= %v",
						iter, depth, a.Node.Name, b.Node.Name, b.X-a.X, minGap)
				}
			}
		}
	}
}

func randomTree(rng *rand.Rand, depth, maxDepth int) *hierarchy.Node {
	n := node(fmt.Sprintf("n%d-%d", depth, rng.Int()))
	if depth >= maxDepth {
		return n
	}
	k := rng.Intn(4)
	if depth == 0 {
		k++
	}
	for i := 0; i < k; i++ {
		n.Children = append(n.Children, randomTree(rng, depth+1, maxDepth))
	}
	return n
}

func BenchmarkTidy(b *testing.B) {
	root := randomTree(rand.New(rand.NewSource(3)), 0, 7)
	opts := DefaultTidyOptions()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Tidy(root, kids, opts)
	}
}
