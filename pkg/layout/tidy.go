package layout

import (
	"math"
)

// =============================================================================
// Options
// =============================================================================

// Separation returns the gap between two adjacent nodes, in multiples of
// the breadth node size. sameParent reports whether they are siblings.
type Separation func(sameParent bool) float64

// SiblingSeparation packs siblings at sibling and cousins at cousin.
func SiblingSeparation(sibling, cousin float64) Separation {
	return func(sameParent bool) float64 {
		if sameParent {
			return sibling
		}
		return cousin
	}
}

// Tidy layout defaults.
const (
	DefaultNodeBreadth       = 40.0
	DefaultNodeDepth         = 250.0
	DefaultDepthSpacing      = 275.0
	DefaultRootOffset        = 60.0
	DefaultSiblingSeparation = 1.3
	DefaultCousinSeparation  = 2.0
)

// TidyOptions configures [Tidy].
type TidyOptions struct {
	// NodeSize is the [breadth, depth] cell of one node.
	NodeSize [2]float64
	// Separation defaults to SiblingSeparation(1.3, 2.0).
	Separation Separation
	// DepthSpacing places depth d at d*DepthSpacing. Defaults to 275.
	// A negative value falls back to NodeSize[1].
	DepthSpacing float64
	// RootOffset shifts the root alone along the depth axis.
	RootOffset float64
}

// DefaultTidyOptions returns the options used by the collapsible tree.
func DefaultTidyOptions() TidyOptions {
	return TidyOptions{
		NodeSize:     [2]float64{DefaultNodeBreadth, DefaultNodeDepth},
		Separation:   SiblingSeparation(DefaultSiblingSeparation, DefaultCousinSeparation),
		DepthSpacing: DefaultDepthSpacing,
		RootOffset:   DefaultRootOffset,
	}
}

// SetDefaults fills zero-valued fields.
func (o *TidyOptions) SetDefaults() {
	if o.NodeSize[0] <= 0 {
		o.NodeSize[0] = DefaultNodeBreadth
	}
	if o.NodeSize[1] <= 0 {
		o.NodeSize[1] = DefaultNodeDepth
	}
	if o.Separation == nil {
		o.Separation = SiblingSeparation(DefaultSiblingSeparation, DefaultCousinSeparation)
	}
	if o.DepthSpacing == 0 {
		o.DepthSpacing = DefaultDepthSpacing
	}
	if o.DepthSpacing < 0 {
		o.DepthSpacing = o.NodeSize[1]
	}
}

// =============================================================================
// Result
// =============================================================================

// Point is a placed node. X runs along the breadth axis and Y along the
// depth axis; a horizontal tree draws a point at (Y, X).
type Point[T any] struct {
	Node     T
	Parent   *Point[T]
	Children []*Point[T]
	Depth    int
	X, Y     float64
}

// Placement is the output of [Tidy].
type Placement[T any] struct {
	Root *Point[T]
	// Points lists every point in preorder.
	Points []*Point[T]
}

// Bounds is an axis-aligned box over placed points.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Bounds returns the extent of all points. An empty placement has zero
// bounds.
func (p *Placement[T]) Bounds() Bounds {
	if len(p.Points) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for _, pt := range p.Points {
		b.MinX = math.Min(b.MinX, pt.X)
		b.MaxX = math.Max(b.MaxX, pt.X)
		b.MinY = math.Min(b.MinY, pt.Y)
		b.MaxY = math.Max(b.MaxY, pt.Y)
	}
	return b
}

// Width is the breadth extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Depth is the depth extent.
func (b Bounds) Depth() float64 { return b.MaxY - b.MinY }

// Links returns every parent-child pair in preorder of the child.
func (p *Placement[T]) Links() [][2]*Point[T] {
	var out [][2]*Point[T]
	for _, pt := range p.Points {
		if pt.Parent != nil {
			out = append(out, [2]*Point[T]{pt.Parent, pt})
		}
	}
	return out
}

// =============================================================================
// Algorithm
// =============================================================================

// tnode carries Buchheim's per-node working state: prelim (z), modifier
// (m), change (c), shift (s), thread (t), ancestor (a) and sibling index.
type tnode[T any] struct {
	pt       *Point[T]
	parent   *tnode[T]
	children []*tnode[T]
	acc      *tnode[T] // default ancestor for the next sibling's apportion
	a, t     *tnode[T]
	z, m     float64
	c, s     float64
	i        int
}

// Tidy places the tree rooted at root. children returns the children to
// lay out for a node, in order; returning nil makes it a leaf.
func Tidy[T any](root T, children func(T) []T, opts TidyOptions) *Placement[T] {
	opts.SetDefaults()
	sep := opts.Separation

	out := &Placement[T]{}
	top := build(root, children, nil, 0, 0, out)
	// Sentinel parent so the root has siblings and a modifier slot.
	super := &tnode[T]{children: []*tnode[T]{top}}
	super.a = super
	top.parent = super

	separation := func(a, b *tnode[T]) float64 { return sep(a.parent == b.parent) }

	var firstWalk func(v *tnode[T])
	firstWalk = func(v *tnode[T]) {
		for _, c := range v.children {
			firstWalk(c)
		}
		siblings := v.parent.children
		var w *tnode[T]
		if v.i > 0 {
			w = siblings[v.i-1]
		}
		if len(v.children) > 0 {
			executeShifts(v)
			mid := (v.children[0].z + v.children[len(v.children)-1].z) / 2
			if w != nil {
				v.z = w.z + separation(v, w)
				v.m = v.z - mid
			} else {
				v.z = mid
			}
		} else if w != nil {
			v.z = w.z + separation(v, w)
		}
		anc := v.parent.acc
		if anc == nil {
			anc = siblings[0]
		}
		v.parent.acc = apportion(v, w, anc, separation)
	}
	firstWalk(top)
	super.m = -top.z

	var secondWalk func(v *tnode[T])
	secondWalk = func(v *tnode[T]) {
		v.pt.X = (v.z + v.parent.m) * opts.NodeSize[0]
		v.pt.Y = float64(v.pt.Depth) * opts.DepthSpacing
		if v.pt.Depth == 0 {
			v.pt.Y += opts.RootOffset
		}
		v.m += v.parent.m
		for _, c := range v.children {
			secondWalk(c)
		}
	}
	secondWalk(top)

	out.Root = top.pt
	return out
}

func build[T any](n T, children func(T) []T, parent *Point[T], depth, i int, out *Placement[T]) *tnode[T] {
	pt := &Point[T]{Node: n, Parent: parent, Depth: depth}
	out.Points = append(out.Points, pt)
	v := &tnode[T]{pt: pt, i: i}
	v.a = v
	kids := children(n)
	if len(kids) > 0 {
		v.children = make([]*tnode[T], len(kids))
		pt.Children = make([]*Point[T], len(kids))
		for j, k := range kids {
			c := build(k, children, pt, depth+1, j, out)
			c.parent = v
			v.children[j] = c
			pt.Children[j] = c.pt
		}
	}
	return v
}

func nextLeft[T any](v *tnode[T]) *tnode[T] {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.t
}

func nextRight[T any](v *tnode[T]) *tnode[T] {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.t
}

func moveSubtree[T any](wm, wp *tnode[T], shift float64) {
	change := shift / float64(wp.i-wm.i)
	wp.c -= change
	wp.s += shift
	wm.c += change
	wp.z += shift
	wp.m += shift
}

func executeShifts[T any](v *tnode[T]) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.z += shift
		w.m += shift
		change += w.c
		shift += w.s + change
	}
}

func nextAncestor[T any](vim, v, ancestor *tnode[T]) *tnode[T] {
	if vim.a.parent == v.parent {
		return vim.a
	}
	return ancestor
}

// apportion merges v's subtree against its left siblings' contours and
// returns the default ancestor for the next sibling.
func apportion[T any](v, w, ancestor *tnode[T], separation func(a, b *tnode[T]) float64) *tnode[T] {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim, vom := w, v.parent.children[0]
	sip, sop := vip.m, vop.m
	sim, som := vim.m, vom.m
	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.a = v
		shift := vim.z + sim - vip.z - sip + separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.m
		sip += vip.m
		som += vom.m
		sop += vop.m
	}
	if vim != nil && nextRight(vop) == nil {
		vop.t = vim
		vop.m += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.t = vip
		vom.m += sip - som
		ancestor = v
	}
	return ancestor
}
