package collapsible

import (
	"math"
	"time"

	"github.com/matzehuels/solutionmap/pkg/anim"
	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/layout"
)

// ClickResult tells what a click did.
type ClickResult uint8

const (
	// Applied means the node was toggled and a re-layout started.
	Applied ClickResult = iota
	// Ignored means the node has no children; nothing happened.
	Ignored
	// Dropped means a previous re-layout is still animating.
	Dropped
)

func (r ClickResult) String() string {
	switch r {
	case Applied:
		return "applied"
	case Ignored:
		return "ignored"
	default:
		return "dropped"
	}
}

// Container is the surface size and the offset of the drawing inside it.
type Container struct {
	Width, Height          float64
	TranslateX, TranslateY float64
}

// point is an animated (breadth, depth) position.
type point = [2]float64

type nodeElem struct {
	node    *Node
	exiting bool

	pos, from, to                point
	opacity, fromOp, toOp        float64
	radius, fromRadius, toRadius float64
}

type linkElem struct {
	token   string
	exiting bool

	src, tgt              point
	fromSrc, fromTgt      point
	toSrc, toTgt          point
	opacity, fromOp, toOp float64
}

// Diagram is one collapsible tree instance. It is not safe for concurrent
// use; callers serialize clicks and timeline steps.
type Diagram struct {
	opts Options
	tl   *anim.Timeline
	root *Node

	busy      bool
	container Container
	target    Container

	nodes  []*nodeElem
	byTok  map[string]*nodeElem
	links  []*linkElem
	linkBy map[string]*linkElem

	placement *layout.Placement[*Node]
	focus     *Node
}

// New wraps root in a diagram, expands the root and runs the initial
// layout. The initial layout animates like any other; advance the
// timeline or call [Diagram.Settle] before the first click.
func New(root *hierarchy.Node, opts Options) *Diagram {
	opts.SetDefaults()
	d := &Diagram{
		opts:   opts,
		tl:     opts.Timeline,
		root:   wrap(root, nil, 0),
		byTok:  make(map[string]*nodeElem),
		linkBy: make(map[string]*linkElem),
	}
	d.root.state = Expanded
	d.container = Container{Width: opts.Width, Height: opts.Height}
	d.update(d.root)
	return d
}

// Root returns the wrapped root.
func (d *Diagram) Root() *Node { return d.root }

// Timeline returns the timeline driving the diagram.
func (d *Diagram) Timeline() *anim.Timeline { return d.tl }

// Busy reports whether a re-layout is still animating.
func (d *Diagram) Busy() bool { return d.busy }

// Container returns the current, possibly mid-animation, container.
func (d *Diagram) Container() Container { return d.container }

// TargetContainer returns the container the current animation ends at.
func (d *Diagram) TargetContainer() Container { return d.target }

// Focus returns the most recently toggled node, or nil.
func (d *Diagram) Focus() *Node { return d.focus }

// Options returns the effective options.
func (d *Diagram) Options() Options { return d.opts }

// Lookup returns the visible node with the given token.
func (d *Diagram) Lookup(token string) (*Node, bool) {
	e, ok := d.byTok[token]
	if !ok || e.exiting {
		return nil, false
	}
	return e.node, true
}

// FindByPath follows child names from the root, through collapsed nodes
// too, and returns the node at the end, or nil.
func (d *Diagram) FindByPath(names ...string) *Node {
	cur := d.root
	for _, name := range names {
		var next *Node
		for _, c := range cur.children {
			if c.Name() == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// VisibleNodes returns the nodes of the latest layout in preorder.
func (d *Diagram) VisibleNodes() []*Node {
	out := make([]*Node, len(d.placement.Points))
	for i, pt := range d.placement.Points {
		out[i] = pt.Node
	}
	return out
}

// Click toggles the visible node with the given token.
func (d *Diagram) Click(token string) (ClickResult, error) {
	n, ok := d.Lookup(token)
	if !ok {
		return Ignored, errs.New(errs.ErrCodeNodeNotFound, "no visible node with token %q", token)
	}
	return d.Toggle(n), nil
}

// Toggle expands or collapses n and re-lays out the tree. Childless
// nodes are ignored and clicks while busy are dropped.
func (d *Diagram) Toggle(n *Node) ClickResult {
	if !n.HasChildren() {
		return Ignored
	}
	if d.busy {
		d.opts.Logger.Debug("click dropped while animating", "node", n.Name())
		return Dropped
	}
	n.toggle()
	d.opts.Logger.Debug("toggled", "node", n.Name(), "state", n.state)
	d.update(n)
	d.focus = n
	d.tl.After(d.opts.Duration+d.opts.ScrollDelay, func() { d.scrollTo(n) })
	return Applied
}

// ExpandAll expands every node with children in one re-layout.
func (d *Diagram) ExpandAll() ClickResult { return d.setAll(Expanded) }

// CollapseAll collapses every node below the root in one re-layout.
func (d *Diagram) CollapseAll() ClickResult { return d.setAll(Collapsed) }

func (d *Diagram) setAll(s State) ClickResult {
	if d.busy {
		return Dropped
	}
	changed := false
	walkAll(d.root, func(n *Node) {
		if n == d.root || !n.HasChildren() || n.state == s {
			return
		}
		n.state = s
		changed = true
	})
	if !changed {
		return Ignored
	}
	d.update(d.root)
	return Applied
}

// Settle advances the timeline until every pending transition, including
// the scroll, has finished.
func (d *Diagram) Settle() {
	d.tl.Settle(10*time.Millisecond, d.opts.Duration+d.opts.ScrollDelay+time.Second)
}

// Geometry of the latest layout: the container size and drawing offset
// the animation ends at.
func (d *Diagram) geometry(b layout.Bounds) Container {
	o := d.opts
	treeHeight := b.MaxX - b.MinX + TreeBreadthPadding
	treeWidth := b.MaxY - b.MinY + o.Margin.Left + o.Margin.Right + TreeDepthPadding

	translateY := o.Margin.Top + (o.Height-treeHeight)/2
	if translateY <= o.Margin.Top {
		translateY = o.Margin.Top - b.MinX + TopClearance
	}
	return Container{
		Width:      math.Max(o.Width, treeWidth),
		Height:     math.Max(treeHeight+ContainerPadding, MinContainerHeight),
		TranslateX: o.Margin.Left,
		TranslateY: translateY,
	}
}

// update re-lays out the visible tree and animates every element from
// where it is to where it belongs. source is the clicked node.
func (d *Diagram) update(source *Node) {
	d.busy = true
	started := d.tl.Now()

	d.placement = layout.Tidy(d.root, visibleChildren, d.opts.Layout)
	visible := make(map[*Node]bool, len(d.placement.Points))
	for _, pt := range d.placement.Points {
		n := pt.Node
		n.X, n.Y, n.Depth = pt.X, pt.Y, pt.Depth
		if n.token == "" {
			n.token = d.opts.Tokens()
		}
		visible[n] = true
	}

	d.target = d.geometry(d.placement.Bounds())
	d.container.TranslateX, d.container.TranslateY = d.target.TranslateX, d.target.TranslateY

	enterAt := point{source.X0, source.Y0}
	exitAt := point{source.X, source.Y}
	d.joinNodes(visible, enterAt, exitAt)
	d.joinLinks(enterAt, exitAt)

	d.opts.Logger.Debug("relayout",
		"source", source.Name(), "visible", len(d.placement.Points),
		"width", d.target.Width, "height", d.target.Height)

	d.tl.Start(d.opts.Duration, anim.CubicInOut, d.tickElements, func() {
		d.finishElements()
	})

	fromW, fromH := d.container.Width, d.container.Height
	to := d.target
	d.tl.Start(d.opts.Duration, anim.CubicInOut, func(t float64) {
		d.container.Width = anim.Lerp(fromW, to.Width, t)
		d.container.Height = anim.Lerp(fromH, to.Height, t)
	}, func() {
		d.busy = false
		if d.opts.OnTransitionEnd != nil {
			d.opts.OnTransitionEnd(d.tl.Now() - started)
		}
	})
}

func (d *Diagram) joinNodes(visible map[*Node]bool, enterAt, exitAt point) {
	for _, pt := range d.placement.Points {
		n := pt.Node
		e, ok := d.byTok[n.token]
		if !ok {
			e = &nodeElem{node: n, pos: enterAt}
			d.byTok[n.token] = e
			d.nodes = append(d.nodes, e)
		}
		e.exiting = false
		e.from, e.to = e.pos, point{n.X, n.Y}
		e.fromOp, e.toOp = e.opacity, 1
		e.fromRadius, e.toRadius = e.radius, d.opts.NodeRadius
	}
	for _, e := range d.nodes {
		if visible[e.node] {
			continue
		}
		e.exiting = true
		e.from, e.to = e.pos, exitAt
		e.fromOp, e.toOp = e.opacity, 0
		e.fromRadius, e.toRadius = e.radius, 0
	}
}

func (d *Diagram) joinLinks(enterAt, exitAt point) {
	live := make(map[string]bool)
	for _, pair := range d.placement.Links() {
		parent, child := pair[0].Node, pair[1].Node
		tok := child.token
		live[tok] = true
		l, ok := d.linkBy[tok]
		if !ok {
			l = &linkElem{token: tok, src: enterAt, tgt: enterAt}
			d.linkBy[tok] = l
			d.links = append(d.links, l)
		}
		l.exiting = false
		l.fromSrc, l.fromTgt = l.src, l.tgt
		l.toSrc, l.toTgt = point{parent.X, parent.Y}, point{child.X, child.Y}
		l.fromOp, l.toOp = l.opacity, d.opts.LinkOpacity
	}
	for _, l := range d.links {
		if live[l.token] {
			continue
		}
		l.exiting = true
		l.fromSrc, l.fromTgt = l.src, l.tgt
		l.toSrc, l.toTgt = exitAt, exitAt
		l.fromOp, l.toOp = l.opacity, 0
	}
}

func (d *Diagram) tickElements(t float64) {
	for _, e := range d.nodes {
		e.pos = anim.LerpPair(e.from, e.to, t)
		e.opacity = anim.Lerp(e.fromOp, e.toOp, t)
		e.radius = anim.Lerp(e.fromRadius, e.toRadius, t)
	}
	for _, l := range d.links {
		l.src = anim.LerpPair(l.fromSrc, l.toSrc, t)
		l.tgt = anim.LerpPair(l.fromTgt, l.toTgt, t)
		l.opacity = anim.Lerp(l.fromOp, l.toOp, t)
	}
}

// finishElements detaches exiting elements and makes every visible node's
// destination its next source.
func (d *Diagram) finishElements() {
	kept := d.nodes[:0]
	for _, e := range d.nodes {
		if e.exiting {
			delete(d.byTok, e.node.token)
			continue
		}
		kept = append(kept, e)
	}
	d.nodes = kept

	keptLinks := d.links[:0]
	for _, l := range d.links {
		if l.exiting {
			delete(d.linkBy, l.token)
			continue
		}
		keptLinks = append(keptLinks, l)
	}
	d.links = keptLinks

	for _, pt := range d.placement.Points {
		pt.Node.X0, pt.Node.Y0 = pt.Node.X, pt.Node.Y
	}
}

// SurfacePosition maps a node's layout position onto the diagram surface.
// The tree grows horizontally, so depth runs along the surface's x axis.
func (d *Diagram) SurfacePosition(n *Node) (x, y float64) {
	return d.container.TranslateX + n.Y, d.container.TranslateY + n.X
}

func (d *Diagram) scrollTo(n *Node) {
	c := FindScrollable(d.opts.Host, d.opts.Window)
	if c == nil {
		d.opts.Logger.Debug("no scroll container", "node", n.Name())
		return
	}
	x, y := d.SurfacePosition(n)
	cx, cy := c.Viewport().Center()
	c.ScrollBy(x-cx, y-cy)
}
