package collapsible

import (
	"fmt"

	"github.com/matzehuels/solutionmap/pkg/frame"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
)

// Diagonal returns the horizontal cubic curve from s to t, both given as
// (breadth, depth) pairs.
func Diagonal(s, t [2]float64) string {
	mid := (s[1] + t[1]) / 2
	return fmt.Sprintf("M%g,%gC%g,%g %g,%g %g,%g", s[1], s[0], mid, s[0], mid, t[0], t[1], t[0])
}

// Frame snapshots the diagram's current animated state. Elements appear in
// the order they were first drawn.
func (d *Diagram) Frame() frame.Tree {
	f := frame.Tree{
		Width:      d.container.Width,
		Height:     d.container.Height,
		TranslateX: d.container.TranslateX,
		TranslateY: d.container.TranslateY,
		Busy:       d.busy,
		Nodes:      make([]frame.TreeNode, 0, len(d.nodes)),
		Links:      make([]frame.TreeLink, 0, len(d.links)),
	}
	if d.focus != nil {
		f.Focus = d.focus.token
	}
	for _, e := range d.nodes {
		n := e.node
		path := make([]*hierarchy.Node, 0, n.Depth+1)
		for _, p := range n.Path() {
			path = append(path, p.Data)
		}
		f.Nodes = append(f.Nodes, frame.TreeNode{
			Token:   n.token,
			Name:    n.Name(),
			Title:   d.opts.Title(path),
			Lines:   SplitLabel(d.opts.Label(n.Data), d.opts.MaxLabelWords),
			X:       e.pos[0],
			Y:       e.pos[1],
			Depth:   n.Depth,
			Radius:  e.radius,
			Opacity: e.opacity,
			State:   stateOf(n),
			Exiting: e.exiting,
		})
	}
	for _, l := range d.links {
		f.Links = append(f.Links, frame.TreeLink{
			Token:   l.token,
			Source:  l.src,
			Target:  l.tgt,
			Path:    Diagonal(l.src, l.tgt),
			Opacity: l.opacity,
			Exiting: l.exiting,
		})
	}
	return f
}

func stateOf(n *Node) string {
	switch {
	case !n.HasChildren():
		return frame.StateLeaf
	case n.state == Expanded:
		return frame.StateExpanded
	default:
		return frame.StateCollapsed
	}
}
