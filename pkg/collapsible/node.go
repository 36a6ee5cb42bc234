package collapsible

import (
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
)

// State is a node's expansion state.
type State uint8

const (
	// Collapsed nodes keep their children but do not show them.
	Collapsed State = iota
	// Expanded nodes show their children.
	Expanded
)

func (s State) String() string {
	if s == Expanded {
		return "expanded"
	}
	return "collapsed"
}

// Node wraps one hierarchy node with diagram state. The child slice is
// owned by the node in both states; only State decides whether it is
// shown.
type Node struct {
	Data   *hierarchy.Node
	Parent *Node
	Depth  int

	state    State
	children []*Node
	token    string

	// X is the breadth position and Y the depth position of the most
	// recent layout. X0, Y0 are where the node was before it; they are
	// the animation source.
	X, Y   float64
	X0, Y0 float64
}

func wrap(n *hierarchy.Node, parent *Node, depth int) *Node {
	w := &Node{Data: n, Parent: parent, Depth: depth}
	if len(n.Children) > 0 {
		w.children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			w.children[i] = wrap(c, w, depth+1)
		}
	}
	return w
}

// Name returns the underlying node's name.
func (n *Node) Name() string { return n.Data.Name }

// Token returns the identity token, or "" if the node has never been shown.
func (n *Node) Token() string { return n.token }

// State returns the expansion state.
func (n *Node) State() State { return n.state }

// HasChildren reports whether the node has children in either state.
func (n *Node) HasChildren() bool { return len(n.children) > 0 }

// Children returns every child regardless of state.
func (n *Node) Children() []*Node { return n.children }

// Visible returns the shown children: all of them when expanded, none
// when collapsed.
func (n *Node) Visible() []*Node {
	if n.state == Expanded {
		return n.children
	}
	return nil
}

// Stashed returns the children kept out of view.
func (n *Node) Stashed() []*Node {
	if n.state == Collapsed {
		return n.children
	}
	return nil
}

// toggle flips the state of a node with children and reports whether
// anything changed.
func (n *Node) toggle() bool {
	if !n.HasChildren() {
		return false
	}
	if n.state == Expanded {
		n.state = Collapsed
	} else {
		n.state = Expanded
	}
	return true
}

// Path returns the nodes from the root down to n.
func (n *Node) Path() []*Node {
	var out []*Node
	for a := n; a != nil; a = a.Parent {
		out = append([]*Node{a}, out...)
	}
	return out
}

func visibleChildren(n *Node) []*Node { return n.Visible() }

func walkAll(n *Node, fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		walkAll(c, fn)
	}
}
