package hierarchy

import (
	"fmt"
)

// Sentinel node names.
const (
	RootName          = "All Categories"
	UncategorizedName = "Uncategorized"
)

// Kind tells which record type (if any) produced a node.
type Kind uint8

const (
	KindRoot Kind = iota
	KindCategory
	KindSubcategory
	KindUncategorized
	KindSolution
)

var kindNames = [...]string{"root", "category", "subcategory", "uncategorized", "solution"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", b)
}

// Node is one named entity in the hierarchy.
type Node struct {
	Name     string  `json:"name"`
	ID       string  `json:"id,omitempty"`
	Kind     Kind    `json:"kind"`
	Value    float64 `json:"value,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Prunable reports whether n is a grouping node that may be removed when
// it ends up empty. Solutions and the root never are.
func (n *Node) Prunable() bool {
	return n.Kind != KindRoot && n.Kind != KindSolution
}

// Height returns the length of the longest downward path from n to a leaf.
func (n *Node) Height() int {
	h := 0
	for _, c := range n.Children {
		if ch := c.Height() + 1; ch > h {
			h = ch
		}
	}
	return h
}

// Walk visits n and its descendants in preorder. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	count := 0
	Walk(n, func(*Node, int) bool { count++; return true })
	return count
}

// Leaves returns the leaves under n in preorder.
func Leaves(n *Node) []*Node {
	var out []*Node
	Walk(n, func(c *Node, _ int) bool {
		if c.IsLeaf() {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Find follows child names from n and returns the node at the end of the
// path, or nil. An empty path returns n.
func Find(n *Node, path ...string) *Node {
	cur := n
	for _, name := range path {
		if cur == nil {
			return nil
		}
		var next *Node
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		cur = next
	}
	return cur
}

// Path returns the nodes from root down to target, or nil when target is
// not in the tree.
func Path(root, target *Node) []*Node {
	if root == nil {
		return nil
	}
	if root == target {
		return []*Node{root}
	}
	for _, c := range root.Children {
		if p := Path(c, target); p != nil {
			return append([]*Node{root}, p...)
		}
	}
	return nil
}

// Names maps a node path onto its names.
func Names(path []*Node) []string {
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = n.Name
	}
	return out
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Name: n.Name, ID: n.ID, Kind: n.Kind, Value: n.Value}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Equal reports whether a and b have the same names, ids, kinds, values and
// shape, with children in the same order.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.ID != b.ID || a.Kind != b.Kind || a.Value != b.Value {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
