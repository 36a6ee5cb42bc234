package layout

import (
	"sort"

	"github.com/matzehuels/solutionmap/pkg/hierarchy"
)

// Cell is one node of a partitioned hierarchy.
type Cell struct {
	Node     *hierarchy.Node
	Index    int // preorder position, stable for the lifetime of the partition
	Parent   *Cell
	Children []*Cell
	Depth    int
	Height   int
	Value    float64

	X0, X1 float64 // breadth interval
	Y0, Y1 float64 // depth band
}

// Ancestors returns the cells from c up to the root.
func (c *Cell) Ancestors() []*Cell {
	var out []*Cell
	for a := c; a != nil; a = a.Parent {
		out = append(out, a)
	}
	return out
}

// Path returns the cells from the root down to c.
func (c *Cell) Path() []*Cell {
	anc := c.Ancestors()
	for i, j := 0, len(anc)-1; i < j; i, j = i+1, j-1 {
		anc[i], anc[j] = anc[j], anc[i]
	}
	return anc
}

// Contains reports whether d is c or one of its descendants.
func (c *Cell) Contains(d *Cell) bool {
	for a := d; a != nil; a = a.Parent {
		if a == c {
			return true
		}
	}
	return false
}

// CellLess orders sibling cells.
type CellLess func(a, b *Cell) bool

// ByHeightThenValue puts deeper subtrees first, then larger ones.
func ByHeightThenValue(a, b *Cell) bool {
	if a.Height != b.Height {
		return a.Height > b.Height
	}
	return a.Value > b.Value
}

// ByValue puts larger subtrees first.
func ByValue(a, b *Cell) bool {
	return a.Value > b.Value
}

// PartitionOptions configures [Partition].
type PartitionOptions struct {
	// Width is the breadth extent. Defaults to 1.
	Width float64
	// Height is the depth extent, split into height+1 equal bands.
	// Defaults to 1.
	Height float64
	// Padding is subtracted from each cell's far edges.
	Padding float64
	// Less orders siblings. Nil keeps construction order. The sort is
	// stable so equal siblings keep construction order.
	Less CellLess
	// LeafValue weighs leaves without a value. Defaults to 1.
	LeafValue float64
}

func (o *PartitionOptions) setDefaults() {
	if o.Width <= 0 {
		o.Width = 1
	}
	if o.Height <= 0 {
		o.Height = 1
	}
	if o.LeafValue <= 0 {
		o.LeafValue = 1
	}
}

// Partitioned is the output of [Partition].
type Partitioned struct {
	Root *Cell
	// Cells lists every cell in preorder; Cells[i].Index == i.
	Cells []*Cell
}

// Cell returns the cell at a preorder index, or nil.
func (p *Partitioned) Cell(index int) *Cell {
	if index < 0 || index >= len(p.Cells) {
		return nil
	}
	return p.Cells[index]
}

// Partition sums, sorts and partitions the tree rooted at root.
//
// A cell's value is its node's own value plus the sum of its children's;
// leaves with no value weigh LeafValue. Children tile their parent's
// breadth interval in proportion to value. Depth d occupies the band
// [d, d+1] * Height/(root height + 1).
func Partition(root *hierarchy.Node, opts PartitionOptions) *Partitioned {
	opts.setDefaults()

	top := newCell(root, nil, 0, opts.LeafValue)
	if opts.Less != nil {
		sortCells(top, opts.Less)
	}

	out := &Partitioned{Root: top}
	n := float64(top.Height + 1)
	dy := opts.Height

	top.X0, top.Y0 = opts.Padding, opts.Padding
	top.X1, top.Y1 = opts.Width, dy/n

	var position func(c *Cell)
	position = func(c *Cell) {
		c.Index = len(out.Cells)
		out.Cells = append(out.Cells, c)
		if len(c.Children) > 0 {
			dice(c, c.X0, dy*float64(c.Depth+1)/n, c.X1, dy*float64(c.Depth+2)/n)
		}
		x0, y0 := c.X0, c.Y0
		x1, y1 := c.X1-opts.Padding, c.Y1-opts.Padding
		if x1 < x0 {
			x0 = (x0 + x1) / 2
			x1 = x0
		}
		if y1 < y0 {
			y0 = (y0 + y1) / 2
			y1 = y0
		}
		c.X0, c.Y0, c.X1, c.Y1 = x0, y0, x1, y1
		for _, ch := range c.Children {
			position(ch)
		}
	}
	position(top)
	return out
}

func newCell(n *hierarchy.Node, parent *Cell, depth int, leafValue float64) *Cell {
	c := &Cell{Node: n, Parent: parent, Depth: depth, Value: n.Value}
	if len(n.Children) == 0 && c.Value <= 0 {
		c.Value = leafValue
	}
	for _, child := range n.Children {
		cc := newCell(child, c, depth+1, leafValue)
		c.Children = append(c.Children, cc)
		c.Value += cc.Value
		if cc.Height+1 > c.Height {
			c.Height = cc.Height + 1
		}
	}
	return c
}

func sortCells(c *Cell, less CellLess) {
	sort.SliceStable(c.Children, func(i, j int) bool { return less(c.Children[i], c.Children[j]) })
	for _, ch := range c.Children {
		sortCells(ch, less)
	}
}

// dice tiles the parent's children left to right across [x0, x1].
func dice(parent *Cell, x0, y0, x1, y1 float64) {
	k := 0.0
	if parent.Value != 0 {
		k = (x1 - x0) / parent.Value
	}
	for _, c := range parent.Children {
		c.Y0, c.Y1 = y0, y1
		c.X0 = x0
		x0 += c.Value * k
		c.X1 = x0
	}
}
