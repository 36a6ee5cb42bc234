package zoom

import (
	"math"

	"github.com/matzehuels/solutionmap/pkg/anim"
	"github.com/matzehuels/solutionmap/pkg/frame"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/layout"
)

// Icicle defaults.
const (
	DefaultIcicleWidth     = 975
	DefaultIcicleHeight    = 600
	DefaultIcicleMarginTop = 30
	DefaultIciclePadding   = 1
	MinLabelWidth          = 20
	MinLabelHeight         = 15
)

// IcicleOptions configures an [Icicle].
type IcicleOptions struct {
	Common
	Width  float64
	Height float64
	// MarginTop reserves room for the breadcrumb and reset control.
	MarginTop float64
	// Padding is the gap, in pixels, kept at each cell's far edges.
	// Defaults to 1; a negative value disables it.
	Padding float64
}

// SetDefaults fills zero fields.
func (o *IcicleOptions) SetDefaults() {
	o.Common.setDefaults()
	if o.Width <= 0 {
		o.Width = DefaultIcicleWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultIcicleHeight
	}
	if o.MarginTop <= 0 {
		o.MarginTop = DefaultIcicleMarginTop
	}
	switch {
	case o.Padding == 0:
		o.Padding = DefaultIciclePadding
	case o.Padding < 0:
		o.Padding = 0
	}
}

// Icicle is a zoomable icicle: depth runs top to bottom in equal bands and
// breadth is divided in proportion to value.
//
// The partition lives in unit space. Two domains map it to the surface:
// the breadth domain selects the visible slice of [0,1] and the depth
// domain starts at the focus's band and always ends at 1.
type Icicle struct {
	focusState
	opts IcicleOptions

	xd, yd [2]float64 // current domains
	tx, ty [2]float64 // domains the current transition ends at
}

// NewIcicle partitions root and focuses the whole tree.
func NewIcicle(root *hierarchy.Node, opts IcicleOptions) *Icicle {
	opts.SetDefaults()
	part := layout.Partition(root, layout.PartitionOptions{
		Less: layout.ByHeightThenValue,
	})
	ic := &Icicle{
		focusState: focusState{common: opts.Common, part: part, focus: part.Root},
		opts:       opts,
	}
	ic.xd = [2]float64{part.Root.X0, part.Root.X1}
	ic.yd = [2]float64{part.Root.Y0, 1}
	ic.tx, ic.ty = ic.xd, ic.yd
	return ic
}

// Options returns the effective options.
func (ic *Icicle) Options() IcicleOptions { return ic.opts }

// Domains returns the current breadth and depth domains.
func (ic *Icicle) Domains() (x, y [2]float64) { return ic.xd, ic.yd }

// Click focuses the cell at index.
func (ic *Icicle) Click(index int) (Result, error) {
	c, err := ic.Cell(index)
	if err != nil {
		return Ignored, err
	}
	return ic.Zoom(c), nil
}

// Reset focuses the root.
func (ic *Icicle) Reset() Result { return ic.Zoom(ic.part.Root) }

// Zoom focuses c and animates the domains from wherever they are now.
func (ic *Icicle) Zoom(c *layout.Cell) Result {
	if c == ic.focus {
		return Ignored
	}
	ic.focus = c
	ic.opts.Logger.Debug("icicle zoom", "focus", c.Node.Name, "index", c.Index)

	fromX, fromY := ic.xd, ic.yd
	ic.tx = [2]float64{c.X0, c.X1}
	ic.ty = [2]float64{c.Y0, 1}
	toX, toY := ic.tx, ic.ty
	ic.restart(func(t float64) {
		ic.xd = anim.LerpPair(fromX, toX, t)
		ic.yd = anim.LerpPair(fromY, toY, t)
	})
	return Applied
}

func (ic *Icicle) innerHeight() float64 {
	return math.Max(0, ic.opts.Height-ic.opts.MarginTop)
}

// project maps a cell through the given domains onto the surface,
// rounding like a range-rounded scale.
func (ic *Icicle) project(c *layout.Cell, xd, yd [2]float64) (x0, y0, x1, y1 float64) {
	sx := func(v float64) float64 {
		if xd[1] == xd[0] {
			return 0
		}
		return math.Round((v - xd[0]) / (xd[1] - xd[0]) * ic.opts.Width)
	}
	sy := func(v float64) float64 {
		if yd[1] == yd[0] {
			return 0
		}
		return math.Round((v - yd[0]) / (yd[1] - yd[0]) * ic.innerHeight())
	}
	return sx(c.X0), sy(c.Y0), sx(c.X1), sy(c.Y1)
}

// Rect returns the geometry of c under the current domains.
func (ic *Icicle) Rect(c *layout.Cell) frame.Rect {
	x0, y0, x1, y1 := ic.project(c, ic.xd, ic.yd)
	r := frame.Rect{
		Index:  c.Index,
		Name:   ic.opts.Label(c.Node),
		Title:  ic.Title(c),
		Depth:  c.Depth,
		Value:  c.Value,
		Leaf:   len(c.Children) == 0,
		Hue:    hue(c, ic.part.Root),
		X:      x0,
		Y:      y0,
		Width:  math.Max(0, x1-x0-ic.opts.Padding),
		Height: math.Max(0, y1-y0-ic.opts.Padding),
	}
	r.LabelVisible = ic.LabelVisible(c)
	return r
}

// LabelVisible reports whether c's label shows at the end of the current
// transition.
func (ic *Icicle) LabelVisible(c *layout.Cell) bool {
	x0, y0, x1, y1 := ic.project(c, ic.tx, ic.ty)
	return x1-x0 > MinLabelWidth && y1-y0 > MinLabelHeight
}

// Frame captures the current geometry of every cell in preorder.
func (ic *Icicle) Frame() frame.Icicle {
	f := frame.Icicle{
		Width:      ic.opts.Width,
		Height:     ic.opts.Height,
		MarginTop:  ic.opts.MarginTop,
		Breadcrumb: ic.Breadcrumb(),
		Focus:      ic.focus.Index,
		Cells:      make([]frame.Rect, len(ic.part.Cells)),
	}
	for i, c := range ic.part.Cells {
		f.Cells[i] = ic.Rect(c)
	}
	return f
}
