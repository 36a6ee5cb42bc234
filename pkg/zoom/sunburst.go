package zoom

import (
	"fmt"
	"math"

	"github.com/matzehuels/solutionmap/pkg/anim"
	"github.com/matzehuels/solutionmap/pkg/frame"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/layout"
)

// Sunburst defaults.
const (
	DefaultSunburstWidth = 640
	DefaultSunburstPad   = 1
	// VisibleRings is the number of depth units drawn outside the focus.
	VisibleRings = 2
	// MinLabelArea is the smallest angle-times-depth area that gets a label.
	MinLabelArea = 0.03
)

// SunburstOptions configures a [Sunburst].
type SunburstOptions struct {
	Common
	// Width is the surface side. The sunburst is square.
	Width float64
	// Padding is the radial gap, in pixels, between rings. Defaults to 1;
	// a negative value disables it.
	Padding float64
}

// SetDefaults fills zero fields.
func (o *SunburstOptions) SetDefaults() {
	o.Common.setDefaults()
	if o.Width <= 0 {
		o.Width = DefaultSunburstWidth
	}
	switch {
	case o.Padding == 0:
		o.Padding = DefaultSunburstPad
	case o.Padding < 0:
		o.Padding = 0
	}
}

// span is a cell's angular interval and radial band.
type span struct {
	X0, X1, Y0, Y1 float64
}

func lerpSpan(a, b span, t float64) span {
	return span{
		X0: anim.Lerp(a.X0, b.X0, t),
		X1: anim.Lerp(a.X1, b.X1, t),
		Y0: anim.Lerp(a.Y0, b.Y0, t),
		Y1: anim.Lerp(a.Y1, b.Y1, t),
	}
}

func (s span) visible() bool {
	return s.Y1 <= VisibleRings+1 && s.Y0 >= 1 && s.X1 > s.X0
}

func (s span) labelVisible() bool {
	return s.Y1 <= VisibleRings+1 && s.Y0 >= 1 && (s.Y1-s.Y0)*(s.X1-s.X0) > MinLabelArea
}

// Sunburst is a zoomable sunburst. The partition spans 2π radians of angle
// and one unit of radius per depth level. The focus occupies the centre
// disc, which acts as the control for zooming out.
type Sunburst struct {
	focusState
	opts SunburstOptions

	current []span // indexed by cell preorder
	target  []span
}

// NewSunburst partitions root and focuses the whole tree.
func NewSunburst(root *hierarchy.Node, opts SunburstOptions) *Sunburst {
	opts.SetDefaults()
	h := root.Height()
	part := layout.Partition(root, layout.PartitionOptions{
		Width:  2 * math.Pi,
		Height: float64(h + 1),
		Less:   layout.ByValue,
	})
	sb := &Sunburst{
		focusState: focusState{common: opts.Common, part: part, focus: part.Root},
		opts:       opts,
		current:    make([]span, len(part.Cells)),
	}
	for i, c := range part.Cells {
		sb.current[i] = span{c.X0, c.X1, c.Y0, c.Y1}
	}
	sb.target = append([]span(nil), sb.current...)
	return sb
}

// Options returns the effective options.
func (sb *Sunburst) Options() SunburstOptions { return sb.opts }

// Ring is the radial thickness of one depth unit in pixels.
func (sb *Sunburst) Ring() float64 {
	return sb.opts.Width / 2 / float64(VisibleRings+1)
}

// Span returns the current angle and radius intervals of c.
func (sb *Sunburst) Span(c *layout.Cell) (x0, x1, y0, y1 float64) {
	s := sb.current[c.Index]
	return s.X0, s.X1, s.Y0, s.Y1
}

// Target returns the intervals c ends at when the current transition
// finishes.
func (sb *Sunburst) Target(c *layout.Cell) (x0, x1, y0, y1 float64) {
	s := sb.target[c.Index]
	return s.X0, s.X1, s.Y0, s.Y1
}

// UpCell returns the cell the centre disc zooms to.
func (sb *Sunburst) UpCell() *layout.Cell {
	if sb.focus.Parent != nil {
		return sb.focus.Parent
	}
	return sb.part.Root
}

// Click focuses the cell at index.
func (sb *Sunburst) Click(index int) (Result, error) {
	c, err := sb.Cell(index)
	if err != nil {
		return Ignored, err
	}
	return sb.Zoom(c), nil
}

// Up focuses the parent of the focus. It does nothing at the root.
func (sb *Sunburst) Up() Result { return sb.Zoom(sb.UpCell()) }

// Reset focuses the root.
func (sb *Sunburst) Reset() Result { return sb.Zoom(sb.part.Root) }

// Zoom focuses p. Every cell's angle is rescaled against p's angular
// interval and clamped to the full turn; every radius is shifted inward by
// p's depth.
func (sb *Sunburst) Zoom(p *layout.Cell) Result {
	if p == sb.focus {
		return Ignored
	}
	sb.focus = p
	sb.opts.Logger.Debug("sunburst zoom", "focus", p.Node.Name, "index", p.Index)

	width := p.X1 - p.X0
	depth := float64(p.Depth)
	from := append([]span(nil), sb.current...)
	for i, c := range sb.part.Cells {
		sb.target[i] = span{
			X0: clamp01((c.X0-p.X0)/width) * 2 * math.Pi,
			X1: clamp01((c.X1-p.X0)/width) * 2 * math.Pi,
			Y0: math.Max(0, c.Y0-depth),
			Y1: math.Max(0, c.Y1-depth),
		}
	}
	to := append([]span(nil), sb.target...)
	sb.restart(func(t float64) {
		for i := range sb.current {
			sb.current[i] = lerpSpan(from[i], to[i], t)
		}
	})
	return Applied
}

// Frame captures the current geometry of every cell except the root, in
// preorder. Visibility is decided from the target geometry.
func (sb *Sunburst) Frame() frame.Sunburst {
	ring := sb.Ring()
	f := frame.Sunburst{
		Width:      sb.opts.Width,
		Height:     sb.opts.Width,
		Ring:       ring,
		Focus:      sb.focus.Index,
		Up:         sb.UpCell().Index,
		Breadcrumb: sb.Breadcrumb(),
		Arcs:       make([]frame.Arc, 0, len(sb.part.Cells)-1),
	}
	for _, c := range sb.part.Cells[1:] {
		cur, tgt := sb.current[c.Index], sb.target[c.Index]
		a := frame.Arc{
			Index:        c.Index,
			Name:         sb.opts.Label(c.Node),
			Title:        sb.Title(c),
			Depth:        c.Depth,
			Value:        c.Value,
			Leaf:         len(c.Children) == 0,
			Hue:          hue(c, sb.part.Root),
			X0:           cur.X0,
			X1:           cur.X1,
			Y0:           cur.Y0,
			Y1:           cur.Y1,
			Visible:      tgt.visible(),
			LabelVisible: tgt.labelVisible(),
		}
		r0 := cur.Y0 * ring
		r1 := math.Max(r0, cur.Y1*ring-sb.opts.Padding)
		a.Path = ArcPath(cur.X0, cur.X1, r0, r1)
		a.LabelAngle = (cur.X0 + cur.X1) / 2 * 180 / math.Pi
		a.LabelRadius = (cur.Y0 + cur.Y1) / 2 * ring
		f.Arcs = append(f.Arcs, a)
	}
	return f
}

// ArcPath returns SVG path data for an annular sector. Angles are in
// radians, measured clockwise from twelve o'clock.
func ArcPath(a0, a1, r0, r1 float64) string {
	if a1 <= a0 || r1 <= 0 {
		return ""
	}
	pt := func(a, r float64) (float64, float64) {
		return round3(r * math.Sin(a)), round3(-r * math.Cos(a))
	}
	if a1-a0 >= 2*math.Pi-1e-9 {
		// A full ring is drawn as two half turns.
		mid := a0 + math.Pi
		ox0, oy0 := pt(a0, r1)
		ox1, oy1 := pt(mid, r1)
		p := fmt.Sprintf("M%g,%gA%g,%g 0 1,1 %g,%gA%g,%g 0 1,1 %g,%g",
			ox0, oy0, r1, r1, ox1, oy1, r1, r1, ox0, oy0)
		if r0 > 0 {
			ix0, iy0 := pt(a0, r0)
			ix1, iy1 := pt(mid, r0)
			p += fmt.Sprintf("M%g,%gA%g,%g 0 1,0 %g,%gA%g,%g 0 1,0 %g,%g",
				ix0, iy0, r0, r0, ix1, iy1, r0, r0, ix0, iy0)
		}
		return p + "Z"
	}
	large := 0
	if a1-a0 > math.Pi {
		large = 1
	}
	ox0, oy0 := pt(a0, r1)
	ox1, oy1 := pt(a1, r1)
	p := fmt.Sprintf("M%g,%gA%g,%g 0 %d,1 %g,%g", ox0, oy0, r1, r1, large, ox1, oy1)
	if r0 <= 0 {
		return p + "L0,0Z"
	}
	ix1, iy1 := pt(a1, r0)
	ix0, iy0 := pt(a0, r0)
	return p + fmt.Sprintf("L%g,%gA%g,%g 0 %d,0 %g,%gZ", ix1, iy1, r0, r0, large, ix0, iy0)
}

func round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // no negative zero in path data
	}
	return r
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
