package sink

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/solutionmap/pkg/frame"
)

// DefaultFont is the font shorthand applied to the whole document.
const DefaultFont = "10px sans-serif"

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	font     string
	controls bool
}

// WithFont sets the CSS font shorthand.
func WithFont(font string) SVGOption { return func(r *svgRenderer) { r.font = font } }

// WithoutControls omits the breadcrumb and the reset control.
func WithoutControls() SVGOption { return func(r *svgRenderer) { r.controls = false } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{font: DefaultFont, controls: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r svgRenderer) rootStyle() string {
	return fmt.Sprintf("max-width:100%%;height:auto;font:%s;user-select:none", r.font)
}

func px(v float64) int { return int(math.Round(v)) }

// =============================================================================
// Collapsible tree
// =============================================================================

// Tree draws a collapsible tree frame. Nodes are drawn at (Y, X) inside a
// group translated by the frame's offset.
func Tree(f frame.Tree, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(px(f.Width), px(f.Height), fmt.Sprintf(`style="%s"`, r.rootStyle()))
	canvas.Gtransform(fmt.Sprintf("translate(%g,%g)", f.TranslateX, f.TranslateY))

	canvas.Group(`class="links"`, `fill="none"`, `stroke="#555"`, `stroke-width="1.5"`)
	for _, l := range f.Links {
		canvas.Path(l.Path, fmt.Sprintf(`data-token="%s"`, l.Token), fmt.Sprintf(`stroke-opacity="%g"`, l.Opacity))
	}
	canvas.Gend()

	canvas.Group(`class="nodes"`, `cursor="pointer"`, `pointer-events="all"`)
	for _, n := range f.Nodes {
		canvas.Group(
			fmt.Sprintf(`data-token="%s"`, n.Token),
			fmt.Sprintf(`data-state="%s"`, n.State),
			fmt.Sprintf(`transform="translate(%g,%g)"`, n.Y, n.X),
			fmt.Sprintf(`opacity="%g"`, n.Opacity),
		)
		canvas.Title(n.Title)
		circleFill := "#999"
		if n.State == frame.StateCollapsed {
			circleFill = "#555"
		}
		canvas.Circle(0, 0, px(n.Radius), "fill:"+circleFill, `stroke-width="10"`)

		x, anchor := 6, "start"
		if n.State != frame.StateLeaf {
			x, anchor = -6, "end"
		}
		for i, line := range n.Lines {
			canvas.Text(x, i*11, line, `dy="0.31em"`, "text-anchor:"+anchor,
				`stroke-linejoin="round"`, `stroke-width="3"`, `stroke="white"`, `paint-order="stroke"`)
		}
		canvas.Gend()
	}
	canvas.Gend()

	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

// =============================================================================
// Icicle
// =============================================================================

// Icicle draws a zoomable icicle frame below its breadcrumb bar.
func Icicle(f frame.Icicle, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(px(f.Width), px(f.Height), fmt.Sprintf(`style="%s"`, r.rootStyle()))

	if r.controls {
		canvas.Text(10, 15, f.Breadcrumb, `class="breadcrumb"`, "font-weight:bold")
		canvas.Text(px(f.Width)-60, 15, "Reset", `class="reset"`, `data-index="0"`, "cursor:pointer;fill:steelblue")
	}

	canvas.Gtransform(fmt.Sprintf("translate(0,%g)", f.MarginTop))
	for _, c := range f.Cells {
		canvas.Group(
			fmt.Sprintf(`data-index="%d"`, c.Index),
			fmt.Sprintf(`transform="translate(%g,%g)"`, c.X, c.Y),
			`cursor="pointer"`,
		)
		canvas.Title(c.Title)
		opacity := 0.6
		if c.Leaf {
			opacity = 0.4
		}
		canvas.Rect(0, 0, px(c.Width), px(c.Height),
			fmt.Sprintf("fill:%s;fill-opacity:%g", fill(c.Depth, c.Hue), opacity))
		if c.LabelVisible {
			canvas.Text(5, 15, c.Name)
		}
		canvas.Gend()
	}
	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

// =============================================================================
// Sunburst
// =============================================================================

// Sunburst draws a zoomable sunburst frame centred in a square view box.
// The centre disc carries the index of the cell one level up.
func Sunburst(f frame.Sunburst, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	w, h := px(f.Width), px(f.Height)
	canvas.Startview(w, h, -w/2, -h/2, w, h)
	canvas.Group(fmt.Sprintf(`style="%s"`, r.rootStyle()))

	if r.controls {
		canvas.Text(-w/2+10, -h/2+15, f.Breadcrumb, `class="breadcrumb"`, "font-weight:bold")
	}

	canvas.Group(`class="arcs"`)
	for _, a := range f.Arcs {
		if a.Path == "" {
			continue
		}
		opacity := 0.0
		if a.Visible {
			opacity = 0.6
			if a.Leaf {
				opacity = 0.4
			}
		}
		pointer := "none"
		if a.Visible && !a.Leaf {
			pointer = "auto"
		}
		canvas.Path(a.Path,
			fmt.Sprintf(`data-index="%d"`, a.Index),
			fmt.Sprintf("fill:%s;fill-opacity:%g;pointer-events:%s", fill(a.Depth, a.Hue), opacity, pointer),
		)
	}
	canvas.Gend()

	canvas.Group(`class="labels"`, `pointer-events="none"`, `text-anchor="middle"`)
	for _, a := range f.Arcs {
		if !a.LabelVisible {
			continue
		}
		flip := 0
		if a.LabelAngle >= 180 {
			flip = 180
		}
		canvas.Text(0, 0, a.Name, `dy="0.35em"`,
			fmt.Sprintf(`transform="rotate(%g) translate(%g,0) rotate(%d)"`, a.LabelAngle-90, a.LabelRadius, flip))
	}
	canvas.Gend()

	canvas.Circle(0, 0, px(f.Ring), fmt.Sprintf(`data-index="%d"`, f.Up), "fill:none;pointer-events:all")
	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}
