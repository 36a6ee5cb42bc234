package collapsible

import "math"

// Viewport is the region of the diagram surface a container shows, in
// surface coordinates.
type Viewport struct {
	X, Y          float64
	Width, Height float64
}

// Center returns the viewport's centre point.
func (v Viewport) Center() (x, y float64) {
	return v.X + v.Width/2, v.Y + v.Height/2
}

// ScrollContainer is one element in the chain of containers hosting the
// diagram surface, innermost first.
type ScrollContainer interface {
	// Parent returns the enclosing container, or nil at the top.
	Parent() ScrollContainer
	// Scrollable reports whether the container scrolls and currently
	// overflows.
	Scrollable() bool
	// Viewport returns the visible region of the diagram surface.
	Viewport() Viewport
	// ScrollBy scrolls the content by the given offsets.
	ScrollBy(dx, dy float64)
}

// FindScrollable walks up from c and returns the first scrollable
// container, else fallback. It returns nil when neither exists.
func FindScrollable(c, fallback ScrollContainer) ScrollContainer {
	for ; c != nil; c = c.Parent() {
		if c.Scrollable() {
			return c
		}
	}
	return fallback
}

// Pane is a rectangular scroll container over content of a known size.
// The zero value neither scrolls nor has a parent.
type Pane struct {
	Outer ScrollContainer
	// Overflow enables scrolling.
	Overflow bool

	ContentWidth, ContentHeight float64
	ViewWidth, ViewHeight       float64
	ScrollX, ScrollY            float64
}

// Parent implements ScrollContainer.
func (p *Pane) Parent() ScrollContainer { return p.Outer }

// Scrollable implements ScrollContainer.
func (p *Pane) Scrollable() bool {
	return p.Overflow && (p.ContentHeight > p.ViewHeight || p.ContentWidth > p.ViewWidth)
}

// Viewport implements ScrollContainer.
func (p *Pane) Viewport() Viewport {
	return Viewport{X: p.ScrollX, Y: p.ScrollY, Width: p.ViewWidth, Height: p.ViewHeight}
}

// ScrollBy implements ScrollContainer. The offsets are clamped to the
// content.
func (p *Pane) ScrollBy(dx, dy float64) {
	p.ScrollX = clamp(p.ScrollX+dx, 0, math.Max(0, p.ContentWidth-p.ViewWidth))
	p.ScrollY = clamp(p.ScrollY+dy, 0, math.Max(0, p.ContentHeight-p.ViewHeight))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
