// Package zoom implements the zoomable icicle and sunburst views.
//
// Both views partition the whole hierarchy once, at construction, into
// fixed intervals (see [layout.Partition]). Interaction never changes the
// partition; it only changes the focus, the cell whose subtree fills the
// view, and animates the mapping from partition space to the surface.
//
//   - [Icicle] narrows its breadth scale to the focus's interval and starts
//     its depth scale at the focus's level.
//   - [Sunburst] renormalizes every cell's angle against the focus's
//     angular span and its radius against the focus's depth.
//
// A click during an animation restarts the interpolation from wherever
// the animation had got to, so no busy guard is needed. Clicking the cell
// already in focus does nothing.
//
// Label visibility is decided from the geometry a transition ends at, so
// labels switch on or off once per transition instead of flickering with
// the intermediate geometry.
package zoom

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/solutionmap/pkg/anim"
	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/layout"
)

// DefaultDuration is the length of a zoom transition.
const DefaultDuration = 750 * time.Millisecond

// DefaultSeparator joins breadcrumb names.
const DefaultSeparator = " > "

// Result tells what a focus request did.
type Result uint8

const (
	// Applied means the focus changed and a transition started.
	Applied Result = iota
	// Ignored means the requested cell already has focus.
	Ignored
)

func (r Result) String() string {
	if r == Applied {
		return "applied"
	}
	return "ignored"
}

// Common holds the options shared by both views.
type Common struct {
	Duration time.Duration
	// Separator joins breadcrumb names. Defaults to " > ".
	Separator string
	// Label returns a cell's label. Defaults to the node name.
	Label func(n *hierarchy.Node) string
	// Title returns a cell's tooltip from its root path. Defaults to the
	// names joined by "/".
	Title    func(path []*hierarchy.Node) string
	Timeline *anim.Timeline
	Logger   *log.Logger
}

func (c *Common) setDefaults() {
	if c.Duration <= 0 {
		c.Duration = DefaultDuration
	}
	if c.Separator == "" {
		c.Separator = DefaultSeparator
	}
	if c.Label == nil {
		c.Label = func(n *hierarchy.Node) string { return n.Name }
	}
	if c.Title == nil {
		c.Title = func(path []*hierarchy.Node) string {
			return strings.Join(hierarchy.Names(path), "/")
		}
	}
	if c.Timeline == nil {
		c.Timeline = anim.NewTimeline()
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
}

// focusState is the part shared by both views: the partition, the focus
// and the in-flight transition.
type focusState struct {
	common Common
	part   *layout.Partitioned
	focus  *layout.Cell
	tr     *anim.Transition
}

// Partition returns the static partition.
func (f *focusState) Partition() *layout.Partitioned { return f.part }

// Focus returns the focused cell.
func (f *focusState) Focus() *layout.Cell { return f.focus }

// Timeline returns the timeline driving the view.
func (f *focusState) Timeline() *anim.Timeline { return f.common.Timeline }

// Animating reports whether a zoom transition is in flight.
func (f *focusState) Animating() bool { return f.tr != nil && !f.tr.Done() }

// Cell returns the cell at a preorder index.
func (f *focusState) Cell(index int) (*layout.Cell, error) {
	c := f.part.Cell(index)
	if c == nil {
		return nil, errs.New(errs.ErrCodeNodeNotFound, "no cell with index %d", index)
	}
	return c, nil
}

// Breadcrumb returns the names from the root to the focus.
func (f *focusState) Breadcrumb() string {
	return joinPath(f.focus, f.common.Separator)
}

// Title returns the tooltip of c.
func (f *focusState) Title(c *layout.Cell) string {
	path := c.Path()
	nodes := make([]*hierarchy.Node, len(path))
	for i, p := range path {
		nodes[i] = p.Node
	}
	return f.common.Title(nodes)
}

// Settle advances the timeline until the zoom transition is over.
func (f *focusState) Settle() {
	f.common.Timeline.Settle(10*time.Millisecond, f.common.Duration+time.Second)
}

// restart cancels the in-flight transition and starts a new one.
func (f *focusState) restart(tick func(t float64)) {
	if f.tr != nil {
		f.tr.Cancel()
	}
	f.tr = f.common.Timeline.Start(f.common.Duration, anim.CubicInOut, tick, nil)
}

func joinPath(c *layout.Cell, sep string) string {
	path := c.Path()
	names := make([]string, len(path))
	for i, p := range path {
		names[i] = p.Node.Name
	}
	return strings.Join(names, sep)
}

// hue places a cell's top-level branch on a colour ramp: branches are
// spread by their share of the total value and leaves are shifted.
func hue(c *layout.Cell, root *layout.Cell) float64 {
	if c.Depth == 0 || root.Value == 0 {
		return 0
	}
	top := c
	for top.Depth > 1 {
		top = top.Parent
	}
	h := top.Value / root.Value * 0.8
	if len(top.Children) == 0 {
		h += 0.2
	}
	return h
}
