package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/solutionmap/pkg/anim"
	"github.com/matzehuels/solutionmap/pkg/collapsible"
	"github.com/matzehuels/solutionmap/pkg/config"
	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/frame"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/layout"
	"github.com/matzehuels/solutionmap/pkg/observability"
	"github.com/matzehuels/solutionmap/pkg/zoom"
)

// UpRef is the click reference that zooms out one level.
const UpRef = ".."

// View is an interactive diagram behind a uniform interface. Outcomes are
// the observability.Click* constants.
type View interface {
	Kind() frame.View
	// Frame returns the current frame.Tree, frame.Icicle or frame.Sunburst.
	Frame() any
	// Click resolves ref and clicks it.
	Click(ref string) (string, error)
	// Up moves the focus one level towards the root.
	Up() (string, error)
	// Reset returns to the initial focus or expansion.
	Reset() string
	// Busy reports whether a click now would be dropped.
	Busy() bool
	Timeline() *anim.Timeline
	Settle()
}

// ViewParams are the inputs of [NewView] besides the tree.
type ViewParams struct {
	Config config.Config
	// Width and Height override the configured size when positive.
	Width, Height float64
	// Timeline drives animation. Defaults to a new timeline.
	Timeline *anim.Timeline
	Logger   *log.Logger
	// Tokens generates tree node tokens. Defaults to random UUIDs.
	Tokens func() string
	// OnTransitionEnd is called when a tree transition completes.
	OnTransitionEnd func(d time.Duration)
}

// NewView builds an interactive view of root.
func NewView(kind frame.View, root *hierarchy.Node, p ViewParams) (View, error) {
	if p.Timeline == nil {
		p.Timeline = anim.NewTimeline()
	}
	switch kind {
	case frame.ViewTree:
		opts := p.Config.TreeOptions()
		opts.Timeline = p.Timeline
		opts.Logger = p.Logger
		opts.Tokens = p.Tokens
		opts.OnTransitionEnd = p.OnTransitionEnd
		if p.Width > 0 {
			opts.Width = p.Width
		}
		if p.Height > 0 {
			opts.Height = p.Height
		}
		return &treeView{d: collapsible.New(root, opts)}, nil
	case frame.ViewIcicle:
		opts := p.Config.IcicleOptions(p.Timeline)
		opts.Logger = p.Logger
		if p.Width > 0 {
			opts.Width = p.Width
		}
		if p.Height > 0 {
			opts.Height = p.Height
		}
		return &icicleView{ic: zoom.NewIcicle(root, opts)}, nil
	case frame.ViewSunburst:
		opts := p.Config.SunburstOptions(p.Timeline)
		opts.Logger = p.Logger
		if p.Width > 0 {
			opts.Width = p.Width
		}
		return &sunburstView{sb: zoom.NewSunburst(root, opts)}, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidView, "%q is not an interactive view", kind)
}

// splitPath turns "A/B" into its names. Blank segments are dropped.
func splitPath(ref string) []string {
	var names []string
	for _, s := range strings.Split(ref, "/") {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	return names
}

func treeOutcome(r collapsible.ClickResult) string {
	switch r {
	case collapsible.Applied:
		return observability.ClickApplied
	case collapsible.Dropped:
		return observability.ClickDropped
	}
	return observability.ClickIgnored
}

func zoomOutcome(r zoom.Result) string {
	if r == zoom.Applied {
		return observability.ClickApplied
	}
	return observability.ClickIgnored
}

// =============================================================================
// Collapsible tree
// =============================================================================

type treeView struct {
	d *collapsible.Diagram
}

func (v *treeView) Kind() frame.View         { return frame.ViewTree }
func (v *treeView) Frame() any               { return v.d.Frame() }
func (v *treeView) Busy() bool               { return v.d.Busy() }
func (v *treeView) Timeline() *anim.Timeline { return v.d.Timeline() }
func (v *treeView) Settle()                  { v.d.Settle() }

// Diagram exposes the underlying collapsible diagram.
func (v *treeView) Diagram() *collapsible.Diagram { return v.d }

// Click accepts a visible node's token or a name path. A node hidden
// under a collapsed ancestor cannot be clicked.
func (v *treeView) Click(ref string) (string, error) {
	if n, ok := v.d.Lookup(ref); ok {
		return treeOutcome(v.d.Toggle(n)), nil
	}
	n := v.d.FindByPath(splitPath(ref)...)
	if n == nil {
		return observability.ClickIgnored, errs.New(errs.ErrCodeNodeNotFound, "no node %q", ref)
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.State() != collapsible.Expanded {
			return observability.ClickIgnored, errs.New(errs.ErrCodeNodeNotFound, "node %q is not visible", ref)
		}
	}
	return treeOutcome(v.d.Toggle(n)), nil
}

func (v *treeView) Up() (string, error) {
	return observability.ClickIgnored, errs.New(errs.ErrCodeUnsupported, "the tree view has no focus to move up")
}

func (v *treeView) Reset() string { return treeOutcome(v.d.CollapseAll()) }

// =============================================================================
// Zoomable views
// =============================================================================

// findCell resolves a preorder index or a name path.
func findCell(p *layout.Partitioned, ref string) (*layout.Cell, error) {
	if i, err := strconv.Atoi(ref); err == nil {
		if c := p.Cell(i); c != nil {
			return c, nil
		}
		return nil, errs.New(errs.ErrCodeNodeNotFound, "no cell with index %d", i)
	}
	cur := p.Root
	for _, name := range splitPath(ref) {
		var next *layout.Cell
		for _, c := range cur.Children {
			if c.Node.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil, errs.New(errs.ErrCodeNodeNotFound, "no node %q", ref)
		}
		cur = next
	}
	return cur, nil
}

type icicleView struct {
	ic *zoom.Icicle
}

func (v *icicleView) Kind() frame.View         { return frame.ViewIcicle }
func (v *icicleView) Frame() any               { return v.ic.Frame() }
func (v *icicleView) Busy() bool               { return false }
func (v *icicleView) Timeline() *anim.Timeline { return v.ic.Timeline() }
func (v *icicleView) Settle()                  { v.ic.Settle() }
func (v *icicleView) Reset() string            { return zoomOutcome(v.ic.Reset()) }

func (v *icicleView) Click(ref string) (string, error) {
	if ref == UpRef {
		return v.Up()
	}
	c, err := findCell(v.ic.Partition(), ref)
	if err != nil {
		return observability.ClickIgnored, err
	}
	return zoomOutcome(v.ic.Zoom(c)), nil
}

func (v *icicleView) Up() (string, error) {
	f := v.ic.Focus()
	if f.Parent == nil {
		return observability.ClickIgnored, nil
	}
	return zoomOutcome(v.ic.Zoom(f.Parent)), nil
}

type sunburstView struct {
	sb *zoom.Sunburst
}

func (v *sunburstView) Kind() frame.View         { return frame.ViewSunburst }
func (v *sunburstView) Frame() any               { return v.sb.Frame() }
func (v *sunburstView) Busy() bool               { return false }
func (v *sunburstView) Timeline() *anim.Timeline { return v.sb.Timeline() }
func (v *sunburstView) Settle()                  { v.sb.Settle() }
func (v *sunburstView) Reset() string            { return zoomOutcome(v.sb.Reset()) }
func (v *sunburstView) Up() (string, error)      { return zoomOutcome(v.sb.Up()), nil }

func (v *sunburstView) Click(ref string) (string, error) {
	if ref == UpRef {
		return v.Up()
	}
	c, err := findCell(v.sb.Partition(), ref)
	if err != nil {
		return observability.ClickIgnored, err
	}
	return zoomOutcome(v.sb.Zoom(c)), nil
}
