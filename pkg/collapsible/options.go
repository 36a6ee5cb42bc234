package collapsible

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/solutionmap/pkg/anim"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/layout"
)

// Margin is the space reserved around the drawing.
type Margin struct {
	Top    float64 `toml:"top" json:"top"`
	Right  float64 `toml:"right" json:"right"`
	Bottom float64 `toml:"bottom" json:"bottom"`
	Left   float64 `toml:"left" json:"left"`
}

// Defaults for [Options].
const (
	DefaultWidth       = 954.0
	DefaultHeight      = 800.0
	DefaultNodeRadius  = 4.5
	DefaultDuration    = 400 * time.Millisecond
	DefaultScrollDelay = 50 * time.Millisecond
	DefaultLinkOpacity = 0.4
)

// DefaultMargin is the margin used when none is given.
var DefaultMargin = Margin{Top: 60, Right: 120, Bottom: 40, Left: 0}

// Container sizing constants. The drawing is padded along both axes and
// never shrinks below MinContainerHeight.
const (
	TreeBreadthPadding = 120.0
	TreeDepthPadding   = 60.0
	ContainerPadding   = 80.0
	MinContainerHeight = 400.0
	TopClearance       = 40.0
)

// Options configures a [Diagram]. Zero values take defaults.
type Options struct {
	Width, Height float64
	// Margin is used as given when any side is non-zero.
	Margin     Margin
	NodeRadius float64
	Duration   time.Duration
	// ScrollDelay is added to Duration before scrolling to a clicked node.
	ScrollDelay time.Duration
	LinkOpacity float64
	// MaxLabelWords is the word count above which labels wrap.
	MaxLabelWords int

	// Layout places visible nodes. Defaults to [layout.DefaultTidyOptions].
	Layout layout.TidyOptions

	// Label returns a node's label. Defaults to its name.
	Label func(n *hierarchy.Node) string
	// Title returns a node's tooltip from its root path. Defaults to the
	// names joined by "/".
	Title func(path []*hierarchy.Node) string

	// Host is the container the diagram surface is mounted in. Window is
	// the fallback when no container up the chain scrolls.
	Host   ScrollContainer
	Window ScrollContainer

	// Timeline drives animation. Defaults to a new private timeline.
	Timeline *anim.Timeline
	// Tokens generates identity tokens. Defaults to random UUIDs.
	Tokens func() string
	Logger *log.Logger

	// OnTransitionEnd is called when a re-layout's animation completes.
	OnTransitionEnd func(d time.Duration)
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Margin == (Margin{}) {
		o.Margin = DefaultMargin
	}
	if o.NodeRadius <= 0 {
		o.NodeRadius = DefaultNodeRadius
	}
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.ScrollDelay <= 0 {
		o.ScrollDelay = DefaultScrollDelay
	}
	if o.LinkOpacity <= 0 {
		o.LinkOpacity = DefaultLinkOpacity
	}
	if o.MaxLabelWords <= 0 {
		o.MaxLabelWords = DefaultMaxLabelWords
	}
	if o.Layout.Separation == nil && o.Layout.NodeSize == ([2]float64{}) {
		o.Layout = layout.DefaultTidyOptions()
	}
	o.Layout.SetDefaults()
	if o.Label == nil {
		o.Label = func(n *hierarchy.Node) string { return n.Name }
	}
	if o.Title == nil {
		o.Title = func(path []*hierarchy.Node) string {
			return strings.Join(hierarchy.Names(path), "/")
		}
	}
	if o.Timeline == nil {
		o.Timeline = anim.NewTimeline()
	}
	if o.Tokens == nil {
		o.Tokens = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}
