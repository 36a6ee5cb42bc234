// Package frame defines snapshots of a diagram's animated state.
//
// A frame is everything a sink needs to draw one moment of a view: the
// surface size and, per element, its current geometry and opacity. The
// collapsible tree and the zoomable views produce frames; the SVG renderer,
// the JSON export and the HTTP API consume them. Frames are plain values
// and can be encoded with [Write].
package frame

import (
	"encoding/json"
	"io"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
)

// View names a diagram type.
type View string

const (
	ViewTree     View = "tree"
	ViewIcicle   View = "icicle"
	ViewSunburst View = "sunburst"
)

// Views lists the interactive views.
var Views = []View{ViewTree, ViewIcicle, ViewSunburst}

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidView, "unknown view %q", s)
}

// =============================================================================
// Collapsible tree
// =============================================================================

// Tree is one moment of a collapsible tree.
type Tree struct {
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	TranslateX float64    `json:"translate_x"`
	TranslateY float64    `json:"translate_y"`
	Busy       bool       `json:"busy"`
	Focus      string     `json:"focus,omitempty"`
	Nodes      []TreeNode `json:"nodes"`
	Links      []TreeLink `json:"links"`
}

// Node states as reported in [TreeNode.State].
const (
	StateExpanded  = "expanded"
	StateCollapsed = "collapsed"
	StateLeaf      = "leaf"
)

// TreeNode is a node glyph. X runs along the breadth axis and Y along the
// depth axis; the glyph is drawn at (Y, X) inside the translated group.
type TreeNode struct {
	Token   string   `json:"token"`
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Lines   []string `json:"lines"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Depth   int      `json:"depth"`
	Radius  float64  `json:"radius"`
	Opacity float64  `json:"opacity"`
	State   string   `json:"state"`
	Exiting bool     `json:"exiting,omitempty"`
}

// TreeLink is the curve from a parent to the child identified by Token.
type TreeLink struct {
	Token   string     `json:"token"`
	Source  [2]float64 `json:"source"`
	Target  [2]float64 `json:"target"`
	Path    string     `json:"path"`
	Opacity float64    `json:"opacity"`
	Exiting bool       `json:"exiting,omitempty"`
}

// =============================================================================
// Zoomable views
// =============================================================================

// Icicle is one moment of a zoomable icicle.
type Icicle struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	MarginTop  float64 `json:"margin_top"`
	Breadcrumb string  `json:"breadcrumb"`
	Focus      int     `json:"focus"`
	Cells      []Rect  `json:"cells"`
}

// Rect is an icicle cell in surface coordinates below the top margin.
type Rect struct {
	Index        int     `json:"index"`
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Depth        int     `json:"depth"`
	Value        float64 `json:"value"`
	Leaf         bool    `json:"leaf"`
	Hue          float64 `json:"hue"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	LabelVisible bool    `json:"label_visible"`
}

// Sunburst is one moment of a zoomable sunburst centred at the origin.
type Sunburst struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Ring is the radial thickness of one depth unit.
	Ring       float64 `json:"ring"`
	Focus      int     `json:"focus"`
	Up         int     `json:"up"`
	Breadcrumb string  `json:"breadcrumb"`
	Arcs       []Arc   `json:"arcs"`
}

// Arc is a sunburst segment. X0/X1 are angles in radians and Y0/Y1 radial
// positions in depth units relative to the focus.
type Arc struct {
	Index        int     `json:"index"`
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Depth        int     `json:"depth"`
	Value        float64 `json:"value"`
	Leaf         bool    `json:"leaf"`
	Hue          float64 `json:"hue"`
	X0           float64 `json:"x0"`
	X1           float64 `json:"x1"`
	Y0           float64 `json:"y0"`
	Y1           float64 `json:"y1"`
	Visible      bool    `json:"visible"`
	LabelVisible bool    `json:"label_visible"`
	Path         string  `json:"path"`
	// LabelAngle (degrees) and LabelRadius place the label.
	LabelAngle  float64 `json:"label_angle"`
	LabelRadius float64 `json:"label_radius"`
}

// =============================================================================
// Encoding
// =============================================================================

// Envelope wraps a frame with its view for transport.
type Envelope struct {
	View  View `json:"view"`
	Frame any  `json:"frame"`
}

// Write encodes a frame of the given view as indented JSON.
func Write(w io.Writer, view View, f any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Envelope{View: view, Frame: f})
}

// Marshal returns the compact JSON encoding of a frame envelope.
func Marshal(view View, f any) ([]byte, error) {
	return json.Marshal(Envelope{View: view, Frame: f})
}
