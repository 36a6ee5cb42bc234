// Package nodelink renders a solution hierarchy as a static node-link
// diagram.
//
// # Overview
//
// The interactive tree shows one expansion state at a time. This package
// draws the whole hierarchy at once with Graphviz, left to right, which is
// handy for print and for reviewing how dirty records were reattached.
//
// # Usage
//
//	dot := nodelink.ToDOT(root, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: labels carry the node kind and leaf count
//   - MaxDepth: limits the diagram to the top levels
//
// The synthetic Uncategorized node is drawn dashed and grey so reattached
// records stand out.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
