// Package render turns diagram frames into documents.
//
// # Overview
//
// The interactive views (collapsible tree, icicle, sunburst) describe a
// moment of their state as a frame (see package frame). Rendering is a
// pure function of that frame:
//
//   - [sink] draws frames as SVG and encodes them as JSON
//   - [nodelink] draws the whole hierarchy as a static Graphviz diagram
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both sinks use them.
//
//	svg := sink.Icicle(ic.Frame())
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/solutionmap/pkg/render/sink
// [nodelink]: github.com/matzehuels/solutionmap/pkg/render/nodelink
package render
