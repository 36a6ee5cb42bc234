// Package sink draws diagram frames.
//
// # Overview
//
// A sink turns one frame into an output document:
//
//   - SVG: [Tree], [Icicle] and [Sunburst] draw with [github.com/ajstarks/svgo]
//   - JSON: [JSON] wraps the frame in an envelope naming its view
//   - PDF and PNG: [Render] converts the SVG via rsvg-convert
//
// Drawing follows the frame exactly. Elements with zero opacity are still
// emitted so a script can animate them back in; cells and arcs whose label
// is hidden get no text.
//
// # Colour
//
// Icicle cells and sunburst arcs take their fill from [Rainbow], indexed
// by the hue the zoom view assigned to their top-level branch. The root
// is grey.
package sink
