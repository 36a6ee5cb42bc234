package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node kind and leaf count to labels.
	Detailed bool
	// MaxDepth stops the diagram below this depth. Zero draws everything.
	MaxDepth int
}

// ToDOT converts a hierarchy to Graphviz DOT format. Node identifiers are
// preorder positions, so names may repeat.
func ToDOT(root *hierarchy.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#555555\"];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.15;\n")
	buf.WriteString("\n")

	ids := make(map[*hierarchy.Node]string)
	hierarchy.Walk(root, func(n *hierarchy.Node, depth int) bool {
		id := "n" + strconv.Itoa(len(ids))
		ids[n] = id
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(attrs, ", "))
		return opts.MaxDepth <= 0 || depth < opts.MaxDepth
	})

	buf.WriteString("\n")
	hierarchy.Walk(root, func(n *hierarchy.Node, depth int) bool {
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return false
		}
		for _, c := range n.Children {
			fmt.Fprintf(&buf, "  %s -> %s;\n", ids[n], ids[c])
		}
		return true
	})

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *hierarchy.Node, detailed bool) string {
	if !detailed || n.IsLeaf() {
		return n.Name
	}
	return fmt.Sprintf("%s\n%s, %d solutions", n.Name, n.Kind, len(hierarchy.Leaves(n)))
}

func fmtAttrs(n *hierarchy.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case hierarchy.KindUncategorized:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	case hierarchy.KindRoot:
		attrs = append(attrs, "fillcolor=\"#eeeeee\"", "penwidth=2")
	case hierarchy.KindSolution:
		attrs = append(attrs, "shape=plaintext", "style=\"\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with one
// whose pixel size matches its view box.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
