// Package pkg provides the core libraries for Solutionmap.
//
// # Overview
//
// Solutionmap turns three flat record tables (categories, subcategories
// and solutions) into a single hierarchy and draws it three ways: a
// collapsible tidy tree, a zoomable icicle and a zoomable sunburst. The
// pkg directory is organized into three areas:
//
//  1. Domain logic: [records], [hierarchy], [layout], [anim], [collapsible], [zoom]
//  2. Output: [frame], [render], [render/sink], [render/nodelink]
//  3. Orchestration: [pipeline], [session], [cache], [config]
//
// # Architecture
//
// The typical data flow:
//
//	JSON bundle / CSV directory / MongoDB
//	         ↓
//	    [records] package (load the three tables)
//	         ↓
//	    [hierarchy] package (build the tree, report dropped records)
//	         ↓
//	    [collapsible] or [zoom] (interactive view on an [anim] timeline)
//	         ↓
//	    [frame] snapshot → [render/sink] → SVG/PDF/PNG/JSON
//
// # Quick Start
//
//	src := records.JSONSource{Path: "records.json"}
//	c, _ := src.Load(ctx)
//	tree := hierarchy.Build(c.Categories, c.Subcategories, c.Solutions)
//
//	ic := zoom.NewIcicle(tree, zoom.IcicleOptions{})
//	ic.Click(1)
//	ic.Settle()
//	svg, _ := sink.Render(frame.ViewIcicle, ic.Frame(), sink.FormatSVG, sink.Options{})
//
// Or let the [pipeline] do it, with caching and click replay:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, _ := runner.Execute(ctx, src, pipeline.Options{
//	    View:    "icicle",
//	    Formats: []string{"svg"},
//	    Clicks:  []string{"Energy"},
//	})
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/hierarchy/   # Specific package
//	go test -run Example       # Examples only
//
// [records]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/records
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/hierarchy
// [layout]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/layout
// [anim]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/anim
// [collapsible]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/collapsible
// [zoom]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/zoom
// [frame]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/frame
// [render]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/solutionmap/pkg/config
package pkg
