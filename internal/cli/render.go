package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/solutionmap/pkg/pipeline"
	"github.com/matzehuels/solutionmap/pkg/render/sink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single view/format) or base path
	views    []string // tree, icicle, sunburst, nodelink
	formats  []string // svg, json, png, pdf
	clicks   []string // node paths replayed before capture
	width    float64  // overrides the configured width
	height   float64  // overrides the configured height
	live     bool     // capture as the last transition starts
	detailed bool     // kinds and counts in nodelink labels
	scale    float64  // PNG resolution factor
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command for static diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var viewsStr, formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the hierarchy as a tree, icicle, sunburst or node-link diagram",
		Long: `Render draws one frame of each requested view. Clicks are replayed first,
so --click Energy --click Energy/Storage renders the tree with both nodes
expanded, or an icicle zoomed into Storage. Zoom views also accept a cell
index or ".." to zoom out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.views = splitList(viewsStr, pipeline.DefaultView)
			opts.formats = splitList(formatsStr, string(sink.FormatSVG))
			for _, v := range opts.views {
				if err := pipeline.ValidateView(v); err != nil {
					return err
				}
			}
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single view/format) or base path (multiple)")
	cmd.Flags().StringVarP(&viewsStr, "type", "t", "", "view(s): tree (default), icicle, sunburst, nodelink (comma-separated)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().StringArrayVar(&opts.clicks, "click", nil, "node path to click before capturing (repeatable)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "frame width (default from configuration)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "frame height (default from configuration)")
	cmd.Flags().BoolVar(&opts.live, "live", false, "capture the last click's transition as it starts")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show kinds and solution counts (nodelink)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG resolution factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	_ = cmd.RegisterFlagCompletionFunc("type", completeList(viewNames()))
	_ = cmd.RegisterFlagCompletionFunc("format", completeList(formatNames()))
	_ = cmd.RegisterFlagCompletionFunc("click", c.completeClick)

	return cmd
}

// basePath strips a known format extension from the output path. An
// empty output renders next to the working directory as "solutionmap".
func basePath(output string) string {
	if output == "" {
		return appName
	}
	ext := filepath.Ext(output)
	if _, err := sink.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath names the file for one view and format.
func outputPath(opts *renderOpts, view, format string) string {
	if len(opts.views) == 1 && len(opts.formats) == 1 && opts.output != "" {
		return opts.output
	}
	base := basePath(opts.output)
	if len(opts.views) == 1 {
		return fmt.Sprintf("%s.%s", base, format)
	}
	return fmt.Sprintf("%s_%s.%s", base, view, format)
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := cfg.RecordSource()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	collections, err := runner.Load(ctx, src)
	if err != nil {
		return err
	}
	built, hit, err := runner.BuildWithCacheInfo(ctx, collections)
	if err != nil {
		return err
	}
	prog.stage(fmt.Sprintf("Loaded %d records", collections.Len()))
	printStatsLine(collections.Len(), built, hit)

	for _, view := range opts.views {
		po := pipeline.Options{
			View:     view,
			Formats:  opts.formats,
			Width:    opts.width,
			Height:   opts.height,
			Live:     opts.live,
			Detailed: opts.detailed,
			Scale:    opts.scale,
			Refresh:  opts.refresh,
			Config:   cfg,
			Logger:   logger,
		}
		if view != pipeline.ViewNodelink {
			po.Clicks = opts.clicks
		} else if len(opts.clicks) > 0 {
			logger.Warn("clicks are ignored by the nodelink view")
		}

		artifacts, cached, err := runner.RenderWithCacheInfo(ctx, built.Tree, built.Hash, po)
		if err != nil {
			return fmt.Errorf("%s: %w", view, err)
		}
		for _, format := range po.Formats {
			path := outputPath(opts, view, format)
			if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
				return err
			}
			logger.Debug("wrote artifact", "view", view, "format", format, "bytes", len(artifacts[format]), "cached", cached)
			printFile(path)
		}
		prog.stage("Rendered " + view)
	}
	prog.done(fmt.Sprintf("Rendered %d view(s)", len(opts.views)))
	return nil
}
