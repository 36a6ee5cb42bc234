package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/solutionmap/pkg/hierarchy"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output  string // hierarchy JSON path, "-" for stdout
	noCache bool
}

// buildCommand creates the build command, which loads the records and
// writes the hierarchy.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the category hierarchy from the record tables",
		Long: `Build loads categories, subcategories and solutions from the configured
source and writes the resulting hierarchy as JSON. Records that were skipped
or reattached are summarized.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "tree.json", `output file ("-" for stdout)`)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "rebuild even when the records are unchanged")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, opts buildOpts) error {
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
	spin := newSpinner(ctx, "Loading records")
	spin.Start()
	collections, err := runner.Load(ctx, src)
	if err != nil {
		spin.StopWithError("Load failed")
		return err
	}
	spin.SetMessage("Building hierarchy")
	built, hit, err := runner.BuildWithCacheInfo(ctx, collections)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built hierarchy from %d records", collections.Len()))

	if opts.output == "-" {
		return hierarchy.WriteJSON(cmd.OutOrStdout(), built.Tree)
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	if err := hierarchy.WriteJSON(f, built.Tree); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	printSuccess("Built %s", StyleHighlight.Render(built.Tree.Name))
	printStatsLine(collections.Len(), built, hit)
	printReport(built.Report)
	printFile(opts.output)
	printNextStep("Render it", appName+" render -t icicle")
	return nil
}
