package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/solutionmap/pkg/collapsible"
)

// browseCommand creates the browse command, an interactive terminal view
// of the collapsible tree.
func (c *CLI) browseCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the hierarchy as a collapsible tree in the terminal",
		Long: `Browse builds the hierarchy and opens it as a collapsible tree. Nodes
expand and collapse with the same transition timing as the rendered tree;
toggles made while a transition runs are dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "rebuild even when the records are unchanged")

	return cmd
}

func (c *CLI) runBrowse(cmd *cobra.Command, noCache bool) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := cfg.RecordSource()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinner(ctx, "Loading records")
	spin.Start()
	collections, err := runner.Load(ctx, src)
	if err != nil {
		spin.StopWithError("Load failed")
		return err
	}
	built, err := runner.Build(ctx, collections)
	spin.Stop()
	if err != nil {
		return err
	}

	opts := cfg.TreeOptions()
	opts.Logger = loggerFromContext(ctx)
	d := collapsible.New(built.Tree, opts)

	p := tea.NewProgram(NewTreeModel(d), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
