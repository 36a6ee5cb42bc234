package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/solutionmap/pkg/frame"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/pipeline"
	"github.com/matzehuels/solutionmap/pkg/render/sink"
)

// completionCommand creates the completion command for shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for solutionmap.

  bash:        source <(solutionmap completion bash)
  zsh:         solutionmap completion zsh > "${fpath[1]}/_solutionmap"
  fish:        solutionmap completion fish | source
  powershell:  solutionmap completion powershell | Out-String | Invoke-Expression

Render's --click completes node paths from the configured records.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeList completes one item of a comma-separated flag value.
func completeList(items []string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		head, last := "", toComplete
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			head, last = toComplete[:i+1], toComplete[i+1:]
		}
		var out []string
		for _, it := range items {
			if strings.HasPrefix(it, last) && !strings.Contains(","+head, ","+it+",") {
				out = append(out, head+it)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

func viewNames() []string {
	out := make([]string, 0, len(frame.Views)+1)
	for _, v := range frame.Views {
		out = append(out, string(v))
	}
	return append(out, pipeline.ViewNodelink)
}

func formatNames() []string {
	out := make([]string, 0, len(sink.Formats))
	for _, f := range sink.Formats {
		out = append(out, string(f))
	}
	return out
}

// completeClick completes a "/"-separated node path below the root of the
// hierarchy built from the configured records.
func (c *CLI) completeClick(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx := cmd.Context()
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	src, err := cfg.RecordSource()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer runner.Close()
	collections, err := runner.Load(ctx, src)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	built, err := runner.Build(ctx, collections)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return pathCompletions(built.Tree, toComplete), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// pathCompletions lists the children of the node named by prefix's
// complete segments whose names start with its last segment. Nodes with
// children get a trailing "/".
func pathCompletions(root *hierarchy.Node, prefix string) []string {
	var parentPath []string
	dir, last := "", prefix
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		dir, last = prefix[:i+1], prefix[i+1:]
		parentPath = strings.Split(prefix[:i], "/")
	}
	parent := hierarchy.Find(root, parentPath...)
	if parent == nil {
		return nil
	}
	var out []string
	for _, ch := range parent.Children {
		if !strings.HasPrefix(ch.Name, last) {
			continue
		}
		name := dir + ch.Name
		if len(ch.Children) > 0 {
			name += "/"
		}
		out = append(out, name)
	}
	return out
}
