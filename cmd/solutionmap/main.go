// Command solutionmap builds category hierarchies from flat records and
// draws them as collapsible trees, icicles and sunbursts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/solutionmap/internal/cli"
	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/observability"
)

// Exit statuses beyond 0 and 1.
const (
	exitUsage       = 2
	exitUnavailable = 69
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot().ExecuteContext(ctx)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, errs.UserMessage(err))
	}
	os.Exit(exitCode(err))
}

func newRoot() *cobra.Command {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages and cache activity")

	setup := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
			observability.Use(observability.LogHooks{Logger: c.Logger})
		}
		return setup(cmd, args)
	}
	return root
}

// exitCode maps err onto a process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case strings.HasPrefix(string(errs.GetCode(err)), "INVALID_"):
		return exitUsage
	case errs.Is(err, errs.ErrCodeSourceUnavailable):
		return exitUnavailable
	}
	return 1
}
