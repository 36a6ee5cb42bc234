// Package cli implements the solutionmap command-line interface.
//
// This package provides commands for building the category hierarchy from
// record tables, rendering it as static diagrams, browsing it in the
// terminal and serving the interactive HTTP API. The CLI is built using
// cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: Load records and write the hierarchy as JSON
//   - render: Generate SVG, PDF, PNG or JSON frames of a view
//   - browse: Expand and collapse the tree in the terminal
//   - serve: Run the HTTP API with live diagram sessions
//   - cache: Manage the artifact cache
//
// # Configuration
//
// Commands read solutionmap.toml from the working directory when present.
// --config names another file and --source overrides the record source.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/solutionmap/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, stamped "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a command's stages. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

// stage logs msg with the time since the previous stage, e.g.
// "Rendered icicle (84ms)".
func (p *progress) stage(msg string) {
	now := time.Now()
	p.logger.Infof("%s (%s)", msg, now.Sub(p.last).Round(time.Millisecond))
	p.last = now
}

// done logs msg with the time since the progress started.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the command logger, or log.Default() outside
// a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// componentLogger prefixes the command logger for a long-running part such
// as the HTTP server.
func componentLogger(ctx context.Context, name string) *log.Logger {
	return loggerFromContext(ctx).WithPrefix(name)
}
