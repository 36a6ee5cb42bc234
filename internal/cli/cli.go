package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/solutionmap/pkg/buildinfo"
	"github.com/matzehuels/solutionmap/pkg/cache"
	"github.com/matzehuels/solutionmap/pkg/config"
	"github.com/matzehuels/solutionmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "solutionmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag.
	configPath string
	// source overrides the configured record source path.
	source string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Solutionmap draws category hierarchies as interactive diagrams",
		Long:         `Solutionmap turns flat category, subcategory and solution tables into a hierarchy and draws it as a collapsible tree, a zoomable icicle or a zoomable sunburst.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", config.FileName, "configuration file")
	root.PersistentFlags().StringVarP(&c.source, "source", "s", "", "record bundle (.json) or CSV directory, overriding the configuration")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the configuration file. The default file may be
// missing; an explicitly named one may not.
func (c *CLI) loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	var err error
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadOptional(c.configPath)
	}
	if err != nil {
		return cfg, err
	}
	if c.source != "" {
		cfg.Source.Kind = ""
		cfg.Source.Path = c.source
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Instrument(backend), keyerFor(cfg), c.Logger), nil
}

// newCache selects Redis when configured, the file cache otherwise.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// keyerFor scopes MongoDB datasets by database so several can share one
// cache.
func keyerFor(cfg config.Config) cache.Keyer {
	if cfg.Source.Kind == config.SourceMongo {
		return cache.NewScopedKeyer(nil, "db:"+cfg.Source.Database+":")
	}
	return cache.NewDefaultKeyer()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the user cache
// directory (~/.cache/solutionmap/ on Linux).
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// splitList parses a comma-separated flag into a lowercase slice.
func splitList(s, def string) []string {
	if s == "" {
		return []string{def}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
