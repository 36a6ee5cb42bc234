package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/solutionmap/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached hierarchies and renders",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show where the cache lives and how much it holds",
			RunE:  c.runCacheInfo,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached hierarchy and render on disk",
			RunE:  c.runCacheClear,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			RunE: func(cmd *cobra.Command, args []string) error {
				fc, err := c.openFileCache(cmd)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), fc.Dir())
				return nil
			},
		},
	)
	return cmd
}

// openFileCache opens the configured cache directory, creating it when
// missing.
func (c *CLI) openFileCache(cmd *cobra.Command) (*cache.FileCache, error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) runCacheInfo(cmd *cobra.Command, args []string) error {
	fc, err := c.openFileCache(cmd)
	if err != nil {
		return err
	}
	n, size, err := fc.Stats()
	if err != nil {
		return err
	}
	printInfo("%d entries, %s", n, formatBytes(size))
	printDetail("Directory: %s", fc.Dir())
	return nil
}

func (c *CLI) runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return err
	}
	if n == 0 {
		printInfo("Cache is empty")
	} else {
		printSuccess("Cleared %d cached entries", n)
	}
	printDetail("Directory: %s", dir)
	if cfg.Cache.RedisURL != "" {
		printWarning("Redis entries expire on their own and were not touched")
	}
	return nil
}

// formatBytes renders n with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
