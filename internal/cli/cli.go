// Package cli implements the studymap command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/txwater/studymap/pkg/buildinfo"
	"github.com/txwater/studymap/pkg/cache"
	"github.com/txwater/studymap/pkg/pipeline"
)

const (
	// appName is the application name used for directories and display.
	appName = "studymap"

	// redisEnv names the environment variable holding a shared cache URL.
	redisEnv = "STUDYMAP_REDIS_URL"

	// memoryCleanup is the sweep interval of the in-process cache tier.
	memoryCleanup = 10 * time.Minute
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// verbose reports whether debug logging is on.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "studymap plots hydrology study-area maps",
		Long:          `studymap renders publication-quality PNG maps of a study area: reservoirs and rivers clipped to a bounding box over a basemap, with a graticule, labelled gauges and a highlighted study rectangle.`,
		Version:       buildinfo.Current(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.scenesCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// cacheFlags selects the imagery cache.
type cacheFlags struct {
	noCache  bool
	redisURL string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the imagery cache")
	cmd.Flags().StringVar(&f.redisURL, "redis", os.Getenv(redisEnv), "shared Redis cache URL (env "+redisEnv+")")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags, logger *log.Logger) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, logger), nil
}

// newCache builds the cache tiers: memory in front of the file cache, or
// of Redis when a URL is given. A file cache that cannot be created falls
// back to memory only.
func (c *CLI) newCache(ctx context.Context, f cacheFlags) (cache.Cache, error) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	mem := cache.NewMemoryCache(memoryCleanup)

	if f.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, f.redisURL, appName+":")
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "url", f.redisURL)
		return cache.NewTiered(mem, rc), nil
	}

	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory", "err", err)
		return mem, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable", "dir", dir, "err", err)
		return mem, nil
	}
	return cache.NewTiered(mem, fc), nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/studymap/).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}
