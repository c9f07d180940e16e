// Package cli implements the vizpipe command-line interface.
//
// This package provides commands for processing raw datasets into
// visualization artifacts, serving those artifacts over HTTP, and managing
// the artifact cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - process: Run the network, tree, and map pipelines over the datasets
//   - serve: Serve processed artifacts over HTTP
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vizpipe/vizpipe/pkg/buildinfo"
	"github.com/vizpipe/vizpipe/pkg/cache"
	"github.com/vizpipe/vizpipe/pkg/config"
	"github.com/vizpipe/vizpipe/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "vizpipe"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance writing logs to w.
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
		Use:          "vizpipe",
		Short:        "Vizpipe turns raw datasets into visualization artifacts",
		Long:         `Vizpipe is a CLI tool that processes graph, hierarchy, and geographic datasets into the JSON, DOT, and GeoJSON artifacts an interactive visualization frontend consumes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.processCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner with the configured cache backend.
func (c *CLI) newRunner(cmd *cobra.Command, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.newCacheBackend(cmd, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(backend, nil, c.Logger), nil
}

// newCacheBackend selects the cache backend from config. Failure to set up
// the file cache degrades to no caching rather than failing the run.
func (c *CLI) newCacheBackend(cmd *cobra.Command, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(cmd.Context(), cfg.Cache.RedisAddr)
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		backend, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without", "err", err)
			return cache.NewNullCache(), nil
		}
		return backend, nil
	}
}

// loadConfig reads the config file if one was given, otherwise defaults.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// cacheDir returns the fallback cache directory using the XDG standard
// (~/.cache/vizpipe/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
