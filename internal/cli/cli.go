// Package cli implements the jujutsuka command-line interface.
//
// This package provides commands for reading jj repositories, decomposing
// their histories into stack graphs, rendering visualizations, browsing
// stacks interactively, and running the HTTP server. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - log: Decompose the repository history and print the stack summary
//   - render: Generate DOT, SVG, or JSON artifacts
//   - tui: Browse the stack graph interactively
//   - split: Split a revision by file or line ranges
//   - serve: Run the HTTP API server
//   - cache: Manage the pipeline result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tjorvi/jujutsuka/pkg/buildinfo"
	"github.com/tjorvi/jujutsuka/pkg/cache"
	"github.com/tjorvi/jujutsuka/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "jujutsuka"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and the on-disk
// configuration, if present.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: LoadConfigOrDefault(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Jujutsuka visualizes jj repositories as stack graphs",
		Long:         `Jujutsuka decomposes jj (Jujutsu) commit histories into maximal linear stacks, detects parallel development tracks, and renders the resulting graph for browsing and editing.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.logCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.splitCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. With --no-cache the
// runner uses a null cache; otherwise results land in the file cache
// (or Redis, when configured).
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(backend, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.RedisURL != "" {
		backend, err := cache.NewRedisCacheFromURL(ctx, c.Config.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		// Redis marks transient failures retryable; a blip should not
		// fail the run.
		return cache.NewRetrying(backend), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory, preferring the configured path and
// falling back to the XDG standard (~/.cache/jujutsuka/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return defaultCacheDir()
}

func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// repoPath resolves the repository path from the --repo flag, falling back
// to the working directory.
func repoPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	return os.Getwd()
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions assembles pipeline options from the config and flags.
func (c *CLI) pipelineOptions(repo, revset string, limit int, refresh bool) pipeline.Options {
	opts := pipeline.Options{
		RepoPath: repo,
		Revset:   revset,
		Limit:    limit,
		Refresh:  refresh,
		Theme:    c.Config.Render.Theme,
		Logger:   c.Logger,
	}
	if opts.Revset == "" {
		opts.Revset = c.Config.Log.Revset
	}
	if opts.Limit == 0 {
		opts.Limit = c.Config.Log.Limit
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
