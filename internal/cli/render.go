package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tjorvi/jujutsuka/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	repo       string
	revset     string
	limit      int
	output     string
	formats    []string
	theme      string
	refresh    bool
	noCache    bool
	noParallel bool
}

// renderCommand creates the render command for generating graph artifacts.
// It supports DOT, SVG, and JSON output, written to files next to the
// repository or to an explicit --output base path.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the stack graph to DOT, SVG, or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.theme != "" {
				if err := pipeline.ValidateTheme(opts.theme); err != nil {
					return err
				}
			}
			return c.runRender(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.repo, "repo", "R", "", "repository path (default: working directory)")
	cmd.Flags().StringVarP(&opts.revset, "revset", "r", "", "revset selecting the commit window")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "maximum number of commits to load")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "rendering theme: light (default), dark")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cached commit window")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&opts.noParallel, "no-parallel", false, "skip parallel group detection")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	repo, err := repoPath(opts.repo)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cmd.Context(), opts.noCache)
	if err != nil {
		return err
	}

	p := newProgress(c.Logger)
	po := c.pipelineOptions(repo, opts.revset, opts.limit, opts.refresh)
	po.SkipParallel = opts.noParallel
	po.Formats = opts.formats
	if opts.theme != "" {
		po.Theme = opts.theme
	}

	result, err := runner.Execute(cmd.Context(), po)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Rendered %d stacks", result.Stats.StackCount))

	base := renderBasePath(opts.output, repo)
	for _, format := range opts.formats {
		path := base + "." + format
		if opts.output != "" && len(opts.formats) == 1 {
			path = opts.output
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.CommitCount, result.Stats.StackCount, result.Stats.GroupCount,
		result.CacheInfo.RenderHit)
	return nil
}

// renderBasePath derives the base output path from the output flag and the
// repository path. A known format extension on the output flag is stripped
// so multiple formats do not stack extensions.
func renderBasePath(output, repo string) string {
	if output == "" {
		return filepath.Join(".", filepath.Base(repo)+"-stacks")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
