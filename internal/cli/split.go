package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tjorvi/jujutsuka/pkg/vcs/hunks"
	"github.com/tjorvi/jujutsuka/pkg/vcs/jj"
)

// splitOpts holds the command-line flags for the split command.
type splitOpts struct {
	repo   string
	lines  string
	dryRun bool
}

// splitCommand creates the split command, which moves selected files (or
// line ranges) of a revision into a new child revision.
func (c *CLI) splitCommand() *cobra.Command {
	var opts splitOpts

	cmd := &cobra.Command{
		Use:   "split <revision> [path...]",
		Short: "Split a revision by file or line ranges",
		Long: `Split moves part of a revision into a new child revision.

Paths select whole files. The --lines flag selects line ranges instead,
using path:start-end syntax (comma-separated):

  jujutsuka split xyz --lines "cmd/main.go:10-42,README.md:1-5"

With --lines, the selected ranges are previewed and the files containing
them are passed to the engine.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSplit(cmd, args[0], args[1:], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.repo, "repo", "R", "", "repository path (default: working directory)")
	cmd.Flags().StringVar(&opts.lines, "lines", "", "line ranges to split out (path:start-end, comma-separated)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "preview the selection without running the split")

	return cmd
}

func (c *CLI) runSplit(cmd *cobra.Command, revision string, paths []string, opts *splitOpts) error {
	repo, err := repoPath(opts.repo)
	if err != nil {
		return err
	}

	if opts.lines != "" {
		ranges, err := hunks.ParseRanges(strings.Split(opts.lines, ","))
		if err != nil {
			return err
		}
		if err := previewRanges(repo, ranges); err != nil {
			return err
		}
		paths = append(paths, hunks.Files(ranges)...)
	}

	if opts.dryRun {
		printInfo("Dry run: would split %s across %d path(s)", revision, len(paths))
		return nil
	}

	engine, err := jj.New(repo, c.Logger)
	if err != nil {
		return err
	}
	if err := engine.Split(cmd.Context(), revision, paths); err != nil {
		return err
	}
	printSuccess("Split %s", revision)
	return nil
}

// previewRanges prints the selected and remaining line counts per file.
// Files that cannot be read are skipped; the engine will surface real
// errors when the split runs.
func previewRanges(repo string, ranges []hunks.LineRange) error {
	if len(ranges) == 0 {
		return fmt.Errorf("no line ranges given")
	}
	for _, file := range hunks.Files(ranges) {
		data, err := os.ReadFile(filepath.Join(repo, file))
		if err != nil {
			printDetail("%s: %v", file, err)
			continue
		}
		selected := hunks.Extract(data, ranges, file)
		remaining := hunks.Complement(data, ranges, file)
		printDetail("%s: %d line(s) selected, %d remaining", file, lineCount(selected), lineCount(remaining))
	}
	return nil
}

func lineCount(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	s := strings.TrimSuffix(string(content), "\n")
	return strings.Count(s, "\n") + 1
}
