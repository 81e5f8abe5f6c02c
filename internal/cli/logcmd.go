package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjorvi/jujutsuka/pkg/pipeline"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

// logOpts holds the command-line flags for the log command.
type logOpts struct {
	repo       string
	revset     string
	limit      int
	refresh    bool
	noCache    bool
	noParallel bool
}

// logCommand creates the log command, which decomposes the repository
// history and prints a stack summary.
func (c *CLI) logCommand() *cobra.Command {
	var opts logOpts

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Decompose the repository history into stacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLog(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.repo, "repo", "R", "", "repository path (default: working directory)")
	cmd.Flags().StringVarP(&opts.revset, "revset", "r", "", "revset selecting the commit window")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "maximum number of commits to load")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cached commit window")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&opts.noParallel, "no-parallel", false, "skip parallel group detection")

	return cmd
}

func (c *CLI) runLog(cmd *cobra.Command, opts *logOpts) error {
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
	po.Formats = []string{pipeline.FormatJSON}

	result, err := runner.Execute(cmd.Context(), po)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Decomposed %d commits into %d stacks", result.Stats.CommitCount, result.Stats.StackCount))

	printGraph(result)
	return nil
}

// printGraph renders the stack summary to stdout.
func printGraph(result *pipeline.Result) {
	byID := make(map[vcs.CommitID]vcs.Commit, len(result.Commits))
	for _, commit := range result.Commits {
		byID[commit.ID] = commit
	}

	// Which stacks sit inside a parallel group, for annotation.
	groupOf := map[string]string{}
	for _, grp := range result.Layout.ParallelGroups {
		for _, sid := range grp.StackIDs {
			groupOf[sid.String()] = grp.ID
		}
	}

	fmt.Println(StyleTitle.Render("Stacks"))
	for _, sid := range result.Graph.StackIDs() {
		stack := result.Graph.Stacks[sid]
		tip := byID[stack.Tip()]

		line := "  " + StyleHighlight.Render(sid.String())
		line += " " + styleChangeID.Render(tip.ChangeID.Short())
		line += " " + StyleValue.Render(tip.Subject())
		if stack.Len() > 1 {
			line += " " + StyleDim.Render(fmt.Sprintf("(+%d more)", stack.Len()-1))
		}
		if tip.HasConflicts {
			line += " " + StyleConflict.Render("conflict")
		}
		if grp, ok := groupOf[sid.String()]; ok {
			line += " " + StyleDim.Render("["+grp+"]")
		}
		fmt.Println(line)
	}

	if len(result.Graph.Connections) > 0 {
		fmt.Println()
		fmt.Println(StyleTitle.Render("Connections"))
		for _, conn := range result.Graph.Connections {
			fmt.Printf("  %s %s %s %s\n",
				StyleValue.Render(conn.From.String()),
				StyleDim.Render(iconArrow),
				StyleValue.Render(conn.To.String()),
				StyleDim.Render("("+string(conn.Type)+")"))
		}
	}

	fmt.Println()
	printStats(result.Stats.CommitCount, result.Stats.StackCount, result.Stats.GroupCount,
		result.CacheInfo.DecomposeHit)
}
