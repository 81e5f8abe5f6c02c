package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tjorvi/jujutsuka/pkg/pipeline"
	"github.com/tjorvi/jujutsuka/pkg/stackgraph"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// tuiCommand creates the tui command, which browses the stack graph
// interactively.
func (c *CLI) tuiCommand() *cobra.Command {
	var opts logOpts

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the stack graph interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.repo, "repo", "R", "", "repository path (default: working directory)")
	cmd.Flags().StringVarP(&opts.revset, "revset", "r", "", "revset selecting the commit window")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "maximum number of commits to load")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")

	return cmd
}

func (c *CLI) runTUI(cmd *cobra.Command, opts *logOpts) error {
	repo, err := repoPath(opts.repo)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cmd.Context(), opts.noCache)
	if err != nil {
		return err
	}

	po := c.pipelineOptions(repo, opts.revset, opts.limit, false)
	po.Formats = []string{pipeline.FormatJSON}

	result, err := runner.Execute(cmd.Context(), po)
	if err != nil {
		return err
	}

	model := NewStackListModel(result)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// StackListModel - Interactive stack browser
// =============================================================================

// stackRow is one stack prepared for display.
type stackRow struct {
	stack   *stackgraph.Stack
	tip     vcs.Commit
	group   string
	commits []vcs.Commit
}

// StackListModel is the bubbletea model for browsing stacks.
type StackListModel struct {
	Rows     []stackRow
	Cursor   int
	Expanded bool
	Height   int
	Offset   int
}

// NewStackListModel builds the browser model from a pipeline result.
func NewStackListModel(result *pipeline.Result) StackListModel {
	byID := make(map[vcs.CommitID]vcs.Commit, len(result.Commits))
	for _, commit := range result.Commits {
		byID[commit.ID] = commit
	}
	groupOf := map[stackgraph.StackID]string{}
	for _, grp := range result.Layout.ParallelGroups {
		for _, sid := range grp.StackIDs {
			groupOf[sid] = grp.ID
		}
	}

	rows := make([]stackRow, 0, len(result.Graph.Stacks))
	for _, sid := range result.Graph.StackIDs() {
		stack := result.Graph.Stacks[sid]
		commits := make([]vcs.Commit, 0, stack.Len())
		for _, cid := range stack.Commits {
			commits = append(commits, byID[cid])
		}
		rows = append(rows, stackRow{
			stack:   stack,
			tip:     byID[stack.Tip()],
			group:   groupOf[sid],
			commits: commits,
		})
	}

	return StackListModel{
		Rows:   rows,
		Height: 15,
	}
}

func (m StackListModel) Init() tea.Cmd {
	return nil
}

func (m StackListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m StackListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Stacks"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		conflict := ""
		if r.tip.HasConflicts {
			conflict = "!"
		}

		group := r.group
		if group == "" {
			group = "—"
		}

		rows = append(rows, []string{
			cursor,
			r.stack.ID.String(),
			r.tip.ChangeID.Short(),
			r.tip.Subject(),
			fmt.Sprintf("%d", r.stack.Len()),
			group,
			conflict,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Stack", "Change", "Description", "Commits", "Group", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.Offset + row
			if actualIdx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			r := m.Rows[actualIdx]

			base := lipgloss.NewStyle()
			if col == 6 && r.tip.HasConflicts {
				return base.Foreground(colorRed)
			}
			if actualIdx == m.Cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			if col == 2 {
				return base.Foreground(colorBlue)
			}
			if col == 5 && r.group == "" {
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.Expanded && m.Cursor < len(m.Rows) {
		b.WriteString("\n")
		b.WriteString(m.viewCommits(m.Rows[m.Cursor]))
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// viewCommits renders the commit list of the selected stack, newest first.
func (m StackListModel) viewCommits(r stackRow) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("  " + r.stack.ID.String()))
	b.WriteString("\n")
	for i := len(r.commits) - 1; i >= 0; i-- {
		commit := r.commits[i]
		line := "  " + styleChangeID.Render(commit.ChangeID.Short())
		line += " " + StyleDim.Render(commit.ID.Short())
		line += " " + StyleValue.Render(commit.Subject())
		if commit.HasConflicts {
			line += " " + StyleConflict.Render("conflict")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
