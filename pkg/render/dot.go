// Package render turns a laid-out stack graph into viewable artifacts.
//
// The DOT output is the source of truth; SVG is produced by handing the DOT
// text to Graphviz. Pixel geometry (node positions, curve routing) is
// entirely Graphviz's concern.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tjorvi/jujutsuka/pkg/stackgraph"
	"github.com/tjorvi/jujutsuka/pkg/stackgraph/layout"
)

// Themes for DOT output.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Options configures stack graph rendering.
type Options struct {
	// Theme selects the color scheme (ThemeLight or ThemeDark).
	Theme string

	// Detailed lists every commit id inside the stack label.
	// When false, only the tip and the commit count are shown.
	Detailed bool
}

// ToDOT converts a laid-out stack graph to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
//
// Connection types are distinguished visually: merge edges are dashed with a
// filled arrowhead, branch edges are solid, linear edges are bold. Parallel
// groups become subgraph clusters; a complete group (closed diamond) gets a
// solid border, an incomplete one a dashed border.
func ToDOT(lay layout.Layout, opts Options) string {
	colors := themeColors(opts.Theme)

	var buf bytes.Buffer
	buf.WriteString("digraph stacks {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=%q, fontcolor=%q, color=%q, fontsize=12, margin=\"0.2,0.1\"];\n",
		colors.fill, colors.font, colors.line)
	fmt.Fprintf(&buf, "  edge [color=%q];\n", colors.line)
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	grouped := make(map[stackgraph.StackID]bool)
	for _, grp := range lay.ParallelGroups {
		for _, sid := range grp.StackIDs {
			grouped[sid] = true
		}
	}

	for i, grp := range lay.ParallelGroups {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", grp.ID)
		if grp.IsComplete {
			fmt.Fprintf(&buf, "    style=solid;\n")
		} else {
			fmt.Fprintf(&buf, "    style=dashed;\n")
		}
		fmt.Fprintf(&buf, "    color=%q;\n", colors.cluster)
		for _, sid := range grp.StackIDs {
			writeNode(&buf, "    ", lay.Graph.Stacks[sid], opts)
		}
		buf.WriteString("  }\n")
	}

	for _, sid := range lay.Graph.StackIDs() {
		if grouped[sid] {
			continue
		}
		writeNode(&buf, "  ", lay.Graph.Stacks[sid], opts)
	}

	buf.WriteString("\n")
	for _, c := range lay.Graph.Connections {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.From, c.To, edgeAttrs(c.Type))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, indent string, s *stackgraph.Stack, opts Options) {
	fmt.Fprintf(buf, "%s%q [label=%q];\n", indent, s.ID, stackLabel(s, opts))
}

func stackLabel(s *stackgraph.Stack, opts Options) string {
	if opts.Detailed {
		ids := make([]string, len(s.Commits))
		for i, c := range s.Commits {
			ids[i] = c.Short()
		}
		return string(s.ID) + "\n" + strings.Join(ids, "\n")
	}
	if s.Len() == 1 {
		return fmt.Sprintf("%s\n%s", s.ID, s.Tip().Short())
	}
	return fmt.Sprintf("%s\n%s (%d commits)", s.ID, s.Tip().Short(), s.Len())
}

func edgeAttrs(t stackgraph.ConnectionType) string {
	switch t {
	case stackgraph.ConnectionMerge:
		return "style=dashed, arrowhead=normal"
	case stackgraph.ConnectionBranch:
		return "style=solid, arrowhead=open"
	default:
		return "style=bold"
	}
}

type palette struct {
	fill    string
	font    string
	line    string
	cluster string
}

func themeColors(theme string) palette {
	if theme == ThemeDark {
		return palette{fill: "#2d2d2d", font: "#e6e6e6", line: "#888888", cluster: "#555555"}
	}
	return palette{fill: "white", font: "black", line: "#333333", cluster: "#999999"}
}
