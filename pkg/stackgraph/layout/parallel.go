// Package layout post-processes a stack graph for presentation.
//
// Detection is strictly read-only: the input graph is never mutated, and
// EnhanceForLayout attaches its results to a fresh value. Group ids are
// assigned per call, so identical input yields identical output.
package layout

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tjorvi/jujutsuka/pkg/stackgraph"
)

// ParallelGroup is a set of stacks sharing an identical parent-stack and
// child-stack signature, candidates for having been developed concurrently.
//
// IsComplete reports a closed diamond: the shared child set is non-empty and
// every member reaches every shared child through a merge-typed connection.
type ParallelGroup struct {
	ID           string               `json:"id" bson:"id"`
	StackIDs     []stackgraph.StackID `json:"stack_ids" bson:"stack_ids"`
	ParentStacks []stackgraph.StackID `json:"parent_stacks,omitempty" bson:"parent_stacks,omitempty"`
	ChildStacks  []stackgraph.StackID `json:"child_stacks,omitempty" bson:"child_stacks,omitempty"`
	IsComplete   bool                 `json:"is_complete" bson:"is_complete"`
}

// Layout is a stack graph enriched with parallel-group hints.
type Layout struct {
	Graph          *stackgraph.Graph
	ParallelGroups []ParallelGroup
}

// DetectParallelGroups finds sets of at least two stacks with identical
// sorted parent and child stack sets. The graph is not modified.
func DetectParallelGroups(g *stackgraph.Graph) []ParallelGroup {
	groups := make(map[string][]stackgraph.StackID)
	var order []string

	for _, sid := range g.StackIDs() {
		s := g.Stacks[sid]
		key := signature(s.ParentStacks, s.ChildStacks)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], sid)
	}

	var out []ParallelGroup
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		rep := g.Stacks[members[0]]
		group := ParallelGroup{
			ID:           fmt.Sprintf("parallel-group-%d", len(out)),
			StackIDs:     members,
			ParentStacks: sortedIDs(rep.ParentStacks),
			ChildStacks:  sortedIDs(rep.ChildStacks),
		}
		group.IsComplete = diamondCloses(g, members, group.ChildStacks)
		out = append(out, group)
	}
	return out
}

// EnhanceForLayout wraps the graph with detection results. The input graph is
// shared, not copied; callers must treat it as immutable either way.
func EnhanceForLayout(g *stackgraph.Graph) Layout {
	return Layout{
		Graph:          g,
		ParallelGroups: DetectParallelGroups(g),
	}
}

// diamondCloses reports whether every member reaches every shared child via a
// merge connection. An empty child set never closes.
func diamondCloses(g *stackgraph.Graph, members, children []stackgraph.StackID) bool {
	if len(children) == 0 {
		return false
	}
	for _, member := range members {
		for _, child := range children {
			conn, ok := g.Connection(member, child)
			if !ok || conn.Type != stackgraph.ConnectionMerge {
				return false
			}
		}
	}
	return true
}

// signature builds an order-independent composite key from the parent and
// child sets. Stack ids contain no control characters, so the separators
// cannot collide with id content.
func signature(parents, children []stackgraph.StackID) string {
	var b strings.Builder
	for _, id := range sortedIDs(parents) {
		b.WriteString(string(id))
		b.WriteByte(0x1f)
	}
	b.WriteByte(0x1e)
	for _, id := range sortedIDs(children) {
		b.WriteString(string(id))
		b.WriteByte(0x1f)
	}
	return b.String()
}

func sortedIDs(ids []stackgraph.StackID) []stackgraph.StackID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}
