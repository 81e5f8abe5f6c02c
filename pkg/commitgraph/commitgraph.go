// Package commitgraph converts a flat commit list into an adjacency
// structure with explicit child pointers.
//
// The engine's log output only carries parent pointers; everything downstream
// (stack partitioning, connection classification) needs to walk forward from
// a commit to its children. Build inverts the parent relation once, restricted
// to the commits actually present in the input: a parent referenced but not
// supplied — an ancestor outside the requested revision window — is treated
// as external and simply not linked. Partial history is normal, not an error.
//
// The graph is immutable after Build and holds no references that would let
// callers mutate the input slice through it.
package commitgraph

import (
	"github.com/tjorvi/jujutsuka/pkg/errors"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

// Node pairs a commit with the ids of its children inside the visible window.
// Children appear in the order their commits were supplied to Build; no
// additional sorting is applied.
type Node struct {
	Commit   vcs.Commit
	Children []vcs.CommitID
}

// Graph is the child-linked view of a commit window.
type Graph struct {
	nodes map[vcs.CommitID]*Node
	order []vcs.CommitID // input order, first occurrence per id
}

// Build constructs the graph from a flat commit list.
//
// Duplicate ids are collapsed to a single logical node (first occurrence
// wins). A commit that lists itself as a parent violates the acyclicity
// contract and fails with an INVARIANT_VIOLATION error; a parent id absent
// from the input is silently ignored. Empty input yields an empty graph.
//
// Runs in O(commits + parent edges).
func Build(commits []vcs.Commit) (*Graph, error) {
	g := &Graph{
		nodes: make(map[vcs.CommitID]*Node, len(commits)),
		order: make([]vcs.CommitID, 0, len(commits)),
	}

	for _, c := range commits {
		for _, p := range c.Parents {
			if p == c.ID {
				return nil, errors.New(errors.ErrCodeInvariantViolation,
					"commit %s lists itself as a parent", c.ID)
			}
		}
		if _, seen := g.nodes[c.ID]; seen {
			continue
		}
		g.nodes[c.ID] = &Node{Commit: c}
		g.order = append(g.order, c.ID)
	}

	for _, id := range g.order {
		c := g.nodes[id].Commit
		for _, p := range c.Parents {
			parent, ok := g.nodes[p]
			if !ok {
				continue // ancestor outside the visible window
			}
			parent.Children = append(parent.Children, id)
		}
	}

	return g, nil
}

// Node returns the node for the given commit id, or nil, false if the commit
// is not part of the window.
func (g *Graph) Node(id vcs.CommitID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Children returns the child ids of a commit, in input order.
// Returns nil for unknown ids or commits without children. The returned
// slice is a read-only view.
func (g *Graph) Children(id vcs.CommitID) []vcs.CommitID {
	if n, ok := g.nodes[id]; ok {
		return n.Children
	}
	return nil
}

// ChildCount returns the number of children of a commit inside the window.
func (g *Graph) ChildCount(id vcs.CommitID) int {
	if n, ok := g.nodes[id]; ok {
		return len(n.Children)
	}
	return 0
}

// CommitIDs returns all commit ids in input order (duplicates collapsed).
// The returned slice is a read-only view.
func (g *Graph) CommitIDs() []vcs.CommitID { return g.order }

// Len returns the number of distinct commits in the graph.
func (g *Graph) Len() int { return len(g.nodes) }
