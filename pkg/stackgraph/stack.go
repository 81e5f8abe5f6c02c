// Package stackgraph decomposes a commit graph into stacks.
//
// A stack is a maximal linear chain of commits: no internal commit branches
// or merges. The decomposition partitions every commit into exactly one
// stack, derives the directed connections between stacks from the underlying
// commit adjacency, and classifies each connection as linear, branch, or
// merge. The result is the stack graph the UI lays out and renders.
//
// Decompose is a pure function of its input: the same commit window always
// produces the same graph, stack ids included. Nothing here performs I/O or
// mutates the commit graph.
package stackgraph

import (
	"slices"

	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

// StackID identifies a stack within one decomposition run. Ids are assigned
// deterministically (stack-0, stack-1, …) in walk order, so identical input
// yields identical ids across runs.
type StackID string

// String returns the id as a plain string.
func (id StackID) String() string { return string(id) }

// ConnectionType classifies how one stack leads into another.
type ConnectionType string

const (
	// ConnectionLinear is a plain continuation: the child stack simply
	// carries on from the parent stack's tip.
	ConnectionLinear ConnectionType = "linear"

	// ConnectionBranch marks a fan-out: several stacks start from the same
	// tip commit.
	ConnectionBranch ConnectionType = "branch"

	// ConnectionMerge marks a fan-in: the child stack begins with a merge
	// commit that joins this stack with at least one other.
	ConnectionMerge ConnectionType = "merge"
)

// Stack is a maximal linear chain of commits, oldest first.
//
// Every commit except the newest has exactly one child, and that child has
// exactly one parent — the chain never branches or merges internally. Stacks
// are created once per decomposition and not modified afterwards.
type Stack struct {
	ID           StackID        `json:"id" bson:"id"`
	Commits      []vcs.CommitID `json:"commits" bson:"commits"`
	ParentStacks []StackID      `json:"parent_stacks,omitempty" bson:"parent_stacks,omitempty"`
	ChildStacks  []StackID      `json:"child_stacks,omitempty" bson:"child_stacks,omitempty"`
}

// Base returns the oldest commit of the stack.
func (s *Stack) Base() vcs.CommitID { return s.Commits[0] }

// Tip returns the newest commit of the stack.
func (s *Stack) Tip() vcs.CommitID { return s.Commits[len(s.Commits)-1] }

// Len returns the number of commits in the stack.
func (s *Stack) Len() int { return len(s.Commits) }

// Connection is a directed, typed edge between two stacks. From is always
// topologically older than To, and at most one connection exists per ordered
// (From, To) pair.
type Connection struct {
	From StackID        `json:"from" bson:"from"`
	To   StackID        `json:"to" bson:"to"`
	Type ConnectionType `json:"type" bson:"type"`
}

// Graph is the complete stack decomposition of one commit window.
//
// RootStacks holds exactly the stacks with no parent stacks; LeafStacks
// exactly those with no child stacks. Every StackID referenced anywhere in
// the graph resolves through Stacks.
type Graph struct {
	Stacks      map[StackID]*Stack
	Connections []Connection
	RootStacks  []StackID
	LeafStacks  []StackID

	order   []StackID              // creation order, for deterministic iteration
	stackOf map[vcs.CommitID]StackID // commit → owning stack
}

// StackIDs returns all stack ids in creation order.
// The returned slice is a read-only view.
func (g *Graph) StackIDs() []StackID { return g.order }

// StackOf returns the stack owning the given commit.
func (g *Graph) StackOf(id vcs.CommitID) (StackID, bool) {
	sid, ok := g.stackOf[id]
	return sid, ok
}

// Connection returns the connection for the ordered (from, to) pair.
func (g *Graph) Connection(from, to StackID) (Connection, bool) {
	for _, c := range g.Connections {
		if c.From == from && c.To == to {
			return c, true
		}
	}
	return Connection{}, false
}

// CommitCount returns the total number of commits across all stacks.
func (g *Graph) CommitCount() int { return len(g.stackOf) }

// appendUnique appends id to ids unless already present. Stack fan-out is
// small, so the linear scan beats carrying a set per stack.
func appendUnique(ids []StackID, id StackID) []StackID {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}
