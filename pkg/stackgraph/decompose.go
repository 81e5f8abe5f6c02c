package stackgraph

import (
	"slices"

	"github.com/tjorvi/jujutsuka/pkg/commitgraph"
	"github.com/tjorvi/jujutsuka/pkg/errors"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

// Decompose partitions the commit graph into stacks and derives the typed
// connections between them.
//
// Every commit ends up in exactly one stack; a stack may hold a single
// commit (common for merge commits and branch points). The only failure mode
// is an INVARIANT_VIOLATION when the input turns out not to be a DAG — see
// the package comment for the purity guarantees.
func Decompose(cg *commitgraph.Graph) (*Graph, error) {
	b := newBuilder(cg)
	if err := b.buildStacks(); err != nil {
		return nil, err
	}
	b.connect()
	return b.graph, nil
}

// DecomposeCommits is a convenience wrapper that builds the commit graph and
// decomposes it in one step.
func DecomposeCommits(commits []vcs.Commit) (*Graph, error) {
	cg, err := commitgraph.Build(commits)
	if err != nil {
		return nil, err
	}
	return Decompose(cg)
}

// Validate checks the structural invariants of a decomposed graph against
// its commit graph and returns nil if all hold:
//
//  1. Every commit belongs to exactly one stack, and stacks cover the window.
//  2. Within a stack, commits[i] is the parent of commits[i+1], every
//     internal commit has exactly one child, and that child has exactly one
//     parent.
//  3. RootStacks/LeafStacks exactly match the stacks with empty parent and
//     child sets, and every referenced StackID resolves.
//
// Decompose output always validates; the check exists for data that crossed
// a serialization boundary.
func (g *Graph) Validate(cg *commitgraph.Graph) error {
	assigned := make(map[vcs.CommitID]StackID, cg.Len())
	for _, sid := range g.order {
		s, ok := g.Stacks[sid]
		if !ok {
			return errors.New(errors.ErrCodeInvariantViolation, "stack %s missing from map", sid)
		}
		if len(s.Commits) == 0 {
			return errors.New(errors.ErrCodeInvariantViolation, "stack %s is empty", sid)
		}
		for _, c := range s.Commits {
			if prev, dup := assigned[c]; dup {
				return errors.New(errors.ErrCodeInvariantViolation,
					"commit %s in stacks %s and %s", c, prev, sid)
			}
			assigned[c] = sid
		}
		if err := g.validateChain(cg, s); err != nil {
			return err
		}
	}
	if len(assigned) != cg.Len() {
		return errors.New(errors.ErrCodeInvariantViolation,
			"stacks cover %d of %d commits", len(assigned), cg.Len())
	}

	for _, sid := range g.order {
		s := g.Stacks[sid]
		wantRoot := len(s.ParentStacks) == 0
		if wantRoot != slices.Contains(g.RootStacks, sid) {
			return errors.New(errors.ErrCodeInvariantViolation, "root set wrong for %s", sid)
		}
		wantLeaf := len(s.ChildStacks) == 0
		if wantLeaf != slices.Contains(g.LeafStacks, sid) {
			return errors.New(errors.ErrCodeInvariantViolation, "leaf set wrong for %s", sid)
		}
	}

	for _, c := range g.Connections {
		if _, ok := g.Stacks[c.From]; !ok {
			return errors.New(errors.ErrCodeInvariantViolation, "connection from unknown stack %s", c.From)
		}
		if _, ok := g.Stacks[c.To]; !ok {
			return errors.New(errors.ErrCodeInvariantViolation, "connection to unknown stack %s", c.To)
		}
	}
	return nil
}

func (g *Graph) validateChain(cg *commitgraph.Graph, s *Stack) error {
	for i := 0; i < len(s.Commits)-1; i++ {
		cur, next := s.Commits[i], s.Commits[i+1]
		children := cg.Children(cur)
		if len(children) != 1 || children[0] != next {
			return errors.New(errors.ErrCodeInvariantViolation,
				"stack %s breaks at %s: not the sole parent of %s", s.ID, cur, next)
		}
		nextNode, ok := cg.Node(next)
		if !ok || len(nextNode.Commit.Parents) != 1 {
			return errors.New(errors.ErrCodeInvariantViolation,
				"stack %s contains internal merge at %s", s.ID, next)
		}
	}
	return nil
}
