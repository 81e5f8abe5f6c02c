package stackgraph

import (
	"fmt"
	"slices"

	"github.com/tjorvi/jujutsuka/pkg/commitgraph"
	"github.com/tjorvi/jujutsuka/pkg/errors"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

// builder holds the working state of one decomposition run. The stack id
// counter lives here, never at package level, so concurrent decompositions
// cannot observe each other.
type builder struct {
	commits *commitgraph.Graph
	graph   *Graph
	visited map[vcs.CommitID]bool
	nextID  int
}

func newBuilder(cg *commitgraph.Graph) *builder {
	return &builder{
		commits: cg,
		graph: &Graph{
			Stacks:  make(map[StackID]*Stack),
			stackOf: make(map[vcs.CommitID]StackID, cg.Len()),
		},
		visited: make(map[vcs.CommitID]bool, cg.Len()),
	}
}

// buildStacks partitions every commit into exactly one stack.
//
// Commits are visited in timestamp order (ascending, stable, ties broken by
// input order) so that stack ids are reproducible across runs on identical
// input. From each unvisited commit the walk follows sole-child links
// forward, closing the stack when the chain would branch, merge, or run into
// a merge commit.
//
// The stopping conditions are load-bearing: connection classification and
// parallel-group detection both depend on the exact boundary placement, so
// they must not be "improved" in isolation.
func (b *builder) buildStacks() error {
	ids := slices.Clone(b.commits.CommitIDs())
	slices.SortStableFunc(ids, func(a, c vcs.CommitID) int {
		na, _ := b.commits.Node(a)
		nc, _ := b.commits.Node(c)
		return na.Commit.Timestamp.Compare(nc.Commit.Timestamp)
	})

	for _, id := range ids {
		if b.visited[id] {
			continue
		}
		if err := b.walk(id); err != nil {
			return err
		}
	}
	return nil
}

// walk grows a single stack forward from start.
func (b *builder) walk(start vcs.CommitID) error {
	var chain []vcs.CommitID
	inChain := make(map[vcs.CommitID]bool)

	cur := start
	for {
		chain = append(chain, cur)
		inChain[cur] = true
		b.visited[cur] = true

		node, _ := b.commits.Node(cur)

		// Close the stack at any structural boundary: fan-out (or dead
		// end), a merge commit of its own, or a sole child that is itself
		// a merge point and must start its own stack.
		if len(node.Children) != 1 {
			break
		}
		if node.Commit.IsMerge() {
			break
		}
		child := node.Children[0]
		childNode, _ := b.commits.Node(child)
		if childNode.Commit.IsMerge() {
			break
		}

		if inChain[child] {
			// Reachable from itself through children: the input is not a
			// DAG. Acyclicity is a precondition we rely on but only verify
			// to the extent the walk exposes it.
			return errors.New(errors.ErrCodeInvariantViolation,
				"cycle through commit %s", child)
		}
		if b.visited[child] {
			// The child was already claimed by an earlier walk (timestamps
			// out of topological order). The chain ends here.
			break
		}

		cur = child
	}

	b.addStack(chain)
	return nil
}

func (b *builder) addStack(commits []vcs.CommitID) {
	id := StackID(fmt.Sprintf("stack-%d", b.nextID))
	b.nextID++

	s := &Stack{ID: id, Commits: commits}
	b.graph.Stacks[id] = s
	b.graph.order = append(b.graph.order, id)
	for _, c := range commits {
		b.graph.stackOf[c] = id
	}
}
