package stackgraph

import (
	"slices"
	"testing"

	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

func TestConnectMergeBeatsBranch(t *testing.T) {
	// Tip fans out into a plain child and a merge child: fan-out alone would
	// make both edges branch, but the merge classification takes precedence
	// on the edge into the merge commit.
	g := decompose(t,
		commit("x", 0),
		commit("a", 1),
		commit("b", 2, "a"),
		commit("m", 3, "a", "x"),
	)

	aStack, _ := g.StackOf("a")
	bStack, _ := g.StackOf("b")
	mStack, _ := g.StackOf("m")
	xStack, _ := g.StackOf("x")

	if conn, ok := g.Connection(aStack, mStack); !ok || conn.Type != ConnectionMerge {
		t.Errorf("a→m type = %v (ok=%v), want merge", conn.Type, ok)
	}
	if conn, ok := g.Connection(xStack, mStack); !ok || conn.Type != ConnectionMerge {
		t.Errorf("x→m type = %v (ok=%v), want merge", conn.Type, ok)
	}
	if conn, ok := g.Connection(aStack, bStack); !ok || conn.Type != ConnectionBranch {
		t.Errorf("a→b type = %v (ok=%v), want branch", conn.Type, ok)
	}
}

func TestConnectDedupesMultiEdge(t *testing.T) {
	// An octopus merge joining three parents: each parent stack gets exactly
	// one connection into the merge stack.
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
		commit("d", 3, "a"),
		commit("m", 4, "b", "c", "d"),
	)

	mStack, _ := g.StackOf("m")
	into := 0
	for _, c := range g.Connections {
		if c.To == mStack {
			into++
			if c.Type != ConnectionMerge {
				t.Errorf("%s→%s type = %s, want merge", c.From, c.To, c.Type)
			}
		}
	}
	if into != 3 {
		t.Errorf("connections into merge stack = %d, want 3", into)
	}
	if got := g.Stacks[mStack].ParentStacks; len(got) != 3 {
		t.Errorf("merge stack parents = %v, want 3 entries", got)
	}
}

func TestConnectParentChildSymmetry(t *testing.T) {
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
		commit("d", 3, "b", "c"),
		commit("e", 4, "d"),
	)

	for _, c := range g.Connections {
		from := g.Stacks[c.From]
		to := g.Stacks[c.To]
		if !slices.Contains(from.ChildStacks, c.To) {
			t.Errorf("connection %s→%s not reflected in ChildStacks %v", c.From, c.To, from.ChildStacks)
		}
		if !slices.Contains(to.ParentStacks, c.From) {
			t.Errorf("connection %s→%s not reflected in ParentStacks %v", c.From, c.To, to.ParentStacks)
		}
	}
}

func TestConnectRootsAndLeaves(t *testing.T) {
	// Two disjoint histories: each contributes its own root and leaf.
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("p", 2),
		commit("q", 3, "p"),
	)

	if len(g.RootStacks) != 2 {
		t.Errorf("roots = %v, want 2 entries", g.RootStacks)
	}
	if len(g.LeafStacks) != 2 {
		t.Errorf("leaves = %v, want 2 entries", g.LeafStacks)
	}
}

func TestConnectionLookupMiss(t *testing.T) {
	g := decompose(t, commit("a", 0))
	if _, ok := g.Connection("stack-0", "stack-9"); ok {
		t.Error("lookup of absent connection reported ok")
	}
	if _, ok := g.StackOf(vcs.CommitID("nope")); ok {
		t.Error("lookup of unknown commit reported ok")
	}
}
