package stackgraph

import (
	"slices"
	"testing"
	"time"

	"github.com/tjorvi/jujutsuka/pkg/commitgraph"
	"github.com/tjorvi/jujutsuka/pkg/errors"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

// commit builds a test commit with a timestamp offset in minutes.
func commit(id string, minute int, parents ...string) vcs.Commit {
	ps := make([]vcs.CommitID, len(parents))
	for i, p := range parents {
		ps[i] = vcs.CommitID(p)
	}
	return vcs.Commit{
		ID:        vcs.CommitID(id),
		ChangeID:  vcs.ChangeID("z" + id),
		Parents:   ps,
		Timestamp: time.Date(2026, 1, 1, 12, minute, 0, 0, time.UTC),
	}
}

func decompose(t *testing.T, commits ...vcs.Commit) *Graph {
	t.Helper()
	g, err := DecomposeCommits(commits)
	if err != nil {
		t.Fatalf("DecomposeCommits: %v", err)
	}
	return g
}

// stackCommits returns the commit ids of the stack owning the given commit.
func stackCommits(t *testing.T, g *Graph, member string) []vcs.CommitID {
	t.Helper()
	sid, ok := g.StackOf(vcs.CommitID(member))
	if !ok {
		t.Fatalf("commit %s not assigned to any stack", member)
	}
	return g.Stacks[sid].Commits
}

func TestDecomposeLinearChain(t *testing.T) {
	// Scenario: a → b → c collapses into a single stack with no connections.
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "b"),
	)

	if len(g.Stacks) != 1 {
		t.Fatalf("stacks = %d, want 1", len(g.Stacks))
	}
	got := stackCommits(t, g, "a")
	want := []vcs.CommitID{"a", "b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("commits = %v, want %v", got, want)
	}
	if len(g.Connections) != 0 {
		t.Errorf("connections = %d, want 0", len(g.Connections))
	}
}

func TestDecomposeSimpleBranch(t *testing.T) {
	// Scenario: b and c both branch off a ⇒ three stacks, two branch edges.
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
	)

	if len(g.Stacks) != 3 {
		t.Fatalf("stacks = %d, want 3", len(g.Stacks))
	}
	if len(g.Connections) != 2 {
		t.Fatalf("connections = %d, want 2", len(g.Connections))
	}
	for _, c := range g.Connections {
		if c.Type != ConnectionBranch {
			t.Errorf("connection %s→%s type = %s, want branch", c.From, c.To, c.Type)
		}
	}
}

func TestDecomposeMerge(t *testing.T) {
	// Scenario: diamond a → (b, c) → d. The merge commit d forms its own
	// stack; its incoming edges are merge-typed, the fan-out is branch-typed.
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
		commit("d", 3, "b", "c"),
	)

	if len(g.Stacks) != 4 {
		t.Fatalf("stacks = %d, want 4", len(g.Stacks))
	}

	aStack, _ := g.StackOf("a")
	bStack, _ := g.StackOf("b")
	cStack, _ := g.StackOf("c")
	dStack, _ := g.StackOf("d")

	tests := []struct {
		from, to StackID
		want     ConnectionType
	}{
		{aStack, bStack, ConnectionBranch},
		{aStack, cStack, ConnectionBranch},
		{bStack, dStack, ConnectionMerge},
		{cStack, dStack, ConnectionMerge},
	}
	for _, tt := range tests {
		conn, ok := g.Connection(tt.from, tt.to)
		if !ok {
			t.Errorf("missing connection %s→%s", tt.from, tt.to)
			continue
		}
		if conn.Type != tt.want {
			t.Errorf("connection %s→%s type = %s, want %s", tt.from, tt.to, conn.Type, tt.want)
		}
	}
}

func TestDecomposeMissingParentBecomesRoot(t *testing.T) {
	// Scenario: the sole parent lies outside the window ⇒ treated as a
	// root, no error.
	g := decompose(t,
		commit("b", 0, "outside"),
		commit("c", 1, "b"),
	)

	if len(g.Stacks) != 1 {
		t.Fatalf("stacks = %d, want 1", len(g.Stacks))
	}
	if len(g.RootStacks) != 1 {
		t.Errorf("roots = %d, want 1", len(g.RootStacks))
	}
}

func TestDecomposeEmpty(t *testing.T) {
	g := decompose(t)
	if len(g.Stacks) != 0 || len(g.Connections) != 0 {
		t.Errorf("empty input produced %d stacks, %d connections", len(g.Stacks), len(g.Connections))
	}
	if len(g.RootStacks) != 0 || len(g.LeafStacks) != 0 {
		t.Error("empty input produced roots or leaves")
	}
}

func TestDecomposeMergeStartsOwnStack(t *testing.T) {
	// A merge commit is always a single-commit stack: it neither joins its
	// parents' chains nor swallows its own continuation.
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
		commit("m", 3, "b", "c"),
		commit("e", 4, "m"),
	)

	mCommits := stackCommits(t, g, "m")
	if !slices.Equal(mCommits, []vcs.CommitID{"m"}) {
		t.Errorf("merge stack commits = %v, want [m]", mCommits)
	}

	mStack, _ := g.StackOf("m")
	eStack, _ := g.StackOf("e")
	conn, ok := g.Connection(mStack, eStack)
	if !ok {
		t.Fatal("missing connection from merge stack to its continuation")
	}
	if conn.Type != ConnectionLinear {
		t.Errorf("continuation connection type = %s, want linear", conn.Type)
	}
}

func TestDecomposeCoverage(t *testing.T) {
	// Every commit appears in exactly one stack; no duplicates, no omissions.
	commits := []vcs.Commit{
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
		commit("d", 3, "b", "c"),
		commit("e", 4, "d"),
		commit("f", 5, "d"),
		commit("g", 6, "e", "f"),
	}
	g := decompose(t, commits...)

	seen := make(map[vcs.CommitID]int)
	for _, sid := range g.StackIDs() {
		for _, c := range g.Stacks[sid].Commits {
			seen[c]++
		}
	}
	if len(seen) != len(commits) {
		t.Errorf("covered %d commits, want %d", len(seen), len(commits))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("commit %s assigned %d times", id, n)
		}
	}
}

func TestDecomposeOrderingWithinStack(t *testing.T) {
	// Within a stack, commits[i] is the direct parent of commits[i+1].
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "b"),
		commit("d", 3, "c"),
	)

	cg, _ := commitgraph.Build([]vcs.Commit{
		commit("a", 0), commit("b", 1, "a"), commit("c", 2, "b"), commit("d", 3, "c"),
	})
	if err := g.Validate(cg); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDecomposeDeterministic(t *testing.T) {
	commits := []vcs.Commit{
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
		commit("d", 3, "b", "c"),
	}

	g1 := decompose(t, commits...)
	g2 := decompose(t, commits...)

	d1, err := MarshalGraph(g1)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	d2, err := MarshalGraph(g2)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	if string(d1) != string(d2) {
		t.Error("two runs on identical input produced different graphs")
	}
}

func TestDecomposeTimestampTiesByInputOrder(t *testing.T) {
	// Equal timestamps: the walk starts from the commit supplied first, so
	// stack ids stay stable for identical input.
	g := decompose(t,
		commit("a", 0),
		commit("b", 0, "a"),
		commit("c", 0, "a"),
	)

	aStack, _ := g.StackOf("a")
	if aStack != "stack-0" {
		t.Errorf("stack of a = %s, want stack-0", aStack)
	}
}

func TestDecomposeTimestampInversion(t *testing.T) {
	// A child with an earlier timestamp than its parent is claimed first;
	// the parent's walk must stop instead of stealing it.
	g := decompose(t,
		commit("b", 0, "a"), // child, but earlier timestamp
		commit("a", 5),
	)

	if len(g.Stacks) != 2 {
		t.Fatalf("stacks = %d, want 2", len(g.Stacks))
	}
	aStack, _ := g.StackOf("a")
	bStack, _ := g.StackOf("b")
	conn, ok := g.Connection(aStack, bStack)
	if !ok {
		t.Fatal("missing connection from a's stack to b's stack")
	}
	if conn.Type != ConnectionLinear {
		t.Errorf("connection type = %s, want linear", conn.Type)
	}
}

func TestDecomposeCycleFails(t *testing.T) {
	_, err := DecomposeCommits([]vcs.Commit{
		commit("a", 0, "b"),
		commit("b", 1, "a"),
	})
	if err == nil {
		t.Fatal("expected error for cyclic input")
	}
	if !errors.Is(err, errors.ErrCodeInvariantViolation) {
		t.Errorf("error code = %s, want INVARIANT_VIOLATION", errors.GetCode(err))
	}
}

func TestDecomposeIdempotent(t *testing.T) {
	commits := []vcs.Commit{
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
	}

	g1 := decompose(t, commits...)

	// Deep copy of the input must yield the same structure.
	clone := make([]vcs.Commit, len(commits))
	for i, c := range commits {
		clone[i] = c
		clone[i].Parents = slices.Clone(c.Parents)
	}
	g2 := decompose(t, clone...)

	d1, _ := MarshalGraph(g1)
	d2, _ := MarshalGraph(g2)
	if string(d1) != string(d2) {
		t.Error("deep-copied input produced a different graph")
	}
}

func TestRootAndLeafConsistency(t *testing.T) {
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
		commit("d", 3, "b", "c"),
	)

	for _, sid := range g.StackIDs() {
		s := g.Stacks[sid]
		isRoot := slices.Contains(g.RootStacks, sid)
		if isRoot != (len(s.ParentStacks) == 0) {
			t.Errorf("stack %s: root flag inconsistent with parents %v", sid, s.ParentStacks)
		}
		isLeaf := slices.Contains(g.LeafStacks, sid)
		if isLeaf != (len(s.ChildStacks) == 0) {
			t.Errorf("stack %s: leaf flag inconsistent with children %v", sid, s.ChildStacks)
		}
	}
}
