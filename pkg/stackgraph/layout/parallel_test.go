package layout

import (
	"slices"
	"testing"
	"time"

	"github.com/tjorvi/jujutsuka/pkg/stackgraph"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

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

func decompose(t *testing.T, commits ...vcs.Commit) *stackgraph.Graph {
	t.Helper()
	g, err := stackgraph.DecomposeCommits(commits)
	if err != nil {
		t.Fatalf("DecomposeCommits: %v", err)
	}
	return g
}

func TestDetectClosedDiamond(t *testing.T) {
	// Scenario: a→b→c→d, then e and f in parallel off d, both merging into g.
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "b"),
		commit("d", 3, "c"),
		commit("e", 4, "d"),
		commit("f", 5, "d"),
		commit("g", 6, "e", "f"),
	)

	groups := DetectParallelGroups(g)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}

	grp := groups[0]
	if grp.ID != "parallel-group-0" {
		t.Errorf("id = %s, want parallel-group-0", grp.ID)
	}
	eStack, _ := g.StackOf("e")
	fStack, _ := g.StackOf("f")
	want := []stackgraph.StackID{eStack, fStack}
	if !slices.Equal(grp.StackIDs, want) {
		t.Errorf("members = %v, want %v", grp.StackIDs, want)
	}
	if !grp.IsComplete {
		t.Error("closed diamond reported incomplete")
	}
}

func TestDetectOpenDiamondIncomplete(t *testing.T) {
	// e and f share a parent but never merge back: parallel, not complete.
	g := decompose(t,
		commit("d", 0),
		commit("e", 1, "d"),
		commit("f", 2, "d"),
	)

	groups := DetectParallelGroups(g)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if groups[0].IsComplete {
		t.Error("open diamond reported complete")
	}
	if len(groups[0].ChildStacks) != 0 {
		t.Errorf("child stacks = %v, want empty", groups[0].ChildStacks)
	}
}

func TestDetectPartialMergeIncomplete(t *testing.T) {
	// e merges into g but f carries on past it: signatures differ, so the
	// would-be group dissolves rather than reporting a false diamond.
	g := decompose(t,
		commit("d", 0),
		commit("e", 1, "d"),
		commit("f", 2, "d"),
		commit("g", 3, "e", "f"),
		commit("h", 4, "f"),
	)

	for _, grp := range DetectParallelGroups(g) {
		if grp.IsComplete {
			t.Errorf("group %s reported complete", grp.ID)
		}
	}
}

func TestDetectNoGroupsOnLinearHistory(t *testing.T) {
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "b"),
	)
	if groups := DetectParallelGroups(g); len(groups) != 0 {
		t.Errorf("groups = %v, want none", groups)
	}
}

func TestDetectMultipleGroups(t *testing.T) {
	// Two independent diamonds produce two groups with sequential ids.
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
		commit("m1", 3, "b", "c"),
		commit("x", 4, "m1"),
		commit("y", 5, "m1"),
		commit("m2", 6, "x", "y"),
	)

	groups := DetectParallelGroups(g)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].ID != "parallel-group-0" || groups[1].ID != "parallel-group-1" {
		t.Errorf("ids = %s, %s; want sequential", groups[0].ID, groups[1].ID)
	}
	for _, grp := range groups {
		if !grp.IsComplete {
			t.Errorf("group %s reported incomplete", grp.ID)
		}
	}
}

func TestDetectDoesNotMutateGraph(t *testing.T) {
	commits := []vcs.Commit{
		commit("d", 0),
		commit("e", 1, "d"),
		commit("f", 2, "d"),
		commit("g", 3, "e", "f"),
	}
	g := decompose(t, commits...)

	before, err := stackgraph.MarshalGraph(g)
	if err != nil {
		t.Fatal(err)
	}
	DetectParallelGroups(g)
	lay := EnhanceForLayout(g)
	after, err := stackgraph.MarshalGraph(g)
	if err != nil {
		t.Fatal(err)
	}

	if string(before) != string(after) {
		t.Error("detection mutated the input graph")
	}
	if lay.Graph != g {
		t.Error("layout does not reference the input graph")
	}
	if len(lay.ParallelGroups) != 1 {
		t.Errorf("layout groups = %d, want 1", len(lay.ParallelGroups))
	}
}

func TestDetectDeterministic(t *testing.T) {
	commits := []vcs.Commit{
		commit("d", 0),
		commit("e", 1, "d"),
		commit("f", 2, "d"),
		commit("g", 3, "e", "f"),
	}
	g := decompose(t, commits...)

	g1 := DetectParallelGroups(g)
	g2 := DetectParallelGroups(g)
	if !slices.EqualFunc(g1, g2, func(a, b ParallelGroup) bool {
		return a.ID == b.ID && slices.Equal(a.StackIDs, b.StackIDs) && a.IsComplete == b.IsComplete
	}) {
		t.Error("two detections on the same graph differ")
	}
}
