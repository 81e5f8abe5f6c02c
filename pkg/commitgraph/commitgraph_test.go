package commitgraph

import (
	"testing"
	"time"

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

func TestBuild(t *testing.T) {
	tests := []struct {
		name         string
		commits      []vcs.Commit
		wantLen      int
		wantChildren map[string][]string
	}{
		{
			name:    "Empty",
			commits: nil,
			wantLen: 0,
		},
		{
			name: "LinearChain",
			commits: []vcs.Commit{
				commit("a", 0),
				commit("b", 1, "a"),
				commit("c", 2, "b"),
			},
			wantLen: 3,
			wantChildren: map[string][]string{
				"a": {"b"},
				"b": {"c"},
				"c": nil,
			},
		},
		{
			name: "BranchFanOut",
			commits: []vcs.Commit{
				commit("a", 0),
				commit("b", 1, "a"),
				commit("c", 2, "a"),
			},
			wantLen: 3,
			wantChildren: map[string][]string{
				"a": {"b", "c"},
			},
		},
		{
			name: "MergeFanIn",
			commits: []vcs.Commit{
				commit("a", 0),
				commit("b", 1, "a"),
				commit("c", 2, "a"),
				commit("d", 3, "b", "c"),
			},
			wantLen: 4,
			wantChildren: map[string][]string{
				"b": {"d"},
				"c": {"d"},
			},
		},
		{
			name: "MissingParentIgnored",
			commits: []vcs.Commit{
				commit("b", 1, "outside"),
				commit("c", 2, "b"),
			},
			wantLen: 2,
			wantChildren: map[string][]string{
				"b": {"c"},
			},
		},
		{
			name: "DuplicateIDsCollapse",
			commits: []vcs.Commit{
				commit("a", 0),
				commit("a", 5),
				commit("b", 1, "a"),
			},
			wantLen: 2,
			wantChildren: map[string][]string{
				"a": {"b"},
			},
		},
		{
			name: "ChildrenFollowInputOrder",
			commits: []vcs.Commit{
				commit("a", 0),
				commit("c", 2, "a"), // later timestamp supplied first
				commit("b", 1, "a"),
			},
			wantLen: 3,
			wantChildren: map[string][]string{
				"a": {"c", "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.commits)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}

			if g.Len() != tt.wantLen {
				t.Errorf("Len = %d, want %d", g.Len(), tt.wantLen)
			}

			for id, want := range tt.wantChildren {
				got := g.Children(vcs.CommitID(id))
				if len(got) != len(want) {
					t.Fatalf("Children(%s) = %v, want %v", id, got, want)
				}
				for i := range want {
					if got[i] != vcs.CommitID(want[i]) {
						t.Errorf("Children(%s)[%d] = %s, want %s", id, i, got[i], want[i])
					}
				}
			}
		})
	}
}

func TestBuildSelfParent(t *testing.T) {
	_, err := Build([]vcs.Commit{commit("a", 0, "a")})
	if err == nil {
		t.Fatal("expected error for self-parent commit")
	}
	if !errors.Is(err, errors.ErrCodeInvariantViolation) {
		t.Errorf("error code = %s, want INVARIANT_VIOLATION", errors.GetCode(err))
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	commits := []vcs.Commit{
		commit("a", 0),
		commit("b", 1, "a"),
	}
	before := make([]vcs.Commit, len(commits))
	copy(before, commits)

	if _, err := Build(commits); err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i := range commits {
		if commits[i].ID != before[i].ID || len(commits[i].Parents) != len(before[i].Parents) {
			t.Errorf("input commit %d changed", i)
		}
	}
}

func TestGraphLookups(t *testing.T) {
	g, err := Build([]vcs.Commit{
		commit("a", 0),
		commit("b", 1, "a"),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, ok := g.Node("a"); !ok {
		t.Error("Node(a) not found")
	}
	if _, ok := g.Node("nope"); ok {
		t.Error("Node(nope) should not be found")
	}
	if got := g.ChildCount("a"); got != 1 {
		t.Errorf("ChildCount(a) = %d, want 1", got)
	}
	if got := g.ChildCount("nope"); got != 0 {
		t.Errorf("ChildCount(nope) = %d, want 0", got)
	}

	ids := g.CommitIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("CommitIDs = %v, want [a b]", ids)
	}
}
