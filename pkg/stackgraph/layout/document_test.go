package layout

import (
	"slices"
	"testing"
)

func TestLayoutRoundTrip(t *testing.T) {
	g := decompose(t,
		commit("d", 0),
		commit("e", 1, "d"),
		commit("f", 2, "d"),
		commit("g", 3, "e", "f"),
	)
	lay := EnhanceForLayout(g)

	data, err := Marshal(lay)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(got.Graph.Stacks) != len(lay.Graph.Stacks) {
		t.Errorf("stacks = %d, want %d", len(got.Graph.Stacks), len(lay.Graph.Stacks))
	}
	if len(got.ParallelGroups) != len(lay.ParallelGroups) {
		t.Fatalf("groups = %d, want %d", len(got.ParallelGroups), len(lay.ParallelGroups))
	}
	for i, grp := range got.ParallelGroups {
		want := lay.ParallelGroups[i]
		if grp.ID != want.ID || !slices.Equal(grp.StackIDs, want.StackIDs) || grp.IsComplete != want.IsComplete {
			t.Errorf("group %d = %+v, want %+v", i, grp, want)
		}
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte(`{bad`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
