package stackgraph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarshalGraphRoundTrip(t *testing.T) {
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
		commit("c", 2, "a"),
		commit("d", 3, "b", "c"),
	)

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	got, err := ReadGraph(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	if len(got.Stacks) != len(g.Stacks) {
		t.Errorf("stacks = %d, want %d", len(got.Stacks), len(g.Stacks))
	}
	if len(got.Connections) != len(g.Connections) {
		t.Errorf("connections = %d, want %d", len(got.Connections), len(g.Connections))
	}

	// The rebuilt commit index must resolve like the original.
	for _, sid := range g.StackIDs() {
		for _, c := range g.Stacks[sid].Commits {
			if owner, ok := got.StackOf(c); !ok || owner != sid {
				t.Errorf("StackOf(%s) = %s, want %s", c, owner, sid)
			}
		}
	}
}

func TestReadGraphRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"InvalidJSON", `{not json}`},
		{
			"DuplicateStackID",
			`{"stacks":[{"id":"stack-0","commits":["a"]},{"id":"stack-0","commits":["b"]}]}`,
		},
		{
			"DanglingConnection",
			`{"stacks":[{"id":"stack-0","commits":["a"]}],"connections":[{"from":"stack-0","to":"stack-9","type":"linear"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadGraph(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestWriteGraphFile(t *testing.T) {
	g := decompose(t,
		commit("a", 0),
		commit("b", 1, "a"),
	)

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Stacks) != 1 {
		t.Errorf("stacks = %d, want 1", len(doc.Stacks))
	}
}
