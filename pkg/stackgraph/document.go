package stackgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

// =============================================================================
// Document - Stack Graph Serialization
// =============================================================================

// Document is the canonical serialization format for stack graphs.
// Used for API responses, snapshot storage, and caching.
//
// The format is designed for round-trip fidelity: decompose → export →
// re-import produces a structurally identical graph. Stacks are emitted in
// their deterministic creation order.
type Document struct {
	Stacks      []StackRecord `json:"stacks" bson:"stacks"`
	Connections []Connection  `json:"connections,omitempty" bson:"connections,omitempty"`
	RootStacks  []StackID     `json:"root_stacks,omitempty" bson:"root_stacks,omitempty"`
	LeafStacks  []StackID     `json:"leaf_stacks,omitempty" bson:"leaf_stacks,omitempty"`
}

// StackRecord is the flat serialized form of a Stack.
type StackRecord struct {
	ID           StackID        `json:"id" bson:"id"`
	Commits      []vcs.CommitID `json:"commits" bson:"commits"`
	ParentStacks []StackID      `json:"parent_stacks,omitempty" bson:"parent_stacks,omitempty"`
	ChildStacks  []StackID      `json:"child_stacks,omitempty" bson:"child_stacks,omitempty"`
}

// FromGraph converts a Graph to its serialization format.
func FromGraph(g *Graph) Document {
	doc := Document{
		Stacks:      make([]StackRecord, 0, len(g.order)),
		Connections: g.Connections,
		RootStacks:  g.RootStacks,
		LeafStacks:  g.LeafStacks,
	}
	for _, sid := range g.order {
		s := g.Stacks[sid]
		doc.Stacks = append(doc.Stacks, StackRecord{
			ID:           s.ID,
			Commits:      s.Commits,
			ParentStacks: s.ParentStacks,
			ChildStacks:  s.ChildStacks,
		})
	}
	return doc
}

// ToGraph converts a Document back to a Graph, rebuilding the internal
// commit→stack index. Returns an error if a stack id repeats or a referenced
// stack is missing.
func (doc Document) ToGraph() (*Graph, error) {
	g := &Graph{
		Stacks:      make(map[StackID]*Stack, len(doc.Stacks)),
		Connections: doc.Connections,
		RootStacks:  doc.RootStacks,
		LeafStacks:  doc.LeafStacks,
		stackOf:     make(map[vcs.CommitID]StackID),
	}
	for _, rec := range doc.Stacks {
		if _, dup := g.Stacks[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate stack id %s", rec.ID)
		}
		s := &Stack{
			ID:           rec.ID,
			Commits:      rec.Commits,
			ParentStacks: rec.ParentStacks,
			ChildStacks:  rec.ChildStacks,
		}
		g.Stacks[rec.ID] = s
		g.order = append(g.order, rec.ID)
		for _, c := range rec.Commits {
			g.stackOf[c] = rec.ID
		}
	}
	for _, c := range doc.Connections {
		if _, ok := g.Stacks[c.From]; !ok {
			return nil, fmt.Errorf("connection %s→%s: unknown stack %s", c.From, c.To, c.From)
		}
		if _, ok := g.Stacks[c.To]; !ok {
			return nil, fmt.Errorf("connection %s→%s: unknown stack %s", c.From, c.To, c.To)
		}
	}
	return g, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalGraph converts a Graph to JSON bytes in deterministic order.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a Graph as JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// WriteGraphFile writes a Graph to a JSON file with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// ReadGraph decodes a JSON stack graph from an io.Reader.
func ReadGraph(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.ToGraph()
}

// ReadGraphFile reads a JSON file and returns the decoded stack graph.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

func writeGraphTo(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
