package layout

import (
	"encoding/json"
	"fmt"

	"github.com/tjorvi/jujutsuka/pkg/stackgraph"
)

// Document is the serialization format for a laid-out stack graph: the graph
// document plus the detected parallel groups.
type Document struct {
	Graph          stackgraph.Document `json:"graph" bson:"graph"`
	ParallelGroups []ParallelGroup     `json:"parallel_groups,omitempty" bson:"parallel_groups,omitempty"`
}

// Marshal converts a Layout to JSON bytes in deterministic order.
func Marshal(lay Layout) ([]byte, error) {
	doc := Document{
		Graph:          stackgraph.FromGraph(lay.Graph),
		ParallelGroups: lay.ParallelGroups,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a Layout from JSON bytes.
func Unmarshal(data []byte) (Layout, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	g, err := doc.Graph.ToGraph()
	if err != nil {
		return Layout{}, err
	}
	return Layout{Graph: g, ParallelGroups: doc.ParallelGroups}, nil
}
