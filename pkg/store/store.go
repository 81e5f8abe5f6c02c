// Package store persists decomposed stack graph snapshots.
//
// A snapshot is a graph document keyed by its own content hash, so saving
// the same decomposition twice is a no-op upsert. The Mongo backend serves
// deployments; MemoryStore backs tests and the zero-config CLI path.
package store

import (
	"context"
	"time"

	"github.com/tjorvi/jujutsuka/pkg/stackgraph"
	"github.com/tjorvi/jujutsuka/pkg/stackgraph/layout"
)

// Snapshot is one persisted decomposition result.
type Snapshot struct {
	// Hash is the content hash of the serialized graph document, as
	// computed by the pipeline, and doubles as the document id. Two
	// windows that decompose to the same graph share one snapshot.
	Hash string `json:"hash" bson:"_id"`

	// RepoPath identifies the repository the snapshot came from.
	RepoPath string `json:"repo_path" bson:"repo_path"`

	// CreatedAt is when the snapshot was first saved.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Graph is the decomposed stack graph document.
	Graph stackgraph.Document `json:"graph" bson:"graph"`

	// ParallelGroups carries the layout hints detected for the graph.
	ParallelGroups []layout.ParallelGroup `json:"parallel_groups,omitempty" bson:"parallel_groups,omitempty"`
}

// Store is the snapshot persistence interface.
type Store interface {
	// Save upserts a snapshot by hash.
	Save(ctx context.Context, snap Snapshot) error

	// Load retrieves a snapshot by hash. Returns SNAPSHOT_NOT_FOUND when
	// no snapshot with that hash exists.
	Load(ctx context.Context, hash string) (Snapshot, error)

	// Recent lists the newest snapshots, newest first.
	Recent(ctx context.Context, limit int) ([]Snapshot, error)

	// Delete removes a snapshot. Deleting a missing hash is not an error.
	Delete(ctx context.Context, hash string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
