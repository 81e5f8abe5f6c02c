// Package pkg provides the core libraries for Jujutsuka stack visualization.
//
// # Overview
//
// Jujutsuka reads a jj (Jujutsu) repository, decomposes its commit history
// into maximal linear stacks, detects parallel development tracks, and
// renders the resulting stack graph. The pkg directory is organized into
// four main areas:
//
//  1. Domain logic - commit records, graph building, stack decomposition
//  2. Infrastructure - caching, sessions, snapshot storage, observability
//  3. Engine - the jj subprocess adapter and hunk selection helpers
//  4. Orchestration - the staged pipeline used by CLI, TUI, and API
//
// # Architecture
//
// The typical data flow:
//
//	jj repository
//	         ↓
//	    [vcs/jj] package (log template → commit records)
//	         ↓
//	    [commitgraph] package (parent/child adjacency)
//	         ↓
//	    [stackgraph] package (stacks + typed connections)
//	         ↓
//	    [stackgraph/layout] package (parallel group detection)
//	         ↓
//	    [render] package (DOT → SVG via Graphviz)
//
// # Quick Start
//
// Decompose a commit window and render it:
//
//	import (
//	    "context"
//	    "github.com/tjorvi/jujutsuka/pkg/pipeline"
//	)
//
//	r := pipeline.NewRunner(nil, nil, nil)
//	result, err := r.Execute(context.Background(), pipeline.Options{
//	    RepoPath: "/path/to/repo",
//	    Formats:  []string{pipeline.FormatSVG},
//	})
//
// # Main Packages
//
// ## Domain Logic
//
// [vcs] - Commit records as reported by the engine: commit and change ids,
// parent lists, timestamps, conflict flags.
//
// [commitgraph] - Parent/child adjacency over one commit window. Children
// are derived from parent lists and kept in input order.
//
// [stackgraph] - The stack decomposition: maximal linear chains, typed
// connections (linear, branch, merge), root and leaf tracking, and the
// serialization document used by the API and snapshot store.
//
// [stackgraph/layout] - Parallel group detection: stacks sharing the same
// parent and child sets are grouped as concurrent tracks, with completed
// (fully merged) groups marked.
//
// ## Engine
//
// [vcs/jj] - The jj subprocess adapter: machine-readable log template,
// revision validation, and the mutation operations (rebase, squash, split,
// describe, abandon, bookmarks, undo).
//
// [vcs/hunks] - Line range parsing and extraction for partial splits.
//
// ## Infrastructure
//
// [cache] - Staged result caching with file, Redis, and null backends,
// plus domain key derivation and per-session scoping.
//
// [session] - Workspace sessions binding a repository path to a cache
// namespace, with memory and file stores.
//
// [store] - Snapshot persistence keyed by graph content hash, with Mongo
// and memory backends.
//
// [observability] - Pipeline, cache, and engine hook registries with no-op
// defaults.
//
// [errors] - Structured error codes shared by CLI and API.
//
// ## Visualization
//
// [render] - DOT generation with light/dark themes and parallel group
// clusters, and SVG rendering via Graphviz.
//
// ## Orchestration
//
// [pipeline] - The staged load → decompose → layout → render pipeline used
// by every entry point, with per-stage caching and timing.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/stackgraph/...   # Specific package
//	go test -run Example           # Examples only
package pkg
