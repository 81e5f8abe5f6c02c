// Package vcs defines the commit records supplied by the version-control
// engine.
//
// Commits are immutable snapshots produced by an external collaborator (the
// jj binary, a log file, a test fixture). The rest of the codebase treats
// them as validated input: ids are unique within a log window, parents refer
// to real ancestors (possibly outside the window), and timestamps share one
// clock. The graph packages never mutate a Commit.
package vcs

import (
	"strings"
	"time"
)

// CommitID identifies a specific snapshot. It is a content hash and changes
// whenever the commit is rewritten.
type CommitID string

// ChangeID identifies a logical change. It is stable across rewrites and
// amends of the same change, and is NOT unique per CommitID: several commit
// ids over time can carry the same change id.
type ChangeID string

// shortIDLen is the abbreviated id length used for display. jj shows the
// shortest unique prefix; a fixed 8 is unambiguous enough for log windows.
const shortIDLen = 8

// String returns the id as a plain string.
func (id CommitID) String() string { return string(id) }

// Short returns an abbreviated form of the id for display.
func (id CommitID) Short() string {
	if len(id) <= shortIDLen {
		return string(id)
	}
	return string(id[:shortIDLen])
}

// String returns the id as a plain string.
func (id ChangeID) String() string { return string(id) }

// Short returns an abbreviated form of the id for display.
func (id ChangeID) Short() string {
	if len(id) <= shortIDLen {
		return string(id)
	}
	return string(id[:shortIDLen])
}

// Commit is a single revision as reported by the engine.
//
// Parents is ordered: empty for roots, one entry for ordinary commits, two
// or more for merges. A commit never lists itself as a parent; the builder
// in package commitgraph rejects logs that violate this.
type Commit struct {
	ID           CommitID   `json:"id" bson:"id"`
	ChangeID     ChangeID   `json:"change_id" bson:"change_id"`
	Parents      []CommitID `json:"parents,omitempty" bson:"parents,omitempty"`
	Author       string     `json:"author,omitempty" bson:"author,omitempty"`
	Timestamp    time.Time  `json:"timestamp" bson:"timestamp"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
	HasConflicts bool       `json:"has_conflicts,omitempty" bson:"has_conflicts,omitempty"`
}

// IsMerge reports whether the commit has two or more parents.
func (c Commit) IsMerge() bool { return len(c.Parents) >= 2 }

// IsRoot reports whether the commit has no parents at all.
// A commit whose parents all lie outside the visible log window is not a
// root in this sense, but is treated as one by the graph builder.
func (c Commit) IsRoot() bool { return len(c.Parents) == 0 }

// Subject returns the first line of the description.
func (c Commit) Subject() string {
	if i := strings.IndexByte(c.Description, '\n'); i >= 0 {
		return c.Description[:i]
	}
	return c.Description
}
