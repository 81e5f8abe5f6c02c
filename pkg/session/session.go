// Package session provides workspace session management.
//
// A session binds a client to one repository working directory. The server
// keeps one engine and one scoped cache namespace per session, so several
// browser tabs can point at different repositories (or the same one under
// different revsets) without stepping on each other.
//
// Two backends are provided:
//   - memory: In-memory storage for the server's default mode and tests
//   - file: File-based storage so CLI invocations can reuse a session
//
// # Usage
//
// Create a session store:
//
//	// Server
//	store := session.NewMemoryStore()
//
//	// CLI
//	store, err := session.NewFileStore("")  // Uses ~/.config/jujutsuka/sessions/
//
// Manage sessions:
//
//	sess, err := session.New("/path/to/repo", session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tjorvi/jujutsuka/pkg/errors"
)

// Session binds a client to one repository.
type Session struct {
	ID         string    `json:"id"`
	RepoPath   string    `json:"repo_path"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// CacheScope returns the cache key prefix isolating this session.
func (s *Session) CacheScope() string {
	return "session:" + s.ID + ":"
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns SESSION_NOT_FOUND if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// List returns all live sessions.
	List(ctx context.Context) ([]*Session, error)

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// New creates a session for the given repository.
func New(repoPath string, ttl time.Duration) (*Session, error) {
	if err := errors.ValidateRepoPath(repoPath); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		RepoPath:   repoPath,
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  now.Add(ttl),
	}, nil
}
