// Package cache provides pluggable caching for pipeline stages.
//
// Three backends cover the deployment modes: FileCache for the CLI,
// RedisCache for the server, and NullCache to disable caching entirely.
// Keyer generates the cache keys for each pipeline stage; ScopedKeyer adds a
// namespace prefix so concurrent sessions on different repositories never
// collide.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLs per pipeline stage. Log output goes stale as soon as the working copy
// changes, so it gets the shortest window; derived artifacts are
// content-addressed by input hash and can live much longer.
const (
	TTLLog      = 30 * time.Second
	TTLGraph    = 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// LogKeyOpts parameterize commit log caching.
type LogKeyOpts struct {
	Revset string `json:"revset"`
	Limit  int    `json:"limit"`
}

// LayoutKeyOpts parameterize layout caching.
type LayoutKeyOpts struct {
	DetectParallel bool `json:"detect_parallel"`
}

// ArtifactKeyOpts parameterize rendered artifact caching.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Theme  string `json:"theme"`
}

// Keyer generates cache keys for pipeline stages.
type Keyer interface {
	// LogKey keys the raw commit window read from the engine.
	LogKey(repoPath string, opts LogKeyOpts) string

	// GraphKey keys the stack decomposition of a commit window.
	GraphKey(commitSetHash string) string

	// LayoutKey keys the layout enhancement of a stack graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact (DOT, SVG).
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LogKey generates a key for commit log caching.
func (k *DefaultKeyer) LogKey(repoPath string, opts LogKeyOpts) string {
	return hashKey("log", repoPath, opts)
}

// GraphKey generates a key for stack graph caching.
func (k *DefaultKeyer) GraphKey(commitSetHash string) string {
	return "graph:" + commitSetHash
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
