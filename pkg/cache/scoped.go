package cache

// ScopedKeyer wraps a Keyer with a prefix for session isolation.
// The server gives every workspace session its own namespace so two sessions
// pointed at different repositories (or different revsets of the same
// repository) never read each other's entries.
//
// Example usage:
//
//	// Session-specific keys
//	sessKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:"+id+":")
//
//	// Shared keys for the CLI
//	keyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LogKey generates a prefixed key for commit log caching.
func (k *ScopedKeyer) LogKey(repoPath string, opts LogKeyOpts) string {
	return k.prefix + k.inner.LogKey(repoPath, opts)
}

// GraphKey generates a prefixed key for stack graph caching.
func (k *ScopedKeyer) GraphKey(commitSetHash string) string {
	return k.prefix + k.inner.GraphKey(commitSetHash)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
