package errors

import (
	"strings"
	"unicode"
)

// ValidateRevision validates a user-supplied revision argument before it is
// passed to the VCS engine. It rejects values that could smuggle flags or
// control sequences into the engine invocation.
//
// The validation rules are intentionally conservative:
//   - No empty revisions
//   - No control characters or null bytes
//   - No leading dash (would be parsed as a flag by the engine)
//   - Maximum length of 512 characters
//
// Revset syntax itself is not validated here; the engine is the authority on
// what constitutes a valid revset.
func ValidateRevision(rev string) error {
	if rev == "" {
		return New(ErrCodeInvalidRevision, "revision cannot be empty")
	}

	if len(rev) > 512 {
		return New(ErrCodeInvalidRevision, "revision too long (max 512 characters)")
	}

	if strings.HasPrefix(rev, "-") {
		return New(ErrCodeInvalidRevision, "revision cannot start with a dash")
	}

	for _, r := range rev {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRevision, "revision contains control characters")
		}
	}

	return nil
}

// ValidateBookmarkName validates a bookmark name before passing it to the
// engine. Bookmark names are simple identifiers; slashes are allowed (e.g.
// "user/feature") but path traversal and whitespace are not.
func ValidateBookmarkName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "bookmark name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "bookmark name too long (max 256 characters)")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "bookmark name cannot contain %q", "..")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "bookmark name contains invalid characters")
		}
	}

	return nil
}

// ValidateRepoPath validates a repository path supplied to the server or CLI.
// It prevents null bytes and unreasonable lengths; existence checks are the
// caller's concern.
func ValidateRepoPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "repository path cannot be empty")
	}

	if len(path) > 4096 {
		return New(ErrCodeInvalidInput, "repository path too long")
	}

	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidInput, "repository path contains null byte")
	}

	return nil
}
