// Package jj shells out to the Jujutsu binary.
//
// The adapter owns exactly two responsibilities: reading the commit window
// with a machine-readable template, and passing mutation commands through to
// the engine. It never interprets history itself; all graph logic lives
// downstream of the []vcs.Commit it returns.
package jj

import (
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tjorvi/jujutsuka/pkg/errors"
	"github.com/tjorvi/jujutsuka/pkg/observability"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

// DefaultRevset is the commit window read when the caller does not pick one:
// all ancestors of the working copy plus all visible heads.
const DefaultRevset = "::@ | visible_heads()"

// DefaultLimit caps the number of commits read per log call.
const DefaultLimit = 1000

// Engine invokes the jj binary against one repository.
// Safe for concurrent use; each call spawns its own subprocess.
type Engine struct {
	repoPath string
	bin      string
	logger   *log.Logger
}

// New creates an engine for the repository at repoPath.
// A nil logger falls back to log.Default().
func New(repoPath string, logger *log.Logger) (*Engine, error) {
	if err := errors.ValidateRepoPath(repoPath); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{repoPath: repoPath, bin: "jj", logger: logger}, nil
}

// RepoPath returns the repository the engine is bound to.
func (e *Engine) RepoPath() string { return e.repoPath }

// LogOptions parameterize a commit window read.
type LogOptions struct {
	Revset string // empty means DefaultRevset
	Limit  int    // 0 means DefaultLimit
}

// Log reads the commit window and returns it oldest-first as reported by the
// engine. Ordering does not matter downstream; the partitioner sorts by
// timestamp itself.
func (e *Engine) Log(ctx context.Context, opts LogOptions) ([]vcs.Commit, error) {
	revset := opts.Revset
	if revset == "" {
		revset = DefaultRevset
	}
	if err := errors.ValidateRevision(revset); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	out, err := e.run(ctx,
		"log",
		"--no-graph",
		"--limit", strconv.Itoa(limit),
		"-r", revset,
		"-T", logTemplate,
	)
	if err != nil {
		return nil, err
	}
	return parseLog(out)
}

// Rebase moves a revision (and its descendants) onto a new destination.
func (e *Engine) Rebase(ctx context.Context, revision, destination string) error {
	if err := errors.ValidateRevision(revision); err != nil {
		return err
	}
	if err := errors.ValidateRevision(destination); err != nil {
		return err
	}
	_, err := e.run(ctx, "rebase", "-s", revision, "-d", destination)
	return err
}

// Squash folds a revision into its parent.
func (e *Engine) Squash(ctx context.Context, revision string) error {
	if err := errors.ValidateRevision(revision); err != nil {
		return err
	}
	_, err := e.run(ctx, "squash", "-r", revision)
	return err
}

// MoveFiles moves changes to the given paths from one revision into another.
func (e *Engine) MoveFiles(ctx context.Context, from, into string, paths []string) error {
	if err := errors.ValidateRevision(from); err != nil {
		return err
	}
	if err := errors.ValidateRevision(into); err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no paths to move")
	}
	args := []string{"squash", "--from", from, "--into", into, "--"}
	args = append(args, paths...)
	_, err := e.run(ctx, args...)
	return err
}

// Split splits a revision into two, the first containing only the given
// paths. An empty path list starts the engine's interactive split, which the
// adapter refuses.
func (e *Engine) Split(ctx context.Context, revision string, paths []string) error {
	if err := errors.ValidateRevision(revision); err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "split requires explicit paths")
	}
	args := []string{"split", "-r", revision, "--"}
	args = append(args, paths...)
	_, err := e.run(ctx, args...)
	return err
}

// Describe sets the description of a revision.
func (e *Engine) Describe(ctx context.Context, revision, message string) error {
	if err := errors.ValidateRevision(revision); err != nil {
		return err
	}
	_, err := e.run(ctx, "describe", "-r", revision, "-m", message)
	return err
}

// NewChange creates a new empty change on top of the given parents.
func (e *Engine) NewChange(ctx context.Context, parents ...string) error {
	args := []string{"new"}
	for _, p := range parents {
		if err := errors.ValidateRevision(p); err != nil {
			return err
		}
		args = append(args, p)
	}
	_, err := e.run(ctx, args...)
	return err
}

// Abandon abandons a revision, rebasing descendants onto its parents.
func (e *Engine) Abandon(ctx context.Context, revision string) error {
	if err := errors.ValidateRevision(revision); err != nil {
		return err
	}
	_, err := e.run(ctx, "abandon", "-r", revision)
	return err
}

// Undo undoes the last operation.
func (e *Engine) Undo(ctx context.Context) error {
	_, err := e.run(ctx, "undo")
	return err
}

// SetBookmark points a bookmark at a revision, creating it if needed.
func (e *Engine) SetBookmark(ctx context.Context, name, revision string) error {
	if err := errors.ValidateBookmarkName(name); err != nil {
		return err
	}
	if err := errors.ValidateRevision(revision); err != nil {
		return err
	}
	_, err := e.run(ctx, "bookmark", "set", name, "-r", revision, "--allow-backwards")
	return err
}

// DeleteBookmark removes a bookmark.
func (e *Engine) DeleteBookmark(ctx context.Context, name string) error {
	if err := errors.ValidateBookmarkName(name); err != nil {
		return err
	}
	_, err := e.run(ctx, "bookmark", "delete", name)
	return err
}

// run invokes the binary in the repository directory and returns stdout.
// Engine stderr ends up in the error message so failures stay diagnosable.
func (e *Engine) run(ctx context.Context, args ...string) ([]byte, error) {
	start := time.Now()
	observability.Engine().OnCommand(ctx, e.repoPath, args)
	e.logger.Debug("engine command", "args", args)

	cmd := exec.CommandContext(ctx, e.bin, args...)
	cmd.Dir = e.repoPath
	out, err := cmd.Output()

	observability.Engine().OnCommandComplete(ctx, e.repoPath, args, time.Since(start), err)
	if err == nil {
		return out, nil
	}

	if ctx.Err() != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "jj %s", args[0])
	}
	if execErr, ok := err.(*exec.Error); ok && execErr.Err == exec.ErrNotFound {
		return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "jj binary not found")
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return nil, errors.New(errors.ErrCodeEngine,
			"jj %s failed: %s", args[0], firstLine(exitErr.Stderr))
	}
	return nil, errors.Wrap(errors.ErrCodeEngine, err, "jj %s", args[0])
}

func firstLine(b []byte) string {
	for i, c := range b {
		if c == '\n' {
			return string(b[:i])
		}
	}
	if len(b) == 0 {
		return "no error output"
	}
	return string(b)
}
