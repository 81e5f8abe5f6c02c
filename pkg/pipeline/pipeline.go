// Package pipeline orchestrates load → decompose → layout → render with
// caching.
//
// The graph core stays pure; all I/O, caching, and instrumentation live
// here. Each stage is independently cacheable: the commit window by its
// log options, the stack graph by the content hash of the commit set, the
// layout by the graph hash, and rendered artifacts by the layout hash.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tjorvi/jujutsuka/pkg/cache"
	"github.com/tjorvi/jujutsuka/pkg/stackgraph"
	"github.com/tjorvi/jujutsuka/pkg/stackgraph/layout"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
	"github.com/tjorvi/jujutsuka/pkg/vcs/jj"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultLimit caps the commit window read from the engine.
	DefaultLimit = 1000

	// DefaultTheme is the default rendering theme.
	DefaultTheme = "light"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidThemes is the set of supported rendering themes.
var ValidThemes = map[string]bool{
	"light": true,
	"dark":  true,
}

// Source supplies the commit window the pipeline operates on. The engine
// adapter is the production source; tests and snapshot replays inject their
// own.
type Source interface {
	// Load reads the commit window.
	Load(ctx context.Context) ([]vcs.Commit, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]vcs.Commit, error)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context) ([]vcs.Commit, error) { return f(ctx) }

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	RepoPath string `json:"repo_path"`
	Revset   string `json:"revset,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`

	// Layout options
	SkipParallel bool `json:"skip_parallel,omitempty"` // Skip parallel group detection

	// Render options
	Formats []string `json:"formats,omitempty"`
	Theme   string   `json:"theme,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	Source Source      `json:"-"` // overrides the engine source when set

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Commits is the loaded commit window.
	Commits []vcs.Commit

	// Graph is the decomposed stack graph.
	Graph *stackgraph.Graph

	// GraphHash is the content hash of the graph document.
	GraphHash string

	// Layout is the graph with parallel group hints attached.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CommitCount   int
	StackCount    int
	GroupCount    int
	LoadTime      time.Duration
	DecomposeTime time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit      bool // Whether the commit window came from cache
	DecomposeHit bool // Whether the stack graph came from cache
	LayoutHit    bool // Whether the layout came from cache
	RenderHit    bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a theme is valid.
func ValidateTheme(theme string) error {
	if !ValidThemes[theme] {
		return fmt.Errorf("invalid theme: %q (must be one of: light, dark)", theme)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateTheme(o.Theme); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading the commit window.
func (o *Options) ValidateForLoad() error {
	if o.RepoPath == "" && o.Source == nil {
		return fmt.Errorf("repo_path is required")
	}
	if o.Revset == "" {
		o.Revset = jj.DefaultRevset
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LogKeyOpts returns cache key options for the load stage.
func (o *Options) LogKeyOpts() cache.LogKeyOpts {
	return cache.LogKeyOpts{
		Revset: o.Revset,
		Limit:  o.Limit,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		DetectParallel: !o.SkipParallel,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Theme:  o.Theme,
	}
}

// source returns the configured commit source, building an engine source
// from RepoPath when none was injected.
func (o *Options) source() (Source, error) {
	if o.Source != nil {
		return o.Source, nil
	}
	engine, err := jj.New(o.RepoPath, o.Logger)
	if err != nil {
		return nil, err
	}
	return SourceFunc(func(ctx context.Context) ([]vcs.Commit, error) {
		return engine.Log(ctx, jj.LogOptions{Revset: o.Revset, Limit: o.Limit})
	}), nil
}

// marshalCommits serializes a commit window for caching and hashing.
func marshalCommits(commits []vcs.Commit) ([]byte, error) {
	return json.Marshal(commits)
}

func unmarshalCommits(data []byte) ([]vcs.Commit, error) {
	var commits []vcs.Commit
	if err := json.Unmarshal(data, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}
