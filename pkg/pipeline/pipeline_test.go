package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tjorvi/jujutsuka/pkg/cache"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

func testCommits() []vcs.Commit {
	ts := func(min int) time.Time { return time.Date(2026, 1, 1, 12, min, 0, 0, time.UTC) }
	return []vcs.Commit{
		{ID: "a", ChangeID: "za", Timestamp: ts(0)},
		{ID: "e", ChangeID: "ze", Parents: []vcs.CommitID{"a"}, Timestamp: ts(1)},
		{ID: "f", ChangeID: "zf", Parents: []vcs.CommitID{"a"}, Timestamp: ts(2)},
		{ID: "g", ChangeID: "zg", Parents: []vcs.CommitID{"e", "f"}, Timestamp: ts(3)},
	}
}

func fixedSource(commits []vcs.Commit) Source {
	return SourceFunc(func(ctx context.Context) ([]vcs.Commit, error) {
		return commits, nil
	})
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"NoRepoNoSource", Options{}, true},
		{"RepoPathOnly", Options{RepoPath: "/repo"}, false},
		{"SourceOnly", Options{Source: fixedSource(nil)}, false},
		{"BadFormat", Options{RepoPath: "/repo", Formats: []string{"gif"}}, true},
		{"BadTheme", Options{RepoPath: "/repo", Theme: "sepia"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err == nil {
				if tt.opts.Limit != DefaultLimit {
					t.Errorf("Limit = %d, want %d", tt.opts.Limit, DefaultLimit)
				}
				if tt.opts.Theme != DefaultTheme {
					t.Errorf("Theme = %s, want %s", tt.opts.Theme, DefaultTheme)
				}
				if len(tt.opts.Formats) == 0 {
					t.Error("Formats default not applied")
				}
			}
		})
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{RepoPath: "/repo", Limit: 42}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Limit != 42 {
		t.Errorf("Limit = %d, want 42", opts.Limit)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, nil)

	result, err := r.Execute(context.Background(), Options{
		RepoPath: "/repo",
		Source:   fixedSource(testCommits()),
		Formats:  []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.CommitCount != 4 {
		t.Errorf("commits = %d, want 4", result.Stats.CommitCount)
	}
	if result.Stats.StackCount != 4 {
		t.Errorf("stacks = %d, want 4", result.Stats.StackCount)
	}
	if result.Stats.GroupCount != 1 {
		t.Errorf("groups = %d, want 1", result.Stats.GroupCount)
	}
	if result.GraphHash == "" {
		t.Error("graph hash not computed")
	}
	if len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("json artifact missing")
	}
	dot := string(result.Artifacts[FormatDOT])
	if !strings.Contains(dot, "digraph stacks") {
		t.Errorf("dot artifact malformed: %s", dot)
	}
	if result.CacheInfo.LoadHit || result.CacheInfo.DecomposeHit {
		t.Error("null cache reported hits")
	}
}

func TestExecuteSkipParallel(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	result, err := r.Execute(context.Background(), Options{
		RepoPath:     "/repo",
		Source:       fixedSource(testCommits()),
		SkipParallel: true,
		Formats:      []string{FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.GroupCount != 0 {
		t.Errorf("groups = %d, want 0 with SkipParallel", result.Stats.GroupCount)
	}
}

func TestExecuteCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	r := NewRunner(c, nil, nil)

	loads := 0
	src := SourceFunc(func(ctx context.Context) ([]vcs.Commit, error) {
		loads++
		return testCommits(), nil
	})
	opts := Options{RepoPath: "/repo", Source: src, Formats: []string{FormatJSON}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.LoadHit || first.CacheInfo.DecomposeHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss on every stage")
	}

	second, err := r.Execute(context.Background(), Options{RepoPath: "/repo", Source: src, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LoadHit {
		t.Error("second run should hit the log cache")
	}
	if !second.CacheInfo.DecomposeHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v, want all hits", second.CacheInfo)
	}
	if loads != 1 {
		t.Errorf("source loaded %d times, want 1", loads)
	}
	if second.GraphHash != first.GraphHash {
		t.Error("graph hash changed between cached runs")
	}
}

func TestExecuteRefreshBypassesLogCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	r := NewRunner(c, nil, nil)

	loads := 0
	src := SourceFunc(func(ctx context.Context) ([]vcs.Commit, error) {
		loads++
		return testCommits(), nil
	})

	if _, err := r.Execute(context.Background(), Options{RepoPath: "/repo", Source: src, Formats: []string{FormatJSON}}); err != nil {
		t.Fatal(err)
	}
	result, err := r.Execute(context.Background(), Options{RepoPath: "/repo", Source: src, Refresh: true, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheInfo.LoadHit {
		t.Error("refresh run should not hit the log cache")
	}
	if loads != 2 {
		t.Errorf("source loaded %d times, want 2", loads)
	}
}

func TestScopedKeyersIsolateSessions(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	// Two runners sharing one backend but scoped to different sessions.
	r1 := NewRunner(c, cache.NewScopedKeyer(nil, "session:1:"), nil)
	r2 := NewRunner(c, cache.NewScopedKeyer(nil, "session:2:"), nil)

	loads := 0
	src := SourceFunc(func(ctx context.Context) ([]vcs.Commit, error) {
		loads++
		return testCommits(), nil
	})

	if _, err := r1.Execute(context.Background(), Options{RepoPath: "/repo", Source: src, Formats: []string{FormatJSON}}); err != nil {
		t.Fatal(err)
	}
	result, err := r2.Execute(context.Background(), Options{RepoPath: "/repo", Source: src, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheInfo.LoadHit {
		t.Error("scoped sessions should not share cache entries")
	}
	if loads != 2 {
		t.Errorf("source loaded %d times, want 2", loads)
	}
}
