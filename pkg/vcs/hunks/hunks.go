// Package hunks selects line ranges from file content for commit splitting.
//
// A split moves the selected lines of the working copy into a new commit and
// keeps the complement in the original. Extract and Complement are exact
// partitions of the input: together they account for every line once.
package hunks

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tjorvi/jujutsuka/pkg/errors"
)

// LineRange selects an inclusive, 1-indexed span of lines within one file.
type LineRange struct {
	Path  string `json:"path"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// String formats the range in its parse form, path:start-end.
func (r LineRange) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Path, r.Start, r.End)
}

// ParseRange parses "path:start-end". The path may itself contain colons
// (Windows drive letters), so the split happens at the last colon.
func ParseRange(s string) (LineRange, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return LineRange{}, errors.New(errors.ErrCodeInvalidRange,
			"invalid range format, expected path:start-end, got: %s", s)
	}
	path, rangeStr := s[:idx], s[idx+1:]
	if path == "" {
		return LineRange{}, errors.New(errors.ErrCodeInvalidRange,
			"invalid range format, empty path in: %s", s)
	}

	parts := strings.Split(rangeStr, "-")
	if len(parts) != 2 {
		return LineRange{}, errors.New(errors.ErrCodeInvalidRange,
			"invalid range format, expected start-end, got: %s", rangeStr)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return LineRange{}, errors.Wrap(errors.ErrCodeInvalidRange, err, "parse start line")
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return LineRange{}, errors.Wrap(errors.ErrCodeInvalidRange, err, "parse end line")
	}
	if start < 1 || end < 1 {
		return LineRange{}, errors.New(errors.ErrCodeInvalidRange, "line numbers must be >= 1")
	}
	if start > end {
		return LineRange{}, errors.New(errors.ErrCodeInvalidRange,
			"start line must be <= end line, got %d-%d", start, end)
	}
	return LineRange{Path: path, Start: start, End: end}, nil
}

// ParseRanges parses a list of path:start-end arguments.
func ParseRanges(args []string) ([]LineRange, error) {
	out := make([]LineRange, 0, len(args))
	for _, a := range args {
		r, err := ParseRange(a)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Extract returns the lines of content covered by the ranges that apply to
// path, in ascending range order. Out-of-bounds line numbers are clamped.
// Returns empty content when no range targets the file.
func Extract(content []byte, ranges []LineRange, path string) []byte {
	applicable := forPath(ranges, path)
	if len(applicable) == 0 {
		return nil
	}

	lines := splitLines(content)
	var out []string
	for _, r := range applicable {
		start := r.Start - 1
		end := min(r.End, len(lines))
		if start >= len(lines) {
			continue
		}
		out = append(out, lines[start:end]...)
	}
	return []byte(strings.Join(out, "\n"))
}

// Complement returns the lines of content NOT covered by the ranges that
// apply to path. Returns the content unchanged when no range targets the
// file.
func Complement(content []byte, ranges []LineRange, path string) []byte {
	applicable := forPath(ranges, path)
	if len(applicable) == 0 {
		return slices.Clone(content)
	}

	lines := splitLines(content)
	excluded := make(map[int]bool)
	for _, r := range applicable {
		start := r.Start - 1
		end := min(r.End, len(lines))
		for i := start; i < end; i++ {
			excluded[i] = true
		}
	}

	var out []string
	for i, line := range lines {
		if !excluded[i] {
			out = append(out, line)
		}
	}
	return []byte(strings.Join(out, "\n"))
}

// Files returns the distinct paths targeted by the ranges, in first-seen
// order.
func Files(ranges []LineRange) []string {
	var out []string
	for _, r := range ranges {
		if !slices.Contains(out, r.Path) {
			out = append(out, r.Path)
		}
	}
	return out
}

func forPath(ranges []LineRange, path string) []LineRange {
	var out []LineRange
	for _, r := range ranges {
		if r.Path == path {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b LineRange) int { return a.Start - b.Start })
	return out
}

// splitLines mirrors the semantics of iterating text lines: a trailing
// newline does not produce an empty final line.
func splitLines(content []byte) []string {
	s := string(content)
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
