// Package fsutil resolves source globs and writes build outputs.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match is one file resolved from a glob list.
type Match struct {
	// Path is the slash-separated path relative to the project root.
	Path string
	// Base is the static directory prefix of the pattern that matched.
	Base string
}

// Rel returns Path relative to the pattern base.
func (m Match) Rel() string {
	if m.Base == "" || m.Base == "." {
		return m.Path
	}
	return strings.TrimPrefix(m.Path, m.Base+"/")
}

// Paths returns the project-relative paths of matches.
func Paths(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Path
	}
	return out
}

// Expand resolves patterns relative to root. Patterns are processed in
// declared order; results within a pattern are sorted lexically. A path seen
// twice keeps its first position. Entries prefixed with "!" remove matching
// paths from the result.
//
// A pattern without glob metacharacters names a single file, and a missing
// file is an error matching fs.ErrNotExist. A glob that matches
// nothing yields no files.
func Expand(root string, patterns []string) ([]Match, error) {
	fsys := os.DirFS(root)

	var includes, excludes []string
	for _, p := range patterns {
		p = strings.TrimSpace(filepath.ToSlash(p))
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "!") {
			excludes = append(excludes, path.Clean(strings.TrimPrefix(p, "!")))
			continue
		}
		includes = append(includes, path.Clean(p))
	}

	seen := make(map[string]struct{})
	var out []Match
	for _, pattern := range includes {
		base, _ := doublestar.SplitPattern(pattern)
		files, err := resolve(fsys, pattern)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, dup := seen[f]; dup {
				continue
			}
			if MatchesAny(excludes, f) {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, Match{Path: f, Base: base})
		}
	}
	return out, nil
}

func resolve(fsys fs.FS, pattern string) ([]string, error) {
	if !hasMeta(pattern) {
		info, err := fs.Stat(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("source file %s: %w", pattern, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("source path %s is a directory", pattern)
		}
		return []string{pattern}, nil
	}

	files, err := doublestar.Glob(fsys, pattern, doublestar.WithFailOnIOErrors(), doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, doublestar.ErrBadPattern) {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// MatchesAny reports whether the slash path matches one of the patterns.
// Invalid patterns never match.
func MatchesAny(patterns []string, p string) bool {
	p = filepath.ToSlash(p)
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "!")
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}

// StaticDirs returns the distinct static directory prefixes of patterns.
// The watcher subscribes to these directories.
func StaticDirs(patterns []string) []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, p := range patterns {
		p = filepath.ToSlash(strings.TrimSpace(p))
		if p == "" || strings.HasPrefix(p, "!") {
			continue
		}
		base, _ := doublestar.SplitPattern(path.Clean(p))
		if !hasMeta(p) {
			base = path.Dir(path.Clean(p))
		}
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		dirs = append(dirs, base)
	}
	return dirs
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{\\")
}
