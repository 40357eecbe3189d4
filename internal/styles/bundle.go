package styles

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
)

// Order sorts paths so that files matching earlier priority patterns come
// first. Files matching no pattern keep their relative order after all
// prioritized files.
func Order(paths []string, priority []string) []string {
	rank := func(p string) int {
		for i, pattern := range priority {
			if fsutil.MatchesAny([]string{pattern}, p) {
				return i
			}
		}
		return len(priority)
	}
	out := make([]string, len(paths))
	copy(out, paths)
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}

type segment struct {
	path      string
	startLine int
	lines     int
}

// Bundle is a concatenation of source files that remembers where each file
// starts.
type Bundle struct {
	Source   []byte
	segments []segment
}

// Concat joins files (relative to root) with newlines.
func Concat(root string, paths []string) (*Bundle, error) {
	b := &Bundle{}
	var buf bytes.Buffer
	line := 1
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return nil, err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		n := bytes.Count(data, []byte("\n"))
		b.segments = append(b.segments, segment{path: p, startLine: line, lines: n})
		buf.Write(data)
		line += n
	}
	b.Source = buf.Bytes()
	return b, nil
}

// Locate maps a 1-based line of Source to the originating file and its line.
func (b *Bundle) Locate(line int) (string, int, bool) {
	for _, s := range b.segments {
		if line >= s.startLine && line < s.startLine+s.lines {
			return s.path, line - s.startLine + 1, true
		}
	}
	return "", 0, false
}
