// Package lint checks application scripts for syntax errors and common
// mistakes before they are bundled.
package lint

import (
	"os"
	"path/filepath"
	"sort"
)

// Linter applies a fixed set of rules to script files.
type Linter struct {
	rules []Rule
}

// NewLinter creates a linter with the default rule set.
func NewLinter() *Linter {
	return &Linter{
		rules: []Rule{
			&ParseRule{},
			&DebuggerRule{},
		},
	}
}

// LintFiles lints files, given as paths relative to root. Issues are ordered
// by file (in the given order), then line.
func (l *Linter) LintFiles(root string, files []string) (*Result, error) {
	result := &Result{Issues: []Issue{}}
	for _, f := range files {
		src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f)))
		if err != nil {
			return nil, err
		}
		result.FilesTotal++
		result.Issues = append(result.Issues, l.LintSource(f, src)...)
	}
	return result, nil
}

// LintSource applies every rule to src.
func (l *Linter) LintSource(filePath string, src []byte) []Issue {
	var issues []Issue
	for _, rule := range l.rules {
		issues = append(issues, rule.Check(filePath, src)...)
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Line < issues[j].Line })
	return issues
}
