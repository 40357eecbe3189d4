package lint

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ParseRule reports syntax errors as errors and esbuild's static analysis
// diagnostics (duplicate keys, suspicious comparisons, unreachable code and
// the like) as warnings.
type ParseRule struct{}

// Name returns the rule identifier.
func (r *ParseRule) Name() string { return "parse" }

// Check parses src as a browser script.
func (r *ParseRule) Check(filePath string, src []byte) []Issue {
	res := api.Transform(string(src), api.TransformOptions{
		Loader:     api.LoaderJS,
		Sourcefile: filePath,
		LogLevel:   api.LogLevelSilent,
	})

	issues := make([]Issue, 0, len(res.Errors)+len(res.Warnings))
	for _, m := range res.Errors {
		issues = append(issues, issueFromMessage(filePath, "syntax", SeverityError, m))
	}
	for _, m := range res.Warnings {
		rule := "esbuild"
		if m.ID != "" {
			rule = m.ID
		}
		issues = append(issues, issueFromMessage(filePath, rule, SeverityWarning, m))
	}
	return issues
}

func issueFromMessage(filePath, rule string, sev Severity, m api.Message) Issue {
	issue := Issue{FilePath: filePath, Severity: sev, Rule: rule, Message: m.Text}
	if m.Location != nil {
		issue.Line = m.Location.Line
		issue.Column = m.Location.Column + 1
		issue.Source = m.Location.LineText
	}
	return issue
}

var debuggerStmt = regexp.MustCompile(`^\s*debugger\s*;?\s*(//.*)?$`)

// DebuggerRule flags leftover debugger statements.
type DebuggerRule struct{}

// Name returns the rule identifier.
func (r *DebuggerRule) Name() string { return "no-debugger" }

// Check scans src line by line.
func (r *DebuggerRule) Check(filePath string, src []byte) []Issue {
	var issues []Issue
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if debuggerStmt.MatchString(text) {
			issues = append(issues, Issue{
				FilePath: filePath,
				Severity: SeverityWarning,
				Rule:     r.Name(),
				Message:  "Forgotten 'debugger' statement?",
				Line:     line,
				Column:   strings.Index(text, "debugger") + 1,
				Source:   text,
			})
		}
	}
	return issues
}
