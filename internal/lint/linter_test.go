package lint

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestLintCleanScript(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "src/app.js", "ng.module('app', []);\n")

	res, err := NewLinter().LintFiles(root, []string{"src/app.js"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesTotal)
	assert.Empty(t, res.Issues)
	assert.False(t, res.HasErrors())
}

func TestLintSyntaxError(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "src/broken.js", "function ok() {}\nfunction broken( {\n")

	res, err := NewLinter().LintFiles(root, []string{"src/broken.js"})
	require.NoError(t, err)
	require.True(t, res.HasErrors())
	issue := res.Issues[0]
	assert.Equal(t, "src/broken.js", issue.FilePath)
	assert.Equal(t, "syntax", issue.Rule)
	assert.Equal(t, SeverityError, issue.Severity)
	assert.Equal(t, 2, issue.Line)
}

func TestLintWarnings(t *testing.T) {
	issues := NewLinter().LintSource("src/a.js", []byte("var o = {a: 1, a: 2};\ndebugger;\n"))
	require.NotEmpty(t, issues)
	for _, is := range issues {
		assert.Equal(t, SeverityWarning, is.Severity)
	}

	var rules []string
	for _, is := range issues {
		rules = append(rules, is.Rule)
	}
	assert.Contains(t, rules, "no-debugger")
	assert.GreaterOrEqual(t, len(issues), 2)
}

func TestDebuggerRuleIgnoresStrings(t *testing.T) {
	issues := (&DebuggerRule{}).Check("a.js", []byte("var s = 'debugger';\n"))
	assert.Empty(t, issues)
}

func TestLintMissingFile(t *testing.T) {
	_, err := NewLinter().LintFiles(t.TempDir(), []string{"nope.js"})
	assert.Error(t, err)
}

func TestFormatters(t *testing.T) {
	res := &Result{
		FilesTotal: 2,
		Issues: []Issue{
			{FilePath: "src/a.js", Severity: SeverityError, Rule: "syntax", Message: "Unexpected \"{\"", Line: 2, Column: 18},
			{FilePath: "src/a.js", Severity: SeverityWarning, Rule: "no-debugger", Message: "Forgotten 'debugger' statement?", Line: 5, Column: 1},
		},
	}

	var text bytes.Buffer
	require.NoError(t, NewFormatter("text").Format(&text, res, "src"))
	assert.Contains(t, text.String(), "src/a.js")
	assert.Contains(t, text.String(), "1 error\n")
	assert.Contains(t, text.String(), "1 warning\n")

	var js bytes.Buffer
	require.NoError(t, NewFormatter("json").Format(&js, res, "src"))
	var out JSONOutput
	require.NoError(t, json.Unmarshal(js.Bytes(), &out))
	assert.Equal(t, 1, out.ErrorCount)
	assert.Equal(t, "ERROR", out.Issues[0].Severity)

	var clean bytes.Buffer
	require.NoError(t, NewTextFormatter().Format(&clean, &Result{FilesTotal: 1}, "src"))
	assert.Contains(t, clean.String(), "All scripts pass linting")
}
