package integration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// projectFiles is a small angular-style project exercising every build step.
var projectFiles = map[string]string{
	"assetbuilder.yaml": `src:
  vendors:
    scripts: [bower_components/lib/lib.js]
    styles: [bower_components/lib/lib.css]
    maps: [bower_components/lib/lib.js.map]
styles:
  compiler: none
lint:
  exclude: []
`,
	"bower_components/lib/lib.js":     "window.lib = function () { return 1; };\n",
	"bower_components/lib/lib.js.map": `{"version":3}`,
	"bower_components/lib/lib.css":    "body {\n  margin: 0;\n}\n",
	"src/app.js":                      "ng.module('app', ['b']);\n",
	"src/components/b-module.js":      "ng.module('b', []);\n",
	"src/components/a.js":             "ng.module('b').value('answer', 42);\n",
	"src/index.tmpl":                  "<html data-env=\"{{ .Env }}\" data-rev=\"{{ .Revision }}\">\n{{ scriptTags .VendorScripts }}\n{{ scriptTags .AppScripts }}\n</html>\n",
	"src/views/home.html":             "<div>\n  <span>home</span>\n</div>\n",
	"src/styles/main.scss":            ".box {\n  display: flex;\n}\n",
	"src/assets/icons/home.svg":       `<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16"><rect width="16" height="16"/></svg>`,
	"src/assets/filters/blur.svg":     "<svg></svg>",
	"src/assets/fonts/a.woff":         "font",
	"src/assets/docs/data.csv":        "a,b\n",
	"src/images/logo.png":             "png",
}

// setupProject writes projectFiles into a fresh git repository with one
// commit and returns its directory and the commit hash.
func setupProject(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	for name, body := range projectFiles {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err, "failed to initialize git repo")
	w, err := repo.Worktree()
	require.NoError(t, err, "failed to get worktree")
	require.NoError(t, w.AddGlob("."), "failed to add files to git")
	hash, err := w.Commit("Initial test commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err, "failed to create initial commit")

	return dir, hash.String()
}

// listFiles returns the slash-separated paths of every file below root.
func listFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	return files
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	// #nosec G304 -- test utility reading from test output directory
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
