package integration

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/cmd/assetbuilder/commands"
)

// runCLI parses args like the assetbuilder binary and runs the selected command.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cli := &commands.CLI{}
	parser, err := kong.New(cli, kong.Name("assetbuilder"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return kctx.Run(&commands.Global{}, cli)
}

func TestProdBuildEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dir, revision := setupProject(t)
	cfgPath := filepath.Join(dir, "assetbuilder.yaml")

	require.NoError(t, runCLI(t, "-c", cfgPath, "build", "--env", "QA"))

	out := filepath.Join(dir, "dist", "prod")
	files := listFiles(t, out)
	for _, want := range []string{
		"app.min.js",
		"vendors.min.js",
		"bower_components/lib/lib.js.map",
		"index.html",
		"views/home.html",
		"vendors.min.css",
		"app.min.css",
		"assets/svg/sprite.svg",
		"assets/css/svg-sprite.min.css",
		"assets/filters/blur.svg",
		"fonts/a.woff",
		"docs/data.csv",
		"images/logo.png",
	} {
		assert.Contains(t, files, want)
	}
	assert.NotContains(t, files, "assets/sprite.html", "prod builds skip the sprite preview")
	assert.NotContains(t, files, "index.tmpl")

	index := readFile(t, filepath.Join(out, "index.html"))
	assert.Contains(t, index, `data-env="QA"`)
	assert.Contains(t, index, revision)

	app := readFile(t, filepath.Join(out, "app.min.js"))
	assert.Less(t, strings.Index(app, `"b"`), strings.Index(app, `"app"`), "module files load first")

	// A second build over an existing tree produces the same outputs.
	first := readFile(t, filepath.Join(out, "app.min.js"))
	require.NoError(t, runCLI(t, "-c", cfgPath, "qa"))
	assert.Equal(t, first, readFile(t, filepath.Join(out, "app.min.js")))
	assert.ElementsMatch(t, files, listFiles(t, out))
}

func TestDevBuildWithoutWatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dir, _ := setupProject(t)
	cfgPath := filepath.Join(dir, "assetbuilder.yaml")

	require.NoError(t, runCLI(t, "-c", cfgPath, "dev", "--no-watch"))

	out := filepath.Join(dir, "dist", "dev")
	files := listFiles(t, out)
	for _, want := range []string{
		"app.js",
		"components/b-module.js",
		"components/a.js",
		"index.html",
		"views/home.html",
		"vendors.css",
		"app.css",
		"assets/sprite.html",
	} {
		assert.Contains(t, files, want)
	}

	index := readFile(t, filepath.Join(out, "index.html"))
	assert.Contains(t, index, `data-env="DEV"`)
	assert.Less(t, strings.Index(index, "components/b-module.js"), strings.Index(index, `src="app.js"`))
	assert.Less(t, strings.Index(index, "lib.js"), strings.Index(index, "components/b-module.js"),
		"vendor scripts are referenced before application scripts")
}

func TestCleanRemovesOutput(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dir, _ := setupProject(t)
	cfgPath := filepath.Join(dir, "assetbuilder.yaml")

	require.NoError(t, runCLI(t, "-c", cfgPath, "prod"))
	require.NotEmpty(t, listFiles(t, filepath.Join(dir, "dist")))

	require.NoError(t, runCLI(t, "-c", cfgPath, "clean"))
	assert.NoDirExists(t, filepath.Join(dir, "dist", "prod"))
}
