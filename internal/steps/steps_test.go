package steps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/styles"
)

const iconSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16"><rect width="16" height="16"/></svg>`

// newProject writes files into a temporary project and returns a build
// context for it with vendor lists pointing at fixture files.
func newProject(t *testing.T, profile config.Profile, files map[string]string) pipeline.BuildContext {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}

	cfg := config.Default()
	cfg.Src.Vendors.Scripts = []string{"bower_components/lib/lib.js", "bower_components/other/other.js"}
	cfg.Src.Vendors.Styles = []string{"bower_components/lib/lib.css"}
	cfg.Src.Vendors.Maps = []string{"bower_components/lib/lib.js.map"}
	cfg.Lint.Exclude = nil

	return pipeline.BuildContext{
		Profile:    profile,
		Env:        config.EnvDev,
		BuildID:    "build-1",
		Revision:   "abc123",
		ProjectDir: dir,
		Config:     cfg,
	}
}

func defaultFixture() map[string]string {
	return map[string]string{
		"bower_components/lib/lib.js":     "window.lib = function () { return 1; };\n",
		"bower_components/lib/lib.js.map": `{"version":3}`,
		"bower_components/lib/lib.css":    "body {\n  margin: 0;\n}\n",
		"bower_components/other/other.js": "window.other = 2;\n",
		"src/app.js":                      "ng.module('app', []);\n",
		"src/components/b-module.js":      "ng.module('b', []);\n",
		"src/components/a.js":             "var answer = 40 + 2;\n",
		"src/components/c-module.js":      "ng.module('c', []);\n",
		"src/index.tmpl":                  "<html data-env=\"{{ .Env }}\">\n{{ scriptTags .VendorScripts }}\n{{ scriptTags .AppScripts }}\n</html>\n",
		"src/about.tmpl":                  "<p>{{ .Profile }}</p>\n",
		"src/views/home.html":             "<div>\n    <span>home</span>\n</div>\n",
		"src/styles/main.scss":            ".box {\n  display: flex;\n}\n",
		"src/styles/config.scss":          ".config {\n  color: red;\n}\n",
		"src/assets/icons/home.svg":       iconSVG,
		"src/assets/icons/close.svg":      iconSVG,
		"src/assets/filters/blur.svg":     "<svg></svg>",
		"src/assets/fonts/a.woff":         "font",
		"src/assets/docs/data.csv":        "a,b\n",
		"src/img/logo.png":                "png",
	}
}

func readOut(t *testing.T, bc pipeline.BuildContext, rel ...string) string {
	t.Helper()
	data, err := os.ReadFile(bc.OutPath(rel...))
	require.NoError(t, err)
	return string(data)
}

func TestSortModulesFirst(t *testing.T) {
	in := []fsutil.Match{{Path: "b-module.js"}, {Path: "a.js"}, {Path: "c-module.js"}}
	got := fsutil.Paths(SortModulesFirst(in, "-module.js"))
	assert.Equal(t, []string{"b-module.js", "c-module.js", "a.js"}, got)
	assert.Equal(t, "b-module.js", in[0].Path, "input must not be reordered")
}

func TestWrap(t *testing.T) {
	cfg := config.Default().Scripts
	got := string(Wrap(cfg, []byte("var x = 1;")))
	assert.Equal(t, "(function(ng){\n'use strict';\nvar x = 1;\n})(this.angular);", got)
}

func TestBundleAppScriptsDev(t *testing.T) {
	bc := newProject(t, config.ProfileDev, defaultFixture())

	manifest, stats, err := BundleAppScripts(context.Background(), bc)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"components/b-module.js",
		"components/c-module.js",
		"app.js",
		"components/a.js",
	}, manifest.Paths)
	assert.Equal(t, manifest.Len(), stats.FilesWritten)

	out := readOut(t, bc, "components/a.js")
	assert.True(t, strings.HasPrefix(out, "(function(ng){\n'use strict';\n"))
	assert.Contains(t, out, "var answer = 40 + 2;")
}

func TestBundleAppScriptsProdIsMinifiedAndIdempotent(t *testing.T) {
	bc := newProject(t, config.ProfileProd, defaultFixture())

	_, stats, err := BundleAppScripts(context.Background(), bc)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesWritten)
	first := readOut(t, bc, "app.min.js")
	assert.Contains(t, first, "this.angular")
	assert.NotContains(t, first, "40 + 2")
	assert.Less(t, strings.Index(first, "\"b\""), strings.Index(first, "\"app\""))

	_, _, err = BundleAppScripts(context.Background(), bc)
	require.NoError(t, err)
	assert.Equal(t, first, readOut(t, bc, "app.min.js"))
}

func TestBundleVendorScripts(t *testing.T) {
	t.Run("dev copies and records manifest", func(t *testing.T) {
		bc := newProject(t, config.ProfileDev, defaultFixture())
		manifest, stats, err := BundleVendorScripts(context.Background(), bc)
		require.NoError(t, err)
		assert.Equal(t, []string{"bower_components/lib/lib.js", "bower_components/other/other.js"}, manifest.Paths)
		assert.Equal(t, 2, stats.FilesWritten)
		assert.Equal(t, "window.other = 2;\n", readOut(t, bc, "bower_components/other/other.js"))
	})

	t.Run("prod concatenates and minifies", func(t *testing.T) {
		bc := newProject(t, config.ProfileProd, defaultFixture())
		manifest, _, err := BundleVendorScripts(context.Background(), bc)
		require.NoError(t, err)
		assert.Zero(t, manifest.Len())
		out := readOut(t, bc, "vendors.min.js")
		assert.Less(t, strings.Index(out, "window.lib"), strings.Index(out, "window.other"))
		assert.NotContains(t, out, "return 1; };")
	})

	t.Run("missing vendor file is a filesystem error", func(t *testing.T) {
		bc := newProject(t, config.ProfileDev, defaultFixture())
		bc.Config.Src.Vendors.Scripts = []string{"bower_components/missing.js"}
		_, _, err := BundleVendorScripts(context.Background(), bc)
		require.Error(t, err)
		assert.True(t, abErrors.IsCategory(err, abErrors.CategoryFileSystem))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestCopySourceMaps(t *testing.T) {
	bc := newProject(t, config.ProfileDev, defaultFixture())
	stats, err := CopySourceMaps(context.Background(), bc)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesWritten)
	assert.Equal(t, `{"version":3}`, readOut(t, bc, "bower_components/lib/lib.js.map"))
}

func TestRenderEntryTemplatesDev(t *testing.T) {
	bc := newProject(t, config.ProfileDev, defaultFixture())
	ctx := context.Background()

	app, appStats, err := BundleAppScripts(ctx, bc)
	require.NoError(t, err)
	vendor, vendorStats, err := BundleVendorScripts(ctx, bc)
	require.NoError(t, err)
	assert.Equal(t, appStats.FilesWritten, app.Len())
	assert.Equal(t, vendorStats.FilesWritten, vendor.Len())

	stats, err := RenderEntryTemplates(ctx, bc, pipeline.Manifests{App: app, Vendor: vendor})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesWritten)

	index := readOut(t, bc, "index.html")
	assert.Contains(t, index, `data-env="DEV"`)
	assert.Equal(t, app.Len()+vendor.Len(), strings.Count(index, "<script "))
	assert.Contains(t, index, `<script src="components/b-module.js"></script>`)
	assert.Contains(t, index, `<script src="bower_components/lib/lib.js"></script>`)
	assert.Equal(t, "<p>dev</p>\n", readOut(t, bc, "about.html"))
}

func TestRenderEntryTemplatesProdRendersIndexOnly(t *testing.T) {
	bc := newProject(t, config.ProfileProd, defaultFixture())
	bc.Env = config.EnvStaging

	stats, err := RenderEntryTemplates(context.Background(), bc, pipeline.Manifests{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesWritten)
	assert.Contains(t, readOut(t, bc, "index.html"), `data-env="STAGING"`)
	_, err = os.Stat(bc.OutPath("about.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestRenderEntryTemplatesReportsTemplateErrors(t *testing.T) {
	files := defaultFixture()
	files["src/index.tmpl"] = "{{ .Unknown }}"
	bc := newProject(t, config.ProfileDev, files)

	_, err := RenderEntryTemplates(context.Background(), bc, pipeline.Manifests{})
	require.Error(t, err)
	assert.True(t, abErrors.IsCategory(err, abErrors.CategoryTemplate))
}

func TestRenderPartialTemplates(t *testing.T) {
	dev := newProject(t, config.ProfileDev, defaultFixture())
	_, err := RenderPartialTemplates(context.Background(), dev)
	require.NoError(t, err)
	assert.Equal(t, "<div>\n    <span>home</span>\n</div>\n", readOut(t, dev, "views/home.html"))

	prod := newProject(t, config.ProfileProd, defaultFixture())
	_, err = RenderPartialTemplates(context.Background(), prod)
	require.NoError(t, err)
	assert.Equal(t, "<div><span>home</span></div>", readOut(t, prod, "views/home.html"))
}

func TestBundleVendorStyles(t *testing.T) {
	dev := newProject(t, config.ProfileDev, defaultFixture())
	_, err := BundleVendorStyles(context.Background(), dev)
	require.NoError(t, err)
	assert.Equal(t, "body {\n  margin: 0;\n}\n", readOut(t, dev, "vendors.css"))

	prod := newProject(t, config.ProfileProd, defaultFixture())
	_, err = BundleVendorStyles(context.Background(), prod)
	require.NoError(t, err)
	assert.Equal(t, "body{margin:0}", strings.TrimSpace(readOut(t, prod, "vendors.min.css")))
}

func TestCompileStylesOrdersAndMinifies(t *testing.T) {
	prod := newProject(t, config.ProfileProd, defaultFixture())
	stats, err := CompileStyles(context.Background(), prod, styles.PassthroughCompiler{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesWritten)
	out := readOut(t, prod, "app.min.css")
	assert.Less(t, strings.Index(out, ".config"), strings.Index(out, ".box"))
	assert.NotContains(t, out, "\n  ")

	dev := newProject(t, config.ProfileDev, defaultFixture())
	_, err = CompileStyles(context.Background(), dev, styles.PassthroughCompiler{})
	require.NoError(t, err)
	assert.Contains(t, readOut(t, dev, "app.css"), "\n  color: red;")
}

type failingCompiler struct{ line int }

func (f failingCompiler) Compile(context.Context, []byte, styles.CompileOptions) ([]byte, error) {
	return nil, &styles.CompileError{Line: f.line, Column: 3, Message: "expected \";\"", Err: errors.New("exit status 65")}
}

func TestCompileStylesMapsErrorsToSourceFile(t *testing.T) {
	bc := newProject(t, config.ProfileDev, defaultFixture())
	// config.scss is ordered first and spans three lines; line 5 is the
	// second line of main.scss.
	_, err := CompileStyles(context.Background(), bc, failingCompiler{line: 5})
	require.Error(t, err)
	assert.True(t, abErrors.IsCategory(err, abErrors.CategoryCompile))

	abErr, ok := abErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "src/styles/main.scss:2:3", abErr.Context["source"])
}

func TestGenerateIconSprite(t *testing.T) {
	dev := newProject(t, config.ProfileDev, defaultFixture())
	stats, err := GenerateIconSprite(context.Background(), dev)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FilesWritten)
	css := readOut(t, dev, "assets", "css/svg-sprite.css")
	assert.Contains(t, css, ".icon_close {")
	assert.Contains(t, css, ".icon_home {")
	assert.Contains(t, readOut(t, dev, "assets", "svg/sprite.svg"), "<svg")
	assert.Contains(t, readOut(t, dev, "assets", "sprite.html"), "icon_home")

	prod := newProject(t, config.ProfileProd, defaultFixture())
	stats, err = GenerateIconSprite(context.Background(), prod)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FilesWritten)
	assert.NotContains(t, readOut(t, prod, "assets", "css/svg-sprite.min.css"), "\n  ")
	_, err = os.Stat(prod.AssetsPath("sprite.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestCopySteps(t *testing.T) {
	bc := newProject(t, config.ProfileDev, defaultFixture())
	ctx := context.Background()

	_, err := CopyFilters(ctx, bc)
	require.NoError(t, err)
	assert.Equal(t, "<svg></svg>", readOut(t, bc, "assets/filters/blur.svg"))

	_, err = CopyFonts(ctx, bc)
	require.NoError(t, err)
	assert.Equal(t, "font", readOut(t, bc, "fonts/a.woff"))

	_, err = CopyDocs(ctx, bc)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", readOut(t, bc, "docs/data.csv"))

	_, err = CopyImages(ctx, bc)
	require.NoError(t, err)
	assert.Equal(t, "png", readOut(t, bc, "img/logo.png"))
}

func TestCleanRemovesStaleOutputs(t *testing.T) {
	bc := newProject(t, config.ProfileDev, defaultFixture())
	ctx := context.Background()

	_, _, err := BundleAppScripts(ctx, bc)
	require.NoError(t, err)
	require.NoError(t, os.Remove(bc.SourcePath("src/components/a.js")))

	_, err = Clean(ctx, bc)
	require.NoError(t, err)
	_, err = os.Stat(bc.SourcePath(bc.Config.Dist.Path))
	assert.True(t, os.IsNotExist(err))

	_, _, err = BundleAppScripts(ctx, bc)
	require.NoError(t, err)
	_, err = os.Stat(bc.OutPath("components/a.js"))
	assert.True(t, os.IsNotExist(err), "stale output survived a clean rebuild")
}

func TestLint(t *testing.T) {
	files := defaultFixture()
	files["src/components/broken.js"] = "var = ;\n"
	files["src/components/debug.js"] = "debugger;\n"

	t.Run("issues are warnings by default", func(t *testing.T) {
		bc := newProject(t, config.ProfileDev, files)
		result, err := Lint(context.Background(), bc)
		require.Error(t, err)
		var se *pipeline.StepError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, pipeline.StepErrorWarning, se.Kind)
		assert.GreaterOrEqual(t, result.ErrorCount(), 1)
		assert.Equal(t, 1, result.WarningCount())
	})

	t.Run("blocking makes errors fatal", func(t *testing.T) {
		bc := newProject(t, config.ProfileDev, files)
		bc.Config.Lint.Blocking = true
		_, err := Lint(context.Background(), bc)
		var se *pipeline.StepError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, pipeline.StepErrorFatal, se.Kind)
		assert.True(t, abErrors.IsCategory(err, abErrors.CategoryLint))
	})

	t.Run("excluded files are skipped", func(t *testing.T) {
		bc := newProject(t, config.ProfileDev, files)
		bc.Config.Lint.Exclude = []string{"src/components/broken.js", "src/components/debug.js"}
		result, err := Lint(context.Background(), bc)
		require.NoError(t, err)
		assert.Equal(t, 4, result.FilesTotal)
	})
}

func TestStepsHonorCancellation(t *testing.T) {
	bc := newProject(t, config.ProfileDev, defaultFixture())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CopyFonts(ctx, bc)
	assert.ErrorIs(t, err, context.Canceled)
	_, _, err = BundleAppScripts(ctx, bc)
	assert.ErrorIs(t, err, context.Canceled)
}
