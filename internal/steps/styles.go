package steps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/minify"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/styles"
)

// BundleVendorStyles concatenates vendor stylesheets into one file,
// minified in prod.
func BundleVendorStyles(ctx context.Context, bc pipeline.BuildContext) (pipeline.StepStats, error) {
	var stats pipeline.StepStats
	matches, err := expand(bc, bc.Config.Src.Vendors.Styles)
	if err != nil || len(matches) == 0 {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	joined, err := fsutil.Concat(bc.ProjectDir, fsutil.Paths(matches), "\n")
	if err != nil {
		return stats, abErrors.FileSystemError("read", bc.ProjectDir, err)
	}
	name := bc.Output().VendorStyle
	out := joined
	if bc.Minify() {
		if out, err = minify.CSS(name, joined, minify.CSSOptions{Minify: true}); err != nil {
			return stats, abErrors.CompileError(name, err)
		}
	}
	return stats, write(&stats, bc.OutPath(name), out)
}

// CompileStyles orders stylesheet sources (configuration, placeholders and
// mixins first), concatenates them, compiles the result and adds vendor
// prefixes for the configured browser targets. Compile errors are reported
// against the originating source file.
func CompileStyles(ctx context.Context, bc pipeline.BuildContext, compiler styles.Compiler) (pipeline.StepStats, error) {
	var stats pipeline.StepStats
	matches, err := expand(bc, bc.Config.Src.Styles)
	if err != nil || len(matches) == 0 {
		return stats, err
	}
	ordered := styles.Order(fsutil.Paths(matches), bc.Config.Styles.Order)
	bundle, err := styles.Concat(bc.ProjectDir, ordered)
	if err != nil {
		return stats, abErrors.FileSystemError("read", bc.ProjectDir, err)
	}

	compiled, err := compiler.Compile(ctx, bundle.Source, styles.CompileOptions{
		Compressed: bc.Minify(),
		LoadPaths:  loadPaths(bc, ordered),
	})
	if err != nil {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		return stats, compileFailure(bundle, err)
	}

	engines, err := minify.ParseEngines(bc.Config.Styles.Targets)
	if err != nil {
		return stats, abErrors.ValidationFailed("styles.targets", err.Error())
	}
	name := bc.Output().AppStyle
	out, err := minify.CSS(name, compiled, minify.CSSOptions{Minify: bc.Minify(), Engines: engines})
	if err != nil {
		return stats, abErrors.CompileError(name, err)
	}
	slog.Debug("Compiled stylesheets", logfields.Count(len(ordered)), logfields.Output(name))
	return stats, write(&stats, bc.OutPath(name), out)
}

// loadPaths lets imports resolve relative to each source's directory.
func loadPaths(bc pipeline.BuildContext, files []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(dir string) {
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		out = append(out, bc.SourcePath(dir))
	}
	add(bc.Config.Src.Path)
	for _, f := range files {
		add(path.Dir(f))
	}
	return out
}

func compileFailure(bundle *styles.Bundle, err error) error {
	var ce *styles.CompileError
	if errors.As(err, &ce) && ce.Line > 0 {
		if file, line, ok := bundle.Locate(ce.Line); ok {
			return abErrors.CompileError(fmt.Sprintf("%s:%d:%d", file, line, ce.Column), err)
		}
	}
	return abErrors.CompileError("stylesheets", err)
}
