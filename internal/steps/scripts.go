package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/minify"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
)

// Wrap encloses an application script in the module wrapper.
func Wrap(cfg config.ScriptsConfig, contents []byte) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "(function(%s){\n'use strict';\n", cfg.WrapParam)
	b.Write(contents)
	fmt.Fprintf(&b, "\n})(%s);", cfg.WrapGlobal)
	return []byte(b.String())
}

// SortModulesFirst moves files whose base name contains marker ahead of all
// others. The sort is stable, so glob order is kept within each group.
func SortModulesFirst(matches []fsutil.Match, marker string) []fsutil.Match {
	out := make([]fsutil.Match, len(matches))
	copy(out, matches)
	score := func(m fsutil.Match) int {
		if strings.Contains(path.Base(m.Path), marker) {
			return 0
		}
		return 1
	}
	sort.SliceStable(out, func(i, j int) bool { return score(out[i]) < score(out[j]) })
	return out
}

// vendorRef returns the path an entry page uses to load a vendor file: the
// project-relative path starting at the vendor directory.
func vendorRef(pathVendors, p string) string {
	if i := strings.Index(p, pathVendors); pathVendors != "" && i >= 0 {
		return p[i:]
	}
	return p
}

// BundleVendorScripts copies vendor scripts (dev) or concatenates and
// minifies them into one file (prod). The dev manifest lists the copied
// files in load order; the prod manifest is empty.
func BundleVendorScripts(ctx context.Context, bc pipeline.BuildContext) (pipeline.Manifest, pipeline.StepStats, error) {
	var manifest pipeline.Manifest
	matches, err := expand(bc, bc.Config.Src.Vendors.Scripts)
	if err != nil {
		return manifest, pipeline.StepStats{}, err
	}

	if !bc.Minify() {
		stats, err := copyMatches(ctx, bc, pipeline.StepBundleVendorScripts, matches, func(m fsutil.Match) string {
			return bc.OutPath(m.Path)
		})
		if err != nil {
			return manifest, stats, err
		}
		for _, m := range matches {
			manifest.Paths = append(manifest.Paths, vendorRef(bc.Config.Src.PathVendors, m.Path))
		}
		return manifest, stats, nil
	}

	var stats pipeline.StepStats
	if len(matches) == 0 {
		return manifest, stats, nil
	}
	joined, err := fsutil.Concat(bc.ProjectDir, fsutil.Paths(matches), "\n")
	if err != nil {
		return manifest, stats, abErrors.FileSystemError("read", bc.ProjectDir, err)
	}
	name := bc.Output().VendorScript
	out, err := minify.JS(name, joined)
	if err != nil {
		return manifest, stats, abErrors.CompileError(name, err)
	}
	return manifest, stats, write(&stats, bc.OutPath(name), out)
}

// CopySourceMaps copies vendor source maps next to the vendor scripts.
func CopySourceMaps(ctx context.Context, bc pipeline.BuildContext) (pipeline.StepStats, error) {
	matches, err := expand(bc, bc.Config.Src.Vendors.Maps)
	if err != nil {
		return pipeline.StepStats{}, err
	}
	return copyMatches(ctx, bc, pipeline.StepCopySourceMaps, matches, func(m fsutil.Match) string {
		return bc.OutPath(m.Path)
	})
}

// BundleAppScripts wraps every application script and orders module
// definitions first. Dev writes each file below the output directory and
// returns the manifest of written paths; prod concatenates and minifies into
// a single file.
func BundleAppScripts(ctx context.Context, bc pipeline.BuildContext) (pipeline.Manifest, pipeline.StepStats, error) {
	var (
		manifest pipeline.Manifest
		stats    pipeline.StepStats
	)
	matches, err := expand(bc, bc.Config.Src.Scripts)
	if err != nil {
		return manifest, stats, err
	}
	matches = SortModulesFirst(matches, bc.Config.Scripts.ModuleMarker)

	wrapped := make([][]byte, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return manifest, stats, err
		}
		src, err := os.ReadFile(bc.SourcePath(m.Path))
		if err != nil {
			return manifest, stats, abErrors.FileSystemError("read", m.Path, err)
		}
		wrapped = append(wrapped, Wrap(bc.Config.Scripts, src))
	}

	if !bc.Minify() {
		for i, m := range matches {
			if err := write(&stats, bc.OutPath(m.Rel()), wrapped[i]); err != nil {
				return manifest, stats, err
			}
			manifest.Paths = append(manifest.Paths, m.Rel())
		}
		slog.Debug("Bundled app scripts", logfields.Count(manifest.Len()))
		return manifest, stats, nil
	}

	if len(wrapped) == 0 {
		return manifest, stats, nil
	}
	var joined []byte
	for i, w := range wrapped {
		if i > 0 {
			joined = append(joined, '\n')
		}
		joined = append(joined, w...)
	}
	name := bc.Output().AppScript
	out, err := minify.JS(name, joined)
	if err != nil {
		return manifest, stats, abErrors.CompileError(name, err)
	}
	return manifest, stats, write(&stats, bc.OutPath(name), out)
}
