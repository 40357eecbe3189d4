package steps

import (
	"context"
	"fmt"
	"os"
	"path"

	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/minify"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/templates"
)

// RenderEntryTemplates renders entry pages. Dev renders every entry
// template with both script manifests; prod renders only the index
// template, without manifests, since scripts are bundled into single files.
func RenderEntryTemplates(ctx context.Context, bc pipeline.BuildContext, manifests pipeline.Manifests) (pipeline.StepStats, error) {
	var stats pipeline.StepStats
	matches, err := expand(bc, bc.Config.Src.EntryTemplates)
	if err != nil {
		return stats, err
	}

	targets := matches
	if bc.Minify() {
		index, err := expand(bc, []string{bc.Config.Src.EntryIndex})
		if err != nil {
			return stats, err
		}
		if len(index) == 0 {
			return stats, abErrors.TemplateError(bc.Config.Src.EntryIndex, fmt.Errorf("index template not found"))
		}
		targets = index
		if !containsPath(matches, index[0].Path) {
			matches = append(matches, index[0])
		}
	}

	sources := make([]templates.Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, templates.Source{Name: templateName(m), Path: bc.SourcePath(m.Path)})
	}
	set, err := templates.Parse(sources)
	if err != nil {
		return stats, abErrors.TemplateError("entry templates", err)
	}

	data := templates.EntryData{
		Env:      string(bc.Env),
		Profile:  string(bc.Profile),
		Revision: bc.Revision,
		BuildID:  bc.BuildID,
	}
	if !bc.Minify() {
		data.AppScripts = manifests.App.Clone().Paths
		data.VendorScripts = manifests.Vendor.Clone().Paths
	}

	for _, m := range targets {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		name := templateName(m)
		out, err := set.Render(name, data)
		if err != nil {
			return stats, abErrors.TemplateError(m.Path, err)
		}
		if err := write(&stats, bc.OutPath(templates.OutputName(name)), out); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// templateName is the name a template is registered under: its path
// relative to the glob base, or its file name for literal paths.
func templateName(m fsutil.Match) string {
	if m.Rel() == m.Path {
		return path.Base(m.Path)
	}
	return m.Rel()
}

func containsPath(matches []fsutil.Match, p string) bool {
	for _, m := range matches {
		if m.Path == p {
			return true
		}
	}
	return false
}

// RenderPartialTemplates copies partial templates below the output
// directory, minifying their whitespace in prod.
func RenderPartialTemplates(ctx context.Context, bc pipeline.BuildContext) (pipeline.StepStats, error) {
	if !bc.Minify() {
		return copyRelative(ctx, bc, pipeline.StepRenderPartialTemplates, bc.Config.Src.PartialTemplates, "")
	}

	var stats pipeline.StepStats
	matches, err := expand(bc, bc.Config.Src.PartialTemplates)
	if err != nil {
		return stats, err
	}
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		src, err := os.ReadFile(bc.SourcePath(m.Path))
		if err != nil {
			return stats, abErrors.FileSystemError("read", m.Path, err)
		}
		out, err := minify.HTML(src)
		if err != nil {
			return stats, abErrors.TemplateError(m.Path, err)
		}
		if err := write(&stats, bc.OutPath(m.Rel()), out); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
