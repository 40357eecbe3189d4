package steps

import (
	"context"
	"os"
	"path"
	"strings"

	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/minify"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/sprite"
)

// GenerateIconSprite combines icons into one sprite sheet with a stylesheet
// of per-icon selectors. Dev also writes a preview page; prod minifies the
// stylesheet.
func GenerateIconSprite(ctx context.Context, bc pipeline.BuildContext) (pipeline.StepStats, error) {
	var stats pipeline.StepStats
	matches, err := expand(bc, bc.Config.Src.Icons)
	if err != nil || len(matches) == 0 {
		return stats, err
	}

	icons := make([]sprite.Icon, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		data, err := os.ReadFile(bc.SourcePath(m.Path))
		if err != nil {
			return stats, abErrors.FileSystemError("read", m.Path, err)
		}
		name := strings.TrimSuffix(path.Base(m.Path), path.Ext(m.Path))
		icon, err := sprite.LoadIcon(name, data)
		if err != nil {
			return stats, abErrors.CompileError(m.Path, err)
		}
		icons = append(icons, icon)
	}

	out := bc.Output()
	res, err := sprite.Build(icons, sprite.Options{
		Selector:    bc.Config.Sprite.Selector,
		SpriteFile:  bc.Config.Sprite.SpriteFile,
		Stylesheet:  out.IconStylesheet,
		Preview:     bc.Config.Sprite.Preview && !bc.Minify(),
		PreviewFile: bc.Config.Sprite.PreviewFile,
	})
	if err != nil {
		return stats, abErrors.CompileError("icon sprite", err)
	}

	css := res.CSS
	if bc.Minify() {
		if css, err = minify.CSS(out.IconStylesheet, css, minify.CSSOptions{Minify: true}); err != nil {
			return stats, abErrors.CompileError(out.IconStylesheet, err)
		}
	}
	if err := write(&stats, bc.AssetsPath(bc.Config.Sprite.SpriteFile), res.SVG); err != nil {
		return stats, err
	}
	if err := write(&stats, bc.AssetsPath(out.IconStylesheet), css); err != nil {
		return stats, err
	}
	if res.Preview != nil {
		return stats, write(&stats, bc.AssetsPath(bc.Config.Sprite.PreviewFile), res.Preview)
	}
	return stats, nil
}

// CopyFilters copies SVG filter definitions into the filters directory.
func CopyFilters(ctx context.Context, bc pipeline.BuildContext) (pipeline.StepStats, error) {
	return copyRelative(ctx, bc, pipeline.StepCopyFilters, bc.Config.Src.Filters, bc.Config.Dist.Filters)
}

// CopyFonts copies font files relative to their glob base.
func CopyFonts(ctx context.Context, bc pipeline.BuildContext) (pipeline.StepStats, error) {
	return copyRelative(ctx, bc, pipeline.StepCopyFonts, bc.Config.Src.Fonts, "")
}

// CopyDocs copies downloadable documents relative to their glob base.
func CopyDocs(ctx context.Context, bc pipeline.BuildContext) (pipeline.StepStats, error) {
	return copyRelative(ctx, bc, pipeline.StepCopyDocs, bc.Config.Src.Docs, "")
}

// CopyImages copies images relative to their glob base.
func CopyImages(ctx context.Context, bc pipeline.BuildContext) (pipeline.StepStats, error) {
	return copyRelative(ctx, bc, pipeline.StepCopyImages, bc.Config.Src.Images, "")
}
