package steps

import (
	"context"
	"log/slog"
	"path"

	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
)

// expand resolves globs against the project directory.
func expand(bc pipeline.BuildContext, patterns []string) ([]fsutil.Match, error) {
	matches, err := fsutil.Expand(bc.ProjectDir, patterns)
	if err != nil {
		return nil, abErrors.FileSystemError("glob", bc.ProjectDir, err)
	}
	return matches, nil
}

// write stores data at dst and counts it.
func write(stats *pipeline.StepStats, dst string, data []byte) error {
	if err := fsutil.WriteFile(dst, data); err != nil {
		return abErrors.FileSystemError("write", dst, err)
	}
	stats.FilesWritten++
	return nil
}

// copyMatches copies every match to the location returned by dest.
func copyMatches(ctx context.Context, bc pipeline.BuildContext, step pipeline.StepName, matches []fsutil.Match, dest func(fsutil.Match) string) (pipeline.StepStats, error) {
	var stats pipeline.StepStats
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		dst := dest(m)
		if err := fsutil.CopyFile(bc.SourcePath(m.Path), dst); err != nil {
			return stats, abErrors.FileSystemError("copy", m.Path, err)
		}
		stats.FilesWritten++
	}
	slog.Debug("Copied files", logfields.Step(string(step)), logfields.Count(stats.FilesWritten))
	return stats, nil
}

// copyRelative copies files resolved from patterns below the output
// directory, keeping their path relative to the glob base.
func copyRelative(ctx context.Context, bc pipeline.BuildContext, step pipeline.StepName, patterns []string, prefix string) (pipeline.StepStats, error) {
	matches, err := expand(bc, patterns)
	if err != nil {
		return pipeline.StepStats{}, err
	}
	return copyMatches(ctx, bc, step, matches, func(m fsutil.Match) string {
		return bc.OutPath(path.Join(prefix, m.Rel()))
	})
}
