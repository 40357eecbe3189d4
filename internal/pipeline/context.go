// Package pipeline defines the values shared by build steps: the immutable
// BuildContext, script manifests, step errors and the build report.
package pipeline

import (
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

// BuildContext carries everything a step needs to know about the current
// invocation. It is constructed once per build and passed by value.
type BuildContext struct {
	Profile    config.Profile
	Env        config.Environment
	BuildID    string
	Revision   string
	ProjectDir string
	Config     *config.Config
}

// Minify reports whether outputs are minified for this build.
func (c BuildContext) Minify() bool { return c.Profile.Minify() }

// Output returns the output settings of the active profile.
func (c BuildContext) Output() config.ProfileOutput { return c.Config.Output(c.Profile) }

// SourcePath resolves a project-relative path.
func (c BuildContext) SourcePath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.ProjectDir, filepath.FromSlash(rel))
}

// OutPath resolves a path below the active profile's output directory.
func (c BuildContext) OutPath(rel ...string) string {
	parts := append([]string{c.Output().Dir}, rel...)
	return c.SourcePath(path.Join(parts...))
}

// AssetsPath resolves a path below the profile's assets directory.
func (c BuildContext) AssetsPath(rel ...string) string {
	return c.OutPath(append([]string{c.Config.Dist.Assets}, rel...)...)
}
