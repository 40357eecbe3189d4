package orchestrator

import (
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/watch"
)

// Bindings returns the watch bindings of the dev profile. A script change
// reruns entry rendering as well, since the app manifest may have changed.
func Bindings(cfg *config.Config) []watch.Binding {
	assets := append(append([]string{}, cfg.Src.Icons...), cfg.Src.Filters...)
	return []watch.Binding{
		{
			Name:     "entry-templates",
			Patterns: cfg.Src.EntryTemplates,
			Steps:    []pipeline.StepName{pipeline.StepRenderEntryTemplates},
		},
		{
			Name:     "partial-templates",
			Patterns: cfg.Src.PartialTemplates,
			Steps:    []pipeline.StepName{pipeline.StepRenderPartialTemplates},
		},
		{
			Name:     "scripts",
			Patterns: cfg.Src.Scripts,
			Steps: []pipeline.StepName{
				pipeline.StepLint,
				pipeline.StepBundleAppScripts,
				pipeline.StepRenderEntryTemplates,
			},
		},
		{
			Name:     "styles",
			Patterns: cfg.Src.Styles,
			Steps:    []pipeline.StepName{pipeline.StepCompileStyles},
		},
		{
			Name:     "assets",
			Patterns: assets,
			Steps:    []pipeline.StepName{pipeline.StepGenerateIconSprite, pipeline.StepCopyFilters},
		},
	}
}
