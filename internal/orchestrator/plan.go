package orchestrator

import (
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/dag"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
)

// StepSpec is one node of a profile's graph.
type StepSpec struct {
	Name pipeline.StepName
	Deps []pipeline.StepName
}

// Plan returns the steps of profile in insertion order with their
// dependencies. Insertion order follows the reference sequence so a
// concurrency limit of 1 runs steps in a familiar order.
func Plan(cfg *config.Config, profile config.Profile) []StepSpec {
	clean := []pipeline.StepName{pipeline.StepClean}

	appDeps := clean
	if cfg.Lint.Blocking {
		appDeps = []pipeline.StepName{pipeline.StepClean, pipeline.StepLint}
	}
	entryDeps := clean
	if profile == config.ProfileDev {
		entryDeps = []pipeline.StepName{pipeline.StepBundleAppScripts, pipeline.StepBundleVendorScripts}
	}

	var plan []StepSpec
	if profile == config.ProfileDev || cfg.Lint.Blocking {
		plan = append(plan, StepSpec{Name: pipeline.StepLint})
	}
	plan = append(plan,
		StepSpec{Name: pipeline.StepClean},
		StepSpec{Name: pipeline.StepBundleVendorScripts, Deps: clean},
		StepSpec{Name: pipeline.StepCopySourceMaps, Deps: clean},
		StepSpec{Name: pipeline.StepBundleAppScripts, Deps: appDeps},
		StepSpec{Name: pipeline.StepRenderEntryTemplates, Deps: entryDeps},
		StepSpec{Name: pipeline.StepRenderPartialTemplates, Deps: clean},
		StepSpec{Name: pipeline.StepBundleVendorStyles, Deps: clean},
		StepSpec{Name: pipeline.StepCompileStyles, Deps: clean},
		StepSpec{Name: pipeline.StepGenerateIconSprite, Deps: clean},
		StepSpec{Name: pipeline.StepCopyFilters, Deps: clean},
		StepSpec{Name: pipeline.StepCopyFonts, Deps: clean},
		StepSpec{Name: pipeline.StepCopyDocs, Deps: clean},
	)
	if len(cfg.Src.Images) > 0 {
		plan = append(plan, StepSpec{Name: pipeline.StepCopyImages, Deps: clean})
	}
	return plan
}

// Graph builds the step graph of profile. run supplies the function of each
// node; a nil run yields a graph suitable only for inspection.
func Graph(cfg *config.Config, profile config.Profile, run func(pipeline.StepName) dag.RunFunc) (*dag.Graph, error) {
	g := dag.New()
	for _, spec := range Plan(cfg, profile) {
		var fn dag.RunFunc
		if run != nil {
			fn = run(spec.Name)
		}
		deps := make([]string, len(spec.Deps))
		for i, d := range spec.Deps {
			deps[i] = string(d)
		}
		if err := g.Add(string(spec.Name), fn, deps...); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
