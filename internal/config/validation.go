package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
)

// ValidateConfig checks a loaded configuration for structural errors that
// would otherwise surface mid-build.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{cfg: cfg}
	return v.validate()
}

type configurationValidator struct {
	cfg *Config
}

func (v *configurationValidator) validate() error {
	checks := []func() error{
		v.validateOutputs,
		v.validateGlobs,
		v.validateSprite,
		v.validatePipeline,
		v.validateWatch,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v *configurationValidator) validateOutputs() error {
	dev, prod := filepath.Clean(v.cfg.Dist.Dev.Dir), filepath.Clean(v.cfg.Dist.Prod.Dir)
	if dev == prod {
		return abErrors.ValidationFailed("dist", "dev and prod output directories must differ")
	}
	for _, dir := range []string{dev, prod, filepath.Clean(v.cfg.Dist.Path)} {
		if dir == "." || dir == "/" {
			return abErrors.ValidationFailed("dist", fmt.Sprintf("refusing to use %q as an output directory", dir))
		}
	}
	root := filepath.Clean(v.cfg.Dist.Path)
	for _, dir := range []string{dev, prod} {
		if !isWithin(dir, root) {
			return abErrors.ValidationFailed("dist", fmt.Sprintf("profile directory %q must be inside dist.path %q", dir, root))
		}
	}
	for field, src := range map[string]string{"src.path": v.cfg.Src.Path, "src.path_vendors": v.cfg.Src.PathVendors} {
		if src != "" && isWithin(filepath.Clean(src), root) {
			return abErrors.ValidationFailed(field, fmt.Sprintf("%q is inside dist.path %q, which clean removes", src, root))
		}
	}
	for _, p := range []ProfileOutput{v.cfg.Dist.Dev, v.cfg.Dist.Prod} {
		for _, name := range []string{p.AppScript, p.AppStyle, p.VendorScript, p.VendorStyle, p.IconStylesheet} {
			if filepath.IsAbs(name) || strings.HasPrefix(filepath.Clean(name), "..") {
				return abErrors.ValidationFailed("dist", fmt.Sprintf("output name %q must be relative to the profile directory", name))
			}
		}
	}
	return nil
}

func (v *configurationValidator) validateGlobs() error {
	groups := map[string][]string{
		"src.scripts":           v.cfg.Src.Scripts,
		"src.entry_templates":   v.cfg.Src.EntryTemplates,
		"src.partial_templates": v.cfg.Src.PartialTemplates,
		"src.styles":            v.cfg.Src.Styles,
		"src.icons":             v.cfg.Src.Icons,
		"src.filters":           v.cfg.Src.Filters,
		"src.fonts":             v.cfg.Src.Fonts,
		"src.docs":              v.cfg.Src.Docs,
		"src.images":            v.cfg.Src.Images,
		"styles.order":          v.cfg.Styles.Order,
		"lint.exclude":          v.cfg.Lint.Exclude,
	}
	for field, patterns := range groups {
		for _, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				return abErrors.ValidationFailed(field, fmt.Sprintf("invalid glob pattern %q", pattern))
			}
		}
	}
	return nil
}

func (v *configurationValidator) validateSprite() error {
	if !strings.Contains(v.cfg.Sprite.Selector, "%f") {
		return abErrors.ValidationFailed("sprite.selector", "selector must contain the %f placeholder")
	}
	return nil
}

func (v *configurationValidator) validatePipeline() error {
	if v.cfg.Pipeline.Concurrency < 1 {
		return abErrors.ValidationFailed("pipeline.concurrency", "must be at least 1")
	}
	return nil
}

func (v *configurationValidator) validateWatch() error {
	if v.cfg.Watch.Debounce == "" {
		return nil
	}
	d, err := time.ParseDuration(v.cfg.Watch.Debounce)
	if err != nil {
		return abErrors.ValidationFailed("watch.debounce", err.Error())
	}
	if d < 0 {
		return abErrors.ValidationFailed("watch.debounce", "must not be negative")
	}
	return nil
}

// WatchDebounce returns the parsed debounce interval, zero when unset.
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0
	}
	return d
}

// isWithin reports whether child equals parent or lives beneath it.
func isWithin(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
