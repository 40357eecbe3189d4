package config

import (
	"strings"
)

// Default returns the built-in configuration used when no file is present.
// Paths mirror a conventional bower-based single page application layout.
func Default() *Config {
	return &Config{
		Src: SourceConfig{
			Path:             "src",
			PathVendors:      "bower_components",
			Scripts:          []string{"src/app.js", "src/**/*.js"},
			EntryTemplates:   []string{"src/*.tmpl"},
			EntryIndex:       "src/index.tmpl",
			PartialTemplates: []string{"src/**/*.html"},
			Styles:           []string{"src/**/*.scss"},
			Icons:            []string{"src/assets/icons/**/*.svg"},
			Filters:          []string{"src/assets/filters/**/*.svg"},
			Fonts:            []string{"src/assets/**/*.woff"},
			Docs:             []string{"src/assets/**/*.csv"},
			Images:           []string{"src/**/*.png"},
			Vendors: VendorConfig{
				Scripts: []string{
					// jquery must load before angular so angular.element uses it
					"bower_components/jquery/dist/jquery.min.js",
					"bower_components/angular/angular.min.js",
					"bower_components/angular-animate/angular-animate.min.js",
					"bower_components/gsap/src/minified/TweenMax.min.js",
					"bower_components/angular-ui-router/release/angular-ui-router.min.js",
					"bower_components/angular-gsapify-router/angular-gsapify-router.js",
					"bower_components/angular-resource/angular-resource.min.js",
					"bower_components/angular-sanitize/angular-sanitize.min.js",
					"bower_components/angular-strap/src/helpers/dimensions.js",
					"bower_components/angular-strap/src/tooltip/tooltip.js",
					"bower_components/angular-strap/src/popover/popover.js",
					"bower_components/moment/min/moment-with-locales.min.js",
					"bower_components/kefir/dist/kefir.min.js",
					"bower_components/hammerjs/hammer.min.js",
					"bower_components/angular-hammer/angular-hammer.js",
					"bower_components/jquery-ui/jquery-ui.min.js",
					"bower_components/keyboard/dist/js/jquery.keyboard.min.js",
					"bower_components/iScroll/build/iscroll-probe.js",
					"bower_components/angular-iscroll/dist/lib/angular-iscroll.js",
					"bower_components/angular-ui-select/dist/select.min.js",
				},
				Styles: []string{
					"bower_components/normalize.css/normalize.css",
					"bower_components/keyboard/dist/css/keyboard.min.css",
				},
				Maps: []string{
					"bower_components/jquery/dist/jquery.min.map",
					"bower_components/angular/angular.min.js.map",
					"bower_components/angular-animate/angular-animate.min.js.map",
					"bower_components/angular-sanitize/angular-sanitize.min.js.map",
					"bower_components/angular-resource/angular-resource.min.js.map",
					"bower_components/kefir/dist/kefir.min.js.map",
					"bower_components/hammerjs/hammer.min.map",
				},
			},
		},
		Dist: DistConfig{
			Path:    "dist",
			Assets:  "assets",
			Filters: "assets/filters",
			Dev:     defaultOutput(ProfileDev),
			Prod:    defaultOutput(ProfileProd),
		},
		Scripts: ScriptsConfig{
			WrapParam:    "ng",
			WrapGlobal:   "this.angular",
			ModuleMarker: "-module.js",
		},
		Styles: StylesConfig{
			Compiler:   StyleCompilerSass,
			SassBinary: "sass",
			Order:      []string{"**/config.scss", "**/placeholders.scss", "**/mixins.scss"},
			Targets:    []string{"chrome130", "firefox131", "safari17", "ie10"},
		},
		Sprite: SpriteConfig{
			Selector:    "icon_%f",
			SpriteFile:  "svg/sprite.svg",
			Preview:     true,
			PreviewFile: "sprite.html",
		},
		Lint: LintConfig{
			Exclude: []string{
				"src/components/collapse/collapse-directive.js",
				"src/components/dataset-polyfill/dataset-polyfill.js",
			},
		},
		Pipeline: PipelineConfig{Concurrency: 1},
		Logging:  LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Notify:   NotifyConfig{Subject: "assetbuilder.events"},
	}
}

func defaultOutput(p Profile) ProfileOutput {
	if p == ProfileProd {
		return ProfileOutput{
			Dir:            "dist/prod",
			AppScript:      "app.min.js",
			AppStyle:       "app.min.css",
			VendorScript:   "vendors.min.js",
			VendorStyle:    "vendors.min.css",
			IconStylesheet: "css/svg-sprite.min.css",
		}
	}
	return ProfileOutput{
		Dir:            "dist/dev",
		AppScript:      "app.js",
		AppStyle:       "app.css",
		VendorScript:   "vendors.js",
		VendorStyle:    "vendors.css",
		IconStylesheet: "css/svg-sprite.css",
	}
}

// applyDefaults restores defaults for fields a configuration file explicitly
// blanked and normalizes enumerations.
func applyDefaults(cfg *Config) error {
	def := Default()

	fillString(&cfg.Src.Path, def.Src.Path)
	fillString(&cfg.Src.PathVendors, def.Src.PathVendors)
	fillString(&cfg.Dist.Path, def.Dist.Path)
	fillString(&cfg.Dist.Assets, def.Dist.Assets)
	fillString(&cfg.Dist.Filters, def.Dist.Filters)
	fillOutput(&cfg.Dist.Dev, def.Dist.Dev)
	fillOutput(&cfg.Dist.Prod, def.Dist.Prod)

	fillString(&cfg.Scripts.WrapParam, def.Scripts.WrapParam)
	fillString(&cfg.Scripts.WrapGlobal, def.Scripts.WrapGlobal)
	fillString(&cfg.Scripts.ModuleMarker, def.Scripts.ModuleMarker)

	cfg.Styles.Compiler = NormalizeStyleCompiler(string(cfg.Styles.Compiler))
	fillString(&cfg.Styles.SassBinary, def.Styles.SassBinary)

	fillString(&cfg.Sprite.Selector, def.Sprite.Selector)
	fillString(&cfg.Sprite.SpriteFile, def.Sprite.SpriteFile)
	fillString(&cfg.Sprite.PreviewFile, def.Sprite.PreviewFile)

	if cfg.Pipeline.Concurrency == 0 {
		cfg.Pipeline.Concurrency = def.Pipeline.Concurrency
	}

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	fillString(&cfg.Notify.Subject, def.Notify.Subject)
	return nil
}

func fillString(dst *string, def string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = def
	}
}

func fillOutput(dst *ProfileOutput, def ProfileOutput) {
	fillString(&dst.Dir, def.Dir)
	fillString(&dst.AppScript, def.AppScript)
	fillString(&dst.AppStyle, def.AppStyle)
	fillString(&dst.VendorScript, def.VendorScript)
	fillString(&dst.VendorStyle, def.VendorStyle)
	fillString(&dst.IconStylesheet, def.IconStylesheet)
}
