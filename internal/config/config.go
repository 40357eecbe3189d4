package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	abErrors "git.home.luguber.info/inful/assetbuilder/internal/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "assetbuilder.yaml"

// Config represents the application configuration. It is treated as immutable
// once Load returns.
type Config struct {
	Src        SourceConfig     `yaml:"src"`
	Dist       DistConfig       `yaml:"dist"`
	Scripts    ScriptsConfig    `yaml:"scripts"`
	Styles     StylesConfig     `yaml:"styles"`
	Sprite     SpriteConfig     `yaml:"sprite"`
	Lint       LintConfig       `yaml:"lint"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Notify     NotifyConfig     `yaml:"notify"`
}

// SourceConfig maps asset categories to glob lists.
type SourceConfig struct {
	Path             string       `yaml:"path"`
	PathVendors      string       `yaml:"path_vendors"`
	Scripts          []string     `yaml:"scripts"`
	EntryTemplates   []string     `yaml:"entry_templates"`
	EntryIndex       string       `yaml:"entry_index"`
	PartialTemplates []string     `yaml:"partial_templates"`
	Styles           []string     `yaml:"styles"`
	Icons            []string     `yaml:"icons"`
	Filters          []string     `yaml:"filters"`
	Fonts            []string     `yaml:"fonts"`
	Docs             []string     `yaml:"docs"`
	Images           []string     `yaml:"images"`
	Vendors          VendorConfig `yaml:"vendors"`
}

// VendorConfig lists third-party files in load order.
type VendorConfig struct {
	Scripts []string `yaml:"scripts"`
	Styles  []string `yaml:"styles"`
	Maps    []string `yaml:"maps"`
}

// DistConfig describes the output tree.
type DistConfig struct {
	Path    string        `yaml:"path"`
	Assets  string        `yaml:"assets"`
	Filters string        `yaml:"filters"`
	Dev     ProfileOutput `yaml:"dev"`
	Prod    ProfileOutput `yaml:"prod"`
}

// ProfileOutput holds the destination directory and file names of one profile.
type ProfileOutput struct {
	Dir            string `yaml:"dir"`
	AppScript      string `yaml:"app_script"`
	AppStyle       string `yaml:"app_style"`
	VendorScript   string `yaml:"vendor_script"`
	VendorStyle    string `yaml:"vendor_style"`
	IconStylesheet string `yaml:"icon_stylesheet"`
}

// ScriptsConfig controls application script wrapping and ordering.
type ScriptsConfig struct {
	WrapParam    string `yaml:"wrap_param"`
	WrapGlobal   string `yaml:"wrap_global"`
	ModuleMarker string `yaml:"module_marker"`
}

// StylesConfig controls stylesheet compilation.
type StylesConfig struct {
	Compiler   StyleCompiler `yaml:"compiler"`
	SassBinary string        `yaml:"sass_binary"`
	Order      []string      `yaml:"order"`
	Targets    []string      `yaml:"targets"`
}

// SpriteConfig controls icon sprite generation.
type SpriteConfig struct {
	Selector    string `yaml:"selector"`
	SpriteFile  string `yaml:"sprite_file"`
	Preview     bool   `yaml:"preview"`
	PreviewFile string `yaml:"preview_file"`
}

// LintConfig controls the script linter.
type LintConfig struct {
	Exclude  []string `yaml:"exclude"`
	Blocking bool     `yaml:"blocking"`
}

// PipelineConfig controls step scheduling.
type PipelineConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// WatchConfig controls the dev watch loop.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MonitoringConfig exposes Prometheus metrics while watching.
type MonitoringConfig struct {
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// NotifyConfig publishes build events to NATS when NATSURL is set.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject"`
}

// Output returns the output settings for the given profile.
func (c *Config) Output(p Profile) ProfileOutput {
	if p == ProfileProd {
		return c.Dist.Prod
	}
	return c.Dist.Dev
}

// Load loads configuration from the specified file. Values absent from the file
// keep their defaults.
func Load(configPath string) (*Config, error) {
	// A missing .env is the common case and not worth reporting.
	_ = loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, abErrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, abErrors.Wrap(err, abErrors.CategoryConfig, abErrors.SeverityFatal, "failed to read config file").
			WithContext("path", configPath)
	}

	return Parse(data)
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
func LoadOrDefault(configPath string) (*Config, bool, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		_ = loadEnvFile()
		cfg := Default()
		if err := applyDefaults(cfg); err != nil {
			return nil, false, err
		}
		return cfg, false, nil
	}
	cfg, err := Load(configPath)
	return cfg, err == nil, err
}

// Parse decodes YAML configuration content on top of the defaults, expanding
// environment variable references first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, abErrors.Wrap(err, abErrors.CategoryConfig, abErrors.SeverityFatal, "failed to unmarshal config")
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init creates a new configuration file populated with the default settings.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return abErrors.New(abErrors.CategoryConfig, abErrors.SeverityFatal,
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath))
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return abErrors.FileSystemError("write", configPath, err)
	}

	return nil
}
