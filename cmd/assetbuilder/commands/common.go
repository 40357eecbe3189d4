package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/notify"
	"git.home.luguber.info/inful/assetbuilder/internal/orchestrator"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/vcs"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (built-in defaults when absent)" default:"assetbuilder.yaml"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text or json); overrides logging.format" enum:",text,json" default:""`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Dev     DevCmd     `cmd:"" default:"withargs" help:"Build with the dev profile and watch for changes (default)"`
	Build   BuildCmd   `cmd:"" help:"Build with the prod profile for an environment"`
	QA      QACmd      `cmd:"" name:"qa" help:"Alias for 'build --env QA'"`
	Staging StagingCmd `cmd:"" help:"Alias for 'build --env STAGING'"`
	Prod    ProdCmd    `cmd:"" help:"Alias for 'build --env PROD'"`
	Lint    LintCmd    `cmd:"" help:"Lint application scripts"`
	Clean   CleanCmd   `cmd:"" help:"Remove the output directory"`
	Init    InitCmd    `cmd:"" help:"Write a configuration file with the default settings"`
	Graph   GraphCmd   `cmd:"" help:"Print the build step graph (text, mermaid, dot, json)"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	c.setupLogging(config.LogLevelInfo, config.NormalizeLogFormat(c.LogFormat))
	return nil
}

func (c *CLI) setupLogging(level config.LogLevel, format config.LogFormat) {
	slogLevel := slog.LevelInfo
	switch level {
	case config.LogLevelDebug:
		slogLevel = slog.LevelDebug
	case config.LogLevelWarn:
		slogLevel = slog.LevelWarn
	case config.LogLevelError:
		slogLevel = slog.LevelError
	}
	if c.Verbose {
		slogLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: slogLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the configuration and applies its logging settings unless
// overridden on the command line.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, found, err := config.LoadOrDefault(c.Config)
	if err != nil {
		return nil, err
	}
	format := cfg.Logging.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	c.setupLogging(cfg.Logging.Level, format)
	if found {
		slog.Debug("Loaded configuration", logfields.Path(c.Config))
	} else {
		slog.Debug("No configuration file, using defaults", logfields.Path(c.Config))
	}
	return cfg, nil
}

// projectDir is the directory configured paths are relative to.
func (c *CLI) projectDir() string {
	abs, err := filepath.Abs(c.Config)
	if err != nil {
		return "."
	}
	return filepath.Dir(abs)
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// runtime bundles what a building command needs.
type runtime struct {
	cfg       *config.Config
	orch      *orchestrator.Orchestrator
	registry  *prom.Registry
	publisher notify.Publisher
	dlq       *notify.DeadLetterQueue
}

func (r *runtime) Close() {
	if r.dlq != nil {
		for _, u := range r.dlq.Drain() {
			slog.Warn("Build event was never delivered", logfields.BuildID(u.Event.BuildID), logfields.Error(u.Error))
		}
	}
	if r.publisher != nil {
		if err := r.publisher.Close(); err != nil {
			slog.Warn("Failed to close NATS publisher", logfields.Error(err))
		}
	}
}

// newRuntime wires the orchestrator with metrics, logging and, when
// configured, build event notifications.
func newRuntime(root *CLI) (*runtime, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, err
	}
	dir := root.projectDir()

	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	observers := pipeline.MultiObserver{
		pipeline.LogObserver{},
		pipeline.RecorderObserver{Recorder: recorder},
	}

	rt := &runtime{cfg: cfg, registry: reg}
	if cfg.Notify.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(cfg.Notify)
		if err != nil {
			slog.Warn("Build notifications disabled", logfields.Error(err))
		} else {
			rt.dlq = notify.NewDeadLetterQueue()
			rt.publisher = notify.WithRetry(pub, notify.DefaultRetryPolicy(), rt.dlq)
			observers = append(observers, notify.Observer{Publisher: rt.publisher})
		}
	}

	rt.orch = orchestrator.New(cfg, dir,
		orchestrator.WithRecorder(recorder),
		orchestrator.WithObserver(observers),
		orchestrator.WithRevision(vcs.Revision(dir)))
	return rt, nil
}
