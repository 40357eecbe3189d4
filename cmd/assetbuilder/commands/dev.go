package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/orchestrator"
	"git.home.luguber.info/inful/assetbuilder/internal/watch"
)

// DevCmd implements the 'dev' command.
type DevCmd struct {
	NoWatch bool `name:"no-watch" help:"Exit after the initial build"`
}

func (d *DevCmd) Run(_ *Global, root *CLI) error {
	rt, err := newRuntime(root)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signalContext()
	defer cancel()

	report, err := rt.orch.Run(ctx, config.ProfileDev, config.EnvDev)
	if err != nil {
		return err
	}
	if d.NoWatch {
		return ctxErr(ctx)
	}

	if addr := rt.cfg.Monitoring.MetricsAddr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: metricsMux(rt), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("Serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Warn("Metrics server stopped", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	bc := rt.orch.NewContext(config.ProfileDev, config.EnvDev)
	bc.BuildID = report.BuildID
	w := watch.New(root.projectDir(), orchestrator.Bindings(rt.cfg), rt.cfg.WatchDebounce(),
		func(ctx context.Context, b watch.Binding, path string) {
			slog.Info("Change detected", "binding", b.Name, logfields.Path(path))
			if _, err := rt.orch.Rerun(ctx, bc, b.Steps); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Rebuild failed", "binding", b.Name, logfields.Error(err))
			}
		},
		watch.WithIgnoredDirs(rt.cfg.Dist.Path))
	return w.Run(ctx)
}

func metricsMux(rt *runtime) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(rt.registry))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
