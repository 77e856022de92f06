package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/dev"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/metrics"
	"github.com/vango-dev/vbind/pkg/server"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a template live over WebSocket",
		Long: `Serve a template with live bindings.

Every browser tab gets its own model. Input and events are sent to
the server, applied to the bindings, and the page is updated with the
result. With --watch, editing the template or data file reloads all
connected browsers.

Examples:
  vbind serve
  vbind serve --config site/vbind.yaml --addr :8080 --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				cfg.Server.Watch = watch
			}
			if addr == "" {
				addr = cfg.Address()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config, localhost:3000)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload browsers when the template or data changes")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, addr string) error {
	if cfg.Template == "" {
		return errors.New("E030").
			WithFile(cfg.Path()).
			WithDetail("serve needs a template").
			WithSuggestion("Set \"template\" in vbind.json")
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	methods, err := actionMethods(cfg, logger)
	if err != nil {
		return err
	}

	scfg := server.Config{
		Address:           addr,
		Root:              cfg.Root,
		Methods:           methods,
		MaxNotifyDepth:    cfg.Reactive.MaxNotifyDepth,
		ReadTimeout:       cfg.Server.ReadTimeout,
		HeartbeatInterval: cfg.Server.HeartbeatInterval,
		MaxMessageSize:    cfg.Server.MaxMessageSize,
		Logger:            logger,
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		scfg.Metrics = metrics.NewPrometheus(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		)
		scfg.Gatherer = reg
		scfg.MetricsPath = cfg.Metrics.Path
	}

	srv, err := server.New(scfg, server.FileSource{
		TemplatePath: cfg.TemplatePath(),
		DataPath:     cfg.DataPath(),
	})
	if err != nil {
		return err
	}

	if cfg.Server.Watch {
		stopWatch, err := watchFiles(ctx, cfg, srv, logger)
		if err != nil {
			return err
		}
		defer stopWatch()
	}

	fmt.Fprint(cmd.OutOrStdout(), banner)
	fmt.Fprintf(cmd.OutOrStdout(), "\n  Serving %s on http://%s\n\n", cfg.TemplatePath(), addr)
	return srv.Run(ctx)
}

// watchFiles reloads srv whenever the template, data or config file changes.
func watchFiles(ctx context.Context, cfg *config.Config, srv *server.Server, logger *slog.Logger) (func(), error) {
	paths := []string{cfg.TemplatePath()}
	if p := cfg.DataPath(); p != "" {
		paths = append(paths, p)
	}

	w := dev.NewWatcher(dev.WatcherConfig{Paths: paths, Logger: logger})
	w.OnChange(func(changes []dev.Change) {
		for _, c := range changes {
			logger.Info("file changed", "path", c.Path, "type", c.Type.String())
		}
		_ = srv.Reload()
	})
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w.Stop, nil
}
