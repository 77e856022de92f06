// Command vbind renders and serves reactive HTML templates.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
       _     _           _
__   _| |__ (_)_ __   __| |
\ \ / / '_ \| | '_ \ / _' |
 \ V /| |_) | | | | | (_| |
  \_/ |_.__/|_|_| |_|\__,_|
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "vbind",
		Short: "Reactive bindings for plain HTML templates",
		Long: `vbind binds a JSON or YAML model to an HTML template.

Templates use {{ key }} interpolation and the v-text, v-html,
v-model and v-on:<event> directives. Render a template once with
"vbind render", or serve it live over WebSocket with "vbind serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./vbind.json, .yaml or .yml if present)")

	rootCmd.AddCommand(
		renderCmd(&configPath),
		serveCmd(&configPath),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads and validates the configuration.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return cfg.Log.NewLogger(w)
}

// actionMethods turns configured actions into v-on handlers.
func actionMethods(cfg *config.Config, logger *slog.Logger) (map[string]vbind.Method, error) {
	actions, err := cfg.ParsedActions()
	if err != nil {
		return nil, errors.New("E030").WithFile(cfg.Path()).Wrap(err)
	}

	methods := make(map[string]vbind.Method, len(actions))
	for _, action := range actions {
		methods[action.Name] = func(vm *vbind.VM, e dom.Event) {
			if err := action.Run(vm); err != nil {
				logger.Warn("action failed", "action", action.Name, "event", e.Type, "error", err)
				return
			}
			logger.Debug("action ran", "action", action.Name, "event", e.Type)
		}
	}
	return methods, nil
}
