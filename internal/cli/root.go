package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"todosync/internal/backend"
	"todosync/internal/config"
	"todosync/internal/storage"
	"todosync/internal/tui"
)

// App carries the flags and lazily built clients shared by all commands.
type App struct {
	ConfigPath string
	ServerURL  string
	PrettyJSON bool

	cfg    config.Config
	tokens *backend.TokenStore
	log    zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "todosync",
		Short:        "Synced to-do list client (TUI + scriptable commands)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  todosync

  # Sign in first
  todosync login alice

  # Scriptable commands
  todosync items list
  todosync items add "Write report"
  todosync items delete item-3f --yes
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(app.ServerURL) != "" {
			cfg.ServerURL = strings.TrimRight(strings.TrimSpace(app.ServerURL), "/")
			if strings.TrimSpace(cfg.StorageURL) == "" {
				cfg.StorageURL = cfg.ServerURL
			}
		}
		app.cfg = cfg
		app.tokens = backend.NewTokenStore(cfg.TokenPath)
		app.log = newLogger(cmd, cfg)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TODOSYNC_CONFIG", ""), "Path to config file (default: $XDG_CONFIG_HOME/todosync/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", "", "Backend base URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newItemsCmd(app))

	return cmd
}

// newLogger routes diagnostics to stderr for one-shot commands and to the log
// file when the TUI owns the terminal.
func newLogger(cmd *cobra.Command, cfg config.Config) zerolog.Logger {
	if cmd.CalledAs() == "todosync" || cmd.Name() == "todosync" {
		_ = os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755)
		if f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			return zerolog.New(f).With().Timestamp().Logger()
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().
		Level(zerolog.WarnLevel)
}

func (app *App) backendClient() *backend.Client {
	return backend.New(app.cfg.ServerURL, app.tokens, app.cfg.RequestTimeout, app.log)
}

func (app *App) storageClient() *storage.Client {
	return storage.New(app.cfg.StorageURL, app.tokens, app.cfg.RequestTimeout, app.log)
}

func runTUI(app *App) error {
	return tui.Run(tui.Deps{
		Config:  app.cfg,
		Backend: app.backendClient(),
		Storage: app.storageClient(),
		Log:     app.log,
	})
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
