package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the client needs to reach its collaborators. All
// state is explicit here; nothing else in the program reads the environment
// for connection settings.
type Config struct {
	// ServerURL is the base URL of the to-do backend (http or https).
	ServerURL string
	// StorageURL is the base URL of the attachment storage service. Defaults
	// to ServerURL when unset (single-host deployments).
	StorageURL string
	// TokenPath is where the session token is kept between runs.
	TokenPath string
	// CachePath is the sqlite file holding the last received snapshot.
	CachePath string
	// LogPath receives diagnostic logs while the TUI owns the terminal.
	LogPath string
	// RequestTimeout bounds every non-subscription network operation.
	RequestTimeout time.Duration
}

const defaultRequestTimeout = 15 * time.Second

// Load reads configuration from (in increasing precedence) defaults, a config
// file, and TODOSYNC_* environment variables. path overrides the config file
// location; empty means the default search paths.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("server", "http://localhost:8787")
	v.SetDefault("storage", "")
	v.SetDefault("timeout", defaultRequestTimeout.String())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TODOSYNC")
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "todosync"))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// An explicitly named file that is missing is still an error.
			if strings.TrimSpace(path) != "" || !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	timeout, err := time.ParseDuration(v.GetString("timeout"))
	if err != nil || timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	cfg := Config{
		ServerURL:      strings.TrimRight(strings.TrimSpace(v.GetString("server")), "/"),
		StorageURL:     strings.TrimRight(strings.TrimSpace(v.GetString("storage")), "/"),
		TokenPath:      strings.TrimSpace(v.GetString("tokenPath")),
		CachePath:      strings.TrimSpace(v.GetString("cachePath")),
		LogPath:        strings.TrimSpace(v.GetString("logPath")),
		RequestTimeout: timeout,
	}
	if cfg.StorageURL == "" {
		cfg.StorageURL = cfg.ServerURL
	}
	if cfg.TokenPath == "" {
		cfg.TokenPath = stateFile("token")
	}
	if cfg.CachePath == "" {
		cfg.CachePath = stateFile("cache.sqlite")
	}
	if cfg.LogPath == "" {
		cfg.LogPath = stateFile("todosync.log")
	}
	return cfg, nil
}

// stateFile places mutable state under the user state dir, falling back to the
// working directory when the home lookup fails.
func stateFile(name string) string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "todosync", name)
}
